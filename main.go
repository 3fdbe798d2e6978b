package main

import (
	"os"

	"github.com/wpkg-go/wpkg/cmd"
)

func main() {
	os.Exit(cmd.Run(cmd.RootCommand(), os.Args[1:], true))
}
