package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/repoindex"
)

func makeCmdCreateIndex() *commander.Command {
	cmd := &commander.Command{
		UsageLine: "create-index <repo-dir>",
		Short:     "(re)build a repository's index.tar.gz",
		Run:       aptlyCreateIndex,
		Flag:      *flag.NewFlagSet("wpkg-create-index", flag.ExitOnError),
	}
	cmd.Flag.Bool("force-rescan", false, "rebuild even if the current index looks fresh")
	return cmd
}

func aptlyCreateIndex(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("create-index: exactly one repository directory is required")
	}

	forceRescan, _ := cmd.Flag.Lookup("force-rescan").Value.Get().(bool)

	candidates, err := repoindex.Consume(args[0], forceRescan)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d candidate(s)\n", len(candidates))
	return nil
}
