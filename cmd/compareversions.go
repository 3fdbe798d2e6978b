package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/debian"
)

func makeCmdCompareVersions() *commander.Command {
	return &commander.Command{
		UsageLine: "compare-versions <v1> <v2>",
		Short:     "compare two Debian version strings",
		Run:       aptlyCompareVersions,
		Flag:      *flag.NewFlagSet("wpkg-compare-versions", flag.ExitOnError),
	}
}

// aptlyCompareVersions prints -1, 0 or 1 for v1 </==/> v2, per the
// Debian version algebra (§4.3).
func aptlyCompareVersions(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("compare-versions: exactly two version strings are required")
	}
	fmt.Println(debian.CompareVersions(args[0], args[1]))
	return nil
}
