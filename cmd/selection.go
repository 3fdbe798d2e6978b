package cmd

import (
	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/admindb"
)

func makeCmdSetSelection() *commander.Command {
	return &commander.Command{
		UsageLine: "set-selection <package> <install|hold|deinstall|purge>",
		Short:     "change a package's selection state",
		Run:       aptlySetSelection,
		Flag:      *flag.NewFlagSet("wpkg-set-selection", flag.ExitOnError),
	}
}

var validSelections = map[string]admindb.Selection{
	"install":   admindb.SelectionInstall,
	"hold":      admindb.SelectionHold,
	"deinstall": admindb.SelectionDeinstall,
	"purge":     admindb.SelectionPurge,
}

func aptlySetSelection(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("set-selection: a package name and a selection are required")
	}
	name, raw := args[0], args[1]

	selection, ok := validSelections[raw]
	if !ok {
		return errors.Errorf("set-selection: unknown selection %q", raw)
	}

	db := context.DB
	r := db.Get(name, context.Architecture())
	if r == nil {
		return errors.Errorf("set-selection: no record for %s", name)
	}

	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	r.Selection = selection
	return db.Put(r)
}
