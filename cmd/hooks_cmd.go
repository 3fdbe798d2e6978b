package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"
)

func makeCmdAddHooks() *commander.Command {
	return &commander.Command{
		UsageLine: "add-hooks <hookname> <script-path>",
		Short:     "register a hook script under the admin directory",
		Run:       aptlyAddHooks,
		Flag:      *flag.NewFlagSet("wpkg-add-hooks", flag.ExitOnError),
	}
}

func makeCmdRemoveHooks() *commander.Command {
	return &commander.Command{
		UsageLine: "remove-hooks <hookname>",
		Short:     "unregister a hook script",
		Run:       aptlyRemoveHooks,
		Flag:      *flag.NewFlagSet("wpkg-remove-hooks", flag.ExitOnError),
	}
}

func makeCmdListHooks() *commander.Command {
	return &commander.Command{
		UsageLine: "list-hooks",
		Short:     "list registered hook scripts",
		Run:       aptlyListHooks,
		Flag:      *flag.NewFlagSet("wpkg-list-hooks", flag.ExitOnError),
	}
}

func aptlyAddHooks(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("add-hooks: a hook name and a script path are required")
	}
	name, path := args[0], args[1]

	body, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "add-hooks: reading %s", path)
	}

	db := context.DB
	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	return db.RegisterHook(name, body)
}

func aptlyRemoveHooks(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("remove-hooks: exactly one hook name is required")
	}

	db := context.DB
	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	return db.RemoveHook(args[0])
}

func aptlyListHooks(cmd *commander.Command, args []string) error {
	names, err := context.DB.ListHooks()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
