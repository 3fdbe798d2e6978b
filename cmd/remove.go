package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/executor"
)

func makeCmdRemove() *commander.Command {
	return &commander.Command{
		UsageLine: "remove <package> [package...]",
		Short:     "remove installed packages, keeping their conffiles",
		Run:       aptlyRemove,
		Flag:      *flag.NewFlagSet("wpkg-remove", flag.ExitOnError),
	}
}

func makeCmdPurge() *commander.Command {
	return &commander.Command{
		UsageLine: "purge <package> [package...]",
		Short:     "remove installed packages and their conffiles",
		Run:       aptlyPurge,
		Flag:      *flag.NewFlagSet("wpkg-purge", flag.ExitOnError),
	}
}

func aptlyRemove(cmd *commander.Command, args []string) error {
	return runRemove(args, executor.VerbRemove)
}

func aptlyPurge(cmd *commander.Command, args []string) error {
	return runRemove(args, executor.VerbPurge)
}

func runRemove(args []string, verb executor.Verb) error {
	if len(args) == 0 {
		return errors.New("remove: at least one package name is required")
	}

	db := context.DB
	arch := context.Architecture()

	var plan []executor.Unit
	for _, name := range args {
		r := db.Get(name, arch)
		if r == nil {
			return errors.Errorf("remove: no installed record for %s", name)
		}
		plan = append(plan, executor.Unit{Verb: verb, Old: r})
	}

	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	exec := executor.New(context.RootDir(), db, context.Force(), arch, context.Config.HookTimeoutSeconds, context.Log)
	exec.Runner.WPKGSubst = context.WPKGSubst()

	results, err := exec.Execute(plan)
	fmt.Println(executor.Summary(results))
	return err
}
