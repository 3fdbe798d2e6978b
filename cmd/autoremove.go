package cmd

import (
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/executor"
	"github.com/wpkg-go/wpkg/planner"
)

func makeCmdAutoRemove() *commander.Command {
	return &commander.Command{
		UsageLine: "autoremove",
		Short:     "remove auto-installed packages no longer depended on",
		Run:       aptlyAutoRemove,
		Flag:      *flag.NewFlagSet("wpkg-autoremove", flag.ExitOnError),
	}
}

// aptlyAutoRemove computes the fixed point of §4.7 "Auto-remove" and
// removes every eligible package as one plan.
func aptlyAutoRemove(cmd *commander.Command, args []string) error {
	db := context.DB

	eligible, err := planner.AutoRemove(db.All())
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		fmt.Println("nothing to auto-remove")
		return nil
	}

	var plan []executor.Unit
	for _, r := range eligible {
		plan = append(plan, executor.Unit{Verb: executor.VerbRemove, Old: r})
	}

	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	exec := executor.New(context.RootDir(), db, context.Force(), context.Architecture(), context.Config.HookTimeoutSeconds, context.Log)
	exec.Runner.WPKGSubst = context.WPKGSubst()

	results, err := exec.Execute(plan)
	fmt.Println(executor.Summary(results))
	return err
}
