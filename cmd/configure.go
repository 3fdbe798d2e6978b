package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/executor"
)

func makeCmdConfigure() *commander.Command {
	return &commander.Command{
		UsageLine: "configure <package>",
		Short:     "finish configuring a package left unpacked",
		Run:       aptlyConfigure,
		Flag:      *flag.NewFlagSet("wpkg-configure", flag.ExitOnError),
	}
}

func aptlyConfigure(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("configure: exactly one package name is required")
	}
	name := args[0]

	db := context.DB
	arch := context.Architecture()
	r := db.Get(name, arch)
	if r == nil {
		return errors.Errorf("configure: no unpacked record for %s", name)
	}

	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	exec := executor.New(context.RootDir(), db, context.Force(), arch, context.Config.HookTimeoutSeconds, context.Log)
	exec.Runner.WPKGSubst = context.WPKGSubst()

	plan := []executor.Unit{{Verb: executor.VerbConfigure, Old: r}}
	results, err := exec.Execute(plan)
	fmt.Println(executor.Summary(results))
	return err
}
