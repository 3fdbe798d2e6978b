package cmd

import (
	"fmt"
	"os"

	"github.com/smira/commander"
)

// Run runs a single command starting from the root of cmd with args,
// optionally initializing the shared Context first.
func Run(cmd *commander.Command, cmdArgs []string, initContext bool) (returnCode int) {
	defer func() {
		if r := recover(); r != nil {
			fatal, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			fmt.Fprintln(os.Stderr, "ERROR:", fatal.Message)
			returnCode = fatal.ReturnCode
		}
	}()

	returnCode = 0

	flags, args, err := cmd.ParseFlags(cmdArgs)
	if err != nil {
		Fatal(err)
	}

	if initContext {
		if err := InitContext(flags); err != nil {
			Fatal(err)
		}
		defer ShutdownContext()
	}

	UpdateFlags(flags)

	if err := cmd.Dispatch(args); err != nil {
		Fatal(err)
	}

	return
}
