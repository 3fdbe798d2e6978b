package cmd

import (
	"github.com/smira/commander"
	"github.com/smira/flag"
)

func makeCmdCreateAdmindir() *commander.Command {
	return &commander.Command{
		UsageLine: "create-admindir",
		Short:     "initialize the administrative database directory",
		Run:       aptlyCreateAdmindir,
		Flag:      *flag.NewFlagSet("wpkg-create-admindir", flag.ExitOnError),
	}
}

// aptlyCreateAdmindir is a no-op beyond InitContext itself: Open
// already creates info/updates/hooks under the admin directory if they
// are missing (§4.4; the status file is written on the first Put), so
// this command exists only to give
// that initialization an explicit, nameable verb.
func aptlyCreateAdmindir(cmd *commander.Command, args []string) error {
	context.Log.Info().Str("admindir", context.DB.Dir()).Msg("administrative database ready")
	return nil
}
