package cmd

import (
	"os"

	"github.com/smira/commander"
	"github.com/smira/flag"
)

// RootCommand assembles the full command tree (§6 "Verbs and flags").
func RootCommand() *commander.Command {
	cmd := &commander.Command{
		UsageLine: os.Args[0],
		Short:     "wpkg core: Debian/wpkg-style package management",
		Long: `
wpkg manages the install/remove/purge lifecycle of binary packages
against an administrative database and a target root, following the
classic dpkg state machine: unpack, configure, remove, purge, with
conffile handling, maintainer scripts and hooks around each step.`,
		Flag: *flag.NewFlagSet("wpkg", flag.ExitOnError),
		Subcommands: []*commander.Command{
			makeCmdInstall(),
			makeCmdUnpack(),
			makeCmdConfigure(),
			makeCmdRemove(),
			makeCmdPurge(),
			makeCmdCreateAdmindir(),
			makeCmdCreateIndex(),
			makeCmdMd5sums(),
			makeCmdMd5sumsCheck(),
			makeCmdCompareVersions(),
			makeCmdSetSelection(),
			makeCmdAddHooks(),
			makeCmdRemoveHooks(),
			makeCmdListHooks(),
			makeCmdAutoRemove(),
		},
	}

	cmd.Flag.String("root-dir", "", "target root for installed files (default from config)")
	cmd.Flag.String("admin-dir", "", "administrative database directory (default from config)")
	cmd.Flag.String("architecture", "", "target architecture (default from config)")
	cmd.Flag.String("config", "", "location of configuration file")
	cmd.Flag.String("wpkg-subst", "", "WPKG_SUBST substitution list (default from environment)")

	cmd.Flag.Bool("force-overwrite", false, "overwrite files owned by another package")
	cmd.Flag.Bool("force-conflicts", false, "install despite a Conflicts violation")
	cmd.Flag.Bool("force-breaks", false, "install despite a Breaks violation")
	cmd.Flag.Bool("force-hold", false, "act on a package despite a hold selection")
	cmd.Flag.Bool("force-remove-essential", false, "remove a package marked Essential: yes")
	cmd.Flag.Bool("force-distribution", false, "ignore a distribution mismatch")
	cmd.Flag.Bool("force-upgrade-any-version", false, "allow upgrading across any version gap")
	cmd.Flag.Bool("force-depends", false, "install despite an unsatisfied dependency")
	cmd.Flag.Bool("force-downgrade", false, "allow installing an older version over a newer one")

	return cmd
}
