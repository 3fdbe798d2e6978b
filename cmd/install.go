package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/archive"
	"github.com/wpkg-go/wpkg/executor"
	"github.com/wpkg-go/wpkg/planner"
)

func makeCmdInstall() *commander.Command {
	return &commander.Command{
		UsageLine: "install <archive>",
		Short:     "install or upgrade a package from an archive",
		Run:       aptlyInstall,
		Flag:      *flag.NewFlagSet("wpkg-install", flag.ExitOnError),
	}
}

func makeCmdUnpack() *commander.Command {
	return &commander.Command{
		UsageLine: "unpack <archive>",
		Short:     "unpack a package without configuring it",
		Run:       aptlyUnpack,
		Flag:      *flag.NewFlagSet("wpkg-unpack", flag.ExitOnError),
	}
}

func aptlyInstall(cmd *commander.Command, args []string) error {
	return runInstall(args, true)
}

func aptlyUnpack(cmd *commander.Command, args []string) error {
	return runInstall(args, false)
}

// runInstall implements both "install" (configure=true) and "unpack"
// (configure=false): build the requested candidate from the named
// archive, resolve it against everything currently installed, order
// the resulting selection and hand the resulting units to the
// executor (§4.6, §4.7).
func runInstall(args []string, configure bool) error {
	if len(args) != 1 {
		return errors.New("install: exactly one archive path is required")
	}
	archivePath := args[0]

	stanza, err := archive.NewReader(archivePath).ControlStanza()
	if err != nil {
		return errors.Wrapf(err, "install: reading %s", archivePath)
	}

	requested := &planner.Candidate{
		Name:         stanza["Package"],
		Version:      stanza["Version"],
		Architecture: stanza["Architecture"],
		Control:      stanza,
		ArchivePath:  archivePath,
	}
	if requested.Name == "" {
		return errors.Errorf("install: %s has no Package field", archivePath)
	}

	db := context.DB
	arch := context.Architecture()
	if arch == "" {
		arch = requested.Architecture
	}
	force := context.Force()

	universe, err := planner.NewUniverse(db.All(), nil, []*planner.Candidate{requested})
	if err != nil {
		return err
	}

	selection, err := planner.Resolve(universe, []string{requested.Name}, arch)
	if err != nil {
		return err
	}
	// Resolve prefers an already-installed candidate over a fresh one
	// of the same name (§4.6 "installed first"); that preference
	// exists for transitive dependencies, not for the archive the
	// caller explicitly named, so pin the requested candidate back in.
	selection[requested.Name] = requested

	if err := planner.CheckHold(selection, db.All(), force.Hold); err != nil {
		return err
	}

	ordered, err := planner.Order(selection)
	if err != nil {
		return err
	}

	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	var plan []executor.Unit
	for _, c := range ordered {
		if c.ArchivePath == "" {
			continue
		}
		verb := executor.VerbInstall
		if !configure {
			verb = executor.VerbUnpack
		}
		plan = append(plan, executor.Unit{
			Verb:      verb,
			Candidate: c,
			Archive:   c.ArchivePath,
			Old:       db.Get(c.Name, c.Architecture),
		})
	}

	exec := executor.New(context.RootDir(), db, force, arch, context.Config.HookTimeoutSeconds, context.Log)
	exec.Runner.WPKGSubst = context.WPKGSubst()

	results, err := exec.Execute(plan)
	fmt.Println(executor.Summary(results))
	if err != nil {
		return err
	}
	return nil
}
