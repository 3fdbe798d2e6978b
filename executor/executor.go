// Package executor implements the transactional install/remove/purge
// executor (C8): the per-unit phase sequence, the conffile protocol,
// self-upgrade re-exec, and hook invocation described in spec §4.7.
package executor

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/hooks"
	"github.com/wpkg-go/wpkg/planner"
	"github.com/wpkg-go/wpkg/script"
	"github.com/wpkg-go/wpkg/utils"
)

// Verb is one unit's action.
type Verb string

// Verbs the executor knows how to carry out.
const (
	VerbInstall   Verb = "install"
	VerbUnpack    Verb = "unpack" // stops after step d, leaving the record "unpacked"
	VerbRemove    Verb = "remove"
	VerbPurge     Verb = "purge"
	VerbConfigure Verb = "configure" // resumes a crashed unit already at "unpacked"
)

// Unit is one planned action, in the order the executor must run
// them (§4.6 Order, §4.7 "Phase sequence per package").
type Unit struct {
	Verb      Verb
	Candidate *planner.Candidate // required for VerbInstall
	Archive   string             // path to the package file, required for VerbInstall
	Old       *admindb.Record    // previously installed record, nil on a fresh install
}

// Executor runs a plan against a target root and an administrative
// database (§4.7, §5).
type Executor struct {
	Root   string
	DB     *admindb.DB
	Runner script.Runner
	Force  utils.ForceFlags
	Arch   string
	Log    zerolog.Logger
}

// New builds an Executor. hookTimeoutSeconds bounds every maintainer
// and hook script invocation; zero means no timeout.
func New(root string, db *admindb.DB, force utils.ForceFlags, arch string, hookTimeoutSeconds int, log zerolog.Logger) *Executor {
	return &Executor{
		Root: root,
		DB:   db,
		Runner: script.Runner{
			RootDir:        root,
			AdminDir:       db.Dir(),
			TimeoutSeconds: hookTimeoutSeconds,
		},
		Force: force,
		Arch:  arch,
		Log:   log,
	}
}

// Validate runs phase 1 (§4.7): every installed package's validate
// script, then every registered global validate hook. Any nonzero
// exit aborts the plan before any mutation happens.
func (e *Executor) Validate() error {
	for _, r := range e.DB.All() {
		if r.State != admindb.StateInstalled {
			continue
		}
		path, ok := resolveMaintainerScript(e.DB.Dir()+"/info", r.Name, "validate", r.Architecture)
		if !ok {
			continue
		}
		if err := e.Runner.Run(path); err != nil {
			return errors.Wrapf(err, "validate script for %s failed", r.Name)
		}
	}

	registered, err := hooks.Discover(e.DB, e.Arch)
	if err != nil {
		return err
	}
	for _, h := range registered {
		if !h.Validate {
			continue
		}
		if err := e.Runner.Run(h.Path, "validate", "", ""); err != nil {
			return errors.Wrapf(err, "validate hook %s failed", h.Name)
		}
	}
	return nil
}

// Result records the outcome of one unit for the final summary line
// (§7 "a final summary line stating how many units succeeded and
// which failed").
type Result struct {
	Unit Unit
	Err  error
}

// Execute runs Validate, then every unit of plan in order. A unit
// failure halts the plan immediately; earlier committed units are not
// rolled back (§7 "classic Debian semantics"). The returned slice
// always reflects every unit attempted, successful or not, so callers
// can print the required summary line.
func (e *Executor) Execute(plan []Unit) ([]Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	var results []Result
	for _, u := range plan {
		seq, err := e.DB.NextSeq()
		if err != nil {
			return results, err
		}

		var runErr error
		switch u.Verb {
		case VerbInstall:
			runErr = e.installUnit(seq, u, true)
		case VerbUnpack:
			runErr = e.installUnit(seq, u, false)
		case VerbRemove:
			runErr = e.removeUnit(seq, u, false)
		case VerbPurge:
			runErr = e.removeUnit(seq, u, true)
		case VerbConfigure:
			runErr = e.resumeConfigure(seq, u)
		default:
			runErr = errors.Errorf("executor: unknown verb %q", u.Verb)
		}

		results = append(results, Result{Unit: u, Err: runErr})
		if runErr != nil {
			return results, runErr
		}

		if err := e.invokeUnitHooks(u); err != nil {
			e.Log.Error().Err(err).Str("unit", unitName(u)).Msg("hook invocation reported an error")
		}
	}
	return results, nil
}

// Summary renders the one-line success/failure tally §7 requires.
func Summary(results []Result) string {
	ok, failed := 0, 0
	var names []string
	for _, r := range results {
		if r.Err != nil {
			failed++
			names = append(names, unitName(r.Unit))
		} else {
			ok++
		}
	}
	if failed == 0 {
		return fmt.Sprintf("%d unit(s) succeeded", ok)
	}
	return fmt.Sprintf("%d unit(s) succeeded, %d failed (%s)", ok, failed, strings.Join(names, ", "))
}

func (e *Executor) invokeUnitHooks(u Unit) error {
	registered, err := hooks.Discover(e.DB, e.Arch)
	if err != nil {
		return err
	}
	name, version := unitName(u), unitVersion(u)
	return hooks.Invoke(e.Runner, registered, e.Log, string(u.Verb), name, version)
}

func unitName(u Unit) string {
	if u.Candidate != nil {
		return u.Candidate.Name
	}
	if u.Old != nil {
		return u.Old.Name
	}
	return ""
}

func unitVersion(u Unit) string {
	if u.Candidate != nil {
		return u.Candidate.Version
	}
	if u.Old != nil {
		return u.Old.Version
	}
	return ""
}
