// Package cmd implements the console command dispatcher (§6): a thin
// front end that turns command-line flags into planner/executor calls.
// Help text, license text and general CLI ergonomics are out of scope;
// this package exists so the core is runnable end to end, not as a
// polished product in its own right.
package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/utils"
)

// FatalError aborts Run with a specific process exit code (§6 "Exit
// codes").
type FatalError struct {
	ReturnCode int
	Message    string
}

// Fatal panics with a FatalError; Run's recover turns it into the
// process exit code. Flag/command parse errors from commander map to
// 2 (usage error), everything else to 1 (plan rejected or unit
// failed).
func Fatal(err error) {
	returnCode := 1
	if err == commander.ErrFlagError || err == commander.ErrCommandError {
		returnCode = 2
	}
	panic(&FatalError{ReturnCode: returnCode, Message: err.Error()})
}

// Context is the resource bundle every leaf command runs against.
// Only one exists per process; leaf commands read it through the
// package-level context variable UpdateFlags/InitContext populate.
type Context struct {
	Config *utils.ConfigStructure
	DB     *admindb.DB
	Log    zerolog.Logger

	flags *flag.FlagSet
}

var context *Context

func lookupString(flags *flag.FlagSet, name string) string {
	f := flags.Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func lookupBool(flags *flag.FlagSet, name string) (bool, bool) {
	if !flags.IsSet(name) {
		return false, false
	}
	f := flags.Lookup(name)
	if f == nil {
		return false, false
	}
	return f.Value.Get().(bool), true
}

// RootDir resolves the target root for filesystem operations: the
// --root-dir flag if given, else the configured default.
func (c *Context) RootDir() string {
	if v := lookupString(c.flags, "root-dir"); v != "" {
		return v
	}
	return c.Config.GetRootDir()
}

// AdminDir resolves the admin directory the same way.
func (c *Context) AdminDir() string {
	if v := lookupString(c.flags, "admin-dir"); v != "" {
		return v
	}
	return c.Config.GetAdminDir()
}

// Architecture resolves the target architecture the same way.
func (c *Context) Architecture() string {
	if v := lookupString(c.flags, "architecture"); v != "" {
		return v
	}
	return c.Config.Architecture
}

// WPKGSubst returns the --wpkg-subst override, falling back to the
// WPKG_SUBST environment variable (§6).
func (c *Context) WPKGSubst() string {
	if v := lookupString(c.flags, "wpkg-subst"); v != "" {
		return v
	}
	return os.Getenv("WPKG_SUBST")
}

// Force builds the force-flag set from the command line, overlaying
// the configured defaults (§6 "Force flags").
func (c *Context) Force() utils.ForceFlags {
	f := c.Config.Force
	apply := func(name string, dst *bool) {
		if v, set := lookupBool(c.flags, name); set {
			*dst = v
		}
	}
	apply("force-overwrite", &f.Overwrite)
	apply("force-conflicts", &f.Conflicts)
	apply("force-breaks", &f.Breaks)
	apply("force-hold", &f.Hold)
	apply("force-remove-essential", &f.RemoveEssential)
	apply("force-distribution", &f.Distribution)
	apply("force-upgrade-any-version", &f.UpgradeAnyVersion)
	apply("force-depends", &f.Depends)
	apply("force-downgrade", &f.Downgrade)
	return f
}

// InitContext loads configuration and opens (creating if necessary)
// the administrative database. It does not take the database's
// transaction lock; mutating commands acquire and release that
// themselves around the specific operation that needs it.
func InitContext(flags *flag.FlagSet) error {
	cfg := &utils.Config

	if loc := lookupString(flags, "config"); loc != "" {
		if err := utils.LoadConfig(loc, cfg); err != nil {
			return errors.Wrapf(err, "cmd: loading config %s", loc)
		}
	}

	if cfg.LogFormat == "json" {
		utils.SetupJSONLogger(cfg.LogLevel, os.Stderr)
	} else {
		utils.SetupDefaultLogger(cfg.LogLevel)
	}

	context = &Context{Config: cfg, Log: log.Logger, flags: flags}

	db, err := admindb.Open(context.AdminDir())
	if err != nil {
		return errors.Wrapf(err, "cmd: opening admin directory %s", context.AdminDir())
	}
	context.DB = db

	return nil
}

// UpdateFlags refreshes the flag set context resolves RootDir/
// AdminDir/Architecture/Force against, called once per dispatched
// command (mirrors aptly's AptlyContext.UpdateFlags).
func UpdateFlags(flags *flag.FlagSet) {
	if context != nil {
		context.flags = flags
	}
}

// ShutdownContext releases the resources InitContext acquired. The
// advisory lock is released by mutating commands themselves via
// defer db.Unlock(); the only resource left for process shutdown is
// the path-ownership cache's goleveldb handle, opened lazily by
// admindb.DB.Owner and otherwise never closed.
func ShutdownContext() {
	if context == nil || context.DB == nil {
		return
	}
	if err := context.DB.CloseCache(); err != nil {
		context.Log.Warn().Err(err).Msg("closing path-ownership cache")
	}
}
