// Package request defines the core-visible verbs and force flags a
// front end (cmd/) parses into before handing off to the planner and
// executor (§6 "Verbs and flags").
package request

import (
	"github.com/pkg/errors"

	"github.com/wpkg-go/wpkg/utils"
)

// Verb is one of the core-visible operations from §6.
type Verb string

// Verbs the core understands.
const (
	VerbInstall         Verb = "install"
	VerbUnpack          Verb = "unpack"
	VerbConfigure       Verb = "configure"
	VerbRemove          Verb = "remove"
	VerbPurge           Verb = "purge"
	VerbCreateAdmindir  Verb = "create-admindir"
	VerbCreateIndex     Verb = "create-index"
	VerbMD5Sums         Verb = "md5sums"
	VerbMD5SumsCheck    Verb = "md5sums-check"
	VerbCompareVersions Verb = "compare-versions"
	VerbSetSelection    Verb = "set-selection"
	VerbAddHooks        Verb = "add-hooks"
	VerbRemoveHooks     Verb = "remove-hooks"
	VerbListHooks       Verb = "list-hooks"
	VerbAutoRemove      Verb = "autoremove"
)

// verbsRequiringOperand lists verbs that need at least one positional
// operand (a package name, archive path, or version string).
var verbsRequiringOperand = map[Verb]bool{
	VerbInstall:         true,
	VerbUnpack:          true,
	VerbConfigure:       true,
	VerbRemove:          true,
	VerbPurge:           true,
	VerbCreateIndex:     true,
	VerbMD5Sums:         true,
	VerbMD5SumsCheck:    true,
	VerbCompareVersions: true,
	VerbSetSelection:    true,
	VerbAddHooks:        true,
	VerbRemoveHooks:     true,
}

// Request is one parsed invocation: a verb, its positional operands,
// and the force-flag/architecture overrides for this call.
type Request struct {
	Verb         Verb
	Operands     []string
	Force        utils.ForceFlags
	Architecture string
	RootDir      string
	AdminDir     string
}

// Validate checks the operand count is plausible for Verb, leaving
// deeper semantic validation (does the archive exist, is the package
// known) to the caller that actually has a database/universe to check
// against.
func (r Request) Validate() error {
	if verbsRequiringOperand[r.Verb] && len(r.Operands) == 0 {
		return errors.Errorf("request: verb %q requires at least one operand", r.Verb)
	}
	if r.Verb == VerbCompareVersions && len(r.Operands) != 2 {
		return errors.Errorf("request: compare-versions takes exactly two operands, got %d", len(r.Operands))
	}
	if r.Verb == VerbSetSelection && len(r.Operands) != 2 {
		return errors.Errorf("request: set-selection takes a package name and a selection, got %d operands", len(r.Operands))
	}
	return nil
}
