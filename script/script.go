// Package script implements maintainer/hook script invocation (part of
// C8/C9): resolving the OS-appropriate script variant, building the
// child environment (DPKG_ROOT, DPKG_ADMINDIR, WPKG_SUBST
// substitutions), and running it to completion under a timeout.
package script

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Family is the OS family a script variant targets, driving which
// sibling a package ships (§4.7 "Script invocation").
type Family int

// Architecture families recognized by the executor.
const (
	FamilyUnix Family = iota
	FamilyWindows
)

// FamilyForArchitecture maps a target architecture to its script
// family: "all" packages ship both variants, anything else is
// classified by its OS component (the part before the first "-").
func FamilyForArchitecture(arch string) Family {
	osName := strings.SplitN(arch, "-", 2)[0]
	if osName == "windows" || osName == "win32" || osName == "win64" {
		return FamilyWindows
	}
	return FamilyUnix
}

// Resolve picks the script file to run for a logical name ("preinst",
// "postinst", ...) given the package architecture: extensionless on
// Unix-family architectures, "<name>.bat" on Windows-family, either
// acceptable for "all" (extensionless preferred, falling back to
// .bat). Returns ("", false) if neither variant is present.
func Resolve(base, name, arch string) (string, bool) {
	family := FamilyForArchitecture(arch)

	plain := filepath.Join(base, name)
	bat := plain + ".bat"

	tryOrder := []string{plain, bat}
	if family == FamilyWindows {
		tryOrder = []string{bat, plain}
	}

	for _, candidate := range tryOrder {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Subst is one WPKG_SUBST entry: a drive letter or named substitution
// mapped to one or more candidate directories (§6).
type Subst struct {
	Letter string
	Dirs   []string
}

// validSubstChar reports whether r is in the restricted character set
// from §6: letters, digits, underscore, hyphen, plus, dot, slash,
// backslash.
func validSubstChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case strings.ContainsRune("_-+./\\", r):
		return true
	}
	return false
}

// ParseSubst parses the WPKG_SUBST environment value: a colon-separated
// list of "letter=dir[|dir...]" entries. A colon followed by text with
// no "=" belongs to the preceding directory, so drive-letter paths
// such as "c=C:/apps" stay whole. Any character outside the
// restricted set anywhere in the value rejects the whole substitution
// list, per §6 ("invalid substitutions reject the transaction").
func ParseSubst(value string) ([]Subst, error) {
	if value == "" {
		return nil, nil
	}

	for _, r := range value {
		if r == ':' || r == '=' || r == '|' {
			continue
		}
		if !validSubstChar(r) {
			return nil, errors.Errorf("script: WPKG_SUBST contains disallowed character %q", r)
		}
	}

	var entries []string
	for _, piece := range strings.Split(value, ":") {
		if piece != "" && len(entries) > 0 && !strings.Contains(piece, "=") {
			entries[len(entries)-1] += ":" + piece
			continue
		}
		entries = append(entries, piece)
	}

	var subs []Subst
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, errors.Errorf("script: malformed WPKG_SUBST entry %q", entry)
		}
		subs = append(subs, Subst{Letter: parts[0], Dirs: strings.Split(parts[1], "|")})
	}
	return subs, nil
}

// Runner executes maintainer and hook scripts with a consistent
// environment and timeout (§4.7, §4.8, §5 "script execution blocks
// the executor until the child exits").
type Runner struct {
	RootDir        string
	AdminDir       string
	TimeoutSeconds int
	WPKGSubst      string
}

// Run invokes path with args, working directory at RootDir,
// environment inheriting the process environment plus DPKG_ROOT,
// DPKG_ADMINDIR and (if set) WPKG_SUBST, validated via ParseSubst
// before the child is started.
func (r Runner) Run(path string, args ...string) error {
	if _, err := ParseSubst(r.WPKGSubst); err != nil {
		return err
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if r.TimeoutSeconds > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = r.RootDir
	cmd.Env = append(os.Environ(),
		"DPKG_ROOT="+r.RootDir,
		"DPKG_ADMINDIR="+r.AdminDir,
	)
	if r.WPKGSubst != "" {
		cmd.Env = append(cmd.Env, "WPKG_SUBST="+r.WPKGSubst)
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Errorf("script: %s timed out after %ds", path, r.TimeoutSeconds)
	}
	if err != nil {
		return errors.Wrapf(err, "script: %s exited with error", path)
	}
	return nil
}
