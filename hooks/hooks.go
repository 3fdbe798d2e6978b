// Package hooks implements hook extraction, discovery and invocation
// (C9): global and package-owned scripts registered under
// <admin>/hooks/, run around every transaction per spec §4.8.
package hooks

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/archive"
	"github.com/wpkg-go/wpkg/script"
)

// Script is one hook discovered under <admin>/hooks/, with its
// extensionless/.bat siblings collapsed into a single logical entry
// and its ownership classified.
type Script struct {
	Name     string // base name as registered, without a .bat suffix
	Path     string // the variant chosen for the running architecture
	Pkg      string // owning package name, or "" for a global hook
	Validate bool   // name contains "validate" (§4.8 "validation hooks")
}

// Discover lists every hook registered in db, one entry per logical
// name, resolved to the variant matching arch. A hook named
// "<pkg>_<hookname>" where pkg matches an installed record's name is
// classified as owned by that package; anything else is global.
func Discover(db *admindb.DB, arch string) ([]Script, error) {
	names, err := db.ListHooks()
	if err != nil {
		return nil, err
	}

	owners := make(map[string]bool)
	for _, r := range db.All() {
		owners[r.Name] = true
	}

	seen := make(map[string]bool)
	var scripts []Script
	for _, name := range names {
		base := strings.TrimSuffix(name, ".bat")
		if seen[base] {
			continue
		}
		seen[base] = true

		path, ok := script.Resolve(db.Dir()+"/hooks", base, arch)
		if !ok {
			continue
		}

		s := Script{
			Name:     base,
			Path:     path,
			Validate: strings.Contains(strings.ToLower(base), "validate"),
		}
		if idx := strings.Index(base, "_"); idx > 0 {
			if candidate := base[:idx]; owners[candidate] {
				s.Pkg = candidate
			}
		}
		scripts = append(scripts, s)
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })
	return scripts, nil
}

// ExtractPackageHooks finds every control-tree member named
// "<pkgName>_*" in the archive read by reader (§4.8 "package-declared
// hooks"), registers each one under <admin>/hooks/ exactly as
// --add-hooks would, and returns their names sorted, for storage in
// the installed record's HookNames. Once registered this way the
// hooks are indistinguishable from globally-added ones to Discover,
// which already folds <pkg>_<hookname> entries in by name.
func ExtractPackageHooks(db *admindb.DB, reader *archive.Reader, pkgName string) ([]string, error) {
	members, err := reader.ControlMembersWithPrefix(pkgName + "_")
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := db.RegisterHook(name, members[name]); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// Invoke runs every hook in scripts not scoped to a different package
// than pkg (global hooks always run; package-owned hooks only run
// when pkg matches), passing action, pkg and version as positional
// arguments (§4.8). A failing validate-class hook aborts immediately;
// a failing non-validate hook is logged and invocation continues,
// since hooks are advisory outside the validate class.
func Invoke(runner script.Runner, scripts []Script, log zerolog.Logger, action, pkg, version string) error {
	for _, h := range scripts {
		if h.Pkg != "" && h.Pkg != pkg {
			continue
		}

		err := runner.Run(h.Path, action, pkg, version)
		if err != nil {
			if h.Validate {
				return err
			}
			log.Warn().Err(err).Str("hook", h.Name).Msg("hook reported an error")
		}
	}
	return nil
}
