// Package admindb implements the administrative database (C5): the
// persistent per-package state kept under the admin directory
// (status file, info/*, updates/*, hooks/*) described in spec §4.4
// and §6, including the write-rename discipline and the advisory
// cross-process lock from §5.
package admindb

import (
	"github.com/wpkg-go/wpkg/control"
)

// State is a package's install-state, §3 "Installed-package record".
type State string

// States in their lifecycle order (§3 "Lifecycle").
const (
	StateNotInstalled    State = "not-installed"
	StateConfigFiles     State = "config-files"
	StateHalfInstalled   State = "half-installed"
	StateUnpacked        State = "unpacked"
	StateHalfConfigured  State = "half-configured"
	StateTriggersAwaited State = "triggers-awaited"
	StateTriggersPending State = "triggers-pending"
	StateInstalled       State = "installed"
)

// Selection is the user-level intent, orthogonal to State (§3).
type Selection string

// Selections recognized by set-selection (§6).
const (
	SelectionInstall   Selection = "install"
	SelectionHold      Selection = "hold"
	SelectionDeinstall Selection = "deinstall"
	SelectionPurge     Selection = "purge"
)

// FileEntry is one path owned by an installed package, carrying
// enough metadata to verify (I2) and to remove/purge it later.
type FileEntry struct {
	Path       string
	Typeflag   byte
	Mode       int64
	UID, GID   int
	LinkTarget string
}

// ConffileDigest is one row of the conffile digest table (I3):
// the digest the package shipped, independent of what is currently
// on disk (computed live by the executor when needed).
type ConffileDigest struct {
	Path       string
	PackagedMD5 string
}

// Scripts holds the maintainer script bodies packaged with a record,
// keyed by script file name ("preinst", "postinst", "prerm", "postrm",
// "validate", each optionally with a ".bat" suffix for the Windows
// variant); the executor picks the variant for the architecture
// family when it runs one.
type Scripts map[string][]byte

// Record is the persisted state for one (name, architecture) pair
// (§3 "Installed-package record").
type Record struct {
	Name         string
	Version      string
	Architecture string

	State     State
	Selection Selection

	// AutoInstalled marks a record that entered the system only to
	// satisfy another package's dependency (§4.7 Auto-remove).
	AutoInstalled bool

	Control control.Stanza

	Files     []FileEntry
	Conffiles []ConffileDigest
	Scripts   Scripts

	// HookNames lists the package-declared hook scripts discovered in
	// its WPKG/ control tree, registered for invocation per §4.8.
	HookNames []string
}

// Key identifies a record by (name, architecture) — I1's uniqueness
// scope.
func (r *Record) Key() string {
	return r.Name + ":" + r.Architecture
}

// Essential reports whether the record is marked Essential: yes in
// its control stanza (I6).
func (r *Record) Essential() (bool, error) {
	if r.Control == nil {
		return false, nil
	}
	return r.Control.Bool("Essential")
}
