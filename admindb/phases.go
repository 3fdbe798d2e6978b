package admindb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Phase names recorded under <admin>/updates/<seq>.<phase>, matching
// the executor's per-unit steps (§4.7, §7 "On crash mid-unit, the next
// invocation reads <admin>/updates/ to resume or undo").
const (
	PhaseUnpacking  = "unpacking"
	PhaseUnpacked   = "unpacked"
	PhaseConfigured = "configured"
	PhaseRemoving   = "removing"
	PhasePurging    = "purging"
)

// PendingUnit describes a crash marker found under updates/ at
// startup: a unit whose executor phase did not reach completion.
type PendingUnit struct {
	Seq     int
	Package string
	Phase   string
}

// MarkPhase records that package has entered phase for transaction
// seq, via the same write-rename discipline as other admindb writes.
// The executor calls this immediately before and after each mutating
// step so a crash leaves an unambiguous marker behind (P8).
func (db *DB) MarkPhase(seq int, pkg, phase string) error {
	name := fmt.Sprintf("%d.%s", seq, phase)
	return writeAtomic(filepath.Join(db.updatesDir(), name), []byte(pkg+"\n"))
}

// ClearPhase removes a marker once its phase has been durably
// superseded (e.g. "unpacking" once "unpacked" is recorded).
func (db *DB) ClearPhase(seq int, phase string) error {
	name := fmt.Sprintf("%d.%s", seq, phase)
	err := os.Remove(filepath.Join(db.updatesDir(), name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "admindb: clearing phase marker %s", name)
	}
	return nil
}

// PendingUnits lists every marker left under updates/, in sequence
// order. NextSeq uses it to stay above every marker on disk; nothing
// in the core resumes or rolls back the listed units.
func (db *DB) PendingUnits() ([]PendingUnit, error) {
	entries, err := os.ReadDir(db.updatesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "admindb: reading updates directory")
	}

	var pending []PendingUnit
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".wpkg-new") {
			continue
		}
		parts := strings.SplitN(e.Name(), ".", 2)
		if len(parts) != 2 {
			continue
		}
		seq, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		body, err := os.ReadFile(filepath.Join(db.updatesDir(), e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "admindb: reading marker %s", e.Name())
		}
		pending = append(pending, PendingUnit{
			Seq:     seq,
			Package: strings.TrimSpace(string(body)),
			Phase:   parts[1],
		})
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].Seq < pending[j].Seq })
	return pending, nil
}

// NextSeq returns a transaction sequence number higher than any
// marker currently on disk, so resumed and fresh transactions never
// collide.
func (db *DB) NextSeq() (int, error) {
	pending, err := db.PendingUnits()
	if err != nil {
		return 0, err
	}
	max := 0
	for _, p := range pending {
		if p.Seq > max {
			max = p.Seq
		}
	}
	return max + 1, nil
}

// RegisterHook installs a hook script body under <admin>/hooks/name
// (--add-hooks, §4.8).
func (db *DB) RegisterHook(name string, body []byte) error {
	path := filepath.Join(db.hooksDir(), name)
	if err := writeAtomic(path, body); err != nil {
		return err
	}
	return os.Chmod(path, 0755)
}

// RemoveHook deletes a registered hook (--remove-hooks).
func (db *DB) RemoveHook(name string) error {
	err := os.Remove(filepath.Join(db.hooksDir(), name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "admindb: removing hook %s", name)
	}
	return nil
}

// ListHooks returns the names of every hook registered under
// <admin>/hooks/ (--list-hooks).
func (db *DB) ListHooks() ([]string, error) {
	entries, err := os.ReadDir(db.hooksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "admindb: reading hooks directory")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
