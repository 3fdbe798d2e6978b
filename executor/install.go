package executor

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/archive"
	"github.com/wpkg-go/wpkg/debian"
	"github.com/wpkg-go/wpkg/hooks"
	"github.com/wpkg-go/wpkg/planner"
	"github.com/wpkg-go/wpkg/utils"
	"github.com/wpkg-go/wpkg/wpkgerr"
)

// installUnit runs the install/upgrade phase sequence of §4.7 steps
// a-f for one unit. When configure is false (the "unpack" verb), it
// stops after step d, leaving the record at StateUnpacked for a later
// "configure" unit to finish.
func (e *Executor) installUnit(seq int, u Unit, configure bool) error {
	c := u.Candidate
	reader := archive.NewReader(u.Archive)

	if u.Old != nil && !e.Force.Downgrade && debian.CompareVersions(c.Version, u.Old.Version) < 0 {
		return &wpkgerr.Constraint{Failures: []string{
			"refusing to downgrade " + c.Name + " from " + u.Old.Version + " to " + c.Version + " (use force-downgrade)",
		}}
	}

	// a. prerm upgrade, with abort-upgrade rollback on failure.
	if u.Old != nil {
		if path, ok := resolveMaintainerScript(e.DB.Dir()+"/info", u.Old.Name, "prerm", u.Old.Architecture); ok {
			if err := e.Runner.Run(path, "upgrade", c.Version); err != nil {
				e.rollbackAbortUpgrade(u.Old)
				return errors.Wrapf(err, "prerm upgrade failed for %s", u.Old.Name)
			}
		}
	}

	if err := e.DB.MarkPhase(seq, c.Name, admindb.PhaseUnpacking); err != nil {
		return err
	}

	// b. Extract data tree into a staging location keyed to the unit id.
	stageDir, err := os.MkdirTemp("", "wpkg-stage-")
	if err != nil {
		return errors.Wrap(err, "executor: creating staging directory")
	}
	defer os.RemoveAll(stageDir)

	conffilePaths, err := readConffileList(reader)
	if err != nil {
		return err
	}

	var extracted []archive.File
	err = reader.ExtractDataTo(stageDir, func(f archive.File, content io.Reader) error {
		dest := filepath.Join(stageDir, filepath.FromSlash(f.Name))
		if f.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if f.IsSymlink() {
			extracted = append(extracted, f)
			return os.Symlink(f.LinkTarget, dest)
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(f.Mode))
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, content); err != nil {
			out.Close()
			return err
		}
		extracted = append(extracted, f)
		return out.Close()
	})
	if err != nil {
		return err
	}

	if err := e.checkFileOwnership(c, u.Old, extracted); err != nil {
		return err
	}

	// c. New preinst install|upgrade, with abort-upgrade rollback on
	// failure. The new scripts reach info/ only at step d, so the
	// archive's preinst is run from a temporary copy.
	preinstArgs := []string{"install"}
	if u.Old != nil {
		preinstArgs = []string{"upgrade", u.Old.Version}
	}
	preinstDir, err := os.MkdirTemp("", "wpkg-preinst-")
	if err != nil {
		return errors.Wrap(err, "executor: creating preinst directory")
	}
	defer os.RemoveAll(preinstDir)
	newScripts := readScripts(reader)
	for _, ext := range []string{"", ".bat"} {
		if body, ok := newScripts["preinst"+ext]; ok {
			if err := os.WriteFile(filepath.Join(preinstDir, c.Name+".preinst"+ext), body, 0755); err != nil {
				return errors.Wrap(err, "executor: staging preinst")
			}
		}
	}
	if path, ok := resolveMaintainerScript(preinstDir, c.Name, "preinst", c.Architecture); ok {
		if err := e.Runner.Run(path, preinstArgs...); err != nil {
			e.rollbackAbortUpgrade(u.Old)
			return errors.Wrapf(err, "preinst failed for %s", c.Name)
		}
	}

	// d. Atomically move staged files into place, applying the
	// conffile protocol, then record the unpacked state.
	conffiles, fileEntries, err := e.commitStagedFiles(u.Old, stageDir, extracted, conffilePaths)
	if err != nil {
		return err
	}

	// Package-declared hooks (§4.8): re-registering on upgrade drops
	// any hook the new version no longer ships before adding its own.
	if u.Old != nil {
		for _, name := range u.Old.HookNames {
			if err := e.DB.RemoveHook(name); err != nil {
				return err
			}
		}
	}
	hookNames, err := hooks.ExtractPackageHooks(e.DB, reader, c.Name)
	if err != nil {
		return err
	}

	record := &admindb.Record{
		Name:          c.Name,
		Version:       c.Version,
		Architecture:  c.Architecture,
		State:         admindb.StateUnpacked,
		Selection:     admindb.SelectionInstall,
		AutoInstalled: c.AutoInstalled,
		Control:       c.Control,
		Files:         fileEntries,
		Conffiles:     conffiles,
		Scripts:       readScripts(reader),
		HookNames:     hookNames,
	}
	if u.Old != nil {
		record.AutoInstalled = u.Old.AutoInstalled
	}

	if err := e.DB.Put(record); err != nil {
		return err
	}
	if err := e.DB.ClearPhase(seq, admindb.PhaseUnpacking); err != nil {
		return err
	}
	if err := e.DB.MarkPhase(seq, c.Name, admindb.PhaseUnpacked); err != nil {
		return err
	}

	if !configure {
		return nil
	}

	// e. postinst configure.
	configureArg := ""
	if u.Old != nil {
		configureArg = u.Old.Version
	}
	if path, ok := resolveMaintainerScript(e.DB.Dir()+"/info", c.Name, "postinst", c.Architecture); ok {
		if err := e.Runner.Run(path, "configure", configureArg); err != nil {
			return errors.Wrapf(err, "postinst configure failed for %s", c.Name)
		}
	}

	// f. Record installed state.
	record.State = admindb.StateInstalled
	if err := e.DB.Put(record); err != nil {
		return err
	}
	return e.DB.ClearPhase(seq, admindb.PhaseUnpacked)
}

// resumeConfigure resumes a unit found at "unpacked" by a crash
// recovery pass: it only needs to rerun postinst configure and flip
// the record to installed.
func (e *Executor) resumeConfigure(seq int, u Unit) error {
	r := u.Old
	if r == nil {
		r = e.DB.Get(unitName(u), e.Arch)
	}
	if r == nil {
		return errors.Errorf("executor: no unpacked record for %s to resume", unitName(u))
	}
	if path, ok := resolveMaintainerScript(e.DB.Dir()+"/info", r.Name, "postinst", r.Architecture); ok {
		if err := e.Runner.Run(path, "configure", ""); err != nil {
			return errors.Wrapf(err, "postinst configure failed for %s", r.Name)
		}
	}
	r.State = admindb.StateInstalled
	if err := e.DB.Put(r); err != nil {
		return err
	}
	return e.DB.ClearPhase(seq, admindb.PhaseUnpacked)
}

// rollbackAbortUpgrade runs the old package's postinst abort-upgrade
// when a later step in an upgrade fails (§4.7 steps a, c).
func (e *Executor) rollbackAbortUpgrade(old *admindb.Record) {
	if old == nil {
		return
	}
	path, ok := resolveMaintainerScript(e.DB.Dir()+"/info", old.Name, "postinst", old.Architecture)
	if !ok {
		return
	}
	if err := e.Runner.Run(path, "abort-upgrade", old.Version); err != nil {
		e.Log.Error().Err(err).Str("package", old.Name).Msg("postinst abort-upgrade failed")
	}
}

// checkFileOwnership enforces §6 force-overwrite: a staged path
// already owned by a different installed package is fatal unless
// that package is named in c's Replaces field, or force-overwrite is
// set. Ownership is resolved through the DB's path-ownership cache
// (admindb/cache.go) rather than scanning every installed record's
// Files per unit.
func (e *Executor) checkFileOwnership(c *planner.Candidate, old *admindb.Record, extracted []archive.File) error {
	replaces, err := c.Replaces()
	if err != nil {
		return err
	}

	var failures []string
	for _, f := range extracted {
		rel := "/" + strings.TrimPrefix(f.Name, "/")
		owner, err := e.DB.Owner(rel)
		if err != nil {
			return err
		}
		if owner == "" || owner == c.Name || (old != nil && owner == old.Name) || replaces[owner] {
			continue
		}
		if e.Force.Overwrite {
			continue
		}
		failures = append(failures, rel+" is owned by "+owner)
	}
	if len(failures) > 0 {
		return &wpkgerr.Constraint{Failures: failures}
	}
	return nil
}

func readConffileList(reader *archive.Reader) (map[string]bool, error) {
	body, err := reader.ControlMember("conffiles")
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set["/"+strings.TrimPrefix(line, "/")] = true
		}
	}
	return set, nil
}

func readScripts(reader *archive.Reader) admindb.Scripts {
	scripts := admindb.Scripts{}
	for _, name := range []string{"preinst", "postinst", "prerm", "postrm", "validate"} {
		for _, ext := range []string{"", ".bat"} {
			body, err := reader.ControlMember(name + ext)
			if err == nil && body != nil {
				scripts[name+ext] = body
			}
		}
	}
	return scripts
}

// commitStagedFiles atomically moves every extracted entry from
// stageDir into the target root (prefix-checked via safeJoin), running
// the conffile protocol for paths in conffilePaths and the
// self-upgrade check for everything else.
func (e *Executor) commitStagedFiles(old *admindb.Record, stageDir string, extracted []archive.File, conffilePaths map[string]bool) ([]admindb.ConffileDigest, []admindb.FileEntry, error) {
	var conffiles []admindb.ConffileDigest
	var files []admindb.FileEntry

	oldDigests := make(map[string]string)
	if old != nil {
		for _, cf := range old.Conffiles {
			oldDigests[cf.Path] = cf.PackagedMD5
		}
	}

	sort.Slice(extracted, func(i, j int) bool { return extracted[i].Name < extracted[j].Name })

	for _, f := range extracted {
		rel := "/" + strings.TrimPrefix(f.Name, "/")
		dest, err := safeJoin(e.Root, rel)
		if err != nil {
			return nil, nil, err
		}
		staged := filepath.Join(stageDir, filepath.FromSlash(f.Name))

		if conffilePaths[rel] {
			digest, err := e.applyConffile(dest, staged, oldDigests[rel])
			if err != nil {
				return nil, nil, err
			}
			conffiles = append(conffiles, admindb.ConffileDigest{Path: rel, PackagedMD5: digest})
			files = append(files, fileEntryFor(f, rel))
			continue
		}

		if selfUpgrade, err := needsSelfUpgrade(dest); err != nil {
			return nil, nil, err
		} else if selfUpgrade {
			if err := reexecSelf(); err != nil {
				return nil, nil, errors.Wrap(err, "executor: self-upgrade re-exec failed")
			}
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return nil, nil, err
		}
		if err := moveInto(staged, dest); err != nil {
			return nil, nil, err
		}
		files = append(files, fileEntryFor(f, rel))
	}

	return conffiles, files, nil
}

func fileEntryFor(f archive.File, rel string) admindb.FileEntry {
	return admindb.FileEntry{
		Path:       rel,
		Typeflag:   f.Typeflag,
		Mode:       f.Mode,
		UID:        f.UID,
		GID:        f.GID,
		LinkTarget: f.LinkTarget,
	}
}

// applyConffile implements the 4-way digest comparison and returns
// the digest to persist as the new packaged digest for this path.
func (e *Executor) applyConffile(dest, staged, oldDigest string) (string, error) {
	newSum, err := utils.ChecksumsForFile(staged)
	if err != nil {
		return "", errors.Wrapf(err, "executor: hashing staged conffile %s", staged)
	}

	onDisk := ""
	if existing, err := utils.ChecksumsForFile(dest); err == nil {
		onDisk = existing.MD5
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "executor: hashing on-disk conffile %s", dest)
	}

	action := decideConffileAction(onDisk, oldDigest, newSum.MD5)
	if onDisk == "" {
		action = conffileReplace
	}

	switch action {
	case conffileReplace, conffileAdopt:
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return "", err
		}
		if err := moveInto(staged, dest); err != nil {
			return "", err
		}
	case conffileNone:
		// nothing to do; on-disk file already matches.
	case conffileKeep:
		if e.Force.Overwrite {
			if err := moveInto(staged, dest); err != nil {
				return "", err
			}
		} else if err := utils.CopyFile(staged, dest+".wpkg-new"); err != nil {
			return "", errors.Wrapf(err, "executor: writing %s.wpkg-new", dest)
		}
	}
	return newSum.MD5, nil
}

// moveInto renames src to dest when possible, falling back to a copy
// plus remove across filesystem boundaries (src and dest's parent may
// not share a device when staging lives under a different tmpfs/disk
// than the target root).
func moveInto(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := utils.CopyFile(src, dest); err != nil {
		return errors.Wrapf(err, "executor: copying %s to %s", src, dest)
	}
	return os.Remove(src)
}
