package executor

import (
	"os"

	"github.com/pkg/errors"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/wpkgerr"
)

// removeUnit implements §4.7 "Remove vs purge". Remove deletes owned
// non-conffile files and transitions to config-files; purge also
// deletes conffiles and their wpkg-* siblings, then drops the admin
// record entirely.
func (e *Executor) removeUnit(seq int, u Unit, purge bool) error {
	r := u.Old
	if r == nil {
		r = e.DB.Get(unitName(u), e.Arch)
	}
	if r == nil {
		return errors.Errorf("executor: no installed record for %s", unitName(u))
	}

	if essential, err := r.Essential(); err != nil {
		return err
	} else if essential && !e.Force.RemoveEssential {
		return &wpkgerr.Constraint{Failures: []string{r.Name + " is Essential: yes (use force-remove-essential)"}}
	}

	phase := admindb.PhaseRemoving
	if purge {
		phase = admindb.PhasePurging
	}
	if err := e.DB.MarkPhase(seq, r.Name, phase); err != nil {
		return err
	}

	if path, ok := resolveMaintainerScript(e.DB.Dir()+"/info", r.Name, "prerm", r.Architecture); ok {
		action := "remove"
		if purge {
			action = "purge"
		}
		if err := e.Runner.Run(path, action); err != nil {
			return errors.Wrapf(err, "prerm %s failed for %s", action, r.Name)
		}
	}

	conffiles := make(map[string]bool, len(r.Conffiles))
	for _, cf := range r.Conffiles {
		conffiles[cf.Path] = true
	}

	for i := len(r.Files) - 1; i >= 0; i-- {
		f := r.Files[i]
		if conffiles[f.Path] && !purge {
			continue
		}
		path, err := safeJoin(e.Root, f.Path)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "executor: removing %s", path)
		}
	}

	if purge {
		for _, cf := range r.Conffiles {
			path, err := safeJoin(e.Root, cf.Path)
			if err != nil {
				return err
			}
			for _, suffix := range []string{"", ".wpkg-new", ".wpkg-old", ".wpkg-user"} {
				if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
					return errors.Wrapf(err, "executor: purging %s", path+suffix)
				}
			}
		}
	}

	rmAction := "remove"
	if purge {
		rmAction = "purge"
	}
	if path, ok := resolveMaintainerScript(e.DB.Dir()+"/info", r.Name, "postrm", r.Architecture); ok {
		if err := e.Runner.Run(path, rmAction); err != nil {
			return errors.Wrapf(err, "postrm %s failed for %s", rmAction, r.Name)
		}
	}

	if purge {
		for _, name := range r.HookNames {
			if err := e.DB.RemoveHook(name); err != nil {
				return err
			}
		}
		if err := e.DB.Remove(r.Name, r.Architecture); err != nil {
			return err
		}
	} else {
		r.State = admindb.StateConfigFiles
		r.Files = nil
		r.Scripts = admindb.Scripts{}
		if err := e.DB.Put(r); err != nil {
			return err
		}
	}

	return e.DB.ClearPhase(seq, phase)
}
