package executor

import (
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"

	"github.com/wpkg-go/wpkg/utils"
)

// needsSelfUpgrade reports whether targetPath, a file this unit is
// about to overwrite, is the binary currently running as the executor
// (§4.7 "Self-upgrade").
func needsSelfUpgrade(targetPath string) (bool, error) {
	self, err := os.Executable()
	if err != nil {
		return false, errors.Wrap(err, "executor: resolving own executable path")
	}
	self, err = filepath.EvalSymlinks(self)
	if err != nil {
		return false, errors.Wrap(err, "executor: resolving own executable path")
	}

	target, err := filepath.EvalSymlinks(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "executor: resolving %s", targetPath)
	}

	return self == target, nil
}

// reexecSelf copies the running executable to a fresh temporary path
// and replaces the current process image with it via syscall.Exec, so
// the original path can be safely overwritten by the unit that
// triggered the self-upgrade. syscall.Exec never returns on success:
// this process ends here and the staged copy takes over with the same
// pid, argv and environment, and runs the same command again from the
// start. No in-process state crosses the exec boundary, and the phase
// markers this process left under <admin>/updates/ are not used to
// resume the unit.
func reexecSelf() error {
	self, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "executor: resolving own executable path")
	}

	tmp, err := os.CreateTemp("", "wpkg-selfupgrade-*")
	if err != nil {
		return errors.Wrap(err, "executor: creating self-upgrade staging file")
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := utils.CopyFile(self, tmpPath); err != nil {
		return errors.Wrap(err, "executor: staging a copy of the running executable")
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		return errors.Wrap(err, "executor: making staged executable runnable")
	}

	argv := append([]string{tmpPath}, os.Args[1:]...)
	err = syscall.Exec(tmpPath, argv, os.Environ())
	return errors.Wrap(err, "executor: re-executing from staged copy")
}
