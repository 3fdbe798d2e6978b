package executor

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// safeJoin resolves rel under root and re-checks the result still
// lies under root once any existing symlinks in its directory chain
// are resolved — the prefix check and symlink re-check §5 requires
// before every write: "the executor must never write outside the
// target root ... and never follow symlinks out of the target for
// unpacking (prefix re-check after realpath resolution)".
func safeJoin(root, rel string) (string, error) {
	root = filepath.Clean(root)
	clean := filepath.Join(root, filepath.Clean(string(filepath.Separator)+rel))

	if !withinRoot(root, clean) {
		return "", errors.Errorf("executor: path %q escapes target root %q", rel, root)
	}

	resolvedDir, err := filepath.EvalSymlinks(filepath.Dir(clean))
	if err == nil && !withinRoot(root, resolvedDir) {
		return "", errors.Errorf("executor: path %q escapes target root %q via symlink", rel, root)
	}

	return clean, nil
}

func withinRoot(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
