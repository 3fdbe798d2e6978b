package executor

import (
	"os"
	"path/filepath"

	"github.com/wpkg-go/wpkg/script"
)

// resolveMaintainerScript finds the OS-appropriate variant of a
// maintainer script persisted flat under <admin>/info/<pkg>.<name>
// (or "<pkg>.<name>.bat"), the naming admindb.writeInfoFiles uses —
// distinct from script.Resolve's "<dir>/<name>" hook layout, so it is
// reimplemented here rather than reused (§4.7 "Script invocation").
func resolveMaintainerScript(infoDir, pkg, name, arch string) (string, bool) {
	family := script.FamilyForArchitecture(arch)

	plain := filepath.Join(infoDir, pkg+"."+name)
	bat := plain + ".bat"

	tryOrder := []string{plain, bat}
	if family == script.FamilyWindows {
		tryOrder = []string{bat, plain}
	}

	for _, candidate := range tryOrder {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
