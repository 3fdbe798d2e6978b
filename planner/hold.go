package planner

import (
	"fmt"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/wpkgerr"
)

// CheckHold enforces P6: no plan may change the version of a package
// whose Selection is SelectionHold, unless forceHold is set (§4.6,
// §8 scenario 5).
func CheckHold(selection map[string]*Candidate, installed []*admindb.Record, forceHold bool) error {
	if forceHold {
		return nil
	}

	held := make(map[string]*admindb.Record)
	for _, r := range installed {
		if r.Selection == admindb.SelectionHold {
			held[r.Name] = r
		}
	}

	var failures []string
	for name, c := range selection {
		r, ok := held[name]
		if !ok || c.Version == r.Version {
			continue
		}
		failures = append(failures, fmt.Sprintf("%s is held at %s, plan selects %s (use force-hold)", name, r.Version, c.Version))
	}
	if len(failures) > 0 {
		return &wpkgerr.Constraint{Failures: failures}
	}
	return nil
}
