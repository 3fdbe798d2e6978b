package planner

import (
	"sort"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/debian"
)

// AutoRemove computes the fixed point of §4.7 "Auto-remove": a record
// is eligible once it is auto-installed and no remaining installed
// record still depends (Depends or Pre-Depends) on it. Grounded on
// the reachability walk pattern of aptly's deb.FindDanglingReferences,
// generalized from reference-counting GC to dependency-reachability
// GC.
func AutoRemove(records []*admindb.Record) ([]*admindb.Record, error) {
	byName := make(map[string]*admindb.Record, len(records))
	live := make(map[string]bool, len(records))
	for _, r := range records {
		if r.State == admindb.StateNotInstalled {
			continue
		}
		byName[r.Name] = r
		live[r.Name] = true
	}

	for {
		reachable, err := reachableFromManual(byName, live)
		if err != nil {
			return nil, err
		}

		removedAny := false
		for name := range live {
			r := byName[name]
			if r.AutoInstalled && !reachable[name] {
				delete(live, name)
				removedAny = true
			}
		}
		if !removedAny {
			break
		}
	}

	var eligible []*admindb.Record
	for _, r := range records {
		if r.State != admindb.StateNotInstalled && r.AutoInstalled && !live[r.Name] {
			eligible = append(eligible, r)
		}
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Name < eligible[j].Name })
	return eligible, nil
}

// reachableFromManual walks Depends/Pre-Depends from every
// manually-installed (non-auto) live record, marking everything it
// transitively needs.
func reachableFromManual(byName map[string]*admindb.Record, live map[string]bool) (map[string]bool, error) {
	reachable := make(map[string]bool, len(byName))
	var queue []string

	for name := range live {
		if r := byName[name]; !r.AutoInstalled {
			if !reachable[name] {
				reachable[name] = true
				queue = append(queue, name)
			}
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		r := byName[name]

		depClauses, err := debian.ParseDependencyList(r.Control["Depends"])
		if err != nil {
			return nil, err
		}
		preClauses, err := debian.ParseDependencyList(r.Control["Pre-Depends"])
		if err != nil {
			return nil, err
		}

		for _, clause := range append(depClauses, preClauses...) {
			for _, alt := range clause {
				if !live[alt.Pkg] {
					continue
				}
				if !reachable[alt.Pkg] {
					reachable[alt.Pkg] = true
					queue = append(queue, alt.Pkg)
				}
			}
		}
	}

	return reachable, nil
}
