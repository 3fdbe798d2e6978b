package planner

import (
	"fmt"
	"sort"

	"github.com/wpkg-go/wpkg/control"
	"github.com/wpkg-go/wpkg/debian"
	"github.com/wpkg-go/wpkg/wpkgerr"
)

// requirement ties an accumulated version constraint on a name back to
// the requester that imposed it, for error reporting.
type requirement struct {
	requester string
	alt       debian.Alternative
}

// Resolve computes the candidate selection for a requested set of
// package names (§4.6): transitively discovers every dependency,
// picks the preferred candidate per name among those satisfying every
// accumulated constraint, and runs the SAT consistency check over the
// resulting fixed assignment. Every unsatisfiable clause is
// collected rather than stopping at the first (§7).
func Resolve(u *Universe, wanted []string, targetArch string) (map[string]*Candidate, error) {
	selection := make(map[string]*Candidate)
	requirements := make(map[string][]requirement)
	var failures []string

	queue := append([]string(nil), wanted...)
	queued := make(map[string]bool)
	for _, name := range wanted {
		queued[name] = true
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if _, done := selection[name]; done {
			continue
		}

		candidates := acceptableCandidates(u.Candidates(name), requirements[name], targetArch)
		if len(candidates) == 0 {
			failures = append(failures, fmt.Sprintf("%s: no candidate satisfies %s", name, describeRequirements(requirements[name])))
			continue
		}

		chosen := preferCandidate(candidates)
		selection[name] = chosen

		depClauses, err := chosen.Depends()
		if err != nil {
			return nil, err
		}
		preClauses, err := chosen.PreDepends()
		if err != nil {
			return nil, err
		}

		for _, clause := range append(depClauses, preClauses...) {
			if len(clause) == 1 {
				alt := clause[0]
				requirements[alt.Pkg] = append(requirements[alt.Pkg], requirement{requester: name, alt: alt})
				if !queued[alt.Pkg] {
					queue = append(queue, alt.Pkg)
					queued[alt.Pkg] = true
				}
				continue
			}

			// An OR-group only commits a constraint once an already
			// selected alternative is known to satisfy it; otherwise
			// pursue the first alternative with any viable candidate
			// (not all of them, to avoid failing discovery on a
			// sibling that simply doesn't exist) and leave final
			// verification to the SAT pass over the fixed selection.
			satisfied := false
			for _, alt := range clause {
				if c, ok := selection[alt.Pkg]; ok && alt.Satisfies(c.Name, c.Version, c.Architecture) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				chosenAlt := false
				for _, alt := range clause {
					if len(u.Candidates(alt.Pkg)) == 0 {
						continue
					}
					requirements[alt.Pkg] = append(requirements[alt.Pkg], requirement{requester: name, alt: alt})
					if !queued[alt.Pkg] {
						queue = append(queue, alt.Pkg)
						queued[alt.Pkg] = true
					}
					chosenAlt = true
					break
				}
				if !chosenAlt {
					failures = append(failures, fmt.Sprintf("%s: no alternative in clause %s has any candidate", name, clause.String()))
				}
			}
		}
	}

	if len(failures) > 0 {
		return nil, &wpkgerr.Constraint{Failures: failures}
	}

	if err := solveSelection(selection); err != nil {
		return nil, err
	}

	return selection, nil
}

// acceptableCandidates filters candidates down to those matching the
// target architecture and every accumulated version requirement.
func acceptableCandidates(candidates []*Candidate, reqs []requirement, targetArch string) []*Candidate {
	var out []*Candidate
	for _, c := range candidates {
		if !control.ArchitectureCompatible(c.Architecture, targetArch) {
			continue
		}
		ok := true
		for _, r := range reqs {
			if !r.alt.Satisfies(c.Name, c.Version, c.Architecture) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// preferCandidate implements §4.6 "Version preference": already
// installed first, else highest version, ties broken by archive path
// lexicographic order.
func preferCandidate(candidates []*Candidate) *Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best
}

func better(a, b *Candidate) bool {
	if a.Installed != b.Installed {
		return a.Installed
	}
	if cmp := debian.CompareVersions(a.Version, b.Version); cmp != 0 {
		return cmp > 0
	}
	return a.ArchivePath < b.ArchivePath
}

func describeRequirements(reqs []requirement) string {
	parts := make([]string, 0, len(reqs))
	for _, r := range reqs {
		parts = append(parts, fmt.Sprintf("%s (from %s)", r.alt.String(), r.requester))
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return "no constraints"
	}
	return fmt.Sprintf("%v", parts)
}
