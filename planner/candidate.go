// Package planner implements the installation planner/resolver (C7):
// candidate selection, constraint satisfaction via a SAT encoding,
// Pre-Depends-aware topological ordering, and auto-remove.
package planner

import (
	"sort"

	"github.com/wpkg-go/wpkg/admindb"
	"github.com/wpkg-go/wpkg/control"
	"github.com/wpkg-go/wpkg/debian"
	"github.com/wpkg-go/wpkg/repoindex"
)

// Candidate is one (name, version, architecture) triple the planner
// can choose to select, together with enough metadata to check
// constraints and order the plan (§4.6 "Candidate set").
type Candidate struct {
	Name          string
	Version       string
	Architecture  string
	Control       control.Stanza
	ArchivePath   string
	Installed     bool
	AutoInstalled bool
	Virtual       bool
}

// Key identifies a candidate uniquely, used as a SAT variable name and
// a graph node id.
func (c *Candidate) Key() string {
	return c.Name + "=" + c.Version + "=" + c.Architecture
}

// Depends returns the candidate's Depends clauses.
func (c *Candidate) Depends() ([]debian.Clause, error) {
	return debian.ParseDependencyList(c.Control["Depends"])
}

// PreDepends returns the candidate's Pre-Depends clauses.
func (c *Candidate) PreDepends() ([]debian.Clause, error) {
	return debian.ParseDependencyList(c.Control["Pre-Depends"])
}

// Conflicts returns the candidate's Conflicts clauses.
func (c *Candidate) Conflicts() ([]debian.Clause, error) {
	return debian.ParseDependencyList(c.Control["Conflicts"])
}

// Breaks returns the candidate's Breaks clauses.
func (c *Candidate) Breaks() ([]debian.Clause, error) {
	return debian.ParseDependencyList(c.Control["Breaks"])
}

// Replaces returns the set of package names this candidate declares
// Replaces for, used to excuse an otherwise-fatal Conflicts/file
// overlap.
func (c *Candidate) Replaces() (map[string]bool, error) {
	clauses, err := debian.ParseDependencyList(c.Control["Replaces"])
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(clauses))
	for _, clause := range clauses {
		for _, alt := range clause {
			names[alt.Pkg] = true
		}
	}
	return names, nil
}

// Universe is the full candidate set known to the planner, grouped by
// package name (§4.6 "Candidate set": installed version ∪ repo/
// archive versions ∪ Provides-declared virtual candidates).
type Universe struct {
	byName map[string][]*Candidate
}

// NewUniverse builds a Universe from the administrative database's
// installed records and the repository index's candidates, expanding
// Provides declarations into virtual candidates.
func NewUniverse(installed []*admindb.Record, repoCandidates []repoindex.Candidate, explicit []*Candidate) (*Universe, error) {
	u := &Universe{byName: make(map[string][]*Candidate)}

	for _, r := range installed {
		if r.State == admindb.StateNotInstalled {
			continue
		}
		u.add(&Candidate{
			Name:          r.Name,
			Version:       r.Version,
			Architecture:  r.Architecture,
			Control:       r.Control,
			Installed:     true,
			AutoInstalled: r.AutoInstalled,
		})
	}

	for _, rc := range repoCandidates {
		u.add(&Candidate{
			Name:         rc.Control["Package"],
			Version:      rc.Control["Version"],
			Architecture: rc.Control["Architecture"],
			Control:      rc.Control,
			ArchivePath:  rc.Path,
		})
	}

	for _, c := range explicit {
		u.add(c)
	}

	if err := u.expandProvides(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Universe) add(c *Candidate) {
	u.byName[c.Name] = append(u.byName[c.Name], c)
}

// expandProvides materializes a virtual candidate for each distinct
// name a real candidate's Provides field names, at the providing
// package's own version unless the Provides entry pins an explicit
// version (§4.6).
func (u *Universe) expandProvides() error {
	var virtuals []*Candidate

	for _, candidates := range u.byName {
		for _, c := range candidates {
			clauses, err := debian.ParseDependencyList(c.Control["Provides"])
			if err != nil {
				return err
			}
			for _, clause := range clauses {
				for _, alt := range clause {
					version := c.Version
					if alt.Relation == debian.VersionEqual && alt.Version != "" {
						version = alt.Version
					}
					virtuals = append(virtuals, &Candidate{
						Name:         alt.Pkg,
						Version:      version,
						Architecture: c.Architecture,
						Virtual:      true,
					})
				}
			}
		}
	}

	for _, v := range virtuals {
		u.add(v)
	}
	return nil
}

// Candidates returns every known candidate for name, installed first.
func (u *Universe) Candidates(name string) []*Candidate {
	return u.byName[name]
}

// Names returns every package name with at least one candidate,
// sorted for deterministic iteration.
func (u *Universe) Names() []string {
	names := make([]string, 0, len(u.byName))
	for name := range u.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
