package planner

import (
	"fmt"
	"sort"

	"github.com/crillab/gophersat/bf"

	"github.com/wpkg-go/wpkg/debian"
	"github.com/wpkg-go/wpkg/wpkgerr"
)

// buildFormulas compiles the Depends/Pre-Depends/Conflicts/Breaks of
// every candidate in selection into a boolean formula, grounded on
// the mudler-luet BuildFormula pattern: a dependency edge A -> B
// becomes Or(Not(A), And(A, B)); a conflict edge A -/- B becomes
// Or(Not(A), And(A, Not(B))). Every selected candidate is asserted
// true, so the formula only ever checks consistency of a fixed
// assignment (version choice happens before this call, in Resolve).
func buildFormulas(selection map[string]*Candidate) ([]bf.Formula, error) {
	var formulas []bf.Formula

	for name, c := range selection {
		A := bf.Var(c.Key())
		formulas = append(formulas, A)

		depClauses, err := c.Depends()
		if err != nil {
			return nil, err
		}
		preClauses, err := c.PreDepends()
		if err != nil {
			return nil, err
		}

		for _, clause := range append(depClauses, preClauses...) {
			satisfiers := matchingSelections(clause, selection)
			if len(satisfiers) == 0 {
				return nil, &wpkgerr.Constraint{Failures: []string{
					fmt.Sprintf("%s: unsatisfiable clause %s", name, clause.String()),
				}}
			}
			var orTerms []bf.Formula
			for _, s := range satisfiers {
				orTerms = append(orTerms, bf.Var(s.Key()))
			}
			formulas = append(formulas, bf.Or(bf.Not(A), bf.And(A, bf.Or(orTerms...))))
		}

		conflictClauses, err := c.Conflicts()
		if err != nil {
			return nil, err
		}
		breaksClauses, err := c.Breaks()
		if err != nil {
			return nil, err
		}
		replaces, err := c.Replaces()
		if err != nil {
			return nil, err
		}

		for _, clause := range append(conflictClauses, breaksClauses...) {
			for _, victim := range matchingSelections(clause, selection) {
				if victim.Key() == c.Key() {
					continue
				}
				if replaces[victim.Name] {
					continue
				}
				B := bf.Var(victim.Key())
				formulas = append(formulas, bf.Or(bf.Not(A), bf.And(A, bf.Not(B))))
			}
		}
	}

	return formulas, nil
}

// matchingSelections returns every selected candidate satisfying any
// alternative of clause.
func matchingSelections(clause debian.Clause, selection map[string]*Candidate) []*Candidate {
	var matches []*Candidate
	seen := map[string]bool{}
	for _, c := range selection {
		for _, alt := range clause {
			if alt.Satisfies(c.Name, c.Version, c.Architecture) && !seen[c.Key()] {
				matches = append(matches, c)
				seen[c.Key()] = true
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Key() < matches[j].Key() })
	return matches
}

// solveSelection checks that selection is internally consistent: every
// candidate's Depends/Pre-Depends reach a selected satisfier and no
// Conflicts/Breaks edge survives within it. A nil return from
// bf.Solve means UNSAT.
func solveSelection(selection map[string]*Candidate) error {
	formulas, err := buildFormulas(selection)
	if err != nil {
		return err
	}
	if len(formulas) == 0 {
		return nil
	}

	model := bf.Solve(bf.And(formulas...))
	if model == nil {
		return &wpkgerr.Constraint{Failures: []string{"selection is unsatisfiable under Depends/Conflicts/Breaks"}}
	}
	return nil
}
