package planner

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/wpkg-go/wpkg/debian"
)

// edgeKind labels a Graph edge by the control field it came from,
// matching §4.6's directed multigraph of candidate selections.
type edgeKind string

const (
	edgeDepends    edgeKind = "Depends"
	edgePreDepends edgeKind = "Pre-Depends"
	edgeConflicts  edgeKind = "Conflicts"
	edgeBreaks     edgeKind = "Breaks"
)

// Graph wraps gographviz.Interface for the candidate constraint graph,
// built once a selection is known, and offers a Dot dump for
// diagnostics (grounded on aptly's deb.BuildGraph).
type Graph struct {
	g gographviz.Interface
}

// BuildGraph renders selection's constraint edges into a directed
// graph for diagnostics: it is not consulted by Resolve/Order, which
// work directly off the Candidate/Universe data, but gives operators
// a human-readable `.dot` of why a plan looks the way it does.
func BuildGraph(selection map[string]*Candidate) (*Graph, error) {
	escaped := gographviz.NewEscape()
	escaped.SetDir(true)
	escaped.SetName("plan")

	for _, c := range selection {
		if err := escaped.AddNode("plan", c.Key(), map[string]string{
			"label": fmt.Sprintf("%s %s (%s)", c.Name, c.Version, c.Architecture),
		}); err != nil {
			return nil, err
		}
	}

	for _, c := range selection {
		depends, err := c.Depends()
		if err != nil {
			return nil, err
		}
		preDepends, err := c.PreDepends()
		if err != nil {
			return nil, err
		}
		conflicts, err := c.Conflicts()
		if err != nil {
			return nil, err
		}
		breaks, err := c.Breaks()
		if err != nil {
			return nil, err
		}

		if err := addClauseEdges(escaped, c, selection, edgeDepends, depends); err != nil {
			return nil, err
		}
		if err := addClauseEdges(escaped, c, selection, edgePreDepends, preDepends); err != nil {
			return nil, err
		}
		if err := addClauseEdges(escaped, c, selection, edgeConflicts, conflicts); err != nil {
			return nil, err
		}
		if err := addClauseEdges(escaped, c, selection, edgeBreaks, breaks); err != nil {
			return nil, err
		}
	}

	return &Graph{g: escaped}, nil
}

func addClauseEdges(g gographviz.Interface, c *Candidate, selection map[string]*Candidate, kind edgeKind, clauses []debian.Clause) error {
	for _, clause := range clauses {
		for _, target := range matchingSelections(clause, selection) {
			if target.Key() == c.Key() {
				continue
			}
			attrs := map[string]string{"label": string(kind)}
			if err := g.AddEdge(c.Key(), target.Key(), true, attrs); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dot renders the graph in Graphviz DOT format.
func (pg *Graph) Dot() string {
	return pg.g.String()
}
