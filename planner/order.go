package planner

import (
	"fmt"
	"sort"

	"github.com/wpkg-go/wpkg/wpkgerr"
)

// preDependsEdges returns, for each candidate in selection, the keys
// of the selected candidates it Pre-Depends on.
func preDependsEdges(selection map[string]*Candidate) (map[string][]string, error) {
	edges := make(map[string][]string, len(selection))
	for _, c := range selection {
		clauses, err := c.PreDepends()
		if err != nil {
			return nil, err
		}
		var targets []string
		for _, clause := range clauses {
			for _, target := range matchingSelections(clause, selection) {
				if target.Key() != c.Key() {
					targets = append(targets, target.Key())
				}
			}
		}
		sort.Strings(targets)
		edges[c.Key()] = targets
	}
	return edges, nil
}

// dependsEdges is as preDependsEdges but over ordinary Depends, used
// only as a soft ordering preference once Pre-Depends has been
// satisfied.
func dependsEdges(selection map[string]*Candidate) (map[string][]string, error) {
	edges := make(map[string][]string, len(selection))
	for _, c := range selection {
		clauses, err := c.Depends()
		if err != nil {
			return nil, err
		}
		var targets []string
		for _, clause := range clauses {
			for _, target := range matchingSelections(clause, selection) {
				if target.Key() != c.Key() {
					targets = append(targets, target.Key())
				}
			}
		}
		sort.Strings(targets)
		edges[c.Key()] = targets
	}
	return edges, nil
}

// tarjanSCC computes the strongly connected components of the graph
// described by edges (adjacency list keyed by node, A -> B meaning "A
// must follow B" is encoded as a dependency edge here, direction
// doesn't matter for SCC detection).
func tarjanSCC(nodes []string, edges map[string][]string) [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var components [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var component []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			components = append(components, component)
		}
	}

	for _, v := range nodes {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}
	return components
}

// Order performs the plan ordering of §4.6: Tarjan SCC over
// Pre-Depends-only edges detects cycles, fatal only when a
// Pre-Depends edge closes one; a stable topological sort (Pre-Depends
// strict, Depends a soft tie-break preference) then linearizes the
// plan.
func Order(selection map[string]*Candidate) ([]*Candidate, error) {
	nodes := make([]string, 0, len(selection))
	byKey := make(map[string]*Candidate, len(selection))
	for _, c := range selection {
		nodes = append(nodes, c.Key())
		byKey[c.Key()] = c
	}
	sort.Strings(nodes)

	preEdges, err := preDependsEdges(selection)
	if err != nil {
		return nil, err
	}

	for _, component := range tarjanSCC(nodes, preEdges) {
		if len(component) > 1 {
			sort.Strings(component)
			return nil, &wpkgerr.Constraint{Failures: []string{
				fmt.Sprintf("Pre-Depends cycle: %v", component),
			}}
		}
	}

	depEdges, err := dependsEdges(selection)
	if err != nil {
		return nil, err
	}

	order, err := stableTopoSort(nodes, preEdges, depEdges)
	if err != nil {
		return nil, err
	}

	result := make([]*Candidate, len(order))
	for i, key := range order {
		result[i] = byKey[key]
	}
	return result, nil
}

// stableTopoSort returns a topological order (dependencies before
// dependents) using Kahn's algorithm over strictEdges only — already
// proven acyclic by the Tarjan pass — so a Depends-only cycle never
// fails the sort. softEdges (ordinary Depends) break ties among
// simultaneously ready nodes: a node whose soft dependencies have
// already been placed is preferred, falling back to lexicographic
// order for full determinism (P7).
func stableTopoSort(nodes []string, strictEdges, softEdges map[string][]string) ([]string, error) {
	dependents := make(map[string][]string)
	indegree := make(map[string]int)
	for _, n := range nodes {
		indegree[n] = len(strictEdges[n])
	}
	for v, deps := range strictEdges {
		for _, d := range deps {
			dependents[d] = append(dependents[d], v)
		}
	}
	for _, list := range dependents {
		sort.Strings(list)
	}

	placed := make(map[string]bool, len(nodes))

	ready := func() []string {
		var r []string
		for _, n := range nodes {
			if !placed[n] && indegree[n] == 0 {
				r = append(r, n)
			}
		}
		return r
	}

	unmetSoftDeps := func(n string) int {
		count := 0
		for _, d := range softEdges[n] {
			if !placed[d] {
				count++
			}
		}
		return count
	}

	var order []string
	for len(order) < len(nodes) {
		candidates := ready()
		if len(candidates) == 0 {
			return nil, &wpkgerr.Constraint{Failures: []string{"dependency graph contains an unresolved Pre-Depends cycle"}}
		}

		sort.Slice(candidates, func(i, j int) bool {
			ui, uj := unmetSoftDeps(candidates[i]), unmetSoftDeps(candidates[j])
			if ui != uj {
				return ui < uj
			}
			return candidates[i] < candidates[j]
		})

		chosen := candidates[0]
		order = append(order, chosen)
		placed[chosen] = true

		for _, dependent := range dependents[chosen] {
			indegree[dependent]--
		}
	}

	return order, nil
}
