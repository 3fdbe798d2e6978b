package debian

import (
	"fmt"
	"strings"
)

// Alternative is one candidate in an OR-group: a package name, an
// optional version constraint, and an optional architecture
// qualifier list.
type Alternative struct {
	Pkg          string
	Relation     Relation
	Version      string
	Architecture []string
}

// Hash calculates a predefined unique ID of the alternative, used as a
// graph-node/edge key by the planner.
func (a *Alternative) Hash() string {
	return fmt.Sprintf("%s:%s:%d:%s", strings.Join(a.Architecture, ","), a.Pkg, a.Relation, a.Version)
}

// String produces the canonical "pkg (op version) [arch ...]" form.
func (a *Alternative) String() string {
	var b strings.Builder
	b.WriteString(a.Pkg)
	if a.Relation != VersionDontCare {
		fmt.Fprintf(&b, " (%s %s)", a.Relation, a.Version)
	}
	if len(a.Architecture) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(a.Architecture, " "))
	}
	return b.String()
}

// MatchesArchitecture reports whether the alternative's architecture
// qualifier, if any, admits arch. An alternative with no qualifier
// admits every architecture. A qualifier list is either all positive
// (an allow-list) or all negative (a deny-list); §4.1/§4.4.
func (a *Alternative) MatchesArchitecture(arch string) bool {
	if len(a.Architecture) == 0 {
		return true
	}

	negated := strings.HasPrefix(a.Architecture[0], "!")
	for _, candidate := range a.Architecture {
		name := strings.TrimPrefix(candidate, "!")
		if name == arch {
			return !negated
		}
	}

	return negated
}

// Satisfies reports whether a candidate (name, version, arch) triple
// satisfies this alternative.
func (a *Alternative) Satisfies(pkg, version, arch string) bool {
	if a.Pkg != pkg {
		return false
	}
	if !a.MatchesArchitecture(arch) {
		return false
	}
	return Satisfies(version, a.Relation, a.Version)
}

// Clause is an AND-member of a dependency field: a group of
// alternatives joined by "|", any one of which satisfies the clause.
type Clause []Alternative

// String renders the clause back to "a | b | c" form.
func (c Clause) String() string {
	parts := make([]string, len(c))
	for i := range c {
		parts[i] = c[i].String()
	}
	return strings.Join(parts, " | ")
}

// ParseDependency parses a single alternative: "pkg (>= 1.35) [arch ...]".
// It also accepts the operator synonyms lt/le/eq/ge/gt and the relaxed
// operators "<", ">" and "==".
func ParseDependency(dep string) (a Alternative, err error) {
	dep = strings.TrimSpace(dep)

	if strings.HasSuffix(dep, "]") {
		i := strings.LastIndex(dep, "[")
		if i == -1 {
			return a, fmt.Errorf("debian: unable to parse architecture qualifier in %q", dep)
		}
		spec := strings.TrimSpace(dep[i+1 : len(dep)-1])
		if spec != "" {
			a.Architecture = strings.Fields(spec)
		}
		dep = strings.TrimSpace(dep[:i])
	}

	if !strings.HasSuffix(dep, ")") {
		a.Pkg = strings.TrimSpace(dep)
		if a.Pkg == "" {
			return a, fmt.Errorf("debian: empty package name in dependency")
		}
		a.Relation = VersionDontCare
		return a, nil
	}

	i := strings.Index(dep, "(")
	if i == -1 {
		return a, fmt.Errorf("debian: unable to parse dependency: %s", dep)
	}

	a.Pkg = strings.TrimSpace(dep[0:i])
	inner := strings.TrimSpace(dep[i+1 : len(dep)-1])

	fields := strings.Fields(inner)
	if len(fields) != 2 {
		return a, fmt.Errorf("debian: malformed version constraint in dependency: %s", dep)
	}

	rel, ok := parseRelation(fields[0], false)
	if !ok {
		return a, fmt.Errorf("debian: relation unknown %q in dependency %s", fields[0], dep)
	}

	a.Relation = rel
	a.Version = fields[1]

	return a, nil
}

// ParseClause parses a pipe-separated OR-group of alternatives:
// "pkg-a (>= 1.35) | pkg-b".
func ParseClause(clause string) (Clause, error) {
	parts := strings.Split(clause, "|")
	c := make(Clause, len(parts))

	for i, part := range parts {
		alt, err := ParseDependency(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		c[i] = alt
	}

	return c, nil
}

// ParseDependencyVariants is retained for callers that only ever deal
// with a single OR-group (no top-level commas), returning its
// alternatives directly.
func ParseDependencyVariants(variants string) ([]Alternative, error) {
	c, err := ParseClause(variants)
	if err != nil {
		return nil, err
	}
	return []Alternative(c), nil
}

// ParseDependencyList parses a full field value into its comma-separated
// AND-clauses, each itself possibly a pipe-separated OR-group:
// "a (>= 1), b | c [!arm !arm64]". Empty input yields an empty,
// non-nil list.
func ParseDependencyList(field string) ([]Clause, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return []Clause{}, nil
	}

	rawClauses := strings.Split(field, ",")
	clauses := make([]Clause, 0, len(rawClauses))

	for _, raw := range rawClauses {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		c, err := ParseClause(raw)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}

	return clauses, nil
}
