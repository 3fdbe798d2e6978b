package debian

import (
	. "gopkg.in/check.v1"
)

type DependencySuite struct{}

var _ = Suite(&DependencySuite{})

func (s *DependencySuite) TestParseDependencyPlain(c *C) {
	a, err := ParseDependency("libfoo")
	c.Assert(err, IsNil)
	c.Check(a.Pkg, Equals, "libfoo")
	c.Check(a.Relation, Equals, VersionDontCare)
	c.Check(a.Architecture, IsNil)
}

func (s *DependencySuite) TestParseDependencyVersioned(c *C) {
	a, err := ParseDependency("libfoo (>= 1.35)")
	c.Assert(err, IsNil)
	c.Check(a.Pkg, Equals, "libfoo")
	c.Check(a.Relation, Equals, VersionGreaterOrEqual)
	c.Check(a.Version, Equals, "1.35")
}

func (s *DependencySuite) TestParseDependencySynonyms(c *C) {
	a, err := ParseDependency("libfoo (ge 1.35)")
	c.Assert(err, IsNil)
	c.Check(a.Relation, Equals, VersionGreaterOrEqual)

	a, err = ParseDependency("libfoo (< 1.35)")
	c.Assert(err, IsNil)
	c.Check(a.Relation, Equals, VersionLess)
}

func (s *DependencySuite) TestParseDependencyArchitecture(c *C) {
	a, err := ParseDependency("libfoo (>= 1.35) [amd64 i386]")
	c.Assert(err, IsNil)
	c.Check(a.Pkg, Equals, "libfoo")
	c.Check(a.Architecture, DeepEquals, []string{"amd64", "i386"})

	c.Check(a.MatchesArchitecture("amd64"), Equals, true)
	c.Check(a.MatchesArchitecture("arm64"), Equals, false)
}

func (s *DependencySuite) TestParseDependencyArchitectureNegated(c *C) {
	a, err := ParseDependency("libfoo [!arm !arm64]")
	c.Assert(err, IsNil)
	c.Check(a.MatchesArchitecture("amd64"), Equals, true)
	c.Check(a.MatchesArchitecture("arm64"), Equals, false)
}

func (s *DependencySuite) TestParseClause(c *C) {
	clause, err := ParseClause("libfoo (>= 1.35) | libbar")
	c.Assert(err, IsNil)
	c.Assert(clause, HasLen, 2)
	c.Check(clause[0].Pkg, Equals, "libfoo")
	c.Check(clause[1].Pkg, Equals, "libbar")
}

func (s *DependencySuite) TestParseDependencyList(c *C) {
	clauses, err := ParseDependencyList("libfoo (>= 1.35), libbar | libbaz [!arm]")
	c.Assert(err, IsNil)
	c.Assert(clauses, HasLen, 2)
	c.Assert(clauses[0], HasLen, 1)
	c.Assert(clauses[1], HasLen, 2)
	c.Check(clauses[1][1].Architecture, DeepEquals, []string{"!arm"})
}

func (s *DependencySuite) TestParseDependencyListEmpty(c *C) {
	clauses, err := ParseDependencyList("")
	c.Assert(err, IsNil)
	c.Check(clauses, HasLen, 0)
}

func (s *DependencySuite) TestAlternativeSatisfies(c *C) {
	a, err := ParseDependency("libfoo (>= 1.35) [amd64]")
	c.Assert(err, IsNil)
	c.Check(a.Satisfies("libfoo", "1.40", "amd64"), Equals, true)
	c.Check(a.Satisfies("libfoo", "1.10", "amd64"), Equals, false)
	c.Check(a.Satisfies("libfoo", "1.40", "arm64"), Equals, false)
	c.Check(a.Satisfies("libbar", "1.40", "amd64"), Equals, false)
}
