package cmd

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Launch gocheck tests
func Test(t *testing.T) { TestingT(t) }

type CmdSuite struct{}

var _ = Suite(&CmdSuite{})

func (s *CmdSuite) TestParseMd5sumsMemberPlain(c *C) {
	sums := parseMd5sumsMember([]byte("d41d8cd98f00b204e9800998ecf8427e  ./usr/bin/foo\nabc123  /etc/foo.conf\n"))
	c.Check(sums["/usr/bin/foo"], Equals, "d41d8cd98f00b204e9800998ecf8427e")
	c.Check(sums["/etc/foo.conf"], Equals, "abc123")
}

func (s *CmdSuite) TestParseMd5sumsMemberIgnoresBlankLines(c *C) {
	sums := parseMd5sumsMember([]byte("\n\nd41d8cd98f00b204e9800998ecf8427e  ./a\n\n"))
	c.Check(len(sums), Equals, 1)
}

func (s *CmdSuite) TestValidSelectionsCoversAllFour(c *C) {
	for _, name := range []string{"install", "hold", "deinstall", "purge"} {
		_, ok := validSelections[name]
		c.Check(ok, Equals, true)
	}
	_, ok := validSelections["bogus"]
	c.Check(ok, Equals, false)
}
