package utils

import (
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"
)

type ConfigSuite struct {
	config ConfigStructure
}

var _ = Suite(&ConfigSuite{})

func (s *ConfigSuite) TestLoadConfig(c *C) {
	configname := filepath.Join(c.MkDir(), "wpkg.json")
	f, _ := os.Create(configname)
	f.WriteString(configFile)
	f.Close()

	err := LoadConfig(configname, &s.config)
	c.Assert(err, IsNil)
	c.Check(s.config.GetRootDir(), Equals, "/opt/target/")
	c.Check(s.config.AdminDir, Equals, "/opt/target/var/lib/wpkg")
	c.Check(s.config.HookTimeoutSeconds, Equals, 33)
}

func (s *ConfigSuite) TestSaveConfig(c *C) {
	configname := filepath.Join(c.MkDir(), "wpkg.json")

	s.config.RootDir = "/tmp/target"
	s.config.AdminDir = "/tmp/target/var/lib/wpkg"
	s.config.Architecture = "windows-amd64"
	s.config.LogLevel = "info"
	s.config.LogFormat = "json"
	s.config.Force.Hold = true
	s.config.HookTimeoutSeconds = 5

	err := SaveConfig(configname, &s.config)
	c.Assert(err, IsNil)

	f, _ := os.Open(configname)
	defer f.Close()

	st, _ := f.Stat()
	buf := make([]byte, st.Size())
	f.Read(buf)

	c.Check(string(buf), Equals, ""+
		"{\n"+
		"  \"rootDir\": \"/tmp/target\",\n"+
		"  \"adminDir\": \"/tmp/target/var/lib/wpkg\",\n"+
		"  \"logLevel\": \"info\",\n"+
		"  \"logFormat\": \"json\",\n"+
		"  \"architecture\": \"windows-amd64\",\n"+
		"  \"architectures\": null,\n"+
		"  \"force\": {\n"+
		"    \"forceOverwrite\": false,\n"+
		"    \"forceConflicts\": false,\n"+
		"    \"forceBreaks\": false,\n"+
		"    \"forceHold\": true,\n"+
		"    \"forceRemoveEssential\": false,\n"+
		"    \"forceDistribution\": false,\n"+
		"    \"forceUpgradeAnyVersion\": false,\n"+
		"    \"forceDepends\": false,\n"+
		"    \"forceDowngrade\": false\n"+
		"  },\n"+
		"  \"hookTimeoutSeconds\": 5,\n"+
		"  \"databaseBackend\": {\n"+
		"    \"type\": \"\",\n"+
		"    \"dbPath\": \"\"\n"+
		"  }\n"+
		"}")
}

const configFile = `{"rootDir": "/opt/target/", "adminDir": "/opt/target/var/lib/wpkg", "hookTimeoutSeconds": 33}`
