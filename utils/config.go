package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DisposaBoy/JsonConfigReader"
	yaml "gopkg.in/yaml.v3"
)

// ForceFlags holds the per-invocation force-flag defaults from §6: each
// demotes one specific fatal constraint/resource error to a warning.
type ForceFlags struct {
	Overwrite         bool `json:"forceOverwrite"         yaml:"force_overwrite"`
	Conflicts         bool `json:"forceConflicts"         yaml:"force_conflicts"`
	Breaks            bool `json:"forceBreaks"            yaml:"force_breaks"`
	Hold              bool `json:"forceHold"              yaml:"force_hold"`
	RemoveEssential   bool `json:"forceRemoveEssential"   yaml:"force_remove_essential"`
	Distribution      bool `json:"forceDistribution"      yaml:"force_distribution"`
	UpgradeAnyVersion bool `json:"forceUpgradeAnyVersion" yaml:"force_upgrade_any_version"`
	Depends           bool `json:"forceDepends"           yaml:"force_depends"`
	Downgrade         bool `json:"forceDowngrade"         yaml:"force_downgrade"`
}

// DBConfig selects the backend for admindb's optional secondary
// path->package cache (goleveldb today), mirroring aptly's own
// discriminated database-backend field.
type DBConfig struct {
	Type   string `json:"type"   yaml:"type"`
	DBPath string `json:"dbPath" yaml:"db_path"`
}

// ConfigStructure is the top-level configuration for a wpkg core
// instance: target root, admin directory, logging, and the ambient
// defaults (architecture, force flags, hook timeout) every verb
// inherits unless overridden on its request.
type ConfigStructure struct { // nolint: maligned
	RootDir  string `json:"rootDir"  yaml:"root_dir"`
	AdminDir string `json:"adminDir" yaml:"admin_dir"`

	LogLevel  string `json:"logLevel"  yaml:"log_level"`
	LogFormat string `json:"logFormat" yaml:"log_format"`

	Architecture  string   `json:"architecture"  yaml:"architecture"`
	Architectures []string `json:"architectures" yaml:"architectures"`

	Force ForceFlags `json:"force" yaml:"force"`

	// HookTimeoutSeconds bounds how long any single maintainer or hook
	// script may run before the executor kills it and reports a
	// ScriptError (§7). Zero means no timeout.
	HookTimeoutSeconds int `json:"hookTimeoutSeconds" yaml:"hook_timeout_seconds"`

	DatabaseBackend DBConfig `json:"databaseBackend" yaml:"database_backend"`
}

// Config is the process-wide configuration, mirroring aptly's single
// shared utils.Config instance.
var Config = ConfigStructure{
	RootDir:            "/",
	AdminDir:           filepath.Join(os.Getenv("HOME"), ".wpkg"),
	LogLevel:           "info",
	LogFormat:          "default",
	Architecture:       "all",
	Architectures:      []string{},
	HookTimeoutSeconds: 300,
	DatabaseBackend: DBConfig{
		Type:   "goleveldb",
		DBPath: "",
	},
}

// LoadConfig loads configuration from filename, trying JSON-with-comments
// first and falling back to YAML, matching aptly's utils.LoadConfig.
func LoadConfig(filename string, config *ConfigStructure) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	decJSON := json.NewDecoder(JsonConfigReader.New(f))
	if err = decJSON.Decode(&config); err != nil {
		_, _ = f.Seek(0, 0)
		decYAML := yaml.NewDecoder(f)
		if err2 := decYAML.Decode(&config); err2 != nil {
			err = fmt.Errorf("invalid yaml (%s) or json (%s)", err2, err)
		} else {
			err = nil
		}
	}
	return err
}

// SaveConfig writes configuration to filename as indented JSON.
func SaveConfig(filename string, config *ConfigStructure) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	encoded, err := json.MarshalIndent(&config, "", "  ")
	if err != nil {
		return err
	}

	_, err = f.Write(encoded)
	return err
}

// SaveConfigYAML writes configuration to filename as YAML.
func SaveConfigYAML(filename string, config *ConfigStructure) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	yamlData, err := yaml.Marshal(&config)
	if err != nil {
		return fmt.Errorf("error marshaling to YAML: %s", err)
	}

	_, err = f.Write(yamlData)
	return err
}

// GetRootDir returns RootDir with a leading "~" expanded to $HOME.
func (conf *ConfigStructure) GetRootDir() string {
	return strings.Replace(conf.RootDir, "~", os.Getenv("HOME"), 1)
}

// GetAdminDir returns AdminDir with a leading "~" expanded to $HOME.
func (conf *ConfigStructure) GetAdminDir() string {
	return strings.Replace(conf.AdminDir, "~", os.Getenv("HOME"), 1)
}
