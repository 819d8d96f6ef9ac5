// internal/config/config.go
//
// This package handles configuration and the .slcsp directory structure.
// A project that runs slcsp gets a .slcsp/ folder holding config.yaml and the
// run journal.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/slcsp/internal/rates"
)

const (
	// StateDirName is the name of the directory we create in each project
	StateDirName = ".slcsp"

	configFileName = "config.yaml"
	logFileName    = "slcsp.log"
)

const defaultProjectConfigYAML = `# slcsp project configuration
version: 1

# Reference tables. Relative paths resolve against the project directory.
inputs:
  zips: input_data/zips.csv
  plans: input_data/plans.csv
  targets: input_data/slcsp.csv

# Where the complete output goes when the targets table is not overwritten.
output:
  path: Output_slcsp.csv

# Plan tier to resolve. match is "substring" or "exact".
metal:
  level: Silver
  match: substring
`

// InputsConfig locates the three reference tables.
type InputsConfig struct {
	Zips    string `yaml:"zips"`
	Plans   string `yaml:"plans"`
	Targets string `yaml:"targets"`
}

// OutputConfig controls the separate output table.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// MetalConfig selects the plan tier to resolve.
type MetalConfig struct {
	Level string `yaml:"level"`
	Match string `yaml:"match"`
}

// ProjectConfig models .slcsp/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Inputs  InputsConfig `yaml:"inputs"`
	Output  OutputConfig `yaml:"output"`
	Metal   MetalConfig  `yaml:"metal"`
}

// Config holds the runtime configuration for one slcsp invocation.
type Config struct {
	// ProjectDir is the directory relative paths resolve against
	ProjectDir string

	// StateDir is ProjectDir/.slcsp
	StateDir string

	// ConfigPath is the YAML file the project settings were read from
	ConfigPath string

	Project ProjectConfig
}

// InitDir creates the .slcsp directory structure in the given project
// directory and writes a commented config.yaml when none exists.
//
// Structure created:
// .slcsp/
// ├── config.yaml
// └── logs/       <- run journal
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, StateDirName)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(stateDir, configFileName))
}

// NewConfig loads project settings from .slcsp/config.yaml under projectDir.
func NewConfig(projectDir string) (*Config, error) {
	return Load(projectDir, "")
}

// Load reads project settings from configPath, or from the default location
// when configPath is empty. A missing file yields the defaults. Environment
// overrides are applied on top of the file.
func Load(projectDir, configPath string) (*Config, error) {
	stateDir := filepath.Join(projectDir, StateDirName)
	if strings.TrimSpace(configPath) == "" {
		configPath = filepath.Join(stateDir, configFileName)
	} else {
		configPath = resolvePath(projectDir, configPath)
	}
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   stateDir,
		ConfigPath: configPath,
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// LogPath returns the run journal file
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), logFileName)
}

// ZipsPath returns the ZIP-to-rate-area table.
func (c *Config) ZipsPath() string { return c.Project.Inputs.Zips }

// PlansPath returns the plan rates table.
func (c *Config) PlansPath() string { return c.Project.Inputs.Plans }

// TargetsPath returns the target ZIP table, which is also the in-place output.
func (c *Config) TargetsPath() string { return c.Project.Inputs.Targets }

// OutputPath returns the separate output table.
func (c *Config) OutputPath() string { return c.Project.Output.Path }

// MetalLevel returns the normalized plan tier.
func (c *Config) MetalLevel() string { return c.Project.Metal.Level }

// MatchMode returns how plan metal levels are compared.
func (c *Config) MatchMode() rates.MatchMode {
	mode, ok := rates.ParseMatchMode(c.Project.Metal.Match)
	if !ok {
		return rates.MatchSubstring
	}
	return mode
}

// SetMetalLevel overrides the configured tier for this run only.
func (c *Config) SetMetalLevel(level string) error {
	level = normalizeMetal(level)
	if level == "" {
		return fmt.Errorf("config: metal level is required")
	}
	c.Project.Metal.Level = level
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath
	parsed := defaultProjectConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed.applyDefaults()
	if err := parsed.applyEnv(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Inputs: InputsConfig{
			Zips:    filepath.Join("input_data", "zips.csv"),
			Plans:   filepath.Join("input_data", "plans.csv"),
			Targets: filepath.Join("input_data", "slcsp.csv"),
		},
		Output: OutputConfig{Path: "Output_slcsp.csv"},
		Metal: MetalConfig{
			Level: rates.DefaultMetalLevel,
			Match: string(rates.MatchSubstring),
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	def := defaultProjectConfig()
	if pc.Version == 0 {
		pc.Version = def.Version
	}
	if strings.TrimSpace(pc.Metal.Match) == "" {
		pc.Metal.Match = def.Metal.Match
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Inputs.Zips = resolvePath(base, pc.Inputs.Zips)
	pc.Inputs.Plans = resolvePath(base, pc.Inputs.Plans)
	pc.Inputs.Targets = resolvePath(base, pc.Inputs.Targets)
	pc.Output.Path = resolvePath(base, pc.Output.Path)
	pc.Metal.Level = normalizeMetal(pc.Metal.Level)
	pc.Metal.Match = strings.ToLower(strings.TrimSpace(pc.Metal.Match))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	required := []struct{ name, value string }{
		{"inputs.zips", pc.Inputs.Zips},
		{"inputs.plans", pc.Inputs.Plans},
		{"inputs.targets", pc.Inputs.Targets},
		{"output.path", pc.Output.Path},
		{"metal.level", pc.Metal.Level},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}
	if _, ok := rates.ParseMatchMode(pc.Metal.Match); !ok {
		return fmt.Errorf("metal.match must be 'substring' or 'exact'")
	}
	return nil
}

// normalizeMetal title-cases the tier so "silver" matches the plan table's "Silver".
func normalizeMetal(level string) string {
	level = strings.TrimSpace(level)
	if level == "" {
		return ""
	}
	return cases.Title(language.English).String(level)
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
