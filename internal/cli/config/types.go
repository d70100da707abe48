// Package config provides configuration management for the claudelint CLI.
//
// Configuration is layered with koanf: built-in defaults, the
// .claudelint.yaml file, a project .env file, CLAUDELINT_ environment
// variables and finally command-line flags. The rules and overrides
// sections are handed to lint.DecodeConfig, which owns their shape.
package config

import (
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/report"
)

// OutputConfig controls how results are rendered.
type OutputConfig struct {
	Format  string `koanf:"format"`
	Verbose bool   `koanf:"verbose"`
	Color   string `koanf:"color"`
	// DocsURL overrides the base of rule documentation links.
	DocsURL string `koanf:"docsURL"`
}

// LogConfig controls the diagnostic logger written to stderr.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Config holds all CLI configuration options.
type Config struct {
	Rules              map[string]any `koanf:"rules"`
	Overrides          []any          `koanf:"overrides"`
	Output             OutputConfig   `koanf:"output"`
	MaxWarnings        int            `koanf:"maxWarnings"`
	WarningsAsErrors   bool           `koanf:"warningsAsErrors"`
	IgnorePatterns     []string       `koanf:"ignorePatterns"`
	CustomRules        []string       `koanf:"customRules"`
	CustomRuleMaxSteps uint64         `koanf:"customRuleMaxSteps"`
	OnInvalidOptions   string         `koanf:"onInvalidOptions"`
	Concurrency        int            `koanf:"concurrency"`
	Log                LogConfig      `koanf:"log"`

	// ProjectRoot is the directory of the config file, or the working
	// directory when none was found. Relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultFormat           = "stylish"
	DefaultColor            = "auto"
	DefaultLogLevel         = "warn"
	DefaultLogFormat        = "text"
	DefaultMaxWarnings      = -1
	DefaultOnInvalidOptions = "defaults"
	DefaultMaxSteps         = 1_000_000
)

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: DefaultFormat,
			Color:  DefaultColor,
		},
		MaxWarnings:        DefaultMaxWarnings,
		CustomRuleMaxSteps: DefaultMaxSteps,
		OnInvalidOptions:   DefaultOnInvalidOptions,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Lint decodes the rules and overrides sections into a lint.Config.
func (c *Config) Lint() (*lint.Config, error) {
	raw := map[string]any{}
	if c.Rules != nil {
		raw["rules"] = c.Rules
	}
	if c.Overrides != nil {
		raw["overrides"] = c.Overrides
	}
	source := c.File
	if source == "" {
		source = "configuration"
	}
	return lint.DecodeConfig(source, raw)
}

// Policy returns the exit-code policy described by the configuration.
func (c *Config) Policy() report.Policy {
	return report.Policy{
		MaxWarnings:      c.MaxWarnings,
		WarningsAsErrors: c.WarningsAsErrors,
	}
}
