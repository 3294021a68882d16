// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development tolerates a missing confinement primitive.
	Development Environment = "development"
	// Production refuses to run unconfined.
	Production Environment = "production"
)

// Fallback policies for a missing confinement primitive.
const (
	FallbackSkip  = "skip"
	FallbackWarn  = "warn"
	FallbackError = "error"
)

// Config is the sbpledge configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Limits bounds exposure tables and generated profiles.
	Limits LimitsConfig `yaml:"limits"`

	// TempDir is the directory granted by the tmppath promise. Empty
	// means $TMPDIR, then /tmp.
	TempDir string `yaml:"temp_dir"`

	// AuditFile receives one CBOR record per application attempt. Empty
	// disables auditing.
	AuditFile string `yaml:"audit_file"`

	// Unavailable is the behavior when the confinement primitive is
	// missing: "skip", "warn", or "error".
	Unavailable string `yaml:"unavailable"`

	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// LimitsConfig mirrors pledge.Limits.
type LimitsConfig struct {
	// MaxRules is the maximum number of distinct exposed paths.
	// Default: 256
	MaxRules int `yaml:"max_rules"`

	// MaxProfileBytes is the maximum generated profile size.
	// Default: 16384
	MaxProfileBytes int `yaml:"max_profile_bytes"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Limits      *LimitsConfig `yaml:"limits,omitempty"`
	TempDir     string        `yaml:"temp_dir,omitempty"`
	AuditFile   string        `yaml:"audit_file,omitempty"`
	Unavailable string        `yaml:"unavailable,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Environment: Development,
		Limits: LimitsConfig{
			MaxRules:        256,
			MaxProfileBytes: 16 * 1024,
		},
		Unavailable: FallbackWarn,
	}
}

// Load loads configuration from the file named by SBPLEDGE_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv("SBPLEDGE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("SBPLEDGE_CONFIG environment variable not set; " +
			"set it to the path of your sbpledge.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration on top of Default(), applies the
// matching environment section, expands variables and validates.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &Overrides{Unavailable: FallbackError}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Limits != nil {
		if overrides.Limits.MaxRules != 0 {
			c.Limits.MaxRules = overrides.Limits.MaxRules
		}
		if overrides.Limits.MaxProfileBytes != 0 {
			c.Limits.MaxProfileBytes = overrides.Limits.MaxProfileBytes
		}
	}
	if overrides.TempDir != "" {
		c.TempDir = overrides.TempDir
	}
	if overrides.AuditFile != "" {
		c.AuditFile = overrides.AuditFile
	}
	if overrides.Unavailable != "" {
		c.Unavailable = overrides.Unavailable
	}
}

func (c *Config) expandVariables() {
	c.TempDir = Expand(c.TempDir)
	c.AuditFile = Expand(c.AuditFile)
}

// Expand substitutes ${VAR} and ${VAR:-default} references in s from
// the process environment. Policy files use the same syntax for paths.
func Expand(s string) string {
	return expandVars(s, map[string]string{
		"HOME": os.Getenv("HOME"),
	})
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Limits.MaxRules < 1 {
		errs = append(errs, fmt.Errorf("limits.max_rules must be positive, got %d", c.Limits.MaxRules))
	}
	if c.Limits.MaxProfileBytes < 1024 {
		errs = append(errs, fmt.Errorf("limits.max_profile_bytes must be at least 1024, got %d", c.Limits.MaxProfileBytes))
	}
	switch c.Unavailable {
	case FallbackSkip, FallbackWarn, FallbackError:
	default:
		errs = append(errs, fmt.Errorf("unavailable must be skip, warn, or error, got %q", c.Unavailable))
	}

	return errors.Join(errs...)
}
