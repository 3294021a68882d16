// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Limits.MaxRules != 256 {
		t.Errorf("expected max_rules=256, got %d", cfg.Limits.MaxRules)
	}
	if cfg.Limits.MaxProfileBytes != 16384 {
		t.Errorf("expected max_profile_bytes=16384, got %d", cfg.Limits.MaxProfileBytes)
	}
	if cfg.Unavailable != FallbackWarn {
		t.Errorf("expected unavailable=warn, got %s", cfg.Unavailable)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresConfigVariable(t *testing.T) {
	t.Setenv("SBPLEDGE_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SBPLEDGE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "SBPLEDGE_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sbpledge.yaml")
	configContent := `
limits:
  max_rules: 32
temp_dir: /var/tmp
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SBPLEDGE_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Limits.MaxRules != 32 {
		t.Errorf("expected max_rules=32, got %d", cfg.Limits.MaxRules)
	}
	if cfg.Limits.MaxProfileBytes != 16384 {
		t.Errorf("expected default max_profile_bytes to survive, got %d", cfg.Limits.MaxProfileBytes)
	}
	if cfg.TempDir != "/var/tmp" {
		t.Errorf("expected temp_dir=/var/tmp, got %s", cfg.TempDir)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		wantUnavailable string
		wantMaxRules    int
		wantAudit       string
	}{
		{
			name:            "development keeps base values",
			content:         "environment: development\nunavailable: skip\n",
			wantUnavailable: FallbackSkip,
			wantMaxRules:    256,
		},
		{
			name:            "production defaults to error",
			content:         "environment: production\n",
			wantUnavailable: FallbackError,
			wantMaxRules:    256,
		},
		{
			name: "explicit production section",
			content: `
environment: production
audit_file: /base/audit.cbor
production:
  unavailable: warn
  audit_file: /prod/audit.cbor
  limits:
    max_rules: 64
`,
			wantUnavailable: FallbackWarn,
			wantMaxRules:    64,
			wantAudit:       "/prod/audit.cbor",
		},
		{
			name: "development section ignored in production",
			content: `
environment: production
development:
  unavailable: skip
`,
			wantUnavailable: FallbackError,
			wantMaxRules:    256,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(test.content))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if cfg.Unavailable != test.wantUnavailable {
				t.Errorf("unavailable = %q, want %q", cfg.Unavailable, test.wantUnavailable)
			}
			if cfg.Limits.MaxRules != test.wantMaxRules {
				t.Errorf("max_rules = %d, want %d", cfg.Limits.MaxRules, test.wantMaxRules)
			}
			if cfg.AuditFile != test.wantAudit {
				t.Errorf("audit_file = %q, want %q", cfg.AuditFile, test.wantAudit)
			}
		})
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("SBPLEDGE_TEST_SET", "/from/env")
	t.Setenv("SBPLEDGE_TEST_UNSET", "")

	vars := map[string]string{"HOME": "/home/tester"}
	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/audit.cbor", "/home/tester/audit.cbor"},
		{"${SBPLEDGE_TEST_SET}/tmp", "/from/env/tmp"},
		{"${SBPLEDGE_TEST_UNSET:-/fallback}", "/fallback"},
		{"${SBPLEDGE_TEST_UNSET}", ""},
		{"/plain/path", "/plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestParseExpandsPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("SBPLEDGE_AUDIT_DIR", "")

	cfg, err := Parse([]byte("temp_dir: ${HOME}/tmp\naudit_file: ${SBPLEDGE_AUDIT_DIR:-/var/log}/sbpledge.cbor\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.TempDir != "/home/tester/tmp" {
		t.Errorf("temp_dir = %q", cfg.TempDir)
	}
	if cfg.AuditFile != "/var/log/sbpledge.cbor" {
		t.Errorf("audit_file = %q", cfg.AuditFile)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad environment", "environment: staging\n", "invalid environment"},
		{"zero rules", "limits:\n  max_rules: -1\n", "max_rules must be positive"},
		{"tiny profile", "limits:\n  max_profile_bytes: 10\n", "max_profile_bytes must be at least 1024"},
		{"bad fallback", "unavailable: ignore\n", "unavailable must be skip, warn, or error"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.content))
			if err == nil {
				t.Fatalf("expected error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error %q does not contain %q", err, test.wantErr)
			}
		})
	}
}
