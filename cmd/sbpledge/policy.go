// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sbpledge/lib/config"
	"github.com/bureau-foundation/sbpledge/lib/policyfile"
	"github.com/bureau-foundation/sbpledge/lib/process"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// policyOptions are the flags shared by exec and render.
type policyOptions struct {
	configPath string
	policyPath string
	promises   string
	unveil     []string
	lock       bool
}

func (o *policyOptions) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.configPath, "config", "c", "", "configuration file (default: $SBPLEDGE_CONFIG)")
	flagSet.StringVarP(&o.policyPath, "policy", "f", "", "policy file (.yaml, .yml, .json or .jsonc)")
	flagSet.StringVarP(&o.promises, "promises", "p", "", `promise string, e.g. "stdio rpath"; replaces the file's promises`)
	flagSet.StringArrayVarP(&o.unveil, "unveil", "u", nil, "expose PATH:PERMS, PERMS drawn from rwxc (repeatable)")
	flagSet.BoolVar(&o.lock, "lock", false, "lock the exposure list")
}

// loadConfig reads --config, then SBPLEDGE_CONFIG, and otherwise
// returns the defaults.
func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv("SBPLEDGE_CONFIG") != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

// policy merges the policy file with the flags and validates the
// result against the configured limits.
func (o *policyOptions) policy(flagSet *pflag.FlagSet, cfg *config.Config) (*policyfile.Policy, error) {
	policy, err := o.rawPolicy(flagSet)
	if err != nil {
		return nil, err
	}
	if issues := policyfile.Validate(policy, cfg.Limits.MaxRules); len(issues) > 0 {
		return nil, fmt.Errorf("%w: %s", pledge.ErrInvalidArgument, strings.Join(issues, "; "))
	}
	return policy, nil
}

// rawPolicy merges the policy file with the flags without validating.
func (o *policyOptions) rawPolicy(flagSet *pflag.FlagSet) (*policyfile.Policy, error) {
	policy := &policyfile.Policy{}
	if o.policyPath != "" {
		loaded, err := policyfile.ReadFile(o.policyPath)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}

	if flagSet.Changed("promises") {
		promises := policyfile.PromiseList(strings.Fields(o.promises))
		policy.Promises = &promises
	}
	for _, entry := range o.unveil {
		separator := strings.LastIndex(entry, ":")
		if separator < 0 {
			return nil, fmt.Errorf("%w: --unveil %q must have the form PATH:PERMS", process.ErrUsage, entry)
		}
		policy.Unveil = append(policy.Unveil, policyfile.Exposure{
			Path:        entry[:separator],
			Permissions: entry[separator+1:],
		})
	}
	policy.Lock = policy.Lock || o.lock
	return policy, nil
}

func newState(cfg *config.Config, logger *slog.Logger, applier pledge.Applier, observer pledge.Observer, executable func() (string, error)) *pledge.State {
	return pledge.New(pledge.Options{
		Applier: applier,
		Limits: pledge.Limits{
			MaxRules:        cfg.Limits.MaxRules,
			MaxProfileBytes: cfg.Limits.MaxProfileBytes,
		},
		Logger:     logger,
		Observer:   observer,
		Executable: executable,
		TempDir:    cfg.TempDir,
	})
}

// openAudit opens the configured audit file for appending. Both return
// values are nil when auditing is disabled.
func openAudit(cfg *config.Config, logger *slog.Logger) (*pledge.AuditLog, io.Closer, error) {
	if cfg.AuditFile == "" {
		return nil, nil, nil
	}
	file, err := os.OpenFile(cfg.AuditFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit file: %w", err)
	}
	audit := pledge.NewAuditLog(file, nil)
	audit.SetLogger(logger)
	return audit, file, nil
}
