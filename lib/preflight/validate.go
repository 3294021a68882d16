// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preflight

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/sbpledge/lib/config"
	"github.com/bureau-foundation/sbpledge/lib/policyfile"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// Result holds the result of one check.
type Result struct {
	Name    string
	Passed  bool
	Message string
	Warning bool // True if this is a warning, not an error.
}

// Validator accumulates check results.
type Validator struct {
	results []Result
	errors  int
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		results: make([]Result, 0),
	}
}

// Results returns all check results.
func (v *Validator) Results() []Result {
	return v.results
}

// HasErrors returns true if any check failed.
func (v *Validator) HasErrors() bool {
	return v.errors > 0
}

func (v *Validator) pass(name, message string) {
	v.results = append(v.results, Result{Name: name, Passed: true, Message: message})
}

func (v *Validator) warn(name, message string) {
	v.results = append(v.results, Result{Name: name, Passed: true, Message: message, Warning: true})
}

func (v *Validator) fail(name, message string) {
	v.results = append(v.results, Result{Name: name, Passed: false, Message: message})
	v.errors++
}

// ValidateAll runs every check for a configuration and policy.
func (v *Validator) ValidateAll(applier pledge.Applier, cfg *config.Config, policy *policyfile.Policy) {
	v.ValidatePrimitive(applier, cfg.Unavailable)
	v.ValidateTempDir(cfg.TempDir)
	v.ValidateAuditFile(cfg.AuditFile)
	v.ValidatePolicy(policy, cfg.Limits.MaxRules)
	v.ValidateExposure(policy)
	v.ValidateProfile(policy, cfg)
}

// ValidatePrimitive checks that the confinement primitive is present.
// Its absence is an error only when the fallback policy refuses to run
// unconfined.
func (v *Validator) ValidatePrimitive(applier pledge.Applier, fallback string) {
	if applier.Available() {
		v.pass("primitive", fmt.Sprintf("available: %s", applier.Name()))
		return
	}
	reason := pledge.UnavailableReason(applier)
	if fallback == config.FallbackError {
		v.fail("primitive", reason+" (configuration refuses to run unconfined)")
		return
	}
	v.warn("primitive", reason+" (programs will run unconfined)")
}

// ValidateTempDir checks the directory granted by the tmppath promise.
// An empty directory falls back the same way confinement does.
func (v *Validator) ValidateTempDir(directory string) {
	directory = pledge.TempDir(directory)
	info, err := os.Stat(directory)
	if err != nil {
		v.warn("temp-dir", fmt.Sprintf("%s: %v (tmppath will grant nothing usable)", directory, err))
		return
	}
	if !info.IsDir() {
		v.fail("temp-dir", fmt.Sprintf("%s is not a directory", directory))
		return
	}
	resolved, err := filepath.EvalSymlinks(directory)
	if err == nil && resolved != directory {
		v.pass("temp-dir", fmt.Sprintf("%s (resolves to %s)", directory, resolved))
		return
	}
	v.pass("temp-dir", directory)
}

// ValidateAuditFile checks that the audit log can be appended to.
func (v *Validator) ValidateAuditFile(path string) {
	if path == "" {
		v.pass("audit", "disabled")
		return
	}
	directory := filepath.Dir(path)
	info, err := os.Stat(directory)
	if err != nil {
		v.fail("audit", fmt.Sprintf("directory %s: %v", directory, err))
		return
	}
	if !info.IsDir() {
		v.fail("audit", fmt.Sprintf("%s is not a directory", directory))
		return
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.fail("audit", fmt.Sprintf("%s is a directory", path))
		return
	}
	v.pass("audit", path)
}

// ValidatePolicy reports structural policy issues.
func (v *Validator) ValidatePolicy(policy *policyfile.Policy, maxRules int) {
	issues := policyfile.Validate(policy, maxRules)
	for _, issue := range issues {
		v.fail("policy", issue)
	}
	if len(issues) == 0 {
		v.pass("policy", fmt.Sprintf("%d unveil entries, lock=%v", len(policy.Unveil), policy.Lock))
	}
}

// ValidateExposure checks each exposed path. Exposing a path that does
// not exist is allowed, since the program may create it, but is
// usually a typo.
func (v *Validator) ValidateExposure(policy *policyfile.Policy) {
	for index, exposure := range policy.Unveil {
		name := fmt.Sprintf("unveil[%d]", index)
		path := config.Expand(exposure.Path)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.pass(name, fmt.Sprintf("%s [%s]", path, exposure.Permissions))
		case errors.Is(err, fs.ErrNotExist):
			v.warn(name, fmt.Sprintf("%s does not exist yet", path))
		default:
			v.warn(name, fmt.Sprintf("%s: %v", path, err))
		}
	}
}

// ValidateProfile generates the profile the policy produces and checks
// it against the size limit.
func (v *Validator) ValidateProfile(policy *policyfile.Policy, cfg *config.Config) {
	state := pledge.New(pledge.Options{
		Applier: pledge.Unavailable("preflight does not apply profiles"),
		Limits: pledge.Limits{
			MaxRules:        cfg.Limits.MaxRules,
			MaxProfileBytes: cfg.Limits.MaxProfileBytes,
		},
		Logger:  discardLogger,
		TempDir: cfg.TempDir,
	})
	if err := policyfile.Declare(policy, state); err != nil {
		v.fail("profile", err.Error())
		return
	}
	view := state.View()
	view.Locked = policy.Lock
	profile, err := pledge.Generate(view, cfg.Limits.MaxProfileBytes)
	if err != nil {
		v.fail("profile", err.Error())
		return
	}
	message := fmt.Sprintf("%d of %d bytes, digest %s", profile.Len(), cfg.Limits.MaxProfileBytes, profile.Digest()[:12])
	if profile.Len()*10 > cfg.Limits.MaxProfileBytes*9 {
		v.warn("profile", message+" (within 10% of the limit)")
		return
	}
	v.pass("profile", message)
}

// PrintResults writes check results to a writer.
func (v *Validator) PrintResults(w io.Writer) {
	for _, r := range v.results {
		var prefix string
		if r.Passed {
			if r.Warning {
				prefix = "⚠"
			} else {
				prefix = "✓"
			}
		} else {
			prefix = "✗"
		}
		fmt.Fprintf(w, "%s %s: %s\n", prefix, r.Name, r.Message)
	}

	fmt.Fprintln(w)
	if v.HasErrors() {
		fmt.Fprintf(w, "Preflight failed with %d error(s)\n", v.errors)
	} else {
		fmt.Fprintln(w, "Ready to confine")
	}
}
