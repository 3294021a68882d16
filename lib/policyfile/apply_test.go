// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policyfile

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/sbpledge/lib/testutil"
	"github.com/bureau-foundation/sbpledge/pledge"
)

type capturingApplier struct {
	profiles []string
}

func (a *capturingApplier) Name() string    { return "capturing" }
func (a *capturingApplier) Available() bool { return true }

func (a *capturingApplier) Apply(profile *pledge.GeneratedProfile, _ pledge.Params) error {
	a.profiles = append(a.profiles, profile.Text())
	return nil
}

func newState(t *testing.T, applier pledge.Applier) *pledge.State {
	t.Helper()
	directory := testutil.ResolvedTempDir(t)
	program := testutil.WriteFile(t, directory, "program", "")
	return pledge.New(pledge.Options{
		Applier:    applier,
		Logger:     testutil.Logger(t),
		Getwd:      func() (string, error) { return directory, nil },
		Executable: func() (string, error) { return program, nil },
		TempDir:    directory,
	})
}

func TestApplyLockedPolicy(t *testing.T) {
	directory := testutil.ResolvedTempDir(t)
	t.Setenv("SBPLEDGE_TEST_ROOT", directory)

	policy, err := Parse([]byte(`
promises: stdio rpath
unveil:
  - path: ${SBPLEDGE_TEST_ROOT}/config
    permissions: r
  - path: ${SBPLEDGE_TEST_ROOT}/config
    permissions: w
lock: true
`), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	applier := &capturingApplier{}
	state := newState(t, applier)
	if err := Apply(policy, state); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if state.Phase() != pledge.PhaseFrozen {
		t.Fatalf("phase %s", state.Phase())
	}
	if len(applier.profiles) != 1 {
		t.Fatalf("applied %d times", len(applier.profiles))
	}
	configPath := filepath.Join(directory, "config")
	rules := state.Rules()
	if len(rules) != 1 || rules[0].Path != configPath || rules[0].Permissions.String() != "rw" {
		t.Errorf("rules = %v", rules)
	}
	if !strings.Contains(applier.profiles[0], ";; stdio:") || !strings.Contains(applier.profiles[0], ";; exposed: "+configPath+" [rw]") {
		t.Errorf("profile:\n%s", applier.profiles[0])
	}
}

func TestApplyUnlockedPolicy(t *testing.T) {
	policy := &Policy{Promises: &PromiseList{"stdio"}}
	applier := &capturingApplier{}
	state := newState(t, applier)

	if err := Apply(policy, state); err != nil {
		t.Fatal(err)
	}
	if state.Phase() != pledge.PhaseFrozen {
		t.Errorf("phase %s", state.Phase())
	}
	if len(applier.profiles) != 1 {
		t.Fatalf("applied %d times", len(applier.profiles))
	}
	if strings.Contains(applier.profiles[0], "exposure locked") {
		t.Errorf("unlocked policy produced a locked profile:\n%s", applier.profiles[0])
	}
}

func TestDeclareDoesNotApply(t *testing.T) {
	policy := &Policy{Promises: &PromiseList{"stdio"}, Lock: true}
	applier := &capturingApplier{}
	state := newState(t, applier)

	if err := Declare(policy, state); err != nil {
		t.Fatal(err)
	}
	if state.Phase() != pledge.PhaseCapabilitiesDeclared {
		t.Errorf("phase %s", state.Phase())
	}
	if len(applier.profiles) != 0 {
		t.Error("Declare applied the profile")
	}
}

func TestApplyReportsFailingEntry(t *testing.T) {
	policy := &Policy{Unveil: []Exposure{
		{Path: "/etc", Permissions: "r"},
		{Path: "/var", Permissions: "z"},
	}}
	err := Apply(policy, newState(t, &capturingApplier{}))
	if !errors.Is(err, pledge.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
	if !strings.Contains(err.Error(), "unveil[1]") {
		t.Errorf("error does not name the entry: %v", err)
	}
}

func TestApplyUnknownPromise(t *testing.T) {
	policy := &Policy{Promises: &PromiseList{"stdio", "bogus"}, Lock: true}
	applier := &capturingApplier{}
	err := Apply(policy, newState(t, applier))
	if !errors.Is(err, pledge.ErrInvalidArgument) {
		t.Fatalf("got %v", err)
	}
	if len(applier.profiles) != 0 {
		t.Error("invalid policy reached the applier")
	}
}
