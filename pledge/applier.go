// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"os"
	"sort"
	"sync"
)

// Named parameters passed to the platform primitive alongside the
// profile. Profiles refer to them with (param "NAME").
const (
	// ParamProcessPath is the resolved path of the running executable,
	// used by the header's self re-execution rule.
	ParamProcessPath = "PROCESS_PATH"

	// ParamTempDir is the resolved temporary directory, used by the
	// tmppath fragment.
	ParamTempDir = "TMPDIR"
)

// Params holds the named parameters for one application.
type Params map[string]string

// Pairs flattens the parameters into name, value, name, value order
// sorted by name, the layout sandbox_init_with_parameters expects.
func (p Params) Pairs() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, name, p[name])
	}
	return pairs
}

// Applier hands a generated profile to the platform confinement
// primitive.
type Applier interface {
	// Name identifies the applier in logs and events.
	Name() string

	// Available reports whether the primitive is present. When it is
	// not, State treats application as a documented no-op.
	Available() bool

	// Apply activates profile for the rest of the process lifetime. The
	// returned error carries the platform's message verbatim.
	Apply(profile *GeneratedProfile, params Params) error
}

// Unavailable returns an Applier standing in for an absent primitive.
// Apply succeeds without confining anything.
func Unavailable(reason string) Applier {
	return unavailableApplier{reason: reason}
}

type unavailableApplier struct {
	reason string
}

func (a unavailableApplier) Name() string    { return "unavailable" }
func (a unavailableApplier) Available() bool { return false }

// Reason explains why the primitive is absent.
func (a unavailableApplier) Reason() string { return a.reason }

func (a unavailableApplier) Apply(*GeneratedProfile, Params) error {
	return nil
}

// UnavailableReason explains why applier cannot confine. Appliers that
// give no explanation get a generic one.
func UnavailableReason(applier Applier) string {
	if explained, ok := applier.(interface{ Reason() string }); ok {
		return explained.Reason()
	}
	return "primitive unavailable"
}

// TempDir returns the directory the tmppath promise grants: override
// when set, then $TMPDIR, then /tmp.
func TempDir(override string) string {
	if override != "" {
		return override
	}
	if directory := os.Getenv("TMPDIR"); directory != "" {
		return directory
	}
	return "/tmp"
}

var probe = sync.OnceValue(probePlatform)

// Probe returns the process-wide Applier. The platform primitive is
// looked up on the first call only; later calls return the same value.
func Probe() Applier {
	return probe()
}
