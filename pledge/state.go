// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Mode carries platform-specific pledge mode flags. It is recorded but
// not interpreted.
type Mode uint64

// Phase is the position of a State in its lifecycle.
type Phase int

const (
	// PhaseUnconfined is the initial phase: no promises declared, exposure
	// not locked.
	PhaseUnconfined Phase = iota

	// PhaseCapabilitiesDeclared means promises are recorded but the
	// exposure list is still open.
	PhaseCapabilitiesDeclared

	// PhaseLocked means the exposure list is closed and the profile has
	// not been applied yet, either because application has not been
	// triggered or because the platform rejected it.
	PhaseLocked

	// PhaseFrozen is terminal: the profile was applied (or skipped on a
	// platform without the primitive) and nothing may change.
	PhaseFrozen
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfined:
		return "unconfined"
	case PhaseCapabilitiesDeclared:
		return "capabilities-declared"
	case PhaseLocked:
		return "locked"
	case PhaseFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Options configures a State.
type Options struct {
	// Applier activates the generated profile. Defaults to Probe().
	Applier Applier

	// Limits bounds the exposure table and the generated profile.
	Limits Limits

	// Logger for state transitions. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives one Event per application attempt.
	Observer Observer

	// Getwd resolves relative exposure paths. Defaults to os.Getwd.
	Getwd func() (string, error)

	// Executable returns the path of the running program. Defaults to
	// os.Executable.
	Executable func() (string, error)

	// TempDir overrides the temporary directory exposed by the tmppath
	// promise. Empty means $TMPDIR, then /tmp.
	TempDir string
}

// State accumulates promises and exposure rules and applies them once.
// All methods are safe for concurrent use; each call holds the State's
// lock across the whole check, mutation and application.
type State struct {
	mu sync.Mutex

	applier    Applier
	limits     Limits
	logger     *slog.Logger
	observer   Observer
	getwd      func() (string, error)
	executable func() (string, error)
	tempDir    string

	promises         PromiseSet
	promisesDeclared bool
	mode             Mode
	rules            []ExposureRule
	ruleIndex        map[string]int
	locked           bool
	applied          bool
	outcome          Outcome
	lastError        string
}

// New creates an unconfined State.
func New(options Options) *State {
	applier := options.Applier
	if applier == nil {
		applier = Probe()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	getwd := options.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	executable := options.Executable
	if executable == nil {
		executable = os.Executable
	}
	return &State{
		applier:    applier,
		limits:     options.Limits.withDefaults(),
		logger:     logger,
		observer:   options.Observer,
		getwd:      getwd,
		executable: executable,
		tempDir:    options.TempDir,
		ruleIndex:  make(map[string]int),
	}
}

// DeclareCapabilities records the permitted promises, replacing any
// earlier declaration. If the exposure list is already locked the profile
// is applied before returning. Bits outside the enumeration are dropped.
//
// Fails with ErrPermission once the profile has been applied, with
// ErrCapacity if the resulting profile is too large (the previous
// promises are restored), and with ErrPlatform if the primitive rejects
// the profile (the new promises are kept so a retry uses them).
func (s *State) DeclareCapabilities(promises PromiseSet, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "declare capabilities"
	if s.applied {
		return newError(op, ErrPermission, "profile already applied; promises are frozen")
	}

	if unknown := promises.Unknown(); unknown != 0 {
		s.logger.Warn("ignoring unknown promise bits", "bits", fmt.Sprintf("%#x", uint64(unknown)))
		promises &^= unknown
	}

	previousPromises, previousDeclared, previousMode := s.promises, s.promisesDeclared, s.mode
	s.promises = promises
	s.promisesDeclared = true
	s.mode = mode
	s.logger.Debug("promises declared", "promises", promises.String(), "mode", uint64(mode))

	if !s.locked {
		return nil
	}
	err := s.apply(op)
	if errors.Is(err, ErrCapacity) {
		s.promises, s.promisesDeclared, s.mode = previousPromises, previousDeclared, previousMode
	}
	return err
}

// DeclareExposure adds an exposure rule, or locks the exposure list when
// both path and permissions are nil. Locking applies the profile before
// returning.
//
// Any call after the list is locked fails with ErrPermission whatever its
// arguments. A relative path is resolved against the working directory
// at the time of the call. Declaring a path that is already exposed
// unions the permissions into the existing rule.
func (s *State) DeclareExposure(path, permissions *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "declare exposure"
	if s.applied {
		return newError(op, ErrPermission, "profile already applied")
	}
	if s.locked {
		return newError(op, ErrPermission, "exposure list is locked")
	}

	if path == nil && permissions == nil {
		s.locked = true
		s.logger.Debug("exposure locked", "rules", len(s.rules))
		err := s.apply(op)
		if errors.Is(err, ErrCapacity) {
			s.locked = false
		}
		return err
	}
	if path == nil || permissions == nil {
		return newError(op, ErrInvalidArgument, "path and permissions must both be nil to lock, or both be set")
	}

	if err := checkPathText(*path); err != nil {
		return newError(op, ErrInvalidArgument, "%v", err)
	}
	perm, err := ParsePermissions(*permissions)
	if err != nil {
		return newError(op, ErrInvalidArgument, "%v", err)
	}
	resolved, err := resolveExposurePath(*path, s.getwd)
	if err != nil {
		return newError(op, ErrInvalidArgument, "%v", err)
	}

	if i, ok := s.ruleIndex[resolved]; ok {
		s.rules[i].Permissions |= perm
		s.logger.Debug("exposure widened", "path", resolved, "permissions", s.rules[i].Permissions.String())
		return nil
	}
	if len(s.rules) >= s.limits.MaxRules {
		return newError(op, ErrRuleTableFull, "%d paths already exposed", len(s.rules))
	}

	s.ruleIndex[resolved] = len(s.rules)
	s.rules = append(s.rules, ExposureRule{Path: resolved, Permissions: perm})
	s.logger.Debug("exposure declared", "path", resolved, "requested", *path, "permissions", perm.String())
	return nil
}

// Expose declares one exposure rule.
func (s *State) Expose(path, permissions string) error {
	return s.DeclareExposure(&path, &permissions)
}

// LockExposure closes the exposure list and applies the profile.
func (s *State) LockExposure() error {
	return s.DeclareExposure(nil, nil)
}

// Apply generates and activates the profile from the current state
// without locking the exposure list. This is the path for callers that
// only declare promises: OpenBSD's pledge takes effect immediately.
// Exposure rules declared so far are honoured; no more can be added
// afterwards. Apply on a frozen State is a successful no-op.
func (s *State) Apply() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply("apply")
}

// apply runs with s.mu held. Generation failures leave every field as it
// was; platform failures record lastError and leave the State unfrozen.
func (s *State) apply(op string) error {
	if s.applied {
		return nil
	}

	view := s.view()
	profile, err := Generate(view, s.limits.MaxProfileBytes)
	if err != nil {
		s.logger.Error("profile generation failed", "error", err)
		return err
	}

	event := Event{
		Applier:          s.applier.Name(),
		Digest:           profile.Digest(),
		Size:             profile.Len(),
		Promises:         view.Promises,
		PromisesDeclared: view.PromisesDeclared,
		Rules:            len(view.Rules),
		Locked:           view.Locked,
	}

	if !s.applier.Available() {
		reason := UnavailableReason(s.applier)
		s.applied = true
		s.outcome = OutcomeSkipped
		s.logger.Warn(MessageSkipped, "applier", event.Applier, "reason", reason, "digest", event.Digest)
		event.Outcome, event.Message = OutcomeSkipped, MessageSkipped
		s.notify(event)
		return nil
	}

	params, err := s.params()
	if err != nil {
		return s.fail(op, event, err)
	}

	s.logger.Debug("applying profile",
		"applier", event.Applier,
		"bytes", event.Size,
		"digest", event.Digest,
		"profile", profile.Text(),
	)
	if err := s.applier.Apply(profile, params); err != nil {
		return s.fail(op, event, err)
	}

	s.applied = true
	s.outcome = OutcomeApplied
	s.lastError = ""
	s.logger.Info(MessageApplied,
		"applier", event.Applier,
		"promises", view.Promises.String(),
		"rules", len(view.Rules),
		"digest", event.Digest,
	)
	event.Outcome, event.Message = OutcomeApplied, MessageApplied
	s.notify(event)
	return nil
}

func (s *State) fail(op string, event Event, cause error) error {
	s.outcome = OutcomeFailed
	s.lastError = cause.Error()
	s.logger.Error(MessageFailed, "applier", event.Applier, "error", cause)
	event.Outcome, event.Message, event.Err = OutcomeFailed, MessageFailed, cause
	s.notify(event)
	return &Error{Op: op, Kind: ErrPlatform, Detail: cause.Error()}
}

func (s *State) notify(event Event) {
	if s.observer != nil {
		s.observer.Observe(event)
	}
}

// params resolves the named parameters at application time.
func (s *State) params() (Params, error) {
	executable, err := s.executable()
	if err != nil {
		return nil, fmt.Errorf("resolving executable path: %w", err)
	}
	if !filepath.IsAbs(executable) {
		return nil, fmt.Errorf("executable path %q is not absolute", executable)
	}

	return Params{
		ParamProcessPath: resolveExisting(filepath.Clean(executable)),
		ParamTempDir:     resolveExisting(filepath.Clean(TempDir(s.tempDir))),
	}, nil
}

func (s *State) view() StateView {
	return StateView{
		Promises:         s.promises,
		PromisesDeclared: s.promisesDeclared,
		Rules:            slices.Clone(s.rules),
		Locked:           s.locked,
	}
}

// View returns a snapshot suitable for [Generate].
func (s *State) View() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Profile generates the profile the current state would apply, without
// applying it.
func (s *State) Profile() (*GeneratedProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Generate(s.view(), s.limits.MaxProfileBytes)
}

// Promises returns the declared promises and whether any declaration
// has been made.
func (s *State) Promises() (PromiseSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promises, s.promisesDeclared
}

// Mode returns the mode flags of the last promise declaration.
func (s *State) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Rules returns a copy of the exposure rules in declaration order.
func (s *State) Rules() []ExposureRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rules)
}

// Phase returns the lifecycle phase.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.applied:
		return PhaseFrozen
	case s.locked:
		return PhaseLocked
	case s.promisesDeclared:
		return PhaseCapabilitiesDeclared
	default:
		return PhaseUnconfined
	}
}

// Outcome returns the result of the last application attempt.
func (s *State) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// LastError returns the platform message from the last failed
// application, or "" if the last attempt did not fail.
func (s *State) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

var shared = sync.OnceValue(func() *State {
	return New(Options{})
})

// Shared returns the process-wide State, created on first use with the
// probed Applier and default options.
func Shared() *State {
	return shared()
}

type contextKey struct{}

// NewContext returns a context carrying state. Entry points called with
// the returned context (or one derived from it) use state instead of
// Shared().
func NewContext(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, contextKey{}, state)
}

// FromContext returns the State carried by ctx, or Shared().
func FromContext(ctx context.Context) *State {
	if state, ok := ctx.Value(contextKey{}).(*State); ok && state != nil {
		return state
	}
	return Shared()
}

// DeclareCapabilities is the dispatch-layer entry point for promises. It
// uses the State carried by ctx, or the shared State.
func DeclareCapabilities(ctx context.Context, promises PromiseSet, mode Mode) error {
	return FromContext(ctx).DeclareCapabilities(promises, mode)
}

// DeclareExposure is the dispatch-layer entry point for exposure rules
// and locking. It uses the State carried by ctx, or the shared State.
func DeclareExposure(ctx context.Context, path, permissions *string) error {
	return FromContext(ctx).DeclareExposure(path, permissions)
}
