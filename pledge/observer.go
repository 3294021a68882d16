// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

// Outcome records what the last application attempt did.
type Outcome int

const (
	// OutcomeNone means no application has been attempted.
	OutcomeNone Outcome = iota

	// OutcomeApplied means the platform primitive accepted the profile
	// and the process is confined.
	OutcomeApplied

	// OutcomeSkipped means the primitive is unavailable. The state is
	// frozen but nothing is confined.
	OutcomeSkipped

	// OutcomeFailed means the primitive rejected the profile. The state
	// stays unfrozen so the caller can retry.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeApplied:
		return "applied"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event messages. Skipped and applied are deliberately distinct so that
// an observer can never mistake a missing primitive for confinement.
const (
	MessageApplied = "confinement applied"
	MessageSkipped = "confinement skipped: primitive unavailable"
	MessageFailed  = "confinement failed"
)

// Event describes one application attempt.
type Event struct {
	Outcome Outcome
	Message string

	// Applier is the name of the Applier that handled the attempt.
	Applier string

	// Digest and Size describe the generated profile.
	Digest string
	Size   int

	Promises         PromiseSet
	PromisesDeclared bool
	Rules            int
	Locked           bool

	// Err is the platform error for OutcomeFailed, nil otherwise.
	Err error
}

// Observer receives application events. Observe is called with the
// State's lock held and must not call back into the State.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(event).
func (f ObserverFunc) Observe(event Event) {
	f(event)
}
