// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policyfile

import (
	"fmt"

	"github.com/bureau-foundation/sbpledge/lib/config"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// PromiseSet converts the promise list. The boolean is false when the
// policy does not declare promises.
func (p *Policy) PromiseSet() (pledge.PromiseSet, bool, error) {
	if p.Promises == nil {
		return 0, false, nil
	}
	set, err := pledge.ParsePromises(p.Promises.String())
	if err != nil {
		return 0, true, err
	}
	return set, true, nil
}

// Declare records the policy on state without locking: exposure rules
// first, in order, then promises. Paths undergo ${VAR} expansion.
func Declare(policy *Policy, state *pledge.State) error {
	promises, declared, err := policy.PromiseSet()
	if err != nil {
		return err
	}

	for index, exposure := range policy.Unveil {
		path := config.Expand(exposure.Path)
		if err := state.Expose(path, exposure.Permissions); err != nil {
			return fmt.Errorf("unveil[%d] %q: %w", index, path, err)
		}
	}

	if declared {
		if err := state.DeclareCapabilities(promises, pledge.Mode(policy.Mode)); err != nil {
			return err
		}
	}
	return nil
}

// Apply declares the policy and activates the resulting profile. A
// policy that asks for a lock closes the exposure list first; otherwise
// the profile is applied with the list still open.
func Apply(policy *Policy, state *pledge.State) error {
	if err := Declare(policy, state); err != nil {
		return err
	}
	if policy.Lock {
		return state.LockExposure()
	}
	return state.Apply()
}
