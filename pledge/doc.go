// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pledge confines a macOS process using the pledge/unveil model by
// translating declared promises and exposure rules into a Seatbelt (SBPL)
// profile and activating it once with sandbox_init_with_parameters.
//
// The central type is [State], which accumulates a [PromiseSet] and a list
// of [ExposureRule] values until the exposure list is locked. Locking (or
// an explicit [State.Apply]) generates one profile from the accumulated
// state ([Generate]) and hands it to an [Applier]. Once the profile has
// been applied the state is frozen: promises cannot be redeclared and no
// exposure can be added.
//
// [Lookup] maps each promise to the SBPL fragment that authorizes it.
// Filesystem operations in a fragment are path-scoped: they are granted on
// the whole filesystem only while no exposure is in effect. Once any
// exposure rule exists, path scope comes from the rules alone.
//
// [Probe] checks once per process whether the platform primitive is
// linked. When it is not (other operating systems, cgo disabled, or a
// macOS without the symbol), declarations still succeed and application
// degrades to a no-op that reports [OutcomeSkipped] to the [Observer]
// rather than [OutcomeApplied].
//
// Known divergences from OpenBSD:
//
//   - Overlapping exposure rules for one path are unioned, not replaced.
//   - A State is not implicitly process-wide. Callers choose between
//     [Shared] and per-context instances ([NewContext]); threads started
//     before confinement are covered only by the kernel, not by the
//     bookkeeping of other States.
//   - Tightening after application is not supported; it fails with
//     [ErrPermission].
package pledge
