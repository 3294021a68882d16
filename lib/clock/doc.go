// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Code that stamps records with the current time accepts a Clock
// instead of calling time.Now directly. Production passes Real(); tests
// pass Fake() and move time explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	log := pledge.NewAuditLog(buffer, c)
//	c.Advance(5 * time.Second)
package clock
