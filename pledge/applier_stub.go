// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin || !cgo

package pledge

import "runtime"

func probePlatform() Applier {
	if runtime.GOOS == "darwin" {
		return Unavailable("built without cgo; sandbox_init_with_parameters cannot be called")
	}
	return Unavailable("sandbox_init_with_parameters does not exist on " + runtime.GOOS)
}
