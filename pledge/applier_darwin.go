// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin && cgo

package pledge

/*
#cgo LDFLAGS: -Wl,-U,_sandbox_init_with_parameters -Wl,-U,_sandbox_free_error

#include <stdint.h>
#include <stdlib.h>

// Private libsystem_sandbox ABI. Weakly imported so that a missing
// symbol resolves to NULL instead of failing at load time.
extern int sandbox_init_with_parameters(const char *profile, uint64_t flags,
	const char *const parameters[], char **errorbuf) __attribute__((weak_import));
extern void sandbox_free_error(char *errorbuf) __attribute__((weak_import));

static int sbpledge_linked(void) {
	return sandbox_init_with_parameters != NULL;
}

static int sbpledge_init(const char *profile, char **parameters, char **errorbuf) {
	return sandbox_init_with_parameters(profile, 0, (const char *const *)parameters, errorbuf);
}

static void sbpledge_free_error(char *errorbuf) {
	if (sandbox_free_error != NULL) {
		sandbox_free_error(errorbuf);
	}
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

func probePlatform() Applier {
	if C.sbpledge_linked() == 0 {
		return Unavailable("sandbox_init_with_parameters is not linked")
	}
	return &seatbeltApplier{}
}

// seatbeltApplier activates profiles with sandbox_init_with_parameters.
// The kernel accepts one activation per process; a second one would
// stack a new profile rather than replace the first, so it is refused.
type seatbeltApplier struct {
	mu        sync.Mutex
	activated bool
}

func (a *seatbeltApplier) Name() string    { return "seatbelt" }
func (a *seatbeltApplier) Available() bool { return true }

func (a *seatbeltApplier) Apply(profile *GeneratedProfile, params Params) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.activated {
		return errors.New("a Seatbelt profile is already active in this process")
	}

	cProfile := C.CString(profile.Text())
	defer C.free(unsafe.Pointer(cProfile))

	pairs := params.Pairs()
	pointerSize := C.size_t(unsafe.Sizeof((*C.char)(nil)))
	array := C.malloc(C.size_t(len(pairs)+1) * pointerSize)
	defer C.free(array)
	argv := unsafe.Slice((**C.char)(array), len(pairs)+1)
	for i, value := range pairs {
		argv[i] = C.CString(value)
	}
	argv[len(pairs)] = nil
	defer func() {
		for i := range pairs {
			C.free(unsafe.Pointer(argv[i]))
		}
	}()

	var errorbuf *C.char
	if rc := C.sbpledge_init(cProfile, (**C.char)(array), &errorbuf); rc != 0 {
		message := fmt.Sprintf("sandbox_init_with_parameters returned %d", int(rc))
		if errorbuf != nil {
			message = C.GoString(errorbuf)
			C.sbpledge_free_error(errorbuf)
		}
		return errors.New(message)
	}

	a.activated = true
	return nil
}
