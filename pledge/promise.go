// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"fmt"
	"math/bits"
	"strings"
)

// Promise identifies one capability in the fixed enumeration. The value
// is the bit index of the capability in a [PromiseSet].
type Promise uint8

// The enumeration order is the bit order of the promise mask and the
// order in which fragments are emitted into a profile. Do not reorder.
const (
	PromiseStdio Promise = iota
	PromiseRpath
	PromiseWpath
	PromiseCpath
	PromiseDpath
	PromiseFlock
	PromiseFattr
	PromiseInet
	PromiseUnix
	PromiseDNS
	PromiseTTY
	PromiseRecvfd
	PromiseProc
	PromiseExec
	PromiseID
	PromiseUnveil
	PromiseSendfd
	PromiseSettime
	PromiseProtExec
	PromiseVminfo
	PromiseTmppath
	PromiseChown

	promiseCount
)

var promiseNames = [promiseCount]string{
	PromiseStdio:    "stdio",
	PromiseRpath:    "rpath",
	PromiseWpath:    "wpath",
	PromiseCpath:    "cpath",
	PromiseDpath:    "dpath",
	PromiseFlock:    "flock",
	PromiseFattr:    "fattr",
	PromiseInet:     "inet",
	PromiseUnix:     "unix",
	PromiseDNS:      "dns",
	PromiseTTY:      "tty",
	PromiseRecvfd:   "recvfd",
	PromiseProc:     "proc",
	PromiseExec:     "exec",
	PromiseID:       "id",
	PromiseUnveil:   "unveil",
	PromiseSendfd:   "sendfd",
	PromiseSettime:  "settime",
	PromiseProtExec: "prot_exec",
	PromiseVminfo:   "vminfo",
	PromiseTmppath:  "tmppath",
	PromiseChown:    "chown",
}

// String returns the OpenBSD name of the promise.
func (p Promise) String() string {
	if p < promiseCount {
		return promiseNames[p]
	}
	return fmt.Sprintf("promise(%d)", uint8(p))
}

// Valid reports whether p is part of the enumeration.
func (p Promise) Valid() bool {
	return p < promiseCount
}

// AllPromises returns every promise in enumeration order.
func AllPromises() []Promise {
	all := make([]Promise, promiseCount)
	for i := range all {
		all[i] = Promise(i)
	}
	return all
}

// LookupPromise returns the promise with the given OpenBSD name.
func LookupPromise(name string) (Promise, bool) {
	for i, candidate := range promiseNames {
		if candidate == name {
			return Promise(i), true
		}
	}
	return 0, false
}

// PromiseSet is a bitmask over the promise enumeration. A set bit means
// the capability is permitted. The zero value permits nothing.
type PromiseSet uint64

// validPromiseMask covers every bit that names a promise.
const validPromiseMask = PromiseSet(1)<<promiseCount - 1

// Promises builds a set from individual promises.
func Promises(promises ...Promise) PromiseSet {
	var set PromiseSet
	for _, p := range promises {
		set = set.With(p)
	}
	return set
}

// Has reports whether p is permitted.
func (s PromiseSet) Has(p Promise) bool {
	return p.Valid() && s&(1<<p) != 0
}

// With returns s with p added.
func (s PromiseSet) With(p Promise) PromiseSet {
	if !p.Valid() {
		return s
	}
	return s | 1<<p
}

// Without returns s with p removed.
func (s PromiseSet) Without(p Promise) PromiseSet {
	if !p.Valid() {
		return s
	}
	return s &^ (1 << p)
}

// Unknown returns the bits of s that do not name a promise.
func (s PromiseSet) Unknown() PromiseSet {
	return s &^ validPromiseMask
}

// Len returns the number of permitted promises.
func (s PromiseSet) Len() int {
	return bits.OnesCount64(uint64(s & validPromiseMask))
}

// List returns the permitted promises in enumeration order.
func (s PromiseSet) List() []Promise {
	list := make([]Promise, 0, s.Len())
	for p := Promise(0); p < promiseCount; p++ {
		if s.Has(p) {
			list = append(list, p)
		}
	}
	return list
}

// Names returns the OpenBSD names of the permitted promises in
// enumeration order.
func (s PromiseSet) Names() []string {
	list := s.List()
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.String()
	}
	return names
}

// String renders the set the way it would be written in a pledge call:
// space-separated names in enumeration order.
func (s PromiseSet) String() string {
	return strings.Join(s.Names(), " ")
}

// ParsePromises parses a pledge promise string: names separated by
// spaces or tabs, in any order. Repeats are allowed. An unknown name is
// an error; the empty string yields the empty set.
func ParsePromises(s string) (PromiseSet, error) {
	var set PromiseSet
	for _, name := range strings.Fields(s) {
		p, ok := LookupPromise(name)
		if !ok {
			return 0, newError("parse promises", ErrInvalidArgument, "unknown promise %q", name)
		}
		set = set.With(p)
	}
	return set, nil
}
