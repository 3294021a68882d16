// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"fmt"
	"slices"
)

// Fragment is the SBPL that authorizes one promise.
type Fragment struct {
	// Comment is emitted as an SBPL comment above the rules.
	Comment string

	// Rules are complete SBPL expressions emitted verbatim.
	Rules []string

	// FileOps are filesystem operations the promise grants on any path.
	// The generator scopes them to the whole filesystem only while no
	// exposure is in effect; once exposure rules exist, the rules decide
	// which paths these operations reach.
	FileOps []string
}

// Empty reports whether the fragment adds nothing beyond the default.
func (f Fragment) Empty() bool {
	return len(f.Rules) == 0 && len(f.FileOps) == 0
}

// deviceNodes are the character devices every stdio program touches.
var deviceNodes = []string{
	"/dev/stdin",
	"/dev/stdout",
	"/dev/stderr",
	"/dev/null",
	"/dev/zero",
	"/dev/random",
	"/dev/urandom",
	"/dev/dtracehelper",
}

func literalFilters(paths []string) string {
	var out string
	for _, path := range paths {
		out += "\n  (literal " + quote(path) + ")"
	}
	return out
}

var promiseTable = map[Promise]Fragment{
	PromiseStdio: {
		Comment: "stdio: descriptor I/O, standard device nodes, basic system queries",
		Rules: []string{
			"(allow file-read* file-write*" + literalFilters(deviceNodes) + ")",
			"(allow file-ioctl (literal \"/dev/dtracehelper\"))",
			"(allow sysctl-read)",
			"(allow signal (target self))",
			"(allow mach-lookup\n  (global-name \"com.apple.system.logger\")\n  (global-name \"com.apple.system.notification_center\"))",
			"(allow mach-priv-host-port)",
		},
	},
	PromiseRpath: {
		Comment: "rpath: read-only filesystem access",
		FileOps: []string{"file-read*"},
	},
	PromiseWpath: {
		Comment: "wpath: write to existing files",
		FileOps: []string{"file-write-data"},
	},
	PromiseCpath: {
		Comment: "cpath: create, remove, link and rename filesystem entries",
		FileOps: []string{"file-write-create", "file-write-unlink", "file-link"},
	},
	PromiseDpath: {
		Comment: "dpath: create special files",
		Rules: []string{
			"(allow file-write-create\n  (vnode-type FIFO)\n  (vnode-type CHARACTER-DEVICE)\n  (vnode-type BLOCK-DEVICE))",
		},
	},
	PromiseFlock: {
		Comment: "flock: advisory locking is not mediated separately",
	},
	PromiseFattr: {
		Comment: "fattr: change file modes, times and flags",
		FileOps: []string{"file-write-mode", "file-write-times", "file-write-flags", "file-write-xattr"},
	},
	PromiseInet: {
		Comment: "inet: IPv4 and IPv6 sockets",
		Rules: []string{
			"(allow system-socket)",
			"(allow network-outbound (remote ip))",
			"(allow network-inbound (local ip))",
			"(allow network-bind (local ip))",
		},
	},
	PromiseUnix: {
		Comment: "unix: AF_UNIX sockets",
		Rules: []string{
			"(allow system-socket)",
			"(allow network-outbound (remote unix-socket))",
			"(allow network-inbound (local unix-socket))",
			"(allow network-bind (local unix-socket))",
		},
	},
	PromiseDNS: {
		Comment: "dns: resolver configuration and name service queries",
		Rules: []string{
			"(allow system-socket)",
			"(allow network-outbound\n  (remote udp \"*:53\")\n  (remote tcp \"*:53\")\n  (literal \"/private/var/run/mDNSResponder\"))",
			"(allow mach-lookup\n  (global-name \"com.apple.dnssd.service\")\n  (global-name \"com.apple.mDNSResponder\"))",
			"(allow file-read*" + literalFilters([]string{
				"/etc/hosts",
				"/etc/resolv.conf",
				"/private/etc/hosts",
				"/private/etc/resolv.conf",
				"/private/var/run/resolv.conf",
			}) + ")",
		},
	},
	PromiseTTY: {
		Comment: "tty: controlling terminal",
		Rules: []string{
			"(allow file-read* file-write* file-ioctl\n  (literal \"/dev/tty\")\n  (regex #\"^/dev/ttys[0-9]+$\"))",
		},
	},
	PromiseRecvfd: {
		Comment: "recvfd: descriptor passing is not mediated separately",
	},
	PromiseProc: {
		Comment: "proc: fork and signal processes in the same sandbox",
		Rules: []string{
			"(allow process-fork)",
			"(allow signal (target same-sandbox))",
			"(allow process-info* (target same-sandbox))",
		},
	},
	PromiseExec: {
		Comment: "exec: execute programs",
		FileOps: []string{"process-exec*"},
	},
	PromiseID: {
		Comment: "id: credential changes are not mediated separately",
	},
	PromiseUnveil: {
		Comment: "unveil: exposure changes are governed by lock state",
	},
	PromiseSendfd: {
		Comment: "sendfd: descriptor passing is not mediated separately",
	},
	PromiseSettime: {
		Comment: "settime: set the system clock",
		Rules: []string{
			"(allow system-set-time)",
		},
	},
	PromiseProtExec: {
		Comment: "prot_exec: map memory executable",
		Rules: []string{
			"(allow file-map-executable)",
		},
	},
	PromiseVminfo: {
		Comment: "vminfo: inspect processes and memory statistics",
		Rules: []string{
			"(allow process-info-listpids)",
			"(allow process-info-pidinfo)",
			"(allow mach-task-name)",
		},
	},
	PromiseTmppath: {
		Comment: "tmppath: the temporary directory",
		Rules: []string{
			"(allow file-read* file-write-data file-write-create file-write-unlink\n  (subpath (param \"" + ParamTempDir + "\")))",
		},
	},
	PromiseChown: {
		Comment: "chown: change file ownership",
		FileOps: []string{"file-write-owner"},
	},
}

func init() {
	for p := Promise(0); p < promiseCount; p++ {
		if _, ok := promiseTable[p]; !ok {
			panic(fmt.Sprintf("pledge: promise %s has no SBPL fragment", p))
		}
	}
}

// Lookup returns the SBPL fragment authorizing p. The table is total over
// the enumeration; invalid promises return an empty fragment.
func Lookup(p Promise) Fragment {
	fragment := promiseTable[p]
	return Fragment{
		Comment: fragment.Comment,
		Rules:   slices.Clone(fragment.Rules),
		FileOps: slices.Clone(fragment.FileOps),
	}
}
