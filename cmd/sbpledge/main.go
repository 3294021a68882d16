// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/sbpledge/lib/process"
	"github.com/bureau-foundation/sbpledge/lib/version"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// probeApplier is replaced in tests so that exec never confines the
// test binary.
var probeApplier = pledge.Probe

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return fmt.Errorf("%w: no command given", process.ErrUsage)
	}

	logger := newLogger(stderr, slog.LevelInfo)

	command := args[0]
	rest := args[1:]

	switch command {
	case "exec":
		return execCmd(rest, stderr, logger)
	case "render":
		return renderCmd(rest, stdout, stderr, logger)
	case "validate":
		return validateCmd(rest, stdout, stderr)
	case "doctor":
		return doctorCmd(rest, stdout, stderr)
	case "promises":
		return promisesCmd(rest, stdout, stderr)
	case "audit":
		return auditCmd(rest, stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "sbpledge %s\n", version.Full(describeApplier(probeApplier())))
		return nil
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return fmt.Errorf("%w: unknown command %q", process.ErrUsage, command)
	}
}

// newLogger writes human-readable text when w is a terminal and JSON
// records otherwise, so piped output stays machine-parseable.
// SBPLEDGE_DEBUG lowers the level to debug, which includes the full
// profile text on application.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	if os.Getenv("SBPLEDGE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(file.Fd()))
}

// parseFlags parses args and reports whether the command should run.
// A help request prints usage and stops without an error.
func parseFlags(flagSet *pflag.FlagSet, args []string) (bool, error) {
	err := flagSet.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", process.ErrUsage, err)
	}
	return true, nil
}

func describeApplier(applier pledge.Applier) string {
	if applier.Available() {
		return applier.Name()
	}
	return applier.Name() + " (" + pledge.UnavailableReason(applier) + ")"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `sbpledge - OpenBSD pledge and unveil semantics on macOS Seatbelt

USAGE
    sbpledge <command> [flags] [-- <args>...]

COMMANDS
    exec       Confine this process, then execute a program
    render     Print the Seatbelt profile a policy produces
    validate   Check policy files
    doctor     Check that a policy can be applied on this machine
    promises   List promises and what they grant
    audit      Print an audit log
    version    Show version

EXAMPLES
    # Run a tool that may only read /usr and its config directory
    sbpledge exec -p "stdio rpath" -u /usr:rx -u ~/.config/tool:r --lock -- tool

    # Review the profile a policy file produces
    sbpledge render --policy client.yaml

ENVIRONMENT
    SBPLEDGE_CONFIG   Path to the configuration file
    SBPLEDGE_DEBUG    Enable debug logging (includes generated profiles)
`)
}
