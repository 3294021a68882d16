// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sbpledge/lib/config"
	"github.com/bureau-foundation/sbpledge/lib/policyfile"
	"github.com/bureau-foundation/sbpledge/lib/process"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// execCmd implements the "exec" command.
func execCmd(args []string, stderr io.Writer, logger *slog.Logger) error {
	flagSet := pflag.NewFlagSet("exec", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)

	var options policyOptions
	options.addFlags(flagSet)

	flagSet.Usage = func() {
		fmt.Fprint(stderr, `sbpledge exec - Confine this process, then execute a program

USAGE
    sbpledge exec [flags] -- <program> [args...]

The program inherits the profile. It must be reachable under the
policy: the profile always allows executing the program itself, but
anything it loads or runs needs rpath/exec promises or exposure.

FLAGS
`)
		flagSet.PrintDefaults()
	}

	if ok, err := parseFlags(flagSet, args); !ok {
		return err
	}
	command := flagSet.Args()
	if len(command) == 0 {
		return fmt.Errorf("%w: a program is required after --", process.ErrUsage)
	}

	cfg, err := loadConfig(options.configPath)
	if err != nil {
		return err
	}
	policy, err := options.policy(flagSet, cfg)
	if err != nil {
		return err
	}

	applier := probeApplier()
	if !applier.Available() {
		switch cfg.Unavailable {
		case config.FallbackError:
			return fmt.Errorf("%w: %s; refusing to run %s unconfined", process.ErrUnconfined, pledge.UnavailableReason(applier), command[0])
		case config.FallbackSkip:
			logger = newLogger(stderr, slog.LevelError)
		}
	}

	program, err := exec.LookPath(command[0])
	if err != nil {
		return err
	}
	program, err = filepath.Abs(program)
	if err != nil {
		return err
	}

	audit, auditFile, err := openAudit(cfg, logger)
	if err != nil {
		return err
	}
	var observer pledge.Observer
	if audit != nil {
		observer = audit
		// Opened close-on-exec; this only matters when exec fails.
		defer auditFile.Close()
	}

	// The re-execution rule in the profile header names the program
	// about to replace this process rather than sbpledge itself.
	state := newState(cfg, logger, applier, observer, func() (string, error) {
		return program, nil
	})
	if err := policyfile.Apply(policy, state); err != nil {
		return err
	}

	logger.Debug("executing program", "program", program, "args", command[1:], "outcome", state.Outcome().String())
	return execProgram(program, command, os.Environ())
}
