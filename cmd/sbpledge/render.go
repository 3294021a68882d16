// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sbpledge/lib/policyfile"
	"github.com/bureau-foundation/sbpledge/lib/process"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// renderCmd implements the "render" command.
func renderCmd(args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)

	var options policyOptions
	options.addFlags(flagSet)
	digestOnly := flagSet.Bool("digest", false, "print only the BLAKE3 digest of the profile")

	flagSet.Usage = func() {
		fmt.Fprint(stderr, `sbpledge render - Print the Seatbelt profile a policy produces

USAGE
    sbpledge render [flags]

FLAGS
`)
		flagSet.PrintDefaults()
	}

	if ok, err := parseFlags(flagSet, args); !ok {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("%w: render takes no arguments, got %q", process.ErrUsage, flagSet.Args())
	}

	cfg, err := loadConfig(options.configPath)
	if err != nil {
		return err
	}
	policy, err := options.policy(flagSet, cfg)
	if err != nil {
		return err
	}

	// The applier is never reached: the policy is declared without
	// locking and the lock is folded into the view instead.
	state := newState(cfg, logger, pledge.Unavailable("render does not apply profiles"), nil, nil)
	if err := policyfile.Declare(policy, state); err != nil {
		return err
	}
	view := state.View()
	view.Locked = policy.Lock

	profile, err := pledge.Generate(view, cfg.Limits.MaxProfileBytes)
	if err != nil {
		return err
	}
	if *digestOnly {
		fmt.Fprintln(stdout, profile.Digest())
		return nil
	}
	fmt.Fprint(stdout, profile.Text())
	return nil
}
