// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sbpledge/lib/preflight"
	"github.com/bureau-foundation/sbpledge/lib/process"
)

// doctorCmd implements the "doctor" command.
func doctorCmd(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)

	var options policyOptions
	options.addFlags(flagSet)

	flagSet.Usage = func() {
		fmt.Fprint(stderr, `sbpledge doctor - Check that a policy can be applied here

USAGE
    sbpledge doctor [flags]

FLAGS
`)
		flagSet.PrintDefaults()
	}

	if ok, err := parseFlags(flagSet, args); !ok {
		return err
	}

	cfg, err := loadConfig(options.configPath)
	if err != nil {
		return err
	}
	policy, err := options.rawPolicy(flagSet)
	if err != nil {
		return err
	}

	validator := preflight.NewValidator()
	validator.ValidateAll(probeApplier(), cfg, policy)
	validator.PrintResults(stdout)

	if validator.HasErrors() {
		return fmt.Errorf("%w: preflight checks failed", process.ErrUnconfined)
	}
	return nil
}
