// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sbpledge/lib/codec"
	"github.com/bureau-foundation/sbpledge/lib/process"
	"github.com/bureau-foundation/sbpledge/pledge"
)

// auditCmd implements the "audit" command.
func auditCmd(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("audit", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	diagnostic := flagSet.Bool("diag", false, "print raw records in CBOR diagnostic notation")

	flagSet.Usage = func() {
		fmt.Fprint(stderr, `sbpledge audit - Print an audit log

USAGE
    sbpledge audit [--diag] <file>

FLAGS
`)
		flagSet.PrintDefaults()
	}

	if ok, err := parseFlags(flagSet, args); !ok {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("%w: exactly one audit file is required", process.ErrUsage)
	}

	data, err := os.ReadFile(flagSet.Arg(0))
	if err != nil {
		return err
	}

	if *diagnostic {
		notation, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("%s: %w", flagSet.Arg(0), err)
		}
		fmt.Fprint(stdout, notation)
		return nil
	}

	// Print what decoded even when the tail of the log is damaged.
	records, readErr := pledge.ReadAuditLog(bytes.NewReader(data))
	writer := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "TIME\tOUTCOME\tAPPLIER\tDIGEST\tRULES\tPROMISES\tERROR")
	for _, record := range records {
		digest := record.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		promises := "(undeclared)"
		if record.PromisesDeclared {
			promises = strings.Join(record.Promises, " ")
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			time.UnixMilli(record.Timestamp).UTC().Format(time.RFC3339),
			record.Outcome,
			record.Applier,
			digest,
			record.Rules,
			promises,
			record.Error,
		)
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if readErr != nil {
		return fmt.Errorf("%s: %w", flagSet.Arg(0), readErr)
	}
	return nil
}
