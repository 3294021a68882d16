// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pledge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/sbpledge/lib/clock"
	"github.com/bureau-foundation/sbpledge/lib/codec"
)

// AuditRecord is the on-disk form of an Event.
type AuditRecord struct {
	// Timestamp is Unix milliseconds.
	Timestamp        int64    `cbor:"timestamp"`
	Outcome          string   `cbor:"outcome"`
	Message          string   `cbor:"message"`
	Applier          string   `cbor:"applier"`
	Digest           string   `cbor:"digest"`
	Size             int      `cbor:"size"`
	Promises         []string `cbor:"promises"`
	PromisesDeclared bool     `cbor:"promises_declared"`
	Rules            int      `cbor:"rules"`
	Locked           bool     `cbor:"locked"`
	Error            string   `cbor:"error,omitempty"`
}

// AuditLog is an Observer that appends one CBOR record per event to a
// writer. Write failures are logged and otherwise ignored: auditing
// must not change whether confinement succeeds.
type AuditLog struct {
	mu      sync.Mutex
	encoder *codec.Encoder
	clock   clock.Clock
	logger  *slog.Logger
}

// NewAuditLog creates an audit observer writing to w. A nil clock uses
// clock.Real().
func NewAuditLog(w io.Writer, c clock.Clock) *AuditLog {
	if c == nil {
		c = clock.Real()
	}
	return &AuditLog{
		encoder: codec.NewEncoder(w),
		clock:   c,
		logger:  slog.Default(),
	}
}

// SetLogger replaces the logger used to report write failures.
func (a *AuditLog) SetLogger(logger *slog.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger = logger
}

// Observe implements Observer.
func (a *AuditLog) Observe(event Event) {
	record := AuditRecord{
		Timestamp:        a.clock.Now().UnixMilli(),
		Outcome:          event.Outcome.String(),
		Message:          event.Message,
		Applier:          event.Applier,
		Digest:           event.Digest,
		Size:             event.Size,
		Promises:         event.Promises.Names(),
		PromisesDeclared: event.PromisesDeclared,
		Rules:            event.Rules,
		Locked:           event.Locked,
	}
	if event.Err != nil {
		record.Error = event.Err.Error()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.encoder.Encode(record); err != nil {
		a.logger.Warn("writing audit record failed", "error", err)
	}
}

// ReadAuditLog decodes every record in an audit stream.
func ReadAuditLog(r io.Reader) ([]AuditRecord, error) {
	decoder := codec.NewDecoder(r)
	var records []AuditRecord
	for {
		var record AuditRecord
		err := decoder.Decode(&record)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("decoding audit record %d: %w", len(records), err)
		}
		records = append(records, record)
	}
}
