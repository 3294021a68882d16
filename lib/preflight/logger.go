// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preflight

import (
	"io"
	"log/slog"
)

// discardLogger silences the State used to render profiles; results are
// reported through the Validator instead.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
