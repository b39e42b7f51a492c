// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rerrors defines the sentinel errors for the error-handling
// taxonomy of spec.md §7. Callers wrap these with fmt.Errorf("...: %w", ...)
// so errors.Is still matches the taxonomy kind.
package rerrors

import "errors"

var (
	// ErrConfigMissing: no search path resolves a required file. Fatal at startup.
	ErrConfigMissing = errors.New("rapio: configuration file not found on any search path")

	// ErrFormatMismatch: magic stack disagrees, version too new, or a
	// sanity check fails. Skip the artifact, log severe, continue.
	ErrFormatMismatch = errors.New("rapio: format mismatch")

	// ErrIOTransient: file momentarily unavailable, HTTP 5xx, connection reset.
	ErrIOTransient = errors.New("rapio: transient I/O error")

	// ErrIOFatal: watched directory unmounted with auto-reconnect disabled,
	// or initial attach failed with retries disabled. Abort with non-zero exit.
	ErrIOFatal = errors.New("rapio: fatal I/O error")

	// ErrParse: malformed XML/JSON/FML. Log severe, drop the record, continue.
	ErrParse = errors.New("rapio: parse error")

	// ErrQueueOverflow: bounded output queue rejected a push.
	ErrQueueOverflow = errors.New("rapio: queue overflow")

	// ErrInternalInvariant: magic-stack divergence during read, version
	// larger than canHandle, duplicate option/factory registration.
	ErrInternalInvariant = errors.New("rapio: internal invariant violated")
)
