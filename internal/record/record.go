// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package record implements the immutable metadata tuple that points at a
// data artifact (spec.md §3 "Record"), its ordering for the priority queue,
// its FML XML round-trip (spec.md §6), and the product/subtype filter
// (spec.md §4.4).
package record

import (
	"strings"

	"github.com/wxpipe/rapio/pkg/rtime"
)

// reserved legacy path tokens skipped when assembling SourcePath.
var reservedPathTokens = map[string]bool{
	"GzippedFile": true,
	"xmldata":     true,
}

// IndexLocationToken is substituted in Params with the owning index's
// resolved path.
const IndexLocationToken = "{IndexLocation}"

// EndDatasetSentinel marks the final record of an archive-mode read,
// recognized by the algorithm driver to trigger clean exit (spec.md §4.5).
const EndDatasetSentinel = "EndDataset"

// Record is an immutable metadata tuple. Construct with New; the only
// mutation allowed post-construction is ResolveIndexLocation, which performs
// the owning-index substitution once the index's resolved path is known.
type Record struct {
	Time        rtime.Time
	Params      []string
	Selections  []string
	KeyValues   map[string]string
	IndexNumber int
	ProcessName string
}

// New builds a Record. Selections may be nil/empty, marking a Message.
func New(t rtime.Time, params, selections []string, indexNumber int) *Record {
	return &Record{
		Time:        t,
		Params:      append([]string(nil), params...),
		Selections:  append([]string(nil), selections...),
		IndexNumber: indexNumber,
	}
}

// IsMessage reports whether r carries no selections (a free-form key/value
// payload instead of a data reference).
func (r *Record) IsMessage() bool { return len(r.Selections) == 0 }

// BuilderKey is the factory name used to materialize this record's artifact.
func (r *Record) BuilderKey() string {
	if len(r.Params) == 0 {
		return ""
	}
	return r.Params[0]
}

// TypeName is the DataType name (selections[1]), empty for messages.
func (r *Record) TypeName() string {
	if len(r.Selections) < 2 {
		return ""
	}
	return r.Selections[1]
}

// SubType is the last selection past name/time, the deepest qualifier
// (e.g. an elevation angle), empty if there is none.
func (r *Record) SubType() string {
	if len(r.Selections) < 3 {
		return ""
	}
	return r.Selections[len(r.Selections)-1]
}

// IsEndDataset reports whether this record is the archive-end sentinel.
func (r *Record) IsEndDataset() bool {
	return len(r.Selections) > 0 && r.Selections[len(r.Selections)-1] == EndDatasetSentinel
}

// ResolveIndexLocation substitutes IndexLocationToken occurrences in Params
// with the owning index's resolved path. Safe to call once after construction.
func (r *Record) ResolveIndexLocation(indexPath string) {
	for i, p := range r.Params {
		if p == IndexLocationToken {
			r.Params[i] = indexPath
		}
	}
}

// SourcePath joins Params[1:] with '/', skipping the legacy reserved tokens.
func (r *Record) SourcePath() string {
	if len(r.Params) < 2 {
		return ""
	}
	parts := make([]string, 0, len(r.Params)-1)
	for _, p := range r.Params[1:] {
		if reservedPathTokens[p] {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "/")
}

// Less implements the queue ordering of spec.md §3: earlier time first; at
// equal time by IndexNumber; then by SubType descending (deeper
// sub-products first); then by TypeName ascending.
func (r *Record) Less(o *Record) bool {
	if c := r.Time.Cmp(o.Time); c != 0 {
		return c < 0
	}
	if r.IndexNumber != o.IndexNumber {
		return r.IndexNumber < o.IndexNumber
	}
	if rs, os := r.SubType(), o.SubType(); rs != os {
		return rs > os // descending
	}
	return r.TypeName() < o.TypeName()
}
