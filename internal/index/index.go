// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package index implements the Index variants of spec.md §4.3: each owns
// zero or more watches and converts their events into Records, applying the
// process-wide RecordFilter at enqueue time before pushing onto the
// RecordQueue.
package index

import (
	"context"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/recordqueue"
	"github.com/wxpipe/rapio/pkg/registry"
	"github.com/wxpipe/rapio/pkg/rurl"
)

// Index owns a data source and emits Records onto a shared RecordQueue.
type Index interface {
	// Bind attaches the shared queue, filter, and owning index number;
	// called once by the driver before InitialRead.
	Bind(q *recordqueue.Queue, filter *record.Filter, indexNumber int)

	// InitialRead performs the archive-mode enumeration (if archive) and/or
	// arms realtime watches (if realtime), per spec.md §4.10 read modes.
	InitialRead(ctx context.Context, realtime, archive bool) error

	// CanHandle reports whether this Index implementation recognizes u,
	// and the protocol name to register it under, used for auto-detection
	// when the operator omits an explicit protocol prefix.
	CanHandle(u *rurl.URL) (ok bool, protocol string)
}

// Registry is keyed by protocol name (spec.md §6: "xml", "fam", "ipoll",
// "iweb", "iexe", "iredis", "fake", "file"), matching the teacher's
// pkg/registry.Factory[T] flat-map idiom instead of a class hierarchy.
var Registry = registry.NewFactory[Index]()

func Register(protocol string, ctor registry.Constructor[Index]) {
	Registry.MustRegister(protocol, ctor)
}

// autoDetectOrder is the fixed ambiguity-resolution order of spec.md §4.3:
// Web -> FML -> XML -> default (file).
var autoDetectOrder = []string{"iweb", "fml", "xml"}

// Detect resolves u to a protocol name by trying each candidate's CanHandle
// in autoDetectOrder, falling back to "file".
func Detect(u *rurl.URL, candidates map[string]Index) string {
	for _, proto := range autoDetectOrder {
		if c, ok := candidates[proto]; ok {
			if ok2, detected := c.CanHandle(u); ok2 {
				return detected
			}
		}
	}
	return "file"
}

// base centralizes the filter-then-push behavior every Index variant shares.
type base struct {
	queue       *recordqueue.Queue
	filter      *record.Filter
	indexNumber int
	indexPath   string
}

func (b *base) Bind(q *recordqueue.Queue, filter *record.Filter, indexNumber int) {
	b.queue = q
	b.filter = filter
	b.indexNumber = indexNumber
}

// emit applies the RecordFilter (spec.md §4.4, enforced at enqueue time)
// and resolves {IndexLocation} before pushing r onto the queue.
func (b *base) emit(r *record.Record) {
	r.IndexNumber = b.indexNumber
	r.ResolveIndexLocation(b.indexPath)
	if b.filter == nil || b.filter.Wanted(r) {
		b.queue.Push(r)
	}
}
