// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recordqueue implements the single time-ordered priority queue of
// pending records (spec.md §4.5), grounded on the channel-draining worker
// shape of internal/archiver/archiveWorker.go, generalized from a bounded
// channel to a container/heap priority queue with a bounded per-tick drain.
package recordqueue

import (
	"container/heap"
	"sync"
	"sync/atomic"

	"github.com/wxpipe/rapio/internal/record"
)

// Dispatcher receives records popped from the queue, in order.
type Dispatcher interface {
	HandleRecordEvent(r *record.Record)
}

// heapSlice is the container/heap backing store, ordered so the
// lowest-time record has the highest pop priority.
type heapSlice []*record.Record

func (h heapSlice) Len() int            { return len(h) }
func (h heapSlice) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h heapSlice) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *heapSlice) Push(x interface{}) { *h = append(*h, x.(*record.Record)) }
func (h *heapSlice) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Queue is the process-wide record queue. It does not implement
// eventloop.Handler itself (it has no Start, and Action reports whether
// records remain); internal/algorithm's queueHandler adapts it to a Loop.
type Queue struct {
	mu sync.Mutex
	h  heapSlice

	dispatcher Dispatcher

	pushedRecords atomic.Int64
	poppedRecords atomic.Int64

	// MaxItemsPerTick bounds work per Action() invocation (spec.md §5).
	MaxItemsPerTick int

	readyFn func()
}

// DefaultMaxItemsPerTick caps a single drain, matching the "bounded work
// per handler invocation" rule of the concurrency model.
const DefaultMaxItemsPerTick = 256

func New(dispatcher Dispatcher) *Queue {
	q := &Queue{dispatcher: dispatcher, MaxItemsPerTick: DefaultMaxItemsPerTick}
	heap.Init(&q.h)
	return q
}

// OnReady installs the callback invoked whenever Push makes the queue
// dispatch-worthy (normally eventloop.Handler's setReady, wired by the caller
// when registering this Queue with a Loop).
func (q *Queue) OnReady(fn func()) { q.readyFn = fn }

// Push enqueues r, keeping heap order, and notifies the ready callback.
func (q *Queue) Push(r *record.Record) {
	q.mu.Lock()
	heap.Push(&q.h, r)
	q.mu.Unlock()
	q.pushedRecords.Add(1)
	if q.readyFn != nil {
		q.readyFn()
	}
}

// Action pops a bounded batch and dispatches each in order. If records
// remain after the batch, the caller should re-arm Action (the Loop wiring
// does this by re-invoking OnReady's effect).
func (q *Queue) Action() (remaining bool) {
	for i := 0; i < q.MaxItemsPerTick; i++ {
		q.mu.Lock()
		if q.h.Len() == 0 {
			q.mu.Unlock()
			return false
		}
		r := heap.Pop(&q.h).(*record.Record)
		q.mu.Unlock()

		q.poppedRecords.Add(1)
		if q.dispatcher != nil {
			q.dispatcher.HandleRecordEvent(r)
		}
	}
	q.mu.Lock()
	remaining = q.h.Len() > 0
	q.mu.Unlock()
	return remaining
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}

func (q *Queue) PushedRecords() int64 { return q.pushedRecords.Load() }
func (q *Queue) PoppedRecords() int64 { return q.poppedRecords.Load() }
