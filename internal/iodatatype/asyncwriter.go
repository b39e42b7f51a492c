// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iodatatype

import (
	"sync"

	"github.com/wxpipe/rapio/pkg/rerrors"
)

// WritePool is a bounded worker pool for output writes, grounded on
// base/rThreadGroup.h's ThreadGroup/WriteOutputThreadTask: a fixed number
// of workers drain a fixed-capacity task queue, and a submit against a
// full queue is rejected rather than blocking the caller (spec.md §7's
// "bounded thread-pool output queue", the only source of Queue-overflow).
type WritePool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewWritePool starts workers goroutines draining a queue capped at
// maxQueueSize pending tasks.
func NewWritePool(workers, maxQueueSize int) *WritePool {
	if workers < 1 {
		workers = 1
	}
	if maxQueueSize < 1 {
		maxQueueSize = 1
	}
	p := &WritePool{tasks: make(chan func(), maxQueueSize)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *WritePool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues task without blocking. It returns rerrors.ErrQueueOverflow
// if the queue is already full; the caller retries or drops the write
// (spec.md §7), matching ThreadGroup::enqueueThreadTask's false return.
func (p *WritePool) Submit(task func()) error {
	select {
	case p.tasks <- task:
		return nil
	default:
		return rerrors.ErrQueueOverflow
	}
}

// Close stops accepting new tasks and blocks until every already-queued
// task has run, mirroring ThreadGroup's join-on-destruction shutdown.
func (p *WritePool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
