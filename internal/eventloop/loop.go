// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package eventloop implements the single-threaded cooperative scheduler
// (spec.md §4.1): exactly one goroutine executes handler Action()s.
// Auxiliary goroutines (HTTP accept loop, watcher backends, NATS callbacks)
// communicate only by posting closures to the loop, mirroring the teacher's
// channel-based archiveChannel worker (internal/archiver/archiveWorker.go)
// and pkg/nats.Client's mutex-guarded subscription list — no shared mutable
// state is touched directly from them.
package eventloop

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wxpipe/rapio/pkg/rlog"
)

// Handler is a unit of cooperative work. Start is called once at loop
// startup; Action is invoked on the loop goroutine whenever SetReady has
// scheduled it.
type Handler interface {
	Start(l *Loop)
	Action()
}

// Loop is the process-wide cooperative scheduler.
type Loop struct {
	handlers []Handler
	post     chan func()

	exitCode int
	exitOnce sync.Once
	exitCh   chan struct{}
}

func New() *Loop {
	return &Loop{
		post:   make(chan func(), 256),
		exitCh: make(chan struct{}),
	}
}

// Register adds a handler to be started when Run begins.
func (l *Loop) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Post schedules fn to run on the loop goroutine. Safe from any goroutine —
// this is the explicit scheduling interface that breaks the
// Loop/Handler reference cycle (spec.md §9 design note).
func (l *Loop) Post(fn func()) {
	select {
	case l.post <- fn:
	case <-l.exitCh:
	}
}

// Run blocks until Exit is called (from any goroutine) or ctx is canceled.
// Panics escaping a handler's Action are recovered and logged severe; they
// do not stop the loop (spec.md §4.1 failure semantics) unless they escape
// Run itself (they cannot, by construction).
func (l *Loop) Run(ctx context.Context) int {
	for _, h := range l.handlers {
		h.Start(l)
	}
	for {
		select {
		case fn := <-l.post:
			l.runGuarded(fn)
		case <-l.exitCh:
			return l.exitCode
		case <-ctx.Done():
			return l.exitCode
		}
	}
}

func (l *Loop) runGuarded(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			rlog.Severe("eventloop: recovered panic in handler:", r)
		}
	}()
	fn()
}

// Exit stops the loop after the current handler returns, with the given
// process exit code.
func (l *Loop) Exit(code int) {
	l.exitOnce.Do(func() {
		l.exitCode = code
		close(l.exitCh)
	})
}

func (l *Loop) ExitCode() int { return l.exitCode }

// Ready is a compare-and-swap guarded at-most-one-pending-dispatch gate,
// matching the teacher's general preference for explicit lock-light
// concurrency. SetReady posts action to the loop only if no dispatch of it
// is currently pending; Action clears the pending flag before running so a
// SetReady racing with the tail of Action schedules exactly one more run.
type Ready struct {
	scheduled atomic.Bool
	loop      *Loop
	action    func()
}

func NewReady(l *Loop, action func()) *Ready {
	return &Ready{loop: l, action: action}
}

// SetReady schedules one execution of action on the loop thread, coalescing
// duplicate calls made before that execution starts.
func (r *Ready) SetReady() {
	if r.scheduled.CompareAndSwap(false, true) {
		r.loop.Post(func() {
			r.scheduled.Store(false)
			r.action()
		})
	}
}
