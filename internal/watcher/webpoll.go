// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package watcher

import (
	"time"

	"github.com/wxpipe/rapio/internal/eventloop"
)

// WebPollWatcher ticks a listener's HandlePoll on an interval, the shape
// a WebIndex uses to pull new records from a remote webserver cursor
// endpoint (spec.md §4.3's WebIndex, §4.9's WebMessageQueue counterpart).
type WebPollWatcher struct {
	interval time.Duration
	done     chan struct{}
}

func NewWebPollWatcher(interval time.Duration) *WebPollWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &WebPollWatcher{interval: interval, done: make(chan struct{})}
}

func (w *WebPollWatcher) Attach(loop *eventloop.Loop, path string, realtime, archive bool, listener EventListener) error {
	go w.pollLoop(loop, listener)
	return nil
}

func (w *WebPollWatcher) Detach() {
	close(w.done)
}

func (w *WebPollWatcher) pollLoop(loop *eventloop.Loop, listener EventListener) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			loop.Post(listener.HandlePoll)
		}
	}
}
