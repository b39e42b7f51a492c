// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package watcher attaches a Listener to a data source (a directory, a
// child process, a web polling loop, or a pub/sub subject) and posts
// eventloop actions back onto an owning Loop whenever new data shows up.
package watcher

import "github.com/wxpipe/rapio/internal/eventloop"

// EventListener reacts to changes a Watcher observes. Implementations are
// typically Index values, whose ProcessNewFile/HandlePoll drives discovery
// of new Records.
type EventListener interface {
	ProcessNewFile(path string)
	HandlePoll()
}

// Watcher attaches a listener to path and delivers events onto loop until
// Detach is called.
type Watcher interface {
	Attach(loop *eventloop.Loop, path string, realtime, archive bool, listener EventListener) error
	Detach()
}
