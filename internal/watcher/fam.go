// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/pkg/rlog"
)

// reconnectDelay is how long FAMWatcher waits before re-arming a watch that
// fsnotify dropped (e.g. the directory itself was removed and recreated).
const reconnectDelay = 2 * time.Second

// FAMWatcher wraps fsnotify, generalizing the teacher's single global
// watch-loop-over-listeners (internal/util/fswatcher.go) into one watcher
// instance per attached path, each owning its own fsnotify.Watcher and
// reconnect loop.
type FAMWatcher struct {
	w        *fsnotify.Watcher
	path     string
	listener EventListener
	done     chan struct{}
}

func NewFAMWatcher() *FAMWatcher {
	return &FAMWatcher{done: make(chan struct{})}
}

func (f *FAMWatcher) Attach(loop *eventloop.Loop, path string, realtime, archive bool, listener EventListener) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher/fam: new watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return fmt.Errorf("watcher/fam: watch %s: %w", path, err)
	}

	f.w = w
	f.path = path
	f.listener = listener

	go f.watchLoop(loop)
	return nil
}

func (f *FAMWatcher) Detach() {
	close(f.done)
	if f.w != nil {
		f.w.Close()
	}
}

// watchLoop mirrors internal/util/fswatcher.go's select-over-Events/Errors
// shape, but posts the listener callback onto loop instead of calling it
// inline from the fsnotify goroutine (spec.md §5: auxiliary goroutines only
// communicate via the loop's post channel).
func (f *FAMWatcher) watchLoop(loop *eventloop.Loop) {
	for {
		select {
		case <-f.done:
			return
		case err, ok := <-f.w.Errors:
			if !ok {
				return
			}
			rlog.Errorf("watcher/fam: %s: %v", f.path, err)
		case e, ok := <-f.w.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					go f.reconnectAfterLoss()
				}
				continue
			}
			name := e.Name
			loop.Post(func() {
				f.listener.ProcessNewFile(name)
			})
		}
	}
}

// reconnectAfterLoss re-arms the watch on f.path after fsnotify silently
// drops it (directory unmounted then remounted, common on NFS archive
// roots per spec.md §9's discussion of archive-mode replay), retrying every
// reconnectDelay until the add succeeds or the watcher is detached.
func (f *FAMWatcher) reconnectAfterLoss() {
	for {
		select {
		case <-f.done:
			return
		case <-time.After(reconnectDelay):
		}
		if err := f.w.Add(f.path); err != nil {
			rlog.Warnf("watcher/fam: reconnect %s: %v", f.path, err)
			continue
		}
		return
	}
}
