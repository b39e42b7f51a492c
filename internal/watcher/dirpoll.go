// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package watcher

import (
	"os"
	"path/filepath"
	"time"

	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/pkg/rlog"
)

// DirPollWatcher recursively scans a directory tree on a tick, reporting
// files whose mtime advanced past a per-watch high-watermark. Used for
// archive roots mounted read-only where fsnotify isn't available (e.g.
// certain network filesystems), per spec.md §4.2's poller fallback.
type DirPollWatcher struct {
	interval time.Duration
	path     string
	listener EventListener
	highMark time.Time
	done     chan struct{}
}

func NewDirPollWatcher(interval time.Duration) *DirPollWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &DirPollWatcher{interval: interval, done: make(chan struct{})}
}

func (d *DirPollWatcher) Attach(loop *eventloop.Loop, path string, realtime, archive bool, listener EventListener) error {
	d.path = path
	d.listener = listener
	if archive {
		d.highMark = time.Time{}
	} else {
		d.highMark = time.Now()
	}

	go d.pollLoop(loop)
	return nil
}

func (d *DirPollWatcher) Detach() {
	close(d.done)
}

func (d *DirPollWatcher) pollLoop(loop *eventloop.Loop) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.scanOnce(loop)
		}
	}
}

func (d *DirPollWatcher) scanOnce(loop *eventloop.Loop) {
	newMark := d.highMark
	var found []string

	err := filepath.WalkDir(d.path, func(p string, entry os.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(d.highMark) {
			found = append(found, p)
			if info.ModTime().After(newMark) {
				newMark = info.ModTime()
			}
		}
		return nil
	})
	if err != nil {
		rlog.Warnf("watcher/dirpoll: scan %s: %v", d.path, err)
		return
	}

	d.highMark = newMark
	for _, p := range found {
		path := p
		loop.Post(func() {
			d.listener.ProcessNewFile(path)
		})
	}
}
