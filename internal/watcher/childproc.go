// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package watcher

import (
	"bufio"
	"io"
	"os/exec"
	"strings"

	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/pkg/rlog"
)

// maxPollPasses is the line count at which readLoop resets its pass
// counter. readLoop reads stdout with a blocking scanner on its own
// goroutine and posts each line to the loop as a separate callback; it puts
// no cap on how many lines it reads between loop turns.
const maxPollPasses = 64

// ChildProcWatcher runs a subprocess and treats each stdout line as a path
// to a newly-produced file, for algorithms chained after an external
// ingest tool. Stderr is drained and discarded except for logging.
type ChildProcWatcher struct {
	cmd      *exec.Cmd
	listener EventListener
	done     chan struct{}
}

func NewChildProcWatcher(command string, args ...string) *ChildProcWatcher {
	return &ChildProcWatcher{cmd: exec.Command(command, args...), done: make(chan struct{})}
}

func (c *ChildProcWatcher) Attach(loop *eventloop.Loop, path string, realtime, archive bool, listener EventListener) error {
	c.listener = listener

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := c.cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := c.cmd.Start(); err != nil {
		return err
	}

	go c.drainStderr(stderr)
	go c.readLoop(loop, stdout)
	return nil
}

func (c *ChildProcWatcher) Detach() {
	close(c.done)
	if c.cmd.Process != nil {
		c.cmd.Process.Kill()
	}
}

func (c *ChildProcWatcher) readLoop(loop *eventloop.Loop, stdout io.ReadCloser) {
	scanner := bufio.NewScanner(stdout)
	passes := 0
	for scanner.Scan() {
		select {
		case <-c.done:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		path := line
		loop.Post(func() {
			c.listener.ProcessNewFile(path)
		})

		passes++
		if passes >= maxPollPasses {
			passes = 0
		}
	}
	c.cmd.Wait()
}

func (c *ChildProcWatcher) drainStderr(stderr io.ReadCloser) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		rlog.Warnf("watcher/childproc: %s", scanner.Text())
	}
}
