// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"context"
	"errors"
	"strings"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/watcher"
	"github.com/wxpipe/rapio/pkg/rlog"
	"github.com/wxpipe/rapio/pkg/rurl"
)

func init() {
	Register("iexe", func(params string) (Index, error) {
		parts := strings.Fields(params)
		if len(parts) == 0 {
			return nil, errors.New("index/iexe: empty command")
		}
		return NewStreamIndex(parts[0], parts[1:]...), nil
	})
}

// maxStreamWindow bounds the buffered bytes StreamIndex accumulates while
// looking for a closing "</item>"; an unbounded window is the bug spec.md
// §9 calls out as needing a guard.
const maxStreamWindow = 16 << 20 // 16 MiB

const (
	startTag = "<item"
	endTag   = "</item>"
)

// StreamIndex runs a child process and scans its stdout for complete
// "<item>...</item>" windows, parsing each as an FML fragment. The scan is
// linear-time: one pass over the accumulated buffer per received chunk.
type StreamIndex struct {
	base
	command string
	args    []string
	buf     strings.Builder
}

func NewStreamIndex(command string, args ...string) *StreamIndex {
	return &StreamIndex{command: command, args: args}
}

func (s *StreamIndex) CanHandle(u *rurl.URL) (bool, string) {
	return false, "iexe"
}

func (s *StreamIndex) InitialRead(ctx context.Context, realtime, archive bool) error {
	if !realtime {
		return nil
	}
	w := watcher.NewChildProcWatcher(s.command, s.args...)
	loop := loopFromContext(ctx)
	return w.Attach(loop, "", realtime, archive, s)
}

// ProcessNewFile receives one line of the child's stdout at a time (the
// childproc watcher's unit of delivery) and feeds it into the DFA buffer.
func (s *StreamIndex) ProcessNewFile(line string) {
	s.buf.WriteString(line)
	s.buf.WriteString("\n")

	for {
		data := s.buf.String()
		start := strings.Index(data, startTag)
		if start < 0 {
			if len(data) > maxStreamWindow {
				rlog.Severef("index/iexe: discarding %d bytes with no <item> start tag", len(data))
				s.buf.Reset()
			}
			return
		}
		end := strings.Index(data[start:], endTag)
		if end < 0 {
			if len(data)-start > maxStreamWindow {
				rlog.Severef("index/iexe: window exceeded %d bytes with no closing </item>, dropping the oldest <item> start", maxStreamWindow)
				next := strings.Index(data[start+len(startTag):], startTag)
				s.buf.Reset()
				if next >= 0 {
					s.buf.WriteString(data[start+len(startTag)+next:])
					continue
				}
			}
			return
		}
		end += start + len(endTag)

		fragment := data[start:end]
		rest := data[end:]
		s.buf.Reset()
		s.buf.WriteString(rest)

		r, err := record.ParseFML(fragment, "", s.indexNumber)
		if err != nil {
			rlog.Severe("index/iexe: parse fragment:", err)
			continue
		}
		s.emit(r)
	}
}

func (s *StreamIndex) HandlePoll() {}
