// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package algorithm

import "github.com/wxpipe/rapio/pkg/rtime"

// ReadMode selects which of an Index's initialRead phases run (spec.md
// §4.10).
type ReadMode string

const (
	ReadModeOld ReadMode = "old" // archive-only: no watchers, exit 0 when drained
	ReadModeNew ReadMode = "new" // realtime-only: no initial enumeration
	ReadModeAll ReadMode = "all" // both
)

// parseReadMode maps the "-r" flag value to a ReadMode, defaulting to
// ReadModeNew (spec.md §4.10 "default: new").
func parseReadMode(s string) ReadMode {
	switch ReadMode(s) {
	case ReadModeOld, ReadModeAll:
		return ReadMode(s)
	default:
		return ReadModeNew
	}
}

func (m ReadMode) realtime() bool { return m == ReadModeNew || m == ReadModeAll }
func (m ReadMode) archive() bool  { return m == ReadModeOld || m == ReadModeAll }

// historyWindow tracks lastHistoryTime = max(currentClock, maxSeenRecordTime)
// and the derived inTimeWindow test (spec.md §4.10).
type historyWindow struct {
	maxHistorySeconds int
	maxSeenRecordTime rtime.Time
}

func newHistoryWindow(maxHistorySeconds int) *historyWindow {
	if maxHistorySeconds <= 0 {
		maxHistorySeconds = 900
	}
	return &historyWindow{maxHistorySeconds: maxHistorySeconds}
}

// observe records t as seen and returns whether t falls inside the current
// window, per lastHistoryTime = max(currentClock, maxSeenRecordTime);
// inTimeWindow(t) = (lastHistoryTime - t) <= maxHistory.
func (h *historyWindow) observe(t rtime.Time) bool {
	if t.After(h.maxSeenRecordTime) {
		h.maxSeenRecordTime = t
	}
	lastHistoryTime := rtime.Now()
	if h.maxSeenRecordTime.After(lastHistoryTime) {
		lastHistoryTime = h.maxSeenRecordTime
	}
	age := lastHistoryTime.Sub(t).Seconds()
	return age <= float64(h.maxHistorySeconds)
}
