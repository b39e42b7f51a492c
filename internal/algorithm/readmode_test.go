// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package algorithm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/pkg/rtime"
)

func TestParseReadMode(t *testing.T) {
	require.Equal(t, ReadModeOld, parseReadMode("old"))
	require.Equal(t, ReadModeAll, parseReadMode("all"))
	require.Equal(t, ReadModeNew, parseReadMode("new"))
	require.Equal(t, ReadModeNew, parseReadMode(""))
	require.Equal(t, ReadModeNew, parseReadMode("bogus"))
}

func TestReadModeRealtimeArchive(t *testing.T) {
	require.True(t, ReadModeOld.archive())
	require.False(t, ReadModeOld.realtime())

	require.True(t, ReadModeNew.realtime())
	require.False(t, ReadModeNew.archive())

	require.True(t, ReadModeAll.realtime())
	require.True(t, ReadModeAll.archive())
}

func TestHistoryWindowDropsOldRecords(t *testing.T) {
	h := newHistoryWindow(900)
	now := rtime.Now()

	require.True(t, h.observe(now))
	require.False(t, h.observe(now.Add(rtime.Seconds(-1000))))
}

func TestHistoryWindowDefaultsWhenZero(t *testing.T) {
	h := newHistoryWindow(0)
	require.Equal(t, 900, h.maxHistorySeconds)
}

func TestHistoryWindowTracksMaxSeenRecordTime(t *testing.T) {
	h := newHistoryWindow(60)
	future := rtime.Now().Add(rtime.Seconds(3600))

	require.True(t, h.observe(future))
	// Once maxSeenRecordTime has advanced past the wall clock, a record
	// from just before it is still within the window relative to it.
	require.True(t, h.observe(future.Add(rtime.Seconds(-30))))
	require.False(t, h.observe(future.Add(rtime.Seconds(-3600))))
}
