// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"context"
	"time"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/rtime"
	"github.com/wxpipe/rapio/pkg/rurl"
)

func init() {
	Register("fake", func(params string) (Index, error) {
		return NewFakeIndex(), nil
	})
}

// vcp212Tilts is the fixed elevation-angle sequence of VCP 212, one degree
// string per synthesized record (spec.md §4.3 FakeIndex).
var vcp212Tilts = []string{
	"00.50", "00.50", "00.90", "00.90", "01.30", "01.30", "1.80", "1.80",
	"2.40", "3.10", "4.00", "5.10", "6.40", "8.00", "10.00", "12.50",
	"15.60", "19.50",
}

// vcp212Cadence is the 21-second per-tilt timing of the archive-mode
// sequence.
const vcp212Cadence = 21 * time.Second

// FakeIndex generates a synthetic tilt sequence with no backing data
// source, for algorithm smoke tests that don't need a real ingest feed.
type FakeIndex struct {
	base
	nextTilt int
	done     chan struct{}
}

func NewFakeIndex() *FakeIndex {
	return &FakeIndex{done: make(chan struct{})}
}

func (f *FakeIndex) CanHandle(u *rurl.URL) (bool, string) {
	return u.Scheme == "fake", "fake"
}

func (f *FakeIndex) InitialRead(ctx context.Context, realtime, archive bool) error {
	if archive {
		base := rtime.Now()
		for i, tilt := range vcp212Tilts {
			t := base.Add(rtime.Seconds(float64(i) * vcp212Cadence.Seconds()))
			f.emit(f.makeRecord(t, tilt))
		}
	}
	if realtime {
		go f.realtimeLoop()
	}
	return nil
}

func (f *FakeIndex) realtimeLoop() {
	ticker := time.NewTicker(vcp212Cadence)
	defer ticker.Stop()
	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.emit(f.makeRecord(rtime.Now(), f.currentTilt()))
		}
	}
}

func (f *FakeIndex) currentTilt() string {
	tilt := vcp212Tilts[f.nextTilt%len(vcp212Tilts)]
	f.nextTilt++
	return tilt
}

func (f *FakeIndex) makeRecord(t rtime.Time, tilt string) *record.Record {
	return record.New(t, []string{"fake"}, []string{t.FilenameString(), "Reflectivity", tilt}, f.indexNumber)
}

func (f *FakeIndex) Stop() {
	close(f.done)
}
