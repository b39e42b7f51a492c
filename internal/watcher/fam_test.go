// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wxpipe/rapio/internal/eventloop"
)

type recordingListener struct {
	mu    sync.Mutex
	files []string
}

func (r *recordingListener) ProcessNewFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, path)
}

func (r *recordingListener) HandlePoll() {}

func (r *recordingListener) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

// TestFAMWatcherReportsWritesInOrder covers scenario B: three files written
// to a watched directory with small gaps arrive as three ProcessNewFile
// calls in write order.
func TestFAMWatcherReportsWritesInOrder(t *testing.T) {
	dir := t.TempDir()

	loop := eventloop.New()
	listener := &recordingListener{}
	w := NewFAMWatcher()
	require.NoError(t, w.Attach(loop, dir, true, false, listener))
	defer w.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	names := []string{"a.txt", "b.txt", "c.txt"}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
		time.Sleep(100 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(listener.snapshot()) >= 3
	}, 2*time.Second, 20*time.Millisecond)

	got := listener.snapshot()
	require.Len(t, got, 3)
	for i, name := range names {
		require.Equal(t, filepath.Join(dir, name), got[i])
	}
}
