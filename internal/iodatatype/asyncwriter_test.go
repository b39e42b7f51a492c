// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iodatatype

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/pkg/rerrors"
)

func TestWritePoolRunsQueuedTasks(t *testing.T) {
	p := NewWritePool(2, 8)
	defer p.Close()

	var mu sync.Mutex
	var ran int
	var wg sync.WaitGroup
	wg.Add(8)
	for i := 0; i < 8; i++ {
		require.NoError(t, p.Submit(func() {
			mu.Lock()
			ran++
			mu.Unlock()
			wg.Done()
		}))
	}

	waitOrTimeout(t, &wg, time.Second)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 8, ran)
}

func TestWritePoolRejectsWhenFull(t *testing.T) {
	block := make(chan struct{})
	p := NewWritePool(1, 1)
	defer func() {
		close(block)
		p.Close()
	}()

	// Occupy the single worker, then fill the single-slot queue.
	require.NoError(t, p.Submit(func() { <-block }))
	require.NoError(t, p.Submit(func() {}))

	err := p.Submit(func() {})
	require.ErrorIs(t, err, rerrors.ErrQueueOverflow)
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for queued tasks")
	}
}
