// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package algorithm

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wxpipe/rapio/internal/datatype"
	_ "github.com/wxpipe/rapio/internal/index" // registers "fake"
	"github.com/wxpipe/rapio/internal/record"
)

// recordingAlgorithm counts ProcessNewData calls and, if an OutputWriter
// has been installed, rewrites every non-message record through it — a
// minimal stand-in for cmd/rapio-algo's passThrough.
type recordingAlgorithm struct {
	mu     sync.Mutex
	output OutputWriter
	calls  int
}

func (a *recordingAlgorithm) SetOutputWriter(w OutputWriter) { a.output = w }

func (a *recordingAlgorithm) ProcessNewData(r *record.Record) error {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if r.IsMessage() || a.output == nil {
		return nil
	}
	dt := &datatype.DataType{
		TypeName:  r.TypeName(),
		SubType:   r.SubType(),
		ValidTime: r.Time,
		Payload:   []byte("payload"),
	}
	_, err := a.output.WriteOutput(dt)
	return err
}

func (a *recordingAlgorithm) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func TestExecuteFromArgsArchiveModeDrainsAndWritesOutput(t *testing.T) {
	outDir := t.TempDir()
	alg := &recordingAlgorithm{}

	done := make(chan int, 1)
	go func() {
		done <- ExecuteFromArgs([]string{"-i", "fake=", "-r", "old", "-o", "raw=" + outDir}, alg)
	}()

	select {
	case code := <-done:
		require.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("ExecuteFromArgs did not return in archive mode")
	}

	require.Equal(t, 18, alg.callCount())

	written, err := filepath.Glob(filepath.Join(outDir, "*.raw"))
	require.NoError(t, err)
	require.Len(t, written, 18)
}

func TestExecuteFromArgsRejectsUnknownFlag(t *testing.T) {
	code := ExecuteFromArgs([]string{"-not-a-real-flag"}, &recordingAlgorithm{})
	require.Equal(t, 2, code)
}

func TestExecuteFromArgsBadOutputSpecIsFatal(t *testing.T) {
	code := ExecuteFromArgs([]string{"-i", "fake=", "-r", "old", "-o", "no-equals-sign"}, &recordingAlgorithm{})
	require.Equal(t, 2, code)
}
