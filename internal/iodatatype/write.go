// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iodatatype

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/rlog"
)

// EncodeFunc writes dt's bytes to w; used by WriteStaged to drive the
// staging-rename write path uniformly across codecs.
type EncodeFunc func(dt *datatype.DataType, w *os.File) error

// WriteStaged writes dt via encode to a sibling staging path, then
// atomically renames it into place (spec.md §4.6), grounded on the
// staging-then-rename pattern of pkg/metricstore/walCheckpoint.go. On
// success it runs the post-write hook (if any) and synthesizes the output
// Record for notifiers.
func WriteStaged(dt *datatype.DataType, keys WriteKeys, indexNumber int, factory string, encode EncodeFunc) (*record.Record, error) {
	finalPath, err := BuildFilename(keys, dt.ValidTime)
	if err != nil {
		return nil, err
	}
	stagingPath := StagingPath(finalPath)

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return nil, fmt.Errorf("iodatatype: mkdir %s: %w", filepath.Dir(finalPath), err)
	}
	if err := os.MkdirAll(filepath.Dir(stagingPath), 0o755); err != nil {
		return nil, fmt.Errorf("iodatatype: mkdir %s: %w", filepath.Dir(stagingPath), err)
	}

	f, err := os.OpenFile(stagingPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("iodatatype: open staging %s: %w", stagingPath, err)
	}

	if err := encode(dt, f); err != nil {
		f.Close()
		os.Remove(stagingPath)
		return nil, fmt.Errorf("iodatatype: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(stagingPath)
		return nil, fmt.Errorf("iodatatype: close staging %s: %w", stagingPath, err)
	}

	if err := os.Rename(stagingPath, finalPath); err != nil {
		return nil, fmt.Errorf("iodatatype: rename %s -> %s: %w", stagingPath, finalPath, err)
	}

	if keys.PostWrite != "" {
		RunPostWriteHook(keys.PostWrite, finalPath)
	}

	return makeOutputRecord(finalPath, keys, dt, factory, indexNumber), nil
}

// RunPostWriteHook runs cmd with %filename% substituted, logging (not
// failing the write) on error — the artifact is already durably written.
// Exported so internal/notifier can run the same "-postfml" hook shape
// after its own rename completes.
func RunPostWriteHook(cmd, filename string) {
	resolved := strings.ReplaceAll(cmd, "%filename%", filename)
	parts := strings.Fields(resolved)
	if len(parts) == 0 {
		return
	}
	c := exec.Command(parts[0], parts[1:]...)
	if err := c.Run(); err != nil {
		rlog.Warnf("iodatatype: postwrite hook %q failed: %v", resolved, err)
	}
}

// makeOutputRecord synthesizes the Record describing a successful write
// (spec.md §4.6 "Record generation").
func makeOutputRecord(finalPath string, keys WriteKeys, dt *datatype.DataType, factory string, indexNumber int) *record.Record {
	dir := filepath.Dir(finalPath)
	params := []string{factory, dir, filepath.Base(finalPath)}

	selections := []string{dt.ValidTime.FilenameString(), dt.TypeName}
	if dt.SubType != "" {
		selections = append(selections, dt.SubType)
	}
	return record.New(dt.ValidTime, params, selections, indexNumber)
}
