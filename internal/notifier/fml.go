// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package notifier

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wxpipe/rapio/internal/iodatatype"
	"github.com/wxpipe/rapio/internal/record"
)

// FMLNotifier writes a <record-id>.fml marker for each output Record:
// first to <outputDir>/.working/, then atomically renamed into
// <outputDir>/code_index.fam/, the directory FileIndex/FMLIndex watch by
// convention (spec.md §4.8).
type FMLNotifier struct {
	OutputDir string

	// PostWrite, if set, runs after the marker lands in code_index.fam/,
	// with %filename% substituted (spec.md §6 "-postfml").
	PostWrite string
}

func NewFMLNotifier(outputDir string) *FMLNotifier {
	return &FMLNotifier{OutputDir: outputDir}
}

func (n *FMLNotifier) Notify(r *record.Record) error {
	id := RecordID(r)
	finalDir := filepath.Join(n.OutputDir, "code_index.fam")
	stagingDir := filepath.Join(n.OutputDir, ".working")

	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return fmt.Errorf("notifier/fml: mkdir %s: %w", finalDir, err)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return fmt.Errorf("notifier/fml: mkdir %s: %w", stagingDir, err)
	}

	stagingPath := filepath.Join(stagingDir, id+".fml")
	finalPath := filepath.Join(finalDir, id+".fml")

	if err := os.WriteFile(stagingPath, []byte(record.MarshalFML(r)), 0o644); err != nil {
		return fmt.Errorf("notifier/fml: write %s: %w", stagingPath, err)
	}
	if err := os.Rename(stagingPath, finalPath); err != nil {
		return fmt.Errorf("notifier/fml: rename %s -> %s: %w", stagingPath, finalPath, err)
	}
	if n.PostWrite != "" {
		iodatatype.RunPostWriteHook(n.PostWrite, finalPath)
	}
	return nil
}
