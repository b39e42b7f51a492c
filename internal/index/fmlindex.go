// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"os"
	"strings"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/watcher"
	"github.com/wxpipe/rapio/pkg/rlog"
	"github.com/wxpipe/rapio/pkg/rurl"
)

func init() {
	Register("fml", func(params string) (Index, error) {
		return NewFMLIndex(params, watcher.NewFAMWatcher()), nil
	})
}

// FMLIndex specializes FileIndex to only accept ".fml" files, parsing each
// as a standalone <item> document instead of guessing a builder from the
// extension (spec.md §4.3).
type FMLIndex struct {
	*FileIndex
}

func NewFMLIndex(dir string, w watcher.Watcher) *FMLIndex {
	inner := NewFileIndex(dir, w)
	fml := &FMLIndex{FileIndex: inner}
	inner.onNewFile = fml.onFMLFile
	return fml
}

func (f *FMLIndex) CanHandle(u *rurl.URL) (bool, string) {
	return strings.HasSuffix(u.Path, ".fml"), "fml"
}

func (f *FMLIndex) onFMLFile(path string) {
	if !strings.HasSuffix(path, ".fml") {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		rlog.Warnf("index/fml: read %s: %v", path, err)
		return
	}
	r, err := record.ParseFML(string(data), f.indexPath, f.indexNumber)
	if err != nil {
		rlog.Severe("index/fml: parse", path, err)
		return
	}
	f.emit(r)
}
