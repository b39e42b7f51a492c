// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/watcher"
	"github.com/wxpipe/rapio/pkg/rerrors"
	"github.com/wxpipe/rapio/pkg/rtime"
	"github.com/wxpipe/rapio/pkg/rurl"
)

func init() {
	Register("fam", func(params string) (Index, error) {
		return NewFileIndex(params, watcher.NewFAMWatcher()), nil
	})
	Register("file", func(params string) (Index, error) {
		return NewFileIndex(params, watcher.NewFAMWatcher()), nil
	})
	Register("ipoll", func(params string) (Index, error) {
		return NewFileIndex(params, watcher.NewDirPollWatcher(0)), nil
	})
}

// extensionBuilders maps a file suffix to the io factory name guessed when
// a FileIndex record's builder prefix is absent (spec.md §4.3 FileIndex).
var extensionBuilders = map[string]string{
	".nc":     "netcdf",
	".netcdf": "netcdf",
	".xml":    "xml",
	".json":   "json",
	".grib2":  "grib2",
	".grb2":   "grib2",
	".hmrg":   "hmrg",
	".png":    "image",
	".txt":    "text",
	".raw":    "raw",
}

// guessBuilder parses "builder:path" if present, otherwise falls back to
// extension sniffing; any trailing ".gz" is stripped before the lookup.
func guessBuilder(path string) (builder, rest string) {
	if i := strings.Index(path, ":"); i > 0 && !strings.Contains(path[:i], "/") {
		return path[:i], path[i+1:]
	}
	trimmed := strings.TrimSuffix(path, ".gz")
	ext := filepath.Ext(trimmed)
	if b, ok := extensionBuilders[ext]; ok {
		return b, path
	}
	return "raw", path
}

type loopContextKey struct{}

// WithLoop attaches the running Loop to ctx so realtime Indexes can pass it
// to their Watcher's Attach without threading an extra parameter through
// every InitialRead call site.
func WithLoop(ctx context.Context, loop *eventloop.Loop) context.Context {
	return context.WithValue(ctx, loopContextKey{}, loop)
}

func loopFromContext(ctx context.Context) *eventloop.Loop {
	loop, _ := ctx.Value(loopContextKey{}).(*eventloop.Loop)
	return loop
}

// FileIndex watches a directory and synthesizes a Record for each new file,
// per spec.md §4.3: params = [builder-guess, full-file-path].
type FileIndex struct {
	base
	dir       string
	w         watcher.Watcher
	onNewFile func(path string) // overridden by FMLIndex to filter by extension
}

func NewFileIndex(dir string, w watcher.Watcher) *FileIndex {
	fi := &FileIndex{dir: dir, w: w}
	fi.indexPath = dir
	fi.onNewFile = fi.defaultNewFile
	return fi
}

func (fi *FileIndex) CanHandle(u *rurl.URL) (bool, string) {
	return true, "file"
}

func (fi *FileIndex) InitialRead(ctx context.Context, realtime, archive bool) error {
	if archive {
		if err := fi.scanExisting(); err != nil {
			return err
		}
	}
	if realtime {
		loop := loopFromContext(ctx)
		if err := fi.w.Attach(loop, fi.dir, realtime, archive, fi); err != nil {
			return fmt.Errorf("%w: %v", rerrors.ErrIOFatal, err)
		}
	}
	return nil
}

// scanExisting enumerates files already present in dir, producing the same
// newfile events a realtime attach would have produced for files created
// afterward (invariant 5).
func (fi *FileIndex) scanExisting() error {
	entries, err := os.ReadDir(fi.dir)
	if err != nil {
		return fmt.Errorf("%w: readdir %s: %v", rerrors.ErrIOFatal, fi.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi.onNewFile(filepath.Join(fi.dir, e.Name()))
	}
	return nil
}

// ProcessNewFile implements watcher.EventListener.
func (fi *FileIndex) ProcessNewFile(path string) {
	fi.onNewFile(path)
}

func (fi *FileIndex) HandlePoll() {}

func (fi *FileIndex) defaultNewFile(path string) {
	builder, fullPath := guessBuilder(path)
	t := rtime.Now()
	if info, err := os.Stat(path); err == nil {
		t = rtime.FromGoTime(info.ModTime())
	}
	r := record.New(t, []string{builder, fullPath}, nil, fi.indexNumber)
	fi.emit(r)
}
