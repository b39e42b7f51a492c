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

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/ptree"
	"github.com/wxpipe/rapio/pkg/rerrors"
	"github.com/wxpipe/rapio/pkg/rurl"
)

func init() {
	Register("xml", func(params string) (Index, error) {
		return NewXMLIndex(params), nil
	})
}

// XMLIndex is archive-only: it reads a codeindex.xml document once and
// pushes every <item> child as a Record (spec.md §4.3, §6 "codeindex.xml").
type XMLIndex struct {
	base
	path string
}

func NewXMLIndex(path string) *XMLIndex {
	x := &XMLIndex{path: path}
	x.indexPath = filepath.Dir(path)
	return x
}

func (x *XMLIndex) CanHandle(u *rurl.URL) (bool, string) {
	return filepath.Ext(u.Path) == ".xml", "xml"
}

func (x *XMLIndex) InitialRead(ctx context.Context, realtime, archive bool) error {
	if !archive {
		return nil
	}
	data, err := os.ReadFile(x.path)
	if err != nil {
		return fmt.Errorf("%w: xml index %s: %v", rerrors.ErrIOFatal, x.path, err)
	}

	root, err := ptree.ParseString(string(data))
	if err != nil {
		return fmt.Errorf("%w: xml index %s: %v", rerrors.ErrParse, x.path, err)
	}

	for _, item := range root.FindAll("item") {
		r, err := record.FromItemNode(item, x.indexPath, x.indexNumber)
		if err != nil {
			continue
		}
		x.emit(r)
	}
	return nil
}
