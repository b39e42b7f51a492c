// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package iodatatype implements format-keyed DataType codecs, filename
// templating, the staging-rename write path, and post-write hooks
// (spec.md §4.6).
package iodatatype

import (
	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/registry"
)

// Codec reads bytes referenced by a Record's path into a DataType, and
// writes a DataType into bytes plus the Record describing where it went.
type Codec interface {
	Read(params string) (*datatype.DataType, error)
	Write(dt *datatype.DataType, keys map[string]string) (*record.Record, error)
}

// Specializer adapts a format that supports multiple DataType shapes
// (HMRG-style: RadialSet, LatLonGrid, LatLonHeightGrid) to a single parent
// Codec, keyed by DataType Kind (spec.md §4.6 "IOSpecializer").
type Specializer interface {
	CanHandle(kind string) bool
	Read(params string) (*datatype.DataType, error)
	Write(dt *datatype.DataType, keys map[string]string) (*record.Record, error)
}

// Registry is the process-wide format-name -> Codec constructor map.
var Registry = registry.NewFactory[Codec]()

// Register is a convenience wrapper callers use at init time.
func Register(name string, ctor registry.Constructor[Codec]) {
	Registry.MustRegister(name, ctor)
}
