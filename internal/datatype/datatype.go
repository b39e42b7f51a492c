// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package datatype is the opaque in-memory representation of a materialized
// data artifact (spec.md §3 "DataType"). The concrete scientific value
// space (RadialSet, LatLonGrid, LatLonHeightGrid) is out of scope; DataType
// carries enough to route, name, and write back an artifact plus an opaque
// Payload for algorithm code.
package datatype

import "github.com/wxpipe/rapio/pkg/rtime"

// LatLonHeight is a geographic origin point.
type LatLonHeight struct {
	Lat, Lon float64
	Height   float32
}

// DataType is opaque to the pipeline beyond these fields.
type DataType struct {
	Kind        string // e.g. "RadialSet"
	TypeName    string // e.g. "Reflectivity"
	SubType     string // e.g. "00.50"
	Units       string
	ValidTime   rtime.Time
	Origin      LatLonHeight
	ReadFactory string // which encoder created it; default writer hint
	Attrs       map[string]string

	// Payload carries the out-of-scope concrete value space. Algorithms
	// that need to read/write it implement Materializer.
	Payload any
}

// Materializer is the collaborator interface out-of-scope concrete
// DataTypes implement so codecs can serialize/deserialize their Payload
// without the pipeline knowing its shape.
type Materializer interface {
	// MaterializeBytes returns the encoded byte payload for a given format name.
	MaterializeBytes(format string) ([]byte, error)
	// LoadBytes populates the value from an encoded byte payload.
	LoadBytes(format string, data []byte) error
}

func (d *DataType) Attr(k string) string {
	if d == nil || d.Attrs == nil {
		return ""
	}
	return d.Attrs[k]
}

func (d *DataType) SetAttr(k, v string) {
	if d.Attrs == nil {
		d.Attrs = make(map[string]string)
	}
	d.Attrs[k] = v
}
