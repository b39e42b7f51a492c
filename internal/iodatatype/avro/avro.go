// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package avro records a DataType's attribute map using a self-describing
// columnar alternative to BinaryTable, for Message-shaped DataTypes that
// algorithms want to exchange in a columnar store instead. Grounded on the
// teacher's internal/avro package (read then removed — its metric-sample
// schema did not apply; the goavro/v2 codec-construction idiom is kept).
package avro

import (
	"fmt"

	"github.com/linkedin/goavro/v2"

	"github.com/wxpipe/rapio/internal/datatype"
)

// attrSchema is the Avro schema for a DataType's flattened attribute map —
// deliberately generic (string->string) since the concrete DataType value
// space is out of scope (spec.md §1).
const attrSchema = `{
  "type": "record",
  "name": "DataTypeAttrs",
  "fields": [
    {"name": "kind", "type": "string"},
    {"name": "typeName", "type": "string"},
    {"name": "subType", "type": "string"},
    {"name": "units", "type": "string"},
    {"name": "validTimeSec", "type": "long"},
    {"name": "validTimeFrac", "type": "double"},
    {"name": "attrs", "type": {"type": "map", "values": "string"}}
  ]
}`

// Codec wraps a goavro codec bound to attrSchema.
type Codec struct {
	avroCodec *goavro.Codec
}

func New() (*Codec, error) {
	c, err := goavro.NewCodec(attrSchema)
	if err != nil {
		return nil, fmt.Errorf("avro: compile schema: %w", err)
	}
	return &Codec{avroCodec: c}, nil
}

// Encode serializes dt's attribute map (not its opaque Payload) as Avro
// binary, for algorithms that want a columnar record of a DataType's
// metadata alongside its BinaryTable artifact.
func (c *Codec) Encode(dt *datatype.DataType) ([]byte, error) {
	native := map[string]interface{}{
		"kind":          dt.Kind,
		"typeName":      dt.TypeName,
		"subType":       dt.SubType,
		"units":         dt.Units,
		"validTimeSec":  dt.ValidTime.Sec,
		"validTimeFrac": dt.ValidTime.Frac,
		"attrs":         stringMap(dt.Attrs),
	}
	binary, err := c.avroCodec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("avro: encode: %w", err)
	}
	return binary, nil
}

// Decode parses previously-encoded bytes back into attribute fields;
// callers merge these into a DataType they already have Payload for.
func (c *Codec) Decode(data []byte) (map[string]interface{}, error) {
	native, _, err := c.avroCodec.NativeFromBinary(data)
	if err != nil {
		return nil, fmt.Errorf("avro: decode: %w", err)
	}
	m, ok := native.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("avro: decoded value is not a record")
	}
	return m, nil
}

func stringMap(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
