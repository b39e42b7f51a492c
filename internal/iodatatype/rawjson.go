// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iodatatype

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/record"
)

func init() {
	Register("raw", func(string) (Codec, error) { return rawCodec{}, nil })
	Register("json", func(string) (Codec, error) { return jsonCodec{}, nil })
}

// rawCodec is the zero-dependency fallback every format registry needs: it
// carries an opaque byte payload with no interpretation (DESIGN.md:
// no ecosystem gap to fill here, needed regardless of what else is wired).
type rawCodec struct{}

func (rawCodec) Read(params string) (*datatype.DataType, error) {
	data, err := os.ReadFile(params)
	if err != nil {
		return nil, fmt.Errorf("iodatatype/raw: read %s: %w", params, err)
	}
	return &datatype.DataType{Kind: "Raw", ReadFactory: "raw", Payload: data}, nil
}

func (rawCodec) Write(dt *datatype.DataType, keysMap map[string]string) (*record.Record, error) {
	keys := FromMap(keysMap)
	if keys.Suffix == "" {
		keys.Suffix = "raw"
	}
	data, ok := dt.Payload.([]byte)
	if !ok {
		return nil, fmt.Errorf("iodatatype/raw: payload is not []byte")
	}
	return WriteStaged(dt, keys, 0, "raw", func(_ *datatype.DataType, f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// jsonCodec marshals a DataType's Payload as JSON; used for message/attribute
// style DataTypes and as a debugging aid.
type jsonCodec struct{}

func (jsonCodec) Read(params string) (*datatype.DataType, error) {
	raw, err := os.ReadFile(params)
	if err != nil {
		return nil, fmt.Errorf("iodatatype/json: read %s: %w", params, err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("iodatatype/json: unmarshal: %w", err)
	}
	return &datatype.DataType{Kind: "Json", ReadFactory: "json", Payload: payload}, nil
}

func (jsonCodec) Write(dt *datatype.DataType, keysMap map[string]string) (*record.Record, error) {
	keys := FromMap(keysMap)
	if keys.Suffix == "" {
		keys.Suffix = "json"
	}
	return WriteStaged(dt, keys, 0, "json", func(_ *datatype.DataType, f *os.File) error {
		enc := json.NewEncoder(f)
		return enc.Encode(dt.Payload)
	})
}
