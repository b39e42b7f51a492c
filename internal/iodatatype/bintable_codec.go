// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iodatatype

import (
	"fmt"
	"os"

	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/bintable"
)

func init() {
	Register("bintable", func(string) (Codec, error) { return bintableCodec{}, nil })
}

// bintableCodec wraps pkg/bintable's FusionBinaryTable as a gridded/polar
// mosaic codec (spec.md §4.6's HMRG-style read/write contract).
type bintableCodec struct{}

func (bintableCodec) Read(params string) (*datatype.DataType, error) {
	f, err := os.Open(params)
	if err != nil {
		return nil, fmt.Errorf("iodatatype/bintable: open %s: %w", params, err)
	}
	defer f.Close()

	ft, err := bintable.ReadFusionTable(f)
	if err != nil {
		return nil, fmt.Errorf("iodatatype/bintable: read %s: %w", params, err)
	}
	return &datatype.DataType{
		Kind:        "FusionBinaryTable",
		TypeName:    ft.TypeName,
		Units:       ft.Units,
		ValidTime:   ft.Time,
		Origin:      datatype.LatLonHeight{Lat: ft.Lat, Lon: ft.Lon, Height: ft.Ht},
		ReadFactory: "bintable",
		Payload:     ft,
	}, nil
}

func (bintableCodec) Write(dt *datatype.DataType, keysMap map[string]string) (*record.Record, error) {
	keys := FromMap(keysMap)
	if keys.Suffix == "" {
		keys.Suffix = "bin"
	}
	ft, ok := dt.Payload.(*bintable.FusionTable)
	if !ok {
		return nil, fmt.Errorf("iodatatype/bintable: payload is not *bintable.FusionTable")
	}
	return WriteStaged(dt, keys, 0, "bintable", func(_ *datatype.DataType, f *os.File) error {
		return ft.Write(f)
	})
}
