// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bintable

import (
	"io"

	"github.com/wxpipe/rapio/pkg/binaryio"
)

// WObsTable is the weighted-observation BinaryTable variant consumed by
// merger tools, grounded on
// original_source/base/datatype/rMergerBinaryTable.h's WObsBinaryTable: a
// single BLOCK_LEVEL built on the generic Level-stack machinery in
// table.go, carrying per-cell grid indices, a weighted value, a scaled
// distance, and a scaled elevation weight in parallel slices.
type WObsTable struct {
	TypeName  string
	Lat, Lon  float64
	Ht        float64
	DataTime  int64
	ValidTime int64

	X, Y, Z         []uint16
	NewValue        []float32
	ScaledDist      []uint16
	ElevWeightScale []int8
}

// AddWeightedObservation appends one cell, mirroring
// WObsBinaryTable::addWeightedObservation.
func (t *WObsTable) AddWeightedObservation(x, y, z uint16, value float32, scaledDist uint16, elevWeightScaled int8) {
	t.X = append(t.X, x)
	t.Y = append(t.Y, y)
	t.Z = append(t.Z, z)
	t.NewValue = append(t.NewValue, value)
	t.ScaledDist = append(t.ScaledDist, scaledDist)
	t.ElevWeightScale = append(t.ElevWeightScale, elevWeightScaled)
}

func (t *WObsTable) level() Level {
	return Level{
		Tag:     "WObs",
		Version: 1,
		WritePayload: func(sb *binaryio.StreamBuffer) error {
			return writeWObsPayload(sb, t)
		},
		ReadPayload: func(sb *binaryio.StreamBuffer, fileVersion uint64) error {
			return readWObsPayload(sb, t)
		},
	}
}

func writeWObsPayload(sb *binaryio.StreamBuffer, t *WObsTable) error {
	if err := sb.WriteShortString(t.TypeName); err != nil {
		return err
	}
	for _, v := range []float64{t.Lat, t.Lon, t.Ht} {
		if err := sb.WriteF64(v); err != nil {
			return err
		}
	}
	if err := sb.WriteI64(t.DataTime); err != nil {
		return err
	}
	if err := sb.WriteI64(t.ValidTime); err != nil {
		return err
	}
	if err := sb.WriteU64(uint64(len(t.X))); err != nil {
		return err
	}
	for i := range t.X {
		if err := sb.WriteU16(t.X[i]); err != nil {
			return err
		}
		if err := sb.WriteU16(t.Y[i]); err != nil {
			return err
		}
		if err := sb.WriteU16(t.Z[i]); err != nil {
			return err
		}
		if err := sb.WriteF32(t.NewValue[i]); err != nil {
			return err
		}
		if err := sb.WriteU16(t.ScaledDist[i]); err != nil {
			return err
		}
		if err := sb.WriteI8(t.ElevWeightScale[i]); err != nil {
			return err
		}
	}
	return nil
}

func readWObsPayload(sb *binaryio.StreamBuffer, t *WObsTable) error {
	var err error
	if t.TypeName, err = sb.ReadShortString(); err != nil {
		return err
	}
	if t.Lat, err = sb.ReadF64(); err != nil {
		return err
	}
	if t.Lon, err = sb.ReadF64(); err != nil {
		return err
	}
	if t.Ht, err = sb.ReadF64(); err != nil {
		return err
	}
	if t.DataTime, err = sb.ReadI64(); err != nil {
		return err
	}
	if t.ValidTime, err = sb.ReadI64(); err != nil {
		return err
	}
	n64, err := sb.ReadU64()
	if err != nil {
		return err
	}
	n := int(n64)
	t.X, t.Y, t.Z = make([]uint16, n), make([]uint16, n), make([]uint16, n)
	t.NewValue = make([]float32, n)
	t.ScaledDist = make([]uint16, n)
	t.ElevWeightScale = make([]int8, n)
	for i := 0; i < n; i++ {
		if t.X[i], err = sb.ReadU16(); err != nil {
			return err
		}
		if t.Y[i], err = sb.ReadU16(); err != nil {
			return err
		}
		if t.Z[i], err = sb.ReadU16(); err != nil {
			return err
		}
		if t.NewValue[i], err = sb.ReadF32(); err != nil {
			return err
		}
		if t.ScaledDist[i], err = sb.ReadU16(); err != nil {
			return err
		}
		if t.ElevWeightScale[i], err = sb.ReadI8(); err != nil {
			return err
		}
	}
	return nil
}

// WriteWObsTable writes t as a one-level BinaryTable.
func WriteWObsTable(w io.Writer, t *WObsTable) error {
	return WriteTable(w, []Level{t.level()}, 1, "WObsBinaryTable")
}

// ReadWObsTable reads a WObsTable written by WriteWObsTable.
func ReadWObsTable(r io.Reader) (*WObsTable, error) {
	t := &WObsTable{}
	if _, err := ReadTable(r, []Level{t.level()}); err != nil {
		return nil, err
	}
	return t, nil
}

// RObsTable is the raw-observation BinaryTable variant, a WObsTable plus
// per-radar azimuth/time fields, grounded on rMergerBinaryTable.h's
// RObsBinaryTable (which subclasses WObsBinaryTable and adds one more
// block level, per BinaryTable's subclass-chain convention in table.go).
type RObsTable struct {
	WObsTable

	RadarName string
	VCP       int64
	Elev      float32

	Azimuth  []uint16
	AzEpoch  []int64
	AzFracNS []float64
}

// AddRawObservation appends one cell, mirroring
// RObsBinaryTable::addRawObservation.
func (t *RObsTable) AddRawObservation(x, y, z uint16, value float32, scaledDist uint16, elevWeightScaled int8, azimuth uint16, azEpoch int64, azFrac float64) {
	t.WObsTable.AddWeightedObservation(x, y, z, value, scaledDist, elevWeightScaled)
	t.Azimuth = append(t.Azimuth, azimuth)
	t.AzEpoch = append(t.AzEpoch, azEpoch)
	t.AzFracNS = append(t.AzFracNS, azFrac)
}

func (t *RObsTable) level() Level {
	return Level{
		Tag:     "RObs",
		Version: 1,
		WritePayload: func(sb *binaryio.StreamBuffer) error {
			if err := sb.WriteShortString(t.RadarName); err != nil {
				return err
			}
			if err := sb.WriteI64(t.VCP); err != nil {
				return err
			}
			if err := sb.WriteF32(t.Elev); err != nil {
				return err
			}
			for i := range t.Azimuth {
				if err := sb.WriteU16(t.Azimuth[i]); err != nil {
					return err
				}
				if err := sb.WriteI64(t.AzEpoch[i]); err != nil {
					return err
				}
				if err := sb.WriteF64(t.AzFracNS[i]); err != nil {
					return err
				}
			}
			return nil
		},
		ReadPayload: func(sb *binaryio.StreamBuffer, fileVersion uint64) error {
			var err error
			if t.RadarName, err = sb.ReadShortString(); err != nil {
				return err
			}
			if t.VCP, err = sb.ReadI64(); err != nil {
				return err
			}
			if t.Elev, err = sb.ReadF32(); err != nil {
				return err
			}
			n := len(t.WObsTable.X)
			t.Azimuth = make([]uint16, n)
			t.AzEpoch = make([]int64, n)
			t.AzFracNS = make([]float64, n)
			for i := 0; i < n; i++ {
				if t.Azimuth[i], err = sb.ReadU16(); err != nil {
					return err
				}
				if t.AzEpoch[i], err = sb.ReadI64(); err != nil {
					return err
				}
				if t.AzFracNS[i], err = sb.ReadF64(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// WriteRObsTable writes t as a two-level BinaryTable (WObs, then RObs),
// ancestor first, so a WObs-only reader can still recover the shared fields.
func WriteRObsTable(w io.Writer, t *RObsTable) error {
	return WriteTable(w, []Level{t.WObsTable.level(), t.level()}, 1, "RObsBinaryTable")
}

// ReadRObsTable reads an RObsTable written by WriteRObsTable.
func ReadRObsTable(r io.Reader) (*RObsTable, error) {
	t := &RObsTable{}
	if _, err := ReadTable(r, []Level{t.WObsTable.level(), t.level()}); err != nil {
		return nil, err
	}
	return t, nil
}
