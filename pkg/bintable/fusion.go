// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bintable

import (
	"fmt"
	"io"
	"math"

	"github.com/wxpipe/rapio/pkg/binaryio"
	"github.com/wxpipe/rapio/pkg/rerrors"
	"github.com/wxpipe/rapio/pkg/rtime"
)

// FusionStack is the magic stack FusionBinaryTable writes/expects, the
// multi-radar mosaic specialization of BinaryTable (spec.md §3 "Fusion
// binary table").
var FusionStack = []string{"W2", "W", "Fusion"}

const FusionVersion = uint64(1)

// MissingMode distinguishes the two reasons a run of cells carries no value.
type MissingMode uint8

const (
	// MissingReplacesOld: a run that used to have a value now has none.
	MissingReplacesOld MissingMode = 0
	// UnavailableReplacesOld: a run was never observed.
	UnavailableReplacesOld MissingMode = 1
)

// ValueTuple is one (x,y,z) cell with a value, stored as numerator/denominator
// the way multi-radar fusion accumulates weighted contributions.
type ValueTuple struct {
	X, Y int16
	Z    int8
	Num  float32
	Den  float32
}

// MissingRun is a run-length-encoded span of missing cells starting at
// (X,Y,Z) and extending Len cells in the +x direction.
type MissingRun struct {
	X, Y int16
	Z    int8
	Len  int16
}

// FusionTable is a fully materialized (non-streaming) fusion table.
type FusionTable struct {
	MissingMode MissingMode
	RadarName   string
	TypeName    string
	Units       string
	XBase, YBase int64
	Lat, Lon    float64
	Ht          float32
	Time        rtime.Time
	Values      []ValueTuple
	Missing     []MissingRun
}

// Write serializes t per spec.md §6's FusionBinaryTable layout: the
// BinaryTable header (magic stack, root version, datatype tag) followed by
// the fusion fields and the N value tuples then M missing-run tuples.
func (t *FusionTable) Write(w io.Writer) error {
	sb := binaryio.NewMemoryWriter(w)
	if err := sb.WriteShortString(joinStack(FusionStack)); err != nil {
		return err
	}
	if err := sb.WriteU64(FusionVersion); err != nil {
		return err
	}
	if err := sb.WriteShortString(t.TypeName); err != nil {
		return err
	}
	if err := writeFusionBody(sb, t); err != nil {
		return err
	}
	return nil
}

func joinStack(levels []string) string {
	s := ""
	for i, l := range levels {
		if i > 0 {
			s += "-"
		}
		s += l
	}
	return s
}

func writeFusionBody(sb *binaryio.StreamBuffer, t *FusionTable) error {
	if err := sb.WriteU64(FusionVersion); err != nil {
		return err
	}
	if err := sb.WriteU8(uint8(t.MissingMode)); err != nil {
		return err
	}
	if err := sb.WriteShortString(t.RadarName); err != nil {
		return err
	}
	if err := sb.WriteShortString(t.TypeName); err != nil {
		return err
	}
	if err := sb.WriteShortString(t.Units); err != nil {
		return err
	}
	if err := sb.WriteI64(t.XBase); err != nil {
		return err
	}
	if err := sb.WriteI64(t.YBase); err != nil {
		return err
	}
	if err := sb.WriteF64(t.Lat); err != nil {
		return err
	}
	if err := sb.WriteF64(t.Lon); err != nil {
		return err
	}
	if err := sb.WriteF32(t.Ht); err != nil {
		return err
	}
	if err := sb.WriteI64(t.Time.Sec); err != nil {
		return err
	}
	if err := sb.WriteF64(t.Time.Frac); err != nil {
		return err
	}
	if err := sb.WriteU64(uint64(len(t.Values))); err != nil {
		return err
	}
	if err := sb.WriteU64(uint64(len(t.Missing))); err != nil {
		return err
	}
	for _, v := range t.Values {
		if err := writeValueTuple(sb, v); err != nil {
			return err
		}
	}
	for _, m := range t.Missing {
		if err := writeMissingRun(sb, m); err != nil {
			return err
		}
	}
	return nil
}

func writeValueTuple(sb *binaryio.StreamBuffer, v ValueTuple) error {
	if err := sb.WriteI16(v.X); err != nil {
		return err
	}
	if err := sb.WriteI16(v.Y); err != nil {
		return err
	}
	if err := sb.WriteI8(v.Z); err != nil {
		return err
	}
	if err := sb.WriteF32(v.Num); err != nil {
		return err
	}
	return sb.WriteF32(v.Den)
}

func readValueTuple(sb *binaryio.StreamBuffer) (ValueTuple, error) {
	var v ValueTuple
	var err error
	if v.X, err = sb.ReadI16(); err != nil {
		return v, err
	}
	if v.Y, err = sb.ReadI16(); err != nil {
		return v, err
	}
	if v.Z, err = sb.ReadI8(); err != nil {
		return v, err
	}
	if v.Num, err = sb.ReadF32(); err != nil {
		return v, err
	}
	v.Den, err = sb.ReadF32()
	return v, err
}

func writeMissingRun(sb *binaryio.StreamBuffer, m MissingRun) error {
	if err := sb.WriteI16(m.X); err != nil {
		return err
	}
	if err := sb.WriteI16(m.Y); err != nil {
		return err
	}
	if err := sb.WriteI8(m.Z); err != nil {
		return err
	}
	return sb.WriteI16(m.Len)
}

func readMissingRun(sb *binaryio.StreamBuffer) (MissingRun, error) {
	var m MissingRun
	var err error
	if m.X, err = sb.ReadI16(); err != nil {
		return m, err
	}
	if m.Y, err = sb.ReadI16(); err != nil {
		return m, err
	}
	if m.Z, err = sb.ReadI8(); err != nil {
		return m, err
	}
	m.Len, err = sb.ReadI16()
	return m, err
}

// ReadFusionTable fully materializes a fusion table written by Write.
func ReadFusionTable(r io.Reader) (*FusionTable, error) {
	sb := binaryio.NewMemoryReader(r)
	hdr, err := ReadHeader(sb)
	if err != nil {
		return nil, err
	}
	if !matchBlockLevel(hdr.Stack, FusionStack) {
		return nil, fmt.Errorf("%w: file stack %q is not a FusionBinaryTable", rerrors.ErrFormatMismatch, joinStack(hdr.Stack))
	}

	t := &FusionTable{}
	version, err := sb.ReadU64()
	if err != nil {
		return nil, err
	}
	if version > FusionVersion {
		return nil, fmt.Errorf("%w: fusion block version %d exceeds supported %d", rerrors.ErrInternalInvariant, version, FusionVersion)
	}
	mode, err := sb.ReadU8()
	if err != nil {
		return nil, err
	}
	t.MissingMode = MissingMode(mode)
	if t.RadarName, err = sb.ReadShortString(); err != nil {
		return nil, err
	}
	if t.TypeName, err = sb.ReadShortString(); err != nil {
		return nil, err
	}
	if t.Units, err = sb.ReadShortString(); err != nil {
		return nil, err
	}
	if t.XBase, err = sb.ReadI64(); err != nil {
		return nil, err
	}
	if t.YBase, err = sb.ReadI64(); err != nil {
		return nil, err
	}
	if t.Lat, err = sb.ReadF64(); err != nil {
		return nil, err
	}
	if t.Lon, err = sb.ReadF64(); err != nil {
		return nil, err
	}
	if t.Ht, err = sb.ReadF32(); err != nil {
		return nil, err
	}
	var sec int64
	var frac float64
	if sec, err = sb.ReadI64(); err != nil {
		return nil, err
	}
	if frac, err = sb.ReadF64(); err != nil {
		return nil, err
	}
	t.Time = rtime.FromUnix(sec, frac)

	n, err := sb.ReadU64()
	if err != nil {
		return nil, err
	}
	m, err := sb.ReadU64()
	if err != nil {
		return nil, err
	}
	t.Values = make([]ValueTuple, n)
	for i := range t.Values {
		if t.Values[i], err = readValueTuple(sb); err != nil {
			return nil, err
		}
	}
	t.Missing = make([]MissingRun, m)
	for i := range t.Missing {
		if t.Missing[i], err = readMissingRun(sb); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FusionStreamReader streams a FusionBinaryTable's rows without
// materializing the N+M arrays (spec.md §4.7.1), for multi-gigabyte fusion
// outputs. It owns r for the lifetime of the iteration — see Close.
type FusionStreamReader struct {
	sb *binaryio.StreamBuffer
	closer io.Closer

	Header FusionTable // fields populated except Values/Missing

	valueCursor   uint64
	valueCount    uint64
	missingCursor uint64
	missingCount  uint64

	curRun    MissingRun
	runSubCur int16
	runActive bool

	done bool
}

// OpenFusionStream reads the fixed-size header and positions r to read rows
// one at a time via Get. If r also implements io.Closer, Close will close it.
func OpenFusionStream(r io.Reader) (*FusionStreamReader, error) {
	sb := binaryio.NewMemoryReader(r)
	hdr, err := ReadHeader(sb)
	if err != nil {
		return nil, err
	}
	if !matchBlockLevel(hdr.Stack, FusionStack) {
		return nil, fmt.Errorf("%w: file stack %q is not a FusionBinaryTable", rerrors.ErrFormatMismatch, joinStack(hdr.Stack))
	}

	fs := &FusionStreamReader{sb: sb}
	if c, ok := r.(io.Closer); ok {
		fs.closer = c
	}

	version, err := sb.ReadU64()
	if err != nil {
		return nil, err
	}
	if version > FusionVersion {
		return nil, fmt.Errorf("%w: fusion block version %d exceeds supported %d", rerrors.ErrInternalInvariant, version, FusionVersion)
	}
	mode, err := sb.ReadU8()
	if err != nil {
		return nil, err
	}
	fs.Header.MissingMode = MissingMode(mode)
	if fs.Header.RadarName, err = sb.ReadShortString(); err != nil {
		return nil, err
	}
	if fs.Header.TypeName, err = sb.ReadShortString(); err != nil {
		return nil, err
	}
	if fs.Header.Units, err = sb.ReadShortString(); err != nil {
		return nil, err
	}
	if fs.Header.XBase, err = sb.ReadI64(); err != nil {
		return nil, err
	}
	if fs.Header.YBase, err = sb.ReadI64(); err != nil {
		return nil, err
	}
	if fs.Header.Lat, err = sb.ReadF64(); err != nil {
		return nil, err
	}
	if fs.Header.Lon, err = sb.ReadF64(); err != nil {
		return nil, err
	}
	if fs.Header.Ht, err = sb.ReadF32(); err != nil {
		return nil, err
	}
	var sec int64
	var frac float64
	if sec, err = sb.ReadI64(); err != nil {
		return nil, err
	}
	if frac, err = sb.ReadF64(); err != nil {
		return nil, err
	}
	fs.Header.Time = rtime.FromUnix(sec, frac)

	if fs.valueCount, err = sb.ReadU64(); err != nil {
		return nil, err
	}
	if fs.missingCount, err = sb.ReadU64(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Get yields the next row. Returns false once the stream is exhausted, at
// which point the underlying reader has been closed.
func (fs *FusionStreamReader) Get() (x, y int16, z int8, value, den float32, ok bool, err error) {
	if fs.done {
		return 0, 0, 0, 0, 0, false, nil
	}

	if fs.valueCursor < fs.valueCount {
		v, rerr := readValueTuple(fs.sb)
		if rerr != nil {
			return 0, 0, 0, 0, 0, false, rerr
		}
		fs.valueCursor++
		return v.X, v.Y, v.Z, v.Num, v.Den, true, nil
	}

	for {
		if !fs.runActive {
			if fs.missingCursor >= fs.missingCount {
				fs.close()
				return 0, 0, 0, 0, 0, false, nil
			}
			run, rerr := readMissingRun(fs.sb)
			if rerr != nil {
				return 0, 0, 0, 0, 0, false, rerr
			}
			fs.curRun = run
			fs.runSubCur = 0
			fs.runActive = true
		}

		x := fs.curRun.X + fs.runSubCur
		fs.runSubCur++
		if fs.runSubCur >= fs.curRun.Len {
			fs.runActive = false
			fs.missingCursor++
		}
		return x, fs.curRun.Y, fs.curRun.Z, float32(math.NaN()), 1.0, true, nil
	}
}

func (fs *FusionStreamReader) close() {
	if fs.done {
		return
	}
	fs.done = true
	if fs.closer != nil {
		fs.closer.Close()
	}
}

// Close releases the underlying reader early, e.g. when the caller abandons
// iteration before EOF.
func (fs *FusionStreamReader) Close() error {
	if fs.closer != nil && !fs.done {
		fs.done = true
		return fs.closer.Close()
	}
	return nil
}
