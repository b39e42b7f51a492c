// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package binaryio provides polymorphic read/write of primitives, strings,
// and float vectors to memory, file, or gzip-file streams with endian
// normalization, grounded on the length-prefixed little-endian idiom of
// pkg/metricstore/binaryCheckpoint.go.
package binaryio

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// ByteOrder is the canonical on-disk order for BinaryTable/HMRG artifacts.
var ByteOrder = binary.LittleEndian

// StreamBuffer wraps an io.Reader/io.Writer pair (only one side populated
// depending on direction) with the length-prefixed primitive codec the
// BinaryTable format builds on.
type StreamBuffer struct {
	r io.Reader
	w io.Writer
	c io.Closer
}

// NewMemoryWriter returns a StreamBuffer writing into an in-memory buffer.
func NewMemoryWriter(w io.Writer) *StreamBuffer { return &StreamBuffer{w: w} }

// NewMemoryReader returns a StreamBuffer reading from an in-memory buffer.
func NewMemoryReader(r io.Reader) *StreamBuffer { return &StreamBuffer{r: r} }

// OpenFileWriter opens path for writing (truncating), optionally gzip-compressing.
func OpenFileWriter(path string, gzipped bool) (*StreamBuffer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("binaryio: open %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if gzipped {
		gw := gzip.NewWriter(bw)
		return &StreamBuffer{w: gw, c: multiCloser{gw, flushCloser{bw}, f}}, nil
	}
	return &StreamBuffer{w: bw, c: multiCloser{flushCloser{bw}, f}}, nil
}

// flushCloser flushes a bufio.Writer on Close so its buffered bytes reach
// the file before the file itself is closed.
type flushCloser struct{ w *bufio.Writer }

func (c flushCloser) Close() error { return c.w.Flush() }

// OpenFileReader opens path for reading, auto-detecting gzip by extension.
func OpenFileReader(path string) (*StreamBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("binaryio: open %s: %w", path, err)
	}
	var r io.Reader = bufio.NewReader(f)
	var closer io.Closer = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(r)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("binaryio: gzip %s: %w", path, err)
		}
		r = gr
		closer = multiCloser{gr, f}
	}
	return &StreamBuffer{r: r, c: closer}, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *StreamBuffer) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	if f, ok := s.w.(io.WriteCloser); ok {
		return f.Close()
	}
	return nil
}

func (s *StreamBuffer) Reader() io.Reader { return s.r }
func (s *StreamBuffer) Writer() io.Writer { return s.w }

// WriteU8/WriteU16/WriteU32/WriteU64/WriteI8/WriteI16/WriteI64/WriteF32/WriteF64
// write fixed-width little-endian primitives.
func (s *StreamBuffer) WriteU8(v uint8) error   { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteU16(v uint16) error { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteU32(v uint32) error { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteU64(v uint64) error { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteI8(v int8) error    { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteI16(v int16) error  { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteI64(v int64) error  { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteF32(v float32) error { return binary.Write(s.w, ByteOrder, v) }
func (s *StreamBuffer) WriteF64(v float64) error { return binary.Write(s.w, ByteOrder, v) }

func (s *StreamBuffer) ReadU8() (uint8, error)   { var v uint8; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadU16() (uint16, error) { var v uint16; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadU32() (uint32, error) { var v uint32; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadU64() (uint64, error) { var v uint64; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadI8() (int8, error)    { var v int8; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadI16() (int16, error)  { var v int16; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadI64() (int64, error)  { var v int64; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadF32() (float32, error) { var v float32; err := binary.Read(s.r, ByteOrder, &v); return v, err }
func (s *StreamBuffer) ReadF64() (float64, error) { var v float64; err := binary.Read(s.r, ByteOrder, &v); return v, err }

// WriteShortString writes an 8-bit length prefix then the bytes, used for
// short headers (magic strings, type tags).
func (s *StreamBuffer) WriteShortString(v string) error {
	b := []byte(v)
	if len(b) > 255 {
		return fmt.Errorf("binaryio: short string too long (%d bytes)", len(b))
	}
	if err := s.WriteU8(uint8(len(b))); err != nil {
		return err
	}
	_, err := s.w.Write(b)
	return err
}

// ReadShortString reads an 8-bit length-prefixed string.
func (s *StreamBuffer) ReadShortString() (string, error) {
	n, err := s.ReadU8()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteLongString writes a 16-bit length prefix then the bytes, for larger fields.
func (s *StreamBuffer) WriteLongString(v string) error {
	b := []byte(v)
	if len(b) > 65535 {
		return fmt.Errorf("binaryio: long string too long (%d bytes)", len(b))
	}
	if err := s.WriteU16(uint16(len(b))); err != nil {
		return err
	}
	_, err := s.w.Write(b)
	return err
}

// ReadLongString reads a 16-bit length-prefixed string.
func (s *StreamBuffer) ReadLongString() (string, error) {
	n, err := s.ReadU16()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteFloat64Array writes a []float64 as length-prefixed little-endian
// bytes, encoded explicitly via ByteOrder so the format stays portable
// across host byte orders.
func (s *StreamBuffer) WriteFloat64Array(data []float64) error {
	if len(data) == 0 {
		return nil
	}
	buf := make([]byte, len(data)*8)
	for i, v := range data {
		ByteOrder.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	_, err := s.w.Write(buf)
	return err
}

// ReadFloat64Array reads n float64 values from little-endian bytes.
func (s *StreamBuffer) ReadFloat64Array(n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n*8)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, err
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Float64frombits(ByteOrder.Uint64(buf[i*8:]))
	}
	return data, nil
}
