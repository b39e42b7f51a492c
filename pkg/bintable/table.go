// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bintable implements the block-layered, versioned, self-identifying
// BinaryTable streaming format (spec.md §4.7, §6), grounded on the
// length-prefixed little-endian idiom of
// pkg/metricstore/binaryCheckpoint.go and the atomic-rename/scoped-handle
// streaming pattern of pkg/metricstore/walCheckpoint.go.
package bintable

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/wxpipe/rapio/pkg/binaryio"
	"github.com/wxpipe/rapio/pkg/rerrors"
)

// Level is one entry in a BinaryTable's subclass chain, ancestor-first.
// WritePayload/ReadPayload handle only this level's own fields; the table
// machinery frames each level with its tag's version and byte length so an
// older reader can skip blocks it does not recognize.
type Level struct {
	Tag     string
	Version uint64

	WritePayload func(sb *binaryio.StreamBuffer) error
	ReadPayload  func(sb *binaryio.StreamBuffer, fileVersion uint64) error
}

func stackString(levels []Level) string {
	tags := make([]string, len(levels))
	for i, l := range levels {
		tags[i] = l.Tag
	}
	return strings.Join(tags, "-")
}

// WriteTable writes the BinaryTable header (magic stack, root version,
// datatype tag) followed by each level's framed block, ancestor to leaf.
// rootVersion is the format-level version recorded in the header; per-level
// versions are recorded independently in each block's frame.
func WriteTable(w io.Writer, levels []Level, rootVersion uint64, dataTypeTag string) error {
	sb := binaryio.NewMemoryWriter(w)
	if err := sb.WriteShortString(stackString(levels)); err != nil {
		return err
	}
	if err := sb.WriteU64(rootVersion); err != nil {
		return err
	}
	if err := sb.WriteShortString(dataTypeTag); err != nil {
		return err
	}
	for _, lvl := range levels {
		var buf bytes.Buffer
		lsb := binaryio.NewMemoryWriter(&buf)
		if err := lvl.WritePayload(lsb); err != nil {
			return fmt.Errorf("bintable: write block %q: %w", lvl.Tag, err)
		}
		if err := sb.WriteU64(lvl.Version); err != nil {
			return err
		}
		if err := sb.WriteU64(uint64(buf.Len())); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// Header is the parsed BinaryTable preamble.
type Header struct {
	Stack       []string
	RootVersion uint64
	DataTypeTag string
}

// ReadHeader reads the magic stack, root version, and datatype tag.
func ReadHeader(sb *binaryio.StreamBuffer) (*Header, error) {
	stack, err := sb.ReadShortString()
	if err != nil {
		return nil, fmt.Errorf("bintable: read magic stack: %w", err)
	}
	if len(stack) > 1000 {
		return nil, fmt.Errorf("%w: magic stack implausibly long (%d bytes)", rerrors.ErrFormatMismatch, len(stack))
	}
	version, err := sb.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("bintable: read version: %w", err)
	}
	tag, err := sb.ReadShortString()
	if err != nil {
		return nil, fmt.Errorf("bintable: read datatype tag: %w", err)
	}
	return &Header{Stack: strings.Split(stack, "-"), RootVersion: version, DataTypeTag: tag}, nil
}

// matchBlockLevel reports whether readerStack is a prefix of fileStack.
func matchBlockLevel(fileStack, readerStack []string) bool {
	if len(readerStack) > len(fileStack) {
		return false
	}
	for i, tag := range readerStack {
		if fileStack[i] != tag {
			return false
		}
	}
	return true
}

// ReadTable reads a header and then, for each of readerLevels (in the same
// ancestor-first order the writer used), the corresponding block. If the
// file's stack is not a superset-prefix match of readerLevels' tags, this
// reports ErrFormatMismatch naming both stacks and does not read further
// (matching spec.md §8 invariant 10: a C1 writer read by a C2 reader fails
// at the first block level C1 lacks). Blocks beyond len(readerLevels) in a
// longer file stack are left unread (the caller may use the returned
// remaining io.Reader position for its own purposes) — forward-compatible
// partial reads of a common ancestor (invariant 9).
func ReadTable(r io.Reader, readerLevels []Level) (*Header, error) {
	sb := binaryio.NewMemoryReader(r)
	hdr, err := ReadHeader(sb)
	if err != nil {
		return nil, err
	}

	readerTags := make([]string, len(readerLevels))
	for i, l := range readerLevels {
		readerTags[i] = l.Tag
	}

	if !matchBlockLevel(hdr.Stack, readerTags) {
		return hdr, fmt.Errorf("%w: file stack %q does not share reader stack %q as a prefix",
			rerrors.ErrFormatMismatch, strings.Join(hdr.Stack, "-"), strings.Join(readerTags, "-"))
	}

	for _, lvl := range readerLevels {
		fileVersion, err := sb.ReadU64()
		if err != nil {
			return hdr, fmt.Errorf("bintable: read block %q version: %w", lvl.Tag, err)
		}
		blockLen, err := sb.ReadU64()
		if err != nil {
			return hdr, fmt.Errorf("bintable: read block %q length: %w", lvl.Tag, err)
		}
		if fileVersion > lvl.Version {
			return hdr, fmt.Errorf("%w: block %q file version %d exceeds reader version %d",
				rerrors.ErrInternalInvariant, lvl.Tag, fileVersion, lvl.Version)
		}
		limited := io.LimitReader(r, int64(blockLen))
		lsb := binaryio.NewMemoryReader(limited)
		if err := lvl.ReadPayload(lsb, fileVersion); err != nil {
			return hdr, fmt.Errorf("bintable: read block %q payload: %w", lvl.Tag, err)
		}
		// Drain any bytes the payload reader left unconsumed (forward
		// compatibility within a single block when a minor version adds
		// trailing optional fields).
		if _, err := io.Copy(io.Discard, limited); err != nil {
			return hdr, err
		}
	}

	return hdr, nil
}
