package bintable

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/pkg/binaryio"
	"github.com/wxpipe/rapio/pkg/rerrors"
)

func rootLevel(name string, got *string) Level {
	return Level{
		Tag:     name,
		Version: 1,
		WritePayload: func(sb *binaryio.StreamBuffer) error {
			return sb.WriteShortString(name + "-data")
		},
		ReadPayload: func(sb *binaryio.StreamBuffer, fileVersion uint64) error {
			s, err := sb.ReadShortString()
			*got = s
			return err
		},
	}
}

func TestReadTablePrefixMatch(t *testing.T) {
	var w2Data, wData string
	c2Levels := []Level{rootLevel("W2", &w2Data), rootLevel("W", &wData)}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, c2Levels, 1, "RadialSet"))

	// C1 reader (prefix of C2's stack) should read the common ancestor block.
	var w2DataRead string
	c1Levels := []Level{rootLevel("W2", &w2DataRead)}
	hdr, err := ReadTable(bytes.NewReader(buf.Bytes()), c1Levels)
	require.NoError(t, err)
	require.Equal(t, []string{"W2", "W"}, hdr.Stack)
	require.Equal(t, "W2-data", w2DataRead)
}

func TestReadTableDivergentStackFails(t *testing.T) {
	var rData string
	c1Levels := []Level{rootLevel("W2", &rData)}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, c1Levels, 1, "RadialSet"))

	// A reader expecting a divergent stack (W2-R, not a prefix relation with W2) must fail.
	var w2Data, rData2 string
	divergent := []Level{rootLevel("W2", &w2Data), rootLevel("R", &rData2)}
	_, err := ReadTable(bytes.NewReader(buf.Bytes()), divergent)
	require.Error(t, err)
	require.True(t, errors.Is(err, rerrors.ErrFormatMismatch))
}
