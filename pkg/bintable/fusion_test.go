package bintable

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/pkg/rtime"
)

func sampleTable() *FusionTable {
	return &FusionTable{
		MissingMode: MissingReplacesOld,
		RadarName:   "KTLX",
		TypeName:    "Reflectivity",
		Units:       "dBZ",
		XBase:       10,
		YBase:       20,
		Lat:         35.0,
		Lon:         -97.0,
		Ht:          400,
		Time:        rtime.FromUnix(1000, 0.25),
		Values: []ValueTuple{
			{X: 0, Y: 0, Z: 0, Num: 1.5, Den: 1.0},
			{X: 1, Y: 1, Z: 1, Num: 2.5, Den: 1.0},
		},
		Missing: []MissingRun{
			{X: 5, Y: 5, Z: 0, Len: 3},
		},
	}
}

func TestFusionTableRoundTrip(t *testing.T) {
	orig := sampleTable()
	var buf bytes.Buffer
	require.NoError(t, orig.Write(&buf))

	got, err := ReadFusionTable(&buf)
	require.NoError(t, err)

	require.Equal(t, orig.RadarName, got.RadarName)
	require.Equal(t, orig.Values, got.Values)
	require.Equal(t, orig.Missing, got.Missing)
	require.Equal(t, orig.Time, got.Time)
}

func TestFusionStreamRead(t *testing.T) {
	orig := sampleTable()
	var buf bytes.Buffer
	require.NoError(t, orig.Write(&buf))

	sr, err := OpenFusionStream(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	type row struct {
		x, y int16
		z    int8
		v, d float32
	}
	var rows []row
	for {
		x, y, z, v, d, ok, err := sr.Get()
		require.NoError(t, err)
		if !ok {
			break
		}
		rows = append(rows, row{x, y, z, v, d})
	}

	require.Len(t, rows, 5)
	require.Equal(t, row{0, 0, 0, 1.5, 1.0}, rows[0])
	require.Equal(t, row{1, 1, 1, 2.5, 1.0}, rows[1])
	require.Equal(t, int16(5), rows[2].x)
	require.Equal(t, int16(6), rows[3].x)
	require.Equal(t, int16(7), rows[4].x)
	for _, r := range rows[2:] {
		require.True(t, math.IsNaN(float64(r.v)))
		require.Equal(t, float32(1.0), r.d)
	}
}

