// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bintable

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWObsTableRoundTrip(t *testing.T) {
	w := &WObsTable{TypeName: "Reflectivity", Lat: 35.1, Lon: -97.4, Ht: 400, DataTime: 1000, ValidTime: 1000}
	w.AddWeightedObservation(1, 2, 3, 12.5, 40, -2)
	w.AddWeightedObservation(4, 5, 6, -99, 0, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteWObsTable(&buf, w))

	got, err := ReadWObsTable(&buf)
	require.NoError(t, err)
	require.Equal(t, w, got)
}

func TestRObsTableRoundTrip(t *testing.T) {
	r := &RObsTable{}
	r.TypeName, r.DataTime, r.ValidTime = "Velocity", 2000, 2000
	r.RadarName, r.VCP, r.Elev = "KTLX", 212, 0.5
	r.AddRawObservation(1, 2, 3, 7.25, 10, 1, 90, 2000, 0.25)
	r.AddRawObservation(9, 8, 7, -3.5, 20, -1, 270, 2001, 0.75)

	var buf bytes.Buffer
	require.NoError(t, WriteRObsTable(&buf, r))

	got, err := ReadRObsTable(&buf)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestRObsTableReadableAsWObsPrefix(t *testing.T) {
	r := &RObsTable{}
	r.TypeName = "Velocity"
	r.RadarName = "KTLX"
	r.AddRawObservation(1, 2, 3, 7.25, 10, 1, 90, 2000, 0.25)

	var buf bytes.Buffer
	require.NoError(t, WriteRObsTable(&buf, r))

	got, err := ReadWObsTable(&buf)
	require.NoError(t, err)
	require.Equal(t, r.WObsTable, *got)
}
