// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package notifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/rtime"
)

type fakePublisher struct {
	subject string
	data    []byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return nil
}

func TestFMLNotifierWritesIntoCodeIndexFam(t *testing.T) {
	dir := t.TempDir()
	n := NewFMLNotifier(dir)

	r := record.New(rtime.FromUnix(1000, 0), []string{"netcdf", dir, "data.netcdf.gz"},
		[]string{"19700101-001640.000", "Reflectivity", "00.50"}, 0)

	require.NoError(t, n.Notify(r))

	id := RecordID(r)
	finalPath := filepath.Join(dir, "code_index.fam", id+".fml")
	data, err := os.ReadFile(finalPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "<item")

	_, err = os.Stat(filepath.Join(dir, ".working", id+".fml"))
	require.True(t, os.IsNotExist(err))
}

func TestPubSubNotifierPublishesSamePayload(t *testing.T) {
	pub := &fakePublisher{}
	n := NewPubSubNotifier("rapio.records", pub)

	r := record.New(rtime.FromUnix(2000, 0), []string{"netcdf", "/x", "f.netcdf"},
		[]string{"19700101-003320.000", "Velocity", "00.50"}, 0)

	require.NoError(t, n.Notify(r))
	require.Equal(t, "rapio.records", pub.subject)
	require.Contains(t, string(pub.data), "<item")
}
