// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"flag"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/rtime"
)

func TestParseIngestSourceExplicitProtocol(t *testing.T) {
	src := ParseIngestSource("xml=/tmp/codeindex.xml")
	require.Equal(t, "xml", src.Protocol)
	require.Equal(t, "/tmp/codeindex.xml", src.Params)
}

func TestParseIngestSourceUnrecognizedPrefixIsParams(t *testing.T) {
	src := ParseIngestSource("C:/data/foo")
	require.Empty(t, src.Protocol)
	require.Equal(t, "C:/data/foo", src.Params)
}

func TestIngestPluginBuildsMultipleSources(t *testing.T) {
	var p IngestPlugin
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.DeclareOptions(fs)
	require.NoError(t, fs.Parse([]string{"-i", "xml=/tmp/a.xml", "-i", "fake=", "-i", "fam=/tmp/watchdir"}))

	idxs, err := p.Build()
	require.NoError(t, err)
	require.Len(t, idxs, 3)
}

func TestDetectProtocolFallsBackToFile(t *testing.T) {
	proto, err := detectProtocol("/some/local/dir")
	require.NoError(t, err)
	require.Equal(t, "file", proto)
}

func TestFilterPluginBuild(t *testing.T) {
	var p FilterPlugin
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.DeclareOptions(fs)
	require.NoError(t, fs.Parse([]string{"-I", "Reflectivity:00.50"}))

	f := p.Build()
	require.NotNil(t, f)
	require.Len(t, f.Selectors, 1)
	require.Equal(t, "Reflectivity", f.Selectors[0].NamePattern)
}

func TestParseOutputSpec(t *testing.T) {
	spec, err := ParseOutputSpec("bintable=/data/out")
	require.NoError(t, err)
	require.Equal(t, "bintable", spec.Factory)
	require.Equal(t, "/data/out", spec.OutDir)

	_, err = ParseOutputSpec("no-equals-sign")
	require.Error(t, err)
}

func TestParseOutputRename(t *testing.T) {
	r, err := ParseOutputRename("Reflectivity:00.50=NewRef:00.50")
	require.NoError(t, err)
	require.Equal(t, "Reflectivity", r.Product)
	require.Equal(t, "00.50", r.SubType)
	require.Equal(t, "NewRef", r.NewProduct)
	require.Equal(t, "00.50", r.NewSubType)

	r2, err := ParseOutputRename("Dropped")
	require.NoError(t, err)
	require.Equal(t, "Dropped", r2.Product)
	require.Empty(t, r2.NewProduct)
}

func TestOutputRouterRouteNoRulesPassesThrough(t *testing.T) {
	r := &OutputRouter{}
	prod, sub, ok := r.route("Reflectivity", "00.50")
	require.True(t, ok)
	require.Equal(t, "Reflectivity", prod)
	require.Equal(t, "00.50", sub)
}

func TestOutputRouterRouteRenamesAndDrops(t *testing.T) {
	r := &OutputRouter{Renames: []OutputRename{
		{Product: "Reflectivity", NewProduct: "NewRef"},
		{Product: "Velocity"}, // matches, drops (NewProduct empty)
	}}

	prod, sub, ok := r.route("Reflectivity", "00.50")
	require.True(t, ok)
	require.Equal(t, "NewRef", prod)
	require.Equal(t, "00.50", sub)

	_, _, ok = r.route("Velocity", "00.50")
	require.False(t, ok)

	_, _, ok = r.route("Unrelated", "00.50")
	require.False(t, ok)
}

func TestOutputRouterWriteAllAsync(t *testing.T) {
	outDir := t.TempDir()

	var p OutputPlugin
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.DeclareOptions(fs)
	require.NoError(t, fs.Parse([]string{"-o", "raw=" + outDir, "-output-workers", "2", "-output-queue", "4"}))

	router, err := p.Build()
	require.NoError(t, err)
	defer router.Close()

	var mu sync.Mutex
	var gotErr error
	done := make(chan struct{}, 1)
	router.SetAsync(func(fn func()) { fn() }, func(r *record.Record, err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
		done <- struct{}{}
	})

	dt := &datatype.DataType{TypeName: "Reflectivity", ValidTime: rtime.Now(), Payload: []byte("data")}
	recs, err := router.WriteAll(dt)
	require.NoError(t, err)
	require.Nil(t, recs) // async: nothing returned synchronously

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async write never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NoError(t, gotErr)

	written, err := filepath.Glob(filepath.Join(outDir, "*.raw"))
	require.NoError(t, err)
	require.Len(t, written, 1)
}

func TestNotifierPluginDisable(t *testing.T) {
	var p NotifierPlugin
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.DeclareOptions(fs)
	require.NoError(t, fs.Parse([]string{"-n", "fml=/tmp/out", "-n", "disable"}))

	notifiers, err := p.Build()
	require.NoError(t, err)
	require.Empty(t, notifiers)
}

func TestNotifierPluginFML(t *testing.T) {
	var p NotifierPlugin
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.DeclareOptions(fs)
	require.NoError(t, fs.Parse([]string{"-n", "fml=/tmp/out"}))

	notifiers, err := p.Build()
	require.NoError(t, err)
	require.Len(t, notifiers, 1)
}

func TestHeartbeatPluginDisabledByDefault(t *testing.T) {
	var p HeartbeatPlugin
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.DeclareOptions(fs)
	require.NoError(t, fs.Parse(nil))
	require.False(t, p.Enabled())
	require.NoError(t, p.Start(func(f func()) { f() }))
}

func TestWebPluginDisabledByDefault(t *testing.T) {
	var p WebPlugin
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.DeclareOptions(fs)
	require.NoError(t, fs.Parse(nil))
	require.False(t, p.Enabled())
}
