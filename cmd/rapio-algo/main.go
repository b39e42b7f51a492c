// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command rapio-algo is a thin driver binary: it wires the
// internal/algorithm.Driver to passThrough, an Algorithm that reads each
// incoming Record's DataType via its registered Codec and rewrites it
// unchanged through the configured output/notifier pipeline. It exists to
// exercise internal/algorithm end to end; a real deployment links its own
// Algorithm against the same Driver instead.
package main

import (
	"fmt"
	"os"

	"github.com/wxpipe/rapio/internal/algorithm"
	"github.com/wxpipe/rapio/internal/iodatatype"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/rlog"
	"github.com/wxpipe/rapio/pkg/rtime"
)

// passThrough implements algorithm.Algorithm, algorithm.HeartbeatAlgorithm,
// and algorithm.OutputReceiver.
type passThrough struct {
	output algorithm.OutputWriter
}

func (p *passThrough) SetOutputWriter(w algorithm.OutputWriter) { p.output = w }

func (p *passThrough) ProcessNewData(r *record.Record) error {
	if r.IsMessage() {
		return nil
	}
	codec, err := iodatatype.Registry.Build(r.BuilderKey(), "")
	if err != nil {
		return fmt.Errorf("rapio-algo: no codec for %q: %w", r.BuilderKey(), err)
	}
	dt, err := codec.Read(r.SourcePath())
	if err != nil {
		return fmt.Errorf("rapio-algo: read %s: %w", r.SourcePath(), err)
	}
	if p.output == nil {
		return nil
	}
	_, err = p.output.WriteOutput(dt)
	return err
}

func (p *passThrough) ProcessHeartbeat(t rtime.Time) error {
	rlog.Infof("rapio-algo: heartbeat at %s", rtime.Format(t, "%Y-%m-%d %H:%M:%S"))
	return nil
}

func main() {
	os.Exit(algorithm.ExecuteFromArgs(os.Args[1:], &passThrough{}))
}
