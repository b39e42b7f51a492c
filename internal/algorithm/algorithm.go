// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package algorithm implements the driver that ties every other package
// together (spec.md §4.10): parses CLI options via internal/plugin, opens
// indexes, pumps the RecordQueue, and invokes the user's callbacks on the
// loop goroutine. Grounded on cmd/cc-backend/main.go's startup sequencing
// and graceful-shutdown shape (signal.Notify, sync.WaitGroup,
// runtimeEnv.DropPrivileges/SystemdNotifiy), generalized from a fixed
// HTTP+GraphQL server into a pluggable ingest/output pipeline.
package algorithm

import (
	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/webserver"
	"github.com/wxpipe/rapio/pkg/rtime"
)

// Algorithm is the user program's callback set. Only ProcessNewData is
// required; the rest are optional per spec.md §4.10's named callbacks.
type Algorithm interface {
	ProcessNewData(r *record.Record) error
}

// HeartbeatAlgorithm is implemented by an Algorithm that wants the -sync
// heartbeat tick.
type HeartbeatAlgorithm interface {
	ProcessHeartbeat(t rtime.Time) error
}

// WebAlgorithm is implemented by an Algorithm that wants to answer HTTP
// requests when -web is enabled (spec.md §4.9).
type WebAlgorithm interface {
	ProcessWebMessage(msg *webserver.WebMessage)
}

// OutputWriter lets an Algorithm push a produced DataType through the
// configured -o/-O output pipeline and the configured notifiers (spec.md
// §4.6, §4.8), without the algorithm needing to know how those were
// configured.
type OutputWriter interface {
	WriteOutput(dt *datatype.DataType) ([]*record.Record, error)
}

// OutputReceiver is implemented by an Algorithm that produces output; the
// driver calls SetOutputWriter once at startup, before opening any index.
type OutputReceiver interface {
	SetOutputWriter(w OutputWriter)
}
