// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package algorithm

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/gops/agent"

	"github.com/wxpipe/rapio/internal/config"
	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/internal/index"
	"github.com/wxpipe/rapio/internal/notifier"
	"github.com/wxpipe/rapio/internal/plugin"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/recordqueue"
	"github.com/wxpipe/rapio/internal/runtimeenv"
	"github.com/wxpipe/rapio/internal/webserver"
	"github.com/wxpipe/rapio/pkg/rerrors"
	"github.com/wxpipe/rapio/pkg/rlog"
	"github.com/wxpipe/rapio/pkg/rtime"
)

// Driver runs the six-step sequence of spec.md §4.10: declare plugins,
// parse options, open indexes, install the end-of-archive sentinel, and
// pump the event loop until told to exit. Grounded on
// cmd/cc-backend/main.go's startup/shutdown shape.
type Driver struct {
	ingest   plugin.IngestPlugin
	filter   plugin.FilterPlugin
	output   plugin.OutputPlugin
	notifier plugin.NotifierPlugin
	heart    plugin.HeartbeatPlugin
	web      plugin.WebPlugin

	loop     *eventloop.Loop
	queue    *recordqueue.Queue
	history  *historyWindow
	readMode ReadMode

	alg       Algorithm
	indexes   []index.Index
	notifiers []notifier.Notifier
	router    *plugin.OutputRouter

	username, group string
	useGops         bool
}

// queueHandler adapts *recordqueue.Queue (Action() (remaining bool)) to
// eventloop.Handler (Action()), re-arming itself via the loop's Ready gate
// whenever a drain leaves work behind.
type queueHandler struct {
	q     *recordqueue.Queue
	ready *eventloop.Ready
}

func newQueueHandler(q *recordqueue.Queue) *queueHandler {
	return &queueHandler{q: q}
}

func (h *queueHandler) Start(l *eventloop.Loop) {
	h.ready = eventloop.NewReady(l, h.run)
	h.q.OnReady(h.ready.SetReady)
}

func (h *queueHandler) Action() { h.run() }

func (h *queueHandler) run() {
	if h.q.Action() {
		h.ready.SetReady()
	}
}

// ExecuteFromArgs runs the driver to completion and returns the process
// exit code: 0 on a clean archive-mode drain or ordinary shutdown signal,
// nonzero on a fatal startup error (spec.md §4.10, §7).
func ExecuteFromArgs(args []string, alg Algorithm) int {
	d := &Driver{alg: alg}
	return d.run(args)
}

func (d *Driver) run(args []string) int {
	fs := flag.NewFlagSet("rapio-algo", flag.ContinueOnError)

	var readModeFlag string
	var maxHistorySeconds int
	fs.StringVar(&readModeFlag, "r", "new", "read mode: old (archive only), new (realtime only), all")
	fs.IntVar(&maxHistorySeconds, "h", 900, "maximum history window, in seconds")
	fs.BoolVar(&d.useGops, "gops", false, "enable the gops diagnostics agent")
	fs.StringVar(&d.username, "u", "", "drop privileges to this user after startup")
	fs.StringVar(&d.group, "g", "", "drop privileges to this group after startup")

	d.ingest.DeclareOptions(fs)
	d.filter.DeclareOptions(fs)
	d.output.DeclareOptions(fs)
	d.notifier.DeclareOptions(fs)
	d.heart.DeclareOptions(fs)
	d.web.DeclareOptions(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		rlog.Errorf("algorithm: parse flags: %v", err)
		return 2
	}

	cfgCtx, err := config.NewContext()
	if err != nil && !errors.Is(err, rerrors.ErrConfigMissing) {
		rlog.Errorf("algorithm: load configuration: %v", err)
		return 2
	}
	if cfgCtx != nil && cfgCtx.Settings != nil {
		s := cfgCtx.Settings
		rlog.SetLevel(s.Logging.Level)
		rlog.SetLogDateTime(s.Logging.LogDate)
		d.ingest.Merge(s.Index)
		d.filter.Merge(s.Filter)
		d.output.Merge(s.Output)
		d.notifier.Merge(s.Notifier)
		d.heart.Merge(s.Sync)
		d.web.Merge(s.WebPort)
		if maxHistorySeconds == 900 && s.MaxHistorySeconds != 0 {
			maxHistorySeconds = s.MaxHistorySeconds
		}
	}

	d.readMode = parseReadMode(readModeFlag)
	d.history = newHistoryWindow(maxHistorySeconds)

	if d.useGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			rlog.Warnf("algorithm: gops agent: %v", err)
		} else {
			defer agent.Close()
		}
	}

	recFilter := d.filter.Build()

	router, err := d.output.Build()
	if err != nil {
		rlog.Errorf("algorithm: output configuration: %v", err)
		return 2
	}
	d.router = router
	d.router.SetAsync(func(fn func()) { d.loop.Post(fn) }, d.handleAsyncWriteResult)

	notifiers, err := d.notifier.Build()
	if err != nil {
		rlog.Errorf("algorithm: notifier configuration: %v", err)
		return 2
	}
	d.notifiers = notifiers

	if receiver, ok := d.alg.(OutputReceiver); ok {
		receiver.SetOutputWriter(d)
	}

	indexes, err := d.ingest.Build()
	if err != nil {
		rlog.Errorf("algorithm: ingest configuration: %v", err)
		return 2
	}
	d.indexes = indexes

	d.loop = eventloop.New()
	d.queue = recordqueue.New(d)
	for i, idx := range d.indexes {
		idx.Bind(d.queue, recFilter, i)
	}
	d.loop.Register(newQueueHandler(d.queue))

	if d.heart.Enabled() {
		if _, ok := d.alg.(HeartbeatAlgorithm); ok {
			d.heart.SetHandler(d.handleHeartbeat)
		}
		if err := d.heart.Start(d.loop.Post); err != nil {
			rlog.Errorf("algorithm: heartbeat: %v", err)
			return 2
		}
		defer d.heart.Stop()
	}

	if d.web.Enabled() {
		if _, ok := d.alg.(WebAlgorithm); !ok {
			rlog.Warn("algorithm: -web given but the algorithm does not implement ProcessWebMessage")
		}
		if err := d.web.Start(d.loop, d.handleWebMessage); err != nil {
			rlog.Errorf("algorithm: web: %v", err)
			return 2
		}
	}

	if d.username != "" || d.group != "" {
		if err := runtimeenv.DropPrivileges(d.username, d.group); err != nil {
			rlog.Errorf("algorithm: drop privileges: %v", err)
			return 2
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan struct{})
	var loopWg sync.WaitGroup
	loopWg.Add(1)
	go func() {
		defer loopWg.Done()
		d.loop.Run(ctx)
		close(loopDone)
	}()

	var indexWg sync.WaitGroup
	for i, idx := range d.indexes {
		i, idx := i, idx
		indexWg.Add(1)
		go func() {
			defer indexWg.Done()
			if err := idx.InitialRead(index.WithLoop(ctx, d.loop), d.readMode.realtime(), d.readMode.archive()); err != nil {
				rlog.Errorf("algorithm: index %d initial read: %v", i, err)
			}
		}()
	}

	// Archive-only runs exit once every index has drained its enumeration
	// and the resulting backlog has been fully dispatched (spec.md §4.10
	// steps 5-6); realtime indexes never finish InitialRead on their own.
	// The sentinel is pushed only once the queue is observed empty on the
	// loop thread, so it is never popped ahead of records an Index may have
	// timestamped arbitrarily (e.g. FakeIndex's synthetic future tilts).
	if d.readMode.archive() && !d.readMode.realtime() {
		go func() {
			indexWg.Wait()
			d.pushArchiveEndSentinelWhenDrained()
		}()
	}

	runtimeenv.SystemdNotify(true, "")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		rlog.Infof("algorithm: received %v, shutting down", sig)
		d.loop.Exit(0)
	case <-loopDone:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if d.web.Enabled() {
		if err := d.web.Stop(shutdownCtx); err != nil {
			rlog.Warnf("algorithm: web shutdown: %v", err)
		}
	}
	for _, n := range d.notifiers {
		if closer, ok := n.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	if d.router != nil {
		d.router.Close()
	}

	loopWg.Wait()
	return d.loop.ExitCode()
}

// WriteOutput implements OutputWriter: route dt through the -O rename
// rules, write it via every -o writer, then notify on each resulting
// Record (spec.md §4.6, §4.8).
func (d *Driver) WriteOutput(dt *datatype.DataType) ([]*record.Record, error) {
	if d.router == nil {
		return nil, nil
	}
	recs, err := d.router.WriteAll(dt)
	if err != nil {
		return recs, err
	}
	for _, r := range recs {
		for _, n := range d.notifiers {
			if nerr := n.Notify(r); nerr != nil {
				rlog.Errorf("algorithm: notify: %v", nerr)
			}
		}
	}
	return recs, nil
}

// pushArchiveEndSentinelWhenDrained runs on the loop thread, re-posting
// itself until the queue is empty, then pushes the EndDataset sentinel.
func (d *Driver) pushArchiveEndSentinelWhenDrained() {
	d.loop.Post(func() {
		if d.queue.Len() > 0 {
			d.pushArchiveEndSentinelWhenDrained()
			return
		}
		sentinel := record.New(rtime.Now(), nil, []string{"", "", record.EndDatasetSentinel}, -1)
		d.queue.Push(sentinel)
	})
}

// HandleRecordEvent implements recordqueue.Dispatcher. It detects the
// archive-end sentinel and applies the max-history-window drop rule before
// invoking the algorithm (spec.md §4.10 steps 5-6).
func (d *Driver) HandleRecordEvent(r *record.Record) {
	if r.IsEndDataset() {
		rlog.Info("algorithm: archive drained, exiting")
		d.loop.Exit(0)
		return
	}
	if !d.history.observe(r.Time) {
		rlog.Debugf("algorithm: dropping %s: outside history window", r.SourcePath())
		return
	}
	if err := d.alg.ProcessNewData(r); err != nil {
		rlog.Errorf("algorithm: ProcessNewData: %v", err)
	}
}

// handleAsyncWriteResult runs on the loop thread once a -output-workers
// pool finishes a write, notifying exactly as the synchronous path in
// WriteOutput does.
func (d *Driver) handleAsyncWriteResult(r *record.Record, err error) {
	if err != nil {
		rlog.Errorf("algorithm: async output write: %v", err)
		return
	}
	for _, n := range d.notifiers {
		if nerr := n.Notify(r); nerr != nil {
			rlog.Errorf("algorithm: notify: %v", nerr)
		}
	}
}

func (d *Driver) handleHeartbeat(t rtime.Time) error {
	hb, ok := d.alg.(HeartbeatAlgorithm)
	if !ok {
		return nil
	}
	return hb.ProcessHeartbeat(t)
}

func (d *Driver) handleWebMessage(msg *webserver.WebMessage) {
	wa, ok := d.alg.(WebAlgorithm)
	if !ok {
		msg.Response = webserver.Response{Status: 501, ContentType: "text/plain", Body: []byte("not implemented")}
		return
	}
	wa.ProcessWebMessage(msg)
}
