// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"flag"
	"fmt"

	"github.com/go-co-op/gocron/v2"

	"github.com/wxpipe/rapio/pkg/rlog"
	"github.com/wxpipe/rapio/pkg/rtime"
)

// HeartbeatHandler receives one tick per scheduled cron firing.
type HeartbeatHandler func(t rtime.Time) error

// HeartbeatPlugin declares "-sync <cronlike>" (spec.md §6), the algorithm's
// periodic tick independent of record arrival. Grounded directly on
// internal/taskmanager/taskManager.go's gocron.Scheduler usage, narrowed to
// a single cron-scheduled job instead of a fixed worker roster.
type HeartbeatPlugin struct {
	cron    string
	handler HeartbeatHandler
	sched   gocron.Scheduler
}

func (p *HeartbeatPlugin) Name() string { return "heartbeat" }

func (p *HeartbeatPlugin) DeclareOptions(fs *flag.FlagSet) {
	fs.StringVar(&p.cron, "sync", "", "heartbeat schedule, a 5-field cron expression")
}

// Enabled reports whether "-sync" was given.
func (p *HeartbeatPlugin) Enabled() bool { return p.cron != "" }

// Merge falls back to the configuration file's "sync" entry when "-sync"
// was not given on the command line.
func (p *HeartbeatPlugin) Merge(def string) {
	if p.cron == "" {
		p.cron = def
	}
}

// SetHandler installs the callback invoked on each tick; call before Start.
func (p *HeartbeatPlugin) SetHandler(h HeartbeatHandler) { p.handler = h }

// Start schedules the handler to run on the configured cron expression,
// posting each tick through postFn so it executes on the loop goroutine
// like every other handler (spec.md §5's "all callbacks run on the loop
// thread").
func (p *HeartbeatPlugin) Start(postFn func(func())) error {
	if !p.Enabled() {
		return nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("plugin/heartbeat: create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.CronJob(p.cron, false),
		gocron.NewTask(func() {
			postFn(func() {
				if p.handler == nil {
					return
				}
				if err := p.handler(rtime.Now()); err != nil {
					rlog.Warnf("plugin/heartbeat: tick: %v", err)
				}
			})
		}),
	)
	if err != nil {
		return fmt.Errorf("plugin/heartbeat: schedule %q: %w", p.cron, err)
	}
	p.sched = sched
	sched.Start()
	return nil
}

func (p *HeartbeatPlugin) Stop() error {
	if p.sched == nil {
		return nil
	}
	return p.sched.Shutdown()
}
