// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/internal/webserver"
	"github.com/wxpipe/rapio/pkg/rlog"
)

// WebPlugin declares "-web <port>" (spec.md §6), standing up the HTTP
// front-end of internal/webserver when a nonzero port is given.
type WebPlugin struct {
	port int

	queue  *webserver.WebMessageQueue
	server *http.Server
}

func (p *WebPlugin) Name() string { return "web" }

func (p *WebPlugin) DeclareOptions(fs *flag.FlagSet) {
	fs.IntVar(&p.port, "web", 0, "enable the HTTP server on this port (0 disables it)")
}

// Enabled reports whether "-web" was given a nonzero port.
func (p *WebPlugin) Enabled() bool { return p.port != 0 }

// Merge falls back to the configuration file's "webPort" entry when "-web"
// was not given on the command line.
func (p *WebPlugin) Merge(def int) {
	if p.port == 0 {
		p.port = def
	}
}

// Start registers the WebMessageQueue with loop and starts the HTTP accept
// goroutine (spec.md §4.9). process mutates each WebMessage's Response on
// the loop thread.
func (p *WebPlugin) Start(loop *eventloop.Loop, process webserver.ProcessFunc) error {
	if !p.Enabled() {
		return nil
	}
	p.queue = webserver.NewWebMessageQueue(process)
	loop.Register(p.queue)

	p.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", p.port),
		Handler:      webserver.NewRouter(p.queue),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rlog.Errorf("plugin/web: server on :%d: %v", p.port, err)
		}
	}()
	rlog.Infof("plugin/web: listening on :%d", p.port)
	return nil
}

func (p *WebPlugin) Stop(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}
