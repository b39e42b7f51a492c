// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package watcher

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/pkg/rlog"
)

// PubSubConfig configures a PubSubWatcher's NATS connection.
type PubSubConfig struct {
	Address  string
	Subject  string
	Username string
	Password string
}

// PubSubWatcher wraps a NATS subscription, adapted from pkg/nats/client.go's
// singleton Client into a connection owned by a single watcher instance —
// each attached index gets its own conn/subscription pair rather than
// sharing a process-global client.
type PubSubWatcher struct {
	cfg  PubSubConfig
	conn *nats.Conn
	sub  *nats.Subscription
}

func NewPubSubWatcher(cfg PubSubConfig) *PubSubWatcher {
	return &PubSubWatcher{cfg: cfg}
}

func (p *PubSubWatcher) Attach(loop *eventloop.Loop, path string, realtime, archive bool, listener EventListener) error {
	subject := p.cfg.Subject
	if subject == "" {
		subject = path
	}

	var opts []nats.Option
	if p.cfg.Username != "" && p.cfg.Password != "" {
		opts = append(opts, nats.UserInfo(p.cfg.Username, p.cfg.Password))
	}
	opts = append(opts, nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
		if err != nil {
			rlog.Warnf("watcher/pubsub: disconnected: %v", err)
		}
	}))
	opts = append(opts, nats.ReconnectHandler(func(nc *nats.Conn) {
		rlog.Infof("watcher/pubsub: reconnected to %s", nc.ConnectedUrl())
	}))

	conn, err := nats.Connect(p.cfg.Address, opts...)
	if err != nil {
		return fmt.Errorf("watcher/pubsub: connect %s: %w", p.cfg.Address, err)
	}

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		payload := string(msg.Data)
		loop.Post(func() {
			listener.ProcessNewFile(payload)
		})
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("watcher/pubsub: subscribe %s: %w", subject, err)
	}

	p.conn = conn
	p.sub = sub
	return nil
}

func (p *PubSubWatcher) Detach() {
	if p.sub != nil {
		p.sub.Unsubscribe()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Publish sends an FML payload on this watcher's subject, used by
// notifier.PubSubNotifier when it shares a connection with a watcher
// rather than opening its own.
func (p *PubSubWatcher) Publish(subject string, data []byte) error {
	if p.conn == nil {
		return fmt.Errorf("watcher/pubsub: not connected")
	}
	return p.conn.Publish(subject, data)
}
