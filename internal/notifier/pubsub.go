// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package notifier

import (
	"fmt"

	"github.com/wxpipe/rapio/internal/record"
)

// Publisher is the minimal surface PubSubNotifier needs from a pub/sub
// connection — satisfied by *watcher.PubSubWatcher, so a notifier can
// optionally share the connection a RedisIndex already owns instead of
// opening a second one.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// PubSubNotifier publishes the same FML XML payload FMLNotifier writes to
// disk, on a configured subject, grounded on the teacher's
// pkg/nats/client.go Publish method (spec.md §4.8).
type PubSubNotifier struct {
	Subject string
	pub     Publisher
}

func NewPubSubNotifier(subject string, pub Publisher) *PubSubNotifier {
	return &PubSubNotifier{Subject: subject, pub: pub}
}

func (n *PubSubNotifier) Notify(r *record.Record) error {
	payload := record.MarshalFML(r)
	if err := n.pub.Publish(n.Subject, []byte(payload)); err != nil {
		return fmt.Errorf("notifier/pubsub: publish %s: %w", n.Subject, err)
	}
	return nil
}
