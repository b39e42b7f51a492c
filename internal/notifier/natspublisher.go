// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package notifier

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// NatsPublisher is a publish-only NATS connection, used when no watcher in
// this process already owns a subscription (and thus a connection) to
// share with PubSubNotifier. Grounded on the teacher's pkg/nats/client.go
// Connect/Publish pair, narrowed to the publish-only half.
type NatsPublisher struct {
	conn *nats.Conn
}

func DialNatsPublisher(address, username, password string) (*NatsPublisher, error) {
	var opts []nats.Option
	if username != "" && password != "" {
		opts = append(opts, nats.UserInfo(username, password))
	}
	conn, err := nats.Connect(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("notifier: connect %s: %w", address, err)
	}
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) Publish(subject string, data []byte) error {
	return p.conn.Publish(subject, data)
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}
