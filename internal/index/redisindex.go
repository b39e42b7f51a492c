// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"context"
	"strings"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/watcher"
	"github.com/wxpipe/rapio/pkg/rlog"
	"github.com/wxpipe/rapio/pkg/rurl"
)

func init() {
	Register("iredis", func(params string) (Index, error) {
		return NewRedisIndex(params), nil
	})
}

// RedisIndex keeps the teacher-era protocol name but is, per spec.md §4.3,
// a realtime-only NATS pub/sub subscriber: each inbound payload is parsed
// as an <item> FML fragment.
type RedisIndex struct {
	base
	addressAndSubject string
	w                 *watcher.PubSubWatcher
}

func NewRedisIndex(addressAndSubject string) *RedisIndex {
	return &RedisIndex{addressAndSubject: addressAndSubject}
}

func (r *RedisIndex) CanHandle(u *rurl.URL) (bool, string) {
	return u.Scheme == "nats", "iredis"
}

func (r *RedisIndex) InitialRead(ctx context.Context, realtime, archive bool) error {
	if !realtime {
		return nil
	}
	address, subject := r.addressAndSubject, ""
	if i := strings.LastIndex(r.addressAndSubject, "|"); i >= 0 {
		address, subject = r.addressAndSubject[:i], r.addressAndSubject[i+1:]
	}

	r.w = watcher.NewPubSubWatcher(watcher.PubSubConfig{Address: address, Subject: subject})
	loop := loopFromContext(ctx)
	return r.w.Attach(loop, subject, realtime, archive, r)
}

// ProcessNewFile implements watcher.EventListener, receiving the raw FML
// payload of an inbound pub/sub message (spec.md §4.3 RedisIndex: parse
// failures are logged with the payload and otherwise skipped).
func (r *RedisIndex) ProcessNewFile(payload string) {
	rec, err := record.ParseFML(payload, "", r.indexNumber)
	if err != nil {
		rlog.Severef("index/iredis: unparseable payload: %q: %v", payload, err)
		return
	}
	r.emit(rec)
}

func (r *RedisIndex) HandlePoll() {}
