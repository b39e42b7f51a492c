// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wxpipe/rapio/internal/eventloop"
)

// slowHandler implements eventloop.Handler and models a record handler
// that sleeps mid-Action, recording ordered events so the test can assert
// no interleaving with a concurrently posted WebMessage (scenario F).
type slowHandler struct {
	loop   *eventloop.Loop
	events *[]string
	mu     *sync.Mutex
	armed  chan struct{}
}

func (s *slowHandler) Start(l *eventloop.Loop) { s.loop = l }
func (s *slowHandler) Action() {
	s.mu.Lock()
	*s.events = append(*s.events, "slow-start")
	s.mu.Unlock()

	close(s.armed)
	time.Sleep(100 * time.Millisecond)

	s.mu.Lock()
	*s.events = append(*s.events, "slow-end")
	s.mu.Unlock()
}

func TestNoInterleavingBetweenRecordHandlerAndWebMessage(t *testing.T) {
	var mu sync.Mutex
	var events []string

	loop := eventloop.New()
	slow := &slowHandler{events: &events, mu: &mu, armed: make(chan struct{})}
	loop.Register(slow)

	queue := NewWebMessageQueue(func(msg *WebMessage) {
		mu.Lock()
		events = append(events, "web")
		mu.Unlock()
		msg.Response = Response{Status: http.StatusOK, ContentType: "text/plain", Body: []byte("ok")}
	})
	loop.Register(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loop.Post(slow.Action)
	<-slow.armed

	srv := httptest.NewServer(NewRouter(queue))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"slow-start", "slow-end", "web"}, events)
}
