// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package webserver implements spec.md §4.9: an HTTP accept thread hands
// each request to the single-threaded loop via WebMessageQueue, blocks on
// the response, then streams it back. Grounded on the router/middleware
// construction of cmd/cc-backend/main.go (gorilla/mux + gorilla/handlers),
// generalized from that file's fixed GraphQL/job-monitoring routes to a
// single catch-all handler dispatching into the algorithm driver.
package webserver

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/wxpipe/rapio/internal/eventloop"
	"github.com/wxpipe/rapio/pkg/rlog"
)

// chunkSize is the file-response streaming buffer, per spec.md §4.9.
const chunkSize = 128 * 1024

// Response is what an algorithm's ProcessWebMessage fills in before the
// message's promise is fulfilled: either a text body, or a file path plus
// headers, along with a status code.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	FilePath    string
	Headers     map[string]string
	Rejected    bool // set on internal error; yields 404 with an error body
}

// WebMessage is the Go analogue of the spec's WebMessage{path, queryMap,
// promise<bool>}: the HTTP goroutine posts one, blocks on done, and the
// loop goroutine fills Response before closing it.
type WebMessage struct {
	Path     string
	Query    url.Values
	Response Response
	done     chan struct{}
}

// ProcessFunc mutates msg.Response on the loop thread (the Go replacement
// for algorithm->processWebMessage).
type ProcessFunc func(msg *WebMessage)

// WebMessageQueue implements eventloop.Handler, draining pending requests
// on the loop goroutine exactly like RecordQueue drains records (spec.md
// §4.9 steps 2-3).
type WebMessageQueue struct {
	mu      chanMutex
	pending []*WebMessage
	process ProcessFunc
	ready   *eventloop.Ready
}

// chanMutex is a channel-based mutex, matching the teacher's general
// preference for an explicit, visibly-initialized lock over a raw
// sync.Mutex zero value embedded in an exported field.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	c := make(chanMutex, 1)
	c <- struct{}{}
	return c
}
func (c chanMutex) Lock()   { <-c }
func (c chanMutex) Unlock() { c <- struct{}{} }

func NewWebMessageQueue(process ProcessFunc) *WebMessageQueue {
	return &WebMessageQueue{mu: newChanMutex(), process: process}
}

func (q *WebMessageQueue) Start(l *eventloop.Loop) {
	q.ready = eventloop.NewReady(l, q.Action)
}

// Post enqueues msg and schedules a drain; called from the HTTP accept
// goroutine, never from the loop goroutine.
func (q *WebMessageQueue) Post(msg *WebMessage) {
	msg.done = make(chan struct{})
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	q.mu.Unlock()
	q.ready.SetReady()
}

// Action drains all pending messages, invoking process for each and then
// fulfilling its promise (closing done), on the loop goroutine.
func (q *WebMessageQueue) Action() {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, msg := range batch {
		func() {
			defer close(msg.done)
			defer func() {
				if r := recover(); r != nil {
					rlog.Severe("webserver: panic in ProcessWebMessage:", r)
					msg.Response = Response{Rejected: true}
				}
			}()
			q.process(msg)
		}()
	}
}

// mimeByExtension sniffs content type by suffix per spec.md §4.9; anything
// unrecognized is text/plain.
func mimeByExtension(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		return "application/javascript"
	case strings.HasSuffix(path, ".wasm"):
		return "application/wasm"
	default:
		return "text/plain; charset=utf-8"
	}
}

// NewRouter builds the gorilla/mux router with the teacher's exact
// middleware stack (compression, panic recovery, permissive CORS, request
// logging), routed to a single catch-all handler backed by queue.
func NewRouter(queue *WebMessageQueue) http.Handler {
	r := mux.NewRouter()
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handle(w, req, queue)
	})

	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(handlers.CORS(
		handlers.AllowCredentials(),
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization", "Origin"}),
		handlers.AllowedMethods([]string{"GET", "POST", "HEAD", "OPTIONS"}),
		handlers.AllowedOrigins([]string{"*"})))

	return handlers.CustomLoggingHandler(io.Discard, r, func(_ io.Writer, params handlers.LogFormatterParams) {
		rlog.Infof("%s %s (%d, %.02fkb, %dms)",
			params.Request.Method, params.URL.RequestURI(), params.StatusCode,
			float32(params.Size)/1024, time.Since(params.TimeStamp).Milliseconds())
	})
}

func handle(w http.ResponseWriter, r *http.Request, queue *WebMessageQueue) {
	msg := &WebMessage{Path: r.URL.Path, Query: r.URL.Query()}
	queue.Post(msg)
	<-msg.done
	writeResponse(w, msg)
}

func writeResponse(w http.ResponseWriter, msg *WebMessage) {
	resp := msg.Response

	if resp.Rejected {
		http.Error(w, "internal error", http.StatusNotFound)
		return
	}

	if resp.FilePath != "" {
		serveFile(w, resp)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	ct := resp.ContentType
	if ct == "" {
		ct = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write(resp.Body)
}
