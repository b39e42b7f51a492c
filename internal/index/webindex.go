// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/watcher"
	"github.com/wxpipe/rapio/pkg/ptree"
	"github.com/wxpipe/rapio/pkg/rerrors"
	"github.com/wxpipe/rapio/pkg/rlog"
	"github.com/wxpipe/rapio/pkg/rurl"
)

func init() {
	Register("iweb", func(params string) (Index, error) {
		return NewWebIndex(params, defaultWebPollInterval), nil
	})
}

const defaultWebPollInterval = 2 * time.Second

// httpClient carries the fixed 30s connect+read timeout of spec.md §5.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// WebIndex polls a webindex server endpoint, tracking a (lastReadSec,
// lastReadNS) cursor so repeated polls only emit genuinely new items
// (spec.md §4.3, §6 "WebIndex wire protocol").
type WebIndex struct {
	base
	server       string
	source       string
	lastReadSec  int64
	lastReadNS   int64
	pollInterval time.Duration
}

func NewWebIndex(serverAndSource string, pollInterval time.Duration) *WebIndex {
	server, source := serverAndSource, ""
	if i := strings.LastIndex(serverAndSource, "|"); i >= 0 {
		server, source = serverAndSource[:i], serverAndSource[i+1:]
	}
	return &WebIndex{server: server, source: source, pollInterval: pollInterval}
}

func (w *WebIndex) CanHandle(u *rurl.URL) (bool, string) {
	return u.Scheme == "http" || u.Scheme == "https", "iweb"
}

func (w *WebIndex) InitialRead(ctx context.Context, realtime, archive bool) error {
	if archive {
		if err := w.HandlePollErr(); err != nil {
			return err
		}
	}
	if realtime {
		loop := loopFromContext(ctx)
		pw := watcher.NewWebPollWatcher(w.pollInterval)
		return pw.Attach(loop, "", realtime, archive, w)
	}
	return nil
}

// ProcessNewFile is unused by WebIndex; present to satisfy watcher.EventListener.
func (w *WebIndex) ProcessNewFile(string) {}

// HandlePoll implements watcher.EventListener, invoked on each poll tick.
func (w *WebIndex) HandlePoll() {
	if err := w.HandlePollErr(); err != nil {
		rlog.Warnf("index/iweb: poll %s: %v", w.server, err)
	}
}

// HandlePollErr issues one GET against the webindex endpoint, parses the
// <records> response, emits every item strictly past the cursor, then
// advances the cursor.
func (w *WebIndex) HandlePollErr() error {
	reqURL := fmt.Sprintf("%s/webindex/getxml.do?source=%s&lastRead=%d&lastReadNS=%d",
		strings.TrimRight(w.server, "/"), url.QueryEscape(w.source), w.lastReadSec, w.lastReadNS)

	resp, err := httpClient.Get(reqURL)
	if err != nil {
		return fmt.Errorf("%w: %v", rerrors.ErrIOTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", rerrors.ErrIOTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", rerrors.ErrIOFatal, resp.StatusCode)
	}

	root, err := ptree.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", rerrors.ErrParse, err)
	}

	lastRead, err := strconv.ParseInt(root.Attr("lastRead"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: lastRead attribute: %v", rerrors.ErrParse, err)
	}
	lastReadNS, _ := strconv.ParseInt(root.Attr("lastReadNS"), 10, 64)

	if lastRead == -2 {
		return nil // end of stream
	}
	if lastRead == -1 {
		return nil // nothing new since cursor
	}

	for _, item := range root.FindAll("item") {
		r, err := record.FromItemNode(item, "", w.indexNumber)
		if err != nil {
			continue
		}
		if !itemAfterCursor(r, w.lastReadSec, w.lastReadNS) {
			continue
		}
		w.emit(r)
	}

	w.lastReadSec = lastRead
	w.lastReadNS = lastReadNS
	return nil
}

// itemAfterCursor reports whether r's time is strictly greater than the
// (sec, ns) cursor; nanoseconds are derived from Frac for the comparison.
func itemAfterCursor(r *record.Record, sec, ns int64) bool {
	if r.Time.Sec != sec {
		return r.Time.Sec > sec
	}
	itemNS := int64(r.Time.Frac * 1e9)
	return itemNS > ns
}
