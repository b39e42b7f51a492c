// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/internal/recordqueue"
)

type captureDispatcher struct{ records []*record.Record }

func (c *captureDispatcher) HandleRecordEvent(r *record.Record) {
	c.records = append(c.records, r)
}

// TestWebIndexCursorAdvancesAndDedupes covers scenario E: the first poll
// enqueues two items and advances the cursor; the second poll, with the
// same items replayed behind an unchanged cursor, enqueues nothing.
func TestWebIndexCursorAdvancesAndDedupes(t *testing.T) {
	var lastReadSeen url.Values
	requests := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		lastReadSeen = r.URL.Query()
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<records lastRead="1000" lastReadNS="0">`+
			`<item t="999.5" p="netcdf /x A" s="19700101-001639.500 A 00.50"/>`+
			`<item t="1000.0" p="netcdf /x B" s="19700101-001640.000 B 00.50"/>`+
			`</records>`)
	}))
	defer srv.Close()

	dispatcher := &captureDispatcher{}
	q := recordqueue.New(dispatcher)

	wi := NewWebIndex(srv.URL+"|src1", 0)
	wi.Bind(q, nil, 0)

	require.NoError(t, wi.HandlePollErr())
	for q.Len() > 0 {
		q.Action()
	}
	require.Len(t, dispatcher.records, 2)
	require.Equal(t, int64(1000), wi.lastReadSec)
	require.Equal(t, "0", lastReadSeen.Get("lastRead"))

	require.NoError(t, wi.HandlePollErr())
	for q.Len() > 0 {
		q.Action()
	}
	require.Len(t, dispatcher.records, 2)
	require.Equal(t, "1000", lastReadSeen.Get("lastRead"))
	require.Equal(t, 2, requests)
}
