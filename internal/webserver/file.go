// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package webserver

import (
	"io"
	"net/http"
	"os"
)

// serveFile streams resp.FilePath in chunkSize chunks, per spec.md §4.9's
// non-blocking read-and-send loop (expressed here as a buffered copy since
// Go's http.ResponseWriter already pipelines writes without an async
// write-completion callback to re-invoke).
func serveFile(w http.ResponseWriter, resp Response) {
	info, err := os.Stat(resp.FilePath)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if info.IsDir() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	f, err := os.Open(resp.FilePath)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	ct := resp.ContentType
	if ct == "" {
		ct = mimeByExtension(resp.FilePath)
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)

	buf := make([]byte, chunkSize)
	io.CopyBuffer(w, f, buf)
}
