// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package notifier implements spec.md §4.8: after each successful
// IODataType write, every configured Notifier records an external marker
// pointing at the new Record.
package notifier

import (
	"strings"

	"github.com/wxpipe/rapio/internal/record"
)

// Notifier announces a freshly-written output Record.
type Notifier interface {
	Notify(r *record.Record) error
}

// RecordID builds "<time-filename-string>_<subtype...>_<builder>" per
// spec.md §4.8, used as the notifier marker's filename stem.
func RecordID(r *record.Record) string {
	parts := []string{r.Time.FilenameString()}
	for _, s := range r.Selections[1:] {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if builder := r.BuilderKey(); builder != "" {
		parts = append(parts, builder)
	}
	return strings.Join(parts, "_")
}
