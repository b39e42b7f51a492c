// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"strings"

	"github.com/wxpipe/rapio/pkg/strmatch"
)

// Selector is one -I pattern: a product-name glob, optionally qualified by
// a subtype glob (spec.md §4.4).
type Selector struct {
	NamePattern    string
	SubTypePattern string // empty means "match any subtype"
}

// ParseSelector parses "prod[:sub]" into a Selector.
func ParseSelector(s string) Selector {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		return Selector{NamePattern: s[:idx], SubTypePattern: s[idx+1:]}
	}
	return Selector{NamePattern: s}
}

// escape hatch subtypes that disable product-pattern matching entirely.
var alwaysPassSubTypes = map[string]bool{"vol": true, "all": true}

// Filter interposes between RecordQueue enqueue and user dispatch. The
// wanted/unwanted decision is made at enqueue time (spec.md §4.4) so the
// queue carries only interesting records.
type Filter struct {
	Selectors []Selector
}

func NewFilter(selectors ...Selector) *Filter {
	return &Filter{Selectors: selectors}
}

// Wanted reports whether r should be enqueued. Messages are always wanted.
// A record with no configured selectors is wanted (no filter installed).
func (f *Filter) Wanted(r *Record) bool {
	if r.IsMessage() {
		return true
	}
	if len(f.Selectors) == 0 {
		return true
	}
	if alwaysPassSubTypes[r.SubType()] {
		return true
	}
	name := r.TypeName()
	for _, sel := range f.Selectors {
		if !strmatch.Match(sel.NamePattern, name) {
			continue
		}
		if sel.SubTypePattern == "" {
			return true
		}
		if strmatch.Match(sel.SubTypePattern, r.SubType()) {
			return true
		}
	}
	return false
}
