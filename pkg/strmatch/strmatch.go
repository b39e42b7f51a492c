// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package strmatch implements the single-wildcard glob used by RecordFilter
// selectors (spec.md §4.4): at most one '*' in the pattern.
package strmatch

import "strings"

// Match reports whether s matches pattern, where pattern may contain at
// most one '*' standing for any (possibly empty) run of characters.
// A second or later '*' is treated as a literal character, matching the
// pack's habit of keeping matchers simple rather than general regex engines.
func Match(pattern, s string) bool {
	idx := strings.IndexByte(pattern, '*')
	if idx < 0 {
		return pattern == s
	}
	prefix := pattern[:idx]
	suffix := pattern[idx+1:]
	if len(s) < len(prefix)+len(suffix) {
		return false
	}
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	if !strings.HasSuffix(s, suffix) {
		return false
	}
	return true
}
