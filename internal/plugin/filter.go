// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"flag"

	"github.com/wxpipe/rapio/internal/record"
)

// FilterPlugin declares "-I <prod[:sub]>" (spec.md §6), repeatable,
// building the process-wide RecordFilter (spec.md §4.4).
type FilterPlugin struct {
	raw stringList
}

func (p *FilterPlugin) Name() string { return "filter" }

func (p *FilterPlugin) DeclareOptions(fs *flag.FlagSet) {
	fs.Var(&p.raw, "I", "product selector `prod[:subtype]` (repeatable)")
}

// Merge appends configuration-file defaults when no "-I" flags were given.
func (p *FilterPlugin) Merge(defaults []string) {
	if len(p.raw.values) == 0 {
		p.raw.values = append(p.raw.values, defaults...)
	}
}

// Build returns the configured Filter. With no "-I" flags, the Filter
// passes every record (record.Filter's zero-selector behavior).
func (p *FilterPlugin) Build() *record.Filter {
	selectors := make([]record.Selector, 0, len(p.raw.values))
	for _, v := range p.raw.values {
		selectors = append(selectors, record.ParseSelector(v))
	}
	return record.NewFilter(selectors...)
}
