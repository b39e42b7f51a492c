// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"flag"
	"fmt"
	"strings"

	"github.com/wxpipe/rapio/internal/index"
	"github.com/wxpipe/rapio/pkg/rurl"
)

// IngestPlugin declares "-i <protocol=params>" (spec.md §6), repeatable,
// auto-detecting the protocol when omitted (spec.md §4.3).
type IngestPlugin struct {
	raw stringList
}

func (p *IngestPlugin) Name() string { return "ingest" }

func (p *IngestPlugin) DeclareOptions(fs *flag.FlagSet) {
	fs.Var(&p.raw, "i", "index source `protocol=params` (repeatable); protocol is auto-detected when omitted")
}

// IngestSource is one parsed "-i" value.
type IngestSource struct {
	Protocol string // empty means auto-detect
	Params   string
}

// ParseIngestSource splits "protocol=params" on the first '='. A value with
// no registered protocol prefix is treated as bare params for auto-detect.
func ParseIngestSource(s string) IngestSource {
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		proto := s[:idx]
		if index.Registry.Has(proto) {
			return IngestSource{Protocol: proto, Params: s[idx+1:]}
		}
	}
	return IngestSource{Params: s}
}

// Merge appends configuration-file defaults when no "-i" flags were given,
// letting a CLI invocation always win over rapiosettings.json (spec.md §6).
func (p *IngestPlugin) Merge(defaults []string) {
	if len(p.raw.values) == 0 {
		p.raw.values = append(p.raw.values, defaults...)
	}
}

// Sources returns every declared "-i" value, parsed.
func (p *IngestPlugin) Sources() []IngestSource {
	out := make([]IngestSource, 0, len(p.raw.values))
	for _, v := range p.raw.values {
		out = append(out, ParseIngestSource(v))
	}
	return out
}

// autoDetectCandidates is the fixed set of index.Detect's CanHandle probes
// (spec.md §4.3's Web -> FML -> XML order); built fresh per call since
// CanHandle only inspects the URL, not instance state.
var autoDetectCandidates = []string{"iweb", "fml", "xml"}

// detectProtocol resolves a bare params string to a registered protocol
// name by constructing a throwaway instance of each auto-detect candidate
// and asking it to recognize params as a URL, falling back to "file".
func detectProtocol(params string) (string, error) {
	u, err := rurl.Parse(params)
	if err != nil {
		return "", fmt.Errorf("plugin/ingest: parse %q: %w", params, err)
	}
	candidates := make(map[string]index.Index, len(autoDetectCandidates))
	for _, name := range autoDetectCandidates {
		inst, err := index.Registry.Build(name, params)
		if err != nil {
			continue
		}
		candidates[name] = inst
	}
	return index.Detect(u, candidates), nil
}

// Build constructs one Index per declared source, resolving auto-detected
// protocols first. It does not Bind or InitialRead; the driver owns that
// sequencing so it can assign index numbers and the shared queue/filter.
func (p *IngestPlugin) Build() ([]index.Index, error) {
	var out []index.Index
	for _, src := range p.Sources() {
		proto := src.Protocol
		if proto == "" {
			detected, err := detectProtocol(src.Params)
			if err != nil {
				return out, err
			}
			proto = detected
		}
		idx, err := index.Registry.Build(proto, src.Params)
		if err != nil {
			return out, fmt.Errorf("plugin/ingest: build %q: %w", proto, err)
		}
		out = append(out, idx)
	}
	return out, nil
}
