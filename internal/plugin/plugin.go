// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package plugin implements the composable command-line/lifecycle units
// the algorithm driver declares before entering the event loop (spec.md
// §4.10 steps 1-2): ingest sources, the record filter, outputs plus their
// rename rule, notifiers, the heartbeat scheduler, and the web server.
// Grounded on cmd/cc-backend/main.go's flat flag.StringVar/BoolVar style,
// generalized to repeatable flags via a small flag.Value implementation
// since the driver accepts "-i", "-o", "-O", "-n" any number of times.
package plugin

import "strings"

// Plugin is the common marker every composable driver concern implements.
type Plugin interface {
	Name() string
}

// stringList implements flag.Value, collecting every occurrence of a
// repeatable flag (e.g. "-i xml=a -i fam=b") in order.
type stringList struct {
	values []string
}

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(s.values, ",")
}

func (s *stringList) Set(v string) error {
	s.values = append(s.values, v)
	return nil
}
