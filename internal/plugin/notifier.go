// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"flag"
	"fmt"
	"strings"

	"github.com/wxpipe/rapio/internal/notifier"
)

// disableNotifiers is the special "-n disable" value (spec.md §6).
const disableNotifiers = "disable"

// NotifierPlugin declares "-n <proto[=params]>" or "-n disable" (spec.md
// §6), repeatable.
type NotifierPlugin struct {
	raw     stringList
	postFML string
}

func (p *NotifierPlugin) Name() string { return "notifier" }

func (p *NotifierPlugin) DeclareOptions(fs *flag.FlagSet) {
	fs.Var(&p.raw, "n", "notifier `proto[=params]`, or disable (repeatable)")
	fs.StringVar(&p.postFML, "postfml", "", "shell command run after each FML marker write, %filename% substituted")
}

// Merge appends configuration-file defaults when no "-n" flags were given.
func (p *NotifierPlugin) Merge(defaults []string) {
	if len(p.raw.values) == 0 {
		p.raw.values = append(p.raw.values, defaults...)
	}
}

// Build constructs every configured Notifier. "-n disable" (alone or mixed
// in) yields no notifiers at all.
func (p *NotifierPlugin) Build() ([]notifier.Notifier, error) {
	var out []notifier.Notifier
	for _, v := range p.raw.values {
		if v == disableNotifiers {
			return nil, nil
		}
		proto, params, _ := strings.Cut(v, "=")
		switch proto {
		case "fml":
			fn := notifier.NewFMLNotifier(params)
			fn.PostWrite = p.postFML
			out = append(out, fn)
		case "pubsub", "iredis":
			address, subject, _ := strings.Cut(params, "|")
			pub, err := notifier.DialNatsPublisher(address, "", "")
			if err != nil {
				return out, err
			}
			out = append(out, notifier.NewPubSubNotifier(subject, pub))
		default:
			return out, fmt.Errorf("plugin/notifier: unknown protocol %q", proto)
		}
	}
	return out, nil
}
