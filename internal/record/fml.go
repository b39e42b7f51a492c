// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wxpipe/rapio/pkg/ptree"
	"github.com/wxpipe/rapio/pkg/rerrors"
	"github.com/wxpipe/rapio/pkg/rtime"
)

// MarshalFML writes the current (compact) `<item>` shape (spec.md §6): a
// single element with t/p/s attributes, plus `<v>` children for Message
// key/values.
func MarshalFML(r *Record) string {
	var b strings.Builder
	t := fmt.Sprintf("%d.%02d", r.Time.Sec, int64(r.Time.Frac*100))
	fmt.Fprintf(&b, `<item t="%s"`, t)
	if len(r.Params) > 0 {
		fmt.Fprintf(&b, "\n      p=%q", strings.Join(r.Params, " "))
	}
	if len(r.Selections) > 0 {
		fmt.Fprintf(&b, "\n      s=%q", strings.Join(r.Selections, " "))
	}
	if len(r.KeyValues) == 0 {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteString(">\n")
	for k, v := range r.KeyValues {
		fmt.Fprintf(&b, "  <v n=%q>%s</v>\n", k, v)
	}
	b.WriteString("</item>")
	return b.String()
}

// ParseFML parses either FML shape into a Record. indexLocation substitutes
// any {IndexLocation} token in legacy params; indexNumber stamps the
// returned Record's owning index.
func ParseFML(doc string, indexLocation string, indexNumber int) (*Record, error) {
	node, err := ptree.ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rerrors.ErrParse, err)
	}
	return FromItemNode(node, indexLocation, indexNumber)
}

// FromItemNode parses an already-parsed <item> ptree.Node into a Record,
// dispatching on the presence of the compact shape's "t" attribute. Used
// directly by XMLIndex over a codeindex.xml document's children, which
// share the exact grammar of a standalone .fml file (spec.md §6).
func FromItemNode(node *ptree.Node, indexLocation string, indexNumber int) (*Record, error) {
	if node.Tag != "item" {
		return nil, fmt.Errorf("%w: root element is %q, want <item>", rerrors.ErrParse, node.Tag)
	}

	if t := node.Attr("t"); t != "" {
		return parseCompact(node, t, indexNumber)
	}
	return parseLegacy(node, indexLocation, indexNumber)
}

func parseCompact(node *ptree.Node, t string, indexNumber int) (*Record, error) {
	tm, err := parseTimeAttr(t)
	if err != nil {
		return nil, err
	}
	r := &Record{Time: tm, IndexNumber: indexNumber}
	if p := node.Attr("p"); p != "" {
		r.Params = strings.Fields(p)
	}
	if s := node.Attr("s"); s != "" {
		r.Selections = strings.Fields(s)
	}
	for _, v := range node.FindAll("v") {
		if r.KeyValues == nil {
			r.KeyValues = make(map[string]string)
		}
		r.KeyValues[v.Attr("n")] = v.TrimmedText()
	}
	return r, nil
}

func parseLegacy(node *ptree.Node, indexLocation string, indexNumber int) (*Record, error) {
	timeNode := node.Find("time")
	if timeNode == nil {
		return nil, fmt.Errorf("%w: legacy <item> missing <time>", rerrors.ErrParse)
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(timeNode.TrimmedText()), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: legacy time: %v", rerrors.ErrParse, err)
	}
	frac := 0.0
	if fs := timeNode.Attr("fractional"); fs != "" {
		frac, err = strconv.ParseFloat(fs, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: legacy fractional: %v", rerrors.ErrParse, err)
		}
	}

	r := &Record{Time: rtime.FromUnix(sec, frac), IndexNumber: indexNumber}

	if pn := node.Find("params"); pn != nil {
		r.Params = strings.Fields(pn.TrimmedText())
		for i, p := range r.Params {
			if p == IndexLocationToken {
				r.Params[i] = indexLocation
			}
		}
	}
	if sn := node.Find("selections"); sn != nil {
		r.Selections = strings.Fields(sn.TrimmedText())
	}

	if len(r.Params) > 0 && r.Params[0] == "Event" {
		r.KeyValues = map[string]string{}
		if len(r.Params) > 1 {
			r.KeyValues["Count"] = r.Params[1]
		}
		if len(r.Selections) > 1 {
			r.KeyValues["MessageText"] = r.Selections[1]
		}
		r.Params = nil
		r.Selections = nil
	}

	return r, nil
}

// parseTimeAttr parses the compact shape's combined "sec.frac" attribute.
func parseTimeAttr(t string) (rtime.Time, error) {
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return rtime.Time{}, fmt.Errorf("%w: time attribute %q: %v", rerrors.ErrParse, t, err)
	}
	sec := int64(f)
	frac := f - float64(sec)
	return rtime.FromUnix(sec, frac), nil
}
