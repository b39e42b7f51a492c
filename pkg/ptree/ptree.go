// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ptree is a minimal language-neutral tree over XML payloads: just
// enough of a DOM for FML/codeindex/WebIndex documents and config sub-trees,
// not a general XML library. Concrete DOM access beyond this is out of scope
// (spec.md §1).
package ptree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one element: a tag name, attributes, text content, and children.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

func newNode(tag string) *Node {
	return &Node{Tag: tag, Attrs: make(map[string]string)}
}

// Attr returns an attribute value, or "" if absent.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[name]
}

// Find returns the first direct child with the given tag, or nil.
func (n *Node) Find(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// FindAll returns all direct children with the given tag.
func (n *Node) FindAll(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Parse builds a Node tree from an XML document's root element.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var stack []*Node
	var root *Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ptree: parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := newNode(t.Name.Local)
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("ptree: %w: empty document", io.ErrUnexpectedEOF)
	}
	return root, nil
}

// ParseString is a convenience wrapper over Parse.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// TrimmedText returns the node's text content with surrounding whitespace removed.
func (n *Node) TrimmedText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}
