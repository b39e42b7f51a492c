// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rurl decomposes and serializes the source URLs carried in Record
// params: scheme, user, password, host, port, path, query, fragment.
package rurl

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// URL is a decomposed source locator. Query is a net/url.Values map;
// String serializes it with Values.Encode, which sorts by key, so the
// output is deterministic.
type URL struct {
	Scheme   string
	User     string
	Password string
	Host     string
	Port     int
	Path     string
	Query    url.Values
	Fragment string
}

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"ftp":   21,
	"nats":  4222,
}

func defaultPortForScheme(scheme string) int {
	return defaultPorts[scheme]
}

// Parse decomposes s into a URL. Paths with no scheme (bare filesystem
// paths) are accepted with an empty Scheme and Host.
func Parse(s string) (*URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("rurl: parse %q: %w", s, err)
	}

	result := &URL{
		Scheme:   u.Scheme,
		Path:     u.Path,
		Query:    u.Query(),
		Fragment: u.Fragment,
	}
	if result.Path == "" && u.Opaque != "" {
		result.Path = u.Opaque
	}
	if u.User != nil {
		result.User = u.User.Username()
		result.Password, _ = u.User.Password()
	}
	host := u.Hostname()
	result.Host = host
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("rurl: parse %q: bad port %q", s, p)
		}
		result.Port = port
	} else {
		result.Port = defaultPortForScheme(result.Scheme)
	}
	return result, nil
}

// String serializes u back into a URL string. Serialization is idempotent:
// Parse(u.String()).String() == u.String(), modulo default-port collapsing.
func (u *URL) String() string {
	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteString("://")
	}
	if u.User != "" {
		b.WriteString(url.User(u.User).String())
		if u.Password != "" {
			b.WriteString(":")
			b.WriteString(url.QueryEscape(u.Password))
		}
		b.WriteString("@")
	}
	if u.Host != "" {
		b.WriteString(u.Host)
		if u.Port != 0 && u.Port != defaultPortForScheme(u.Scheme) {
			fmt.Fprintf(&b, ":%d", u.Port)
		}
	}
	b.WriteString(u.Path)
	if len(u.Query) > 0 {
		b.WriteString("?")
		b.WriteString(u.Query.Encode())
	}
	if u.Fragment != "" {
		b.WriteString("#")
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// IsLocal reports whether the URL's host refers to this machine: empty,
// "localhost", or the machine's own hostname.
func (u *URL) IsLocal() bool {
	if u.Host == "" || u.Host == "localhost" || u.Host == "127.0.0.1" {
		return true
	}
	if hn, err := os.Hostname(); err == nil && hn == u.Host {
		return true
	}
	return false
}
