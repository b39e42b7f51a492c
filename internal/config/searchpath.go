// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config implements the ordered filesystem search for configuration
// files (spec.md §2 "Config search", §6 environment variables) and the
// explicit Context struct spec.md §9 asks for in place of the teacher's own
// package-level config globals (see DESIGN.md Open Question resolution).
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	envRapioConfig = "RAPIO_CONFIG_LOCATION"
	envW2Config    = "W2_CONFIG_LOCATION"
	settingsFile   = "rapiosettings.json"
)

// SearchPaths returns the ordered list of directories to search for
// configuration files: RAPIO_CONFIG_LOCATION, then W2_CONFIG_LOCATION
// (both colon-separated), then $HOME as a last resort.
func SearchPaths() []string {
	var paths []string
	for _, env := range []string{envRapioConfig, envW2Config} {
		if v := os.Getenv(env); v != "" {
			for _, p := range strings.Split(v, ":") {
				if p != "" {
					paths = append(paths, p)
				}
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, home)
	}
	return paths
}

// Resolve searches paths (in order) for name, also trying a sibling
// "RAPIOConfig"/"w2config" subdirectory under each, and returns the first
// match. Returns "" if none resolves.
func Resolve(paths []string, name string) string {
	subdirs := []string{"", "RAPIOConfig", "w2config"}
	for _, base := range paths {
		for _, sub := range subdirs {
			candidate := filepath.Join(base, sub, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

// ResolveSettingsFile locates rapiosettings.json via SearchPaths.
func ResolveSettingsFile() string {
	return Resolve(SearchPaths(), settingsFile)
}
