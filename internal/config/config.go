// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/wxpipe/rapio/pkg/rerrors"
)

//go:embed schema.json
var schemaFS embed.FS

// Settings is the parsed rapiosettings.json entry document (spec.md §6).
// It is intentionally flat: ConfigTypes (indexes, filters, output, notifier)
// read only the slice they own; unrelated subsystems ignore unknown keys.
type Settings struct {
	Logging struct {
		Level   string `json:"level"`
		LogDate bool   `json:"logdate"`
	} `json:"logging"`
	Index             []string `json:"index"`
	Filter            []string `json:"filter"`
	Output            []string `json:"output"`
	Notifier          []string `json:"notifier"`
	MaxHistorySeconds int      `json:"maxHistorySeconds"`
	WebPort           int      `json:"webPort"`
	Sync              string   `json:"sync"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schema.json")
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return c.Compile("schema.json")
}

// Validate checks raw JSON bytes against the embedded schema.
func Validate(raw []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("config: compile schema: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", rerrors.ErrParse, err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", rerrors.ErrParse, err)
	}
	return nil
}

// LoadSettings resolves rapiosettings.json on paths, validates it against
// the embedded schema, and parses it.
func LoadSettings(paths []string) (*Settings, error) {
	path := Resolve(paths, settingsFile)
	if path == "" {
		return nil, fmt.Errorf("%w: %s not found on search paths %v", rerrors.ErrConfigMissing, settingsFile, paths)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", rerrors.ErrParse, err)
	}
	return &s, nil
}

// Context threads search paths and the loaded settings document explicitly
// through construction, per spec.md §9's guidance against global mutable
// config state.
type Context struct {
	SearchPaths []string
	Settings    *Settings
}

// NewContext resolves search paths from the environment and loads settings.
// If no settings file is found, Settings is nil and the caller decides
// whether that is fatal (the algorithm driver treats it as
// ErrConfigMissing at startup; see internal/algorithm).
func NewContext() (*Context, error) {
	paths := SearchPaths()
	settings, err := LoadSettings(paths)
	if err != nil {
		return &Context{SearchPaths: paths}, err
	}
	return &Context{SearchPaths: paths, Settings: settings}, nil
}
