// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iodatatype

import (
	"fmt"
	"path/filepath"

	"github.com/wxpipe/rapio/pkg/rtime"
)

// WriteKeys is the string map an encoder receives, per spec.md §4.6.
type WriteKeys struct {
	OutDir       string
	DataTypeName string
	SubType      string
	Suffix       string
	FilepathMode string // "datatype" or "direct"
	DirectPath   string // used when FilepathMode == "direct"
	Subdirs      bool
	Compression  string
	PostWrite    string // shell command, %filename% substituted
}

// FromMap parses the string-keyed map form (as handed across the -o/-O CLI
// boundary or a plugin config) into a WriteKeys.
func FromMap(m map[string]string) WriteKeys {
	return WriteKeys{
		OutDir:       m["outdir"],
		DataTypeName: m["datatype"],
		SubType:      m["subtype"],
		Suffix:       m["suffix"],
		FilepathMode: m["filepathmode"],
		DirectPath:   m["path"],
		Subdirs:      m["subdirs"] == "true",
		Compression:  m["compression"],
		PostWrite:    m["postwrite"],
	}
}

// BuildFilename templates a final output path from keys and t, per
// spec.md §4.6. When FilepathMode is "direct", DirectPath is returned as-is.
func BuildFilename(k WriteKeys, t rtime.Time) (string, error) {
	if k.FilepathMode == "direct" {
		if k.DirectPath == "" {
			return "", fmt.Errorf("iodatatype: filepathmode=direct requires a path")
		}
		return k.DirectPath, nil
	}
	if k.OutDir == "" || k.DataTypeName == "" || k.Suffix == "" {
		return "", fmt.Errorf("iodatatype: filepathmode=datatype requires outdir, datatype, suffix")
	}
	ts := t.FilenameString()
	if k.Subdirs {
		if k.SubType != "" {
			return filepath.Join(k.OutDir, k.DataTypeName, k.SubType, ts+"."+k.Suffix), nil
		}
		return filepath.Join(k.OutDir, k.DataTypeName, ts+"."+k.Suffix), nil
	}
	name := ts + "_" + k.DataTypeName
	if k.SubType != "" {
		name += "_" + k.SubType
	}
	return filepath.Join(k.OutDir, name+"."+k.Suffix), nil
}

// StagingPath returns the sibling .working/ path a writer should use before
// the atomic rename to finalPath.
func StagingPath(finalPath string) string {
	dir := filepath.Dir(finalPath)
	base := filepath.Base(finalPath)
	return filepath.Join(dir, ".working", base)
}
