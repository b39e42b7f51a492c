// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"flag"
	"fmt"
	"strings"

	"github.com/wxpipe/rapio/internal/datatype"
	"github.com/wxpipe/rapio/internal/iodatatype"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/strmatch"
)

// OutputPlugin declares "-o <factory=outdir>" and "-O
// <prod[:sub][=newprod[:newsub]]>" (spec.md §6), both repeatable.
type OutputPlugin struct {
	specs      stringList
	renames    stringList
	postWrite  string
	asyncWrite int
	asyncQueue int
}

func (p *OutputPlugin) Name() string { return "output" }

func (p *OutputPlugin) DeclareOptions(fs *flag.FlagSet) {
	fs.Var(&p.specs, "o", "output writer `factory=outdir` (repeatable)")
	fs.Var(&p.renames, "O", "output product filter/rename `prod[:sub][=newprod[:newsub]]` (repeatable)")
	fs.StringVar(&p.postWrite, "postwrite", "", "shell command run after each output write, %filename% substituted")
	fs.IntVar(&p.asyncWrite, "output-workers", 0, "write outputs on a bounded worker pool of this size instead of inline (0 = synchronous)")
	fs.IntVar(&p.asyncQueue, "output-queue", 64, "bounded task queue size for -output-workers; a full queue rejects the write with a Queue-overflow error")
}

// OutputSpec is one parsed "-o" value: every configured output writer
// writes every passed-through product unless narrowed by OutputRename
// rules (spec.md §6).
type OutputSpec struct {
	Factory string
	OutDir  string
}

func ParseOutputSpec(s string) (OutputSpec, error) {
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return OutputSpec{}, fmt.Errorf("plugin/output: %q: want factory=outdir", s)
	}
	return OutputSpec{Factory: s[:idx], OutDir: s[idx+1:]}, nil
}

// OutputRename is one parsed "-O" rule. An empty NewProduct after a match
// means "drop this product" (spec.md §6's product-output-filter role).
type OutputRename struct {
	Product, SubType       string
	NewProduct, NewSubType string
}

func splitProdSub(s string) (prod, sub string) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}

func ParseOutputRename(s string) (OutputRename, error) {
	left, right, hasRight := strings.Cut(s, "=")
	prod, sub := splitProdSub(left)
	if prod == "" {
		return OutputRename{}, fmt.Errorf("plugin/output: %q: empty product pattern", s)
	}
	r := OutputRename{Product: prod, SubType: sub}
	if hasRight {
		r.NewProduct, r.NewSubType = splitProdSub(right)
	}
	return r, nil
}

// OutputRouter applies the configured rename/filter rules and then invokes
// every configured writer for a surviving product (spec.md §4.6, §6).
type OutputRouter struct {
	Specs     []OutputSpec
	Renames   []OutputRename
	PostWrite string

	pool     *iodatatype.WritePool
	post     func(func())
	onResult func(*record.Record, error)
}

// Merge appends configuration-file defaults for "-o" when none were given
// on the command line.
func (p *OutputPlugin) Merge(defaults []string) {
	if len(p.specs.values) == 0 {
		p.specs.values = append(p.specs.values, defaults...)
	}
}

// Build parses every declared "-o"/"-O" value into an OutputRouter.
func (p *OutputPlugin) Build() (*OutputRouter, error) {
	r := &OutputRouter{PostWrite: p.postWrite}
	for _, v := range p.specs.values {
		spec, err := ParseOutputSpec(v)
		if err != nil {
			return nil, err
		}
		r.Specs = append(r.Specs, spec)
	}
	for _, v := range p.renames.values {
		rule, err := ParseOutputRename(v)
		if err != nil {
			return nil, err
		}
		r.Renames = append(r.Renames, rule)
	}
	if p.asyncWrite > 0 {
		r.pool = iodatatype.NewWritePool(p.asyncWrite, p.asyncQueue)
	}
	return r, nil
}

// SetAsync wires the loop-thread poster and the result callback the router
// uses once a pool-backed write completes out of band (see WriteAll). It is
// a no-op when -output-workers was not given, so callers can always invoke
// it unconditionally right after Build.
func (r *OutputRouter) SetAsync(post func(func()), onResult func(*record.Record, error)) {
	r.post = post
	r.onResult = onResult
}

// Close stops the write pool, if one was built, waiting for queued writes
// to finish (spec.md §4.10 shutdown sequence).
func (r *OutputRouter) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// route applies the first matching rename rule to (product, subType). With
// no configured rules every product passes through unchanged.
func (r *OutputRouter) route(product, subType string) (newProduct, newSubType string, ok bool) {
	if len(r.Renames) == 0 {
		return product, subType, true
	}
	for _, rule := range r.Renames {
		if !strmatch.Match(rule.Product, product) {
			continue
		}
		if rule.SubType != "" && !strmatch.Match(rule.SubType, subType) {
			continue
		}
		if rule.NewProduct == "" {
			return "", "", false
		}
		np, ns := rule.NewProduct, rule.NewSubType
		if ns == "" {
			ns = subType
		}
		return np, ns, true
	}
	return "", "", false
}

// WriteAll routes dt through the rename rules, then writes it via every
// configured output spec, returning one output Record per writer.
//
// When -output-workers configured a pool, each write instead runs on a
// pool worker; WriteAll returns as soon as every write is queued (no
// records yet — they arrive later via the onResult callback posted back
// onto the loop thread through SetAsync) or the Queue-overflow error from
// the first spec a full queue rejected.
func (r *OutputRouter) WriteAll(dt *datatype.DataType) ([]*record.Record, error) {
	product, subType, ok := r.route(dt.TypeName, dt.SubType)
	if !ok {
		return nil, nil
	}

	if r.pool != nil {
		return nil, r.writeAllAsync(dt, product, subType)
	}

	out := make([]*record.Record, 0, len(r.Specs))
	for _, spec := range r.Specs {
		rec, err := r.writeOne(spec, dt, product, subType)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *OutputRouter) writeOne(spec OutputSpec, dt *datatype.DataType, product, subType string) (*record.Record, error) {
	codec, err := iodatatype.Registry.Build(spec.Factory, spec.OutDir)
	if err != nil {
		return nil, fmt.Errorf("plugin/output: %s: %w", spec.Factory, err)
	}
	keys := map[string]string{
		"outdir":       spec.OutDir,
		"datatype":     product,
		"subtype":      subType,
		"filepathmode": "datatype",
		"postwrite":    r.PostWrite,
	}
	rec, err := codec.Write(dt, keys)
	if err != nil {
		return nil, fmt.Errorf("plugin/output: write via %s: %w", spec.Factory, err)
	}
	return rec, nil
}

func (r *OutputRouter) writeAllAsync(dt *datatype.DataType, product, subType string) error {
	for _, spec := range r.Specs {
		spec := spec
		err := r.pool.Submit(func() {
			rec, err := r.writeOne(spec, dt, product, subType)
			if r.post == nil || r.onResult == nil {
				return
			}
			r.post(func() { r.onResult(rec, err) })
		})
		if err != nil {
			return fmt.Errorf("plugin/output: %s: %w", spec.Factory, err)
		}
	}
	return nil
}
