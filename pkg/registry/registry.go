// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry provides a flat name→constructor registry, replacing the
// polymorphic class hierarchies the original framework used for index,
// watcher, and codec lookup (spec.md §9 design note).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wxpipe/rapio/pkg/rerrors"
)

// Constructor builds a T from a parameter string (the part of a CLI/config
// value following the registered key, e.g. the "params" in "xml=params").
type Constructor[T any] func(params string) (T, error)

// Factory is a concurrency-safe name->Constructor map.
type Factory[T any] struct {
	mu    sync.RWMutex
	ctors map[string]Constructor[T]
}

func NewFactory[T any]() *Factory[T] {
	return &Factory[T]{ctors: make(map[string]Constructor[T])}
}

// Register adds a constructor under name. Re-registering the same name is
// an internal-invariant error (spec.md §7): duplicate-option registration.
func (f *Factory[T]) Register(name string, ctor Constructor[T]) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.ctors[name]; exists {
		return fmt.Errorf("%w: registry: duplicate registration for %q", rerrors.ErrInternalInvariant, name)
	}
	f.ctors[name] = ctor
	return nil
}

// MustRegister panics on duplicate registration; used at package init time
// where a duplicate is always a programming error.
func (f *Factory[T]) MustRegister(name string, ctor Constructor[T]) {
	if err := f.Register(name, ctor); err != nil {
		panic(err)
	}
}

func (f *Factory[T]) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[name]
	return ok
}

// Build looks up name and invokes its constructor with params.
func (f *Factory[T]) Build(name, params string) (T, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[name]
	f.mu.RUnlock()
	var zero T
	if !ok {
		return zero, fmt.Errorf("registry: no constructor registered for %q", name)
	}
	return ctor(params)
}

// Names returns the registered keys in sorted order.
func (f *Factory[T]) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.ctors))
	for k := range f.ctors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
