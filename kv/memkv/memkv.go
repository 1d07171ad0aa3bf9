// Package memkv is an in-memory kv.Engine: the reference implementation
// used by the test suites of every package that needs a store without a
// real file, and a faithful model of "a mapping that preserves insertion
// order and never reorders on overwrite" (spec.md §9's open question on
// sort()'s observable effect — memkv always answers PreservesOrder true).
package memkv

import (
	"sync"

	"github.com/raxodb/rack/kv"
)

// Engine is an in-memory, insertion-ordered kv.Engine.
type Engine struct {
	mu     sync.Mutex
	order  []string
	values map[string][]byte
	closed bool
}

// New returns an empty Engine.
func New() *Engine {
	return &Engine{values: make(map[string][]byte)}
}

var _ kv.Engine = (*Engine)(nil)

// Get returns the value stored under key, or ok=false if absent.
func (e *Engine) Get(key string) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.values[key]
	return v, ok, nil
}

// Put stores value under key. Overwriting an existing key updates its
// value in place without moving it in iteration order, matching the
// "assignment to an existing dict key keeps its position" semantics the
// store façade's UNIQUE-id and Tag re-put paths depend on.
func (e *Engine) Put(key string, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.values[key]; !exists {
		e.order = append(e.order, key)
	}
	e.values[key] = value
	return nil
}

// Delete removes key, if present.
func (e *Engine) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.values[key]; !ok {
		return nil
	}
	delete(e.values, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// IterKeys returns every key in insertion order.
func (e *Engine) IterKeys() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out, nil
}

// Reorder replaces the iteration order wholesale, keeping every existing
// key's value. It is store.Sort's write-back step against an engine that
// preserves order (spec.md §4.7): read, clear, and re-write in the new
// order.
func (e *Engine) Reorder(keys []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.order = append([]string(nil), keys...)
	return nil
}

// Close marks the engine closed. Further calls are no-ops, mirroring a
// real file handle's close-once contract.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// PreservesOrder always reports true: memkv's slice-backed index is
// insertion-ordered by construction.
func (e *Engine) PreservesOrder() bool { return true }
