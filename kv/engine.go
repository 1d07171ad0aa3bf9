// Package kv declares the byte-keyed key/value engine contract rack's
// store façade is built on (spec.md §6's external collaborator) and
// nothing else — concrete engines live in kv/memkv and kv/sqlitekv.
package kv

// Engine is the underlying persistent key/value file: a mapping of string
// key to byte-string value with get/put/delete/iterate, single-key atomic
// writes, and an explicit close (spec.md §6).
type Engine interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	// IterKeys returns every stored key. Insertion-ordered where the
	// engine can provide that; see PreservesOrder.
	IterKeys() ([]string, error)
	Close() error
	// PreservesOrder reports whether IterKeys reflects original insertion
	// order. store.Sort is a no-op against an engine that reports false
	// (spec.md §4.7, §9's open question on sort()'s observable effect).
	PreservesOrder() bool
}
