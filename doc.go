// Package rack implements an embedded, single-process document store atop a
// persistent key/value file.
//
// Entries are user-defined record types keyed by a deterministic identity
// string ("{type}_{id}" for numeric-id entries, "tag_{name}" for named
// tags). Symbolic cross-record references ("fk_" fields) are resolved
// lazily on read into projected "view" attributes, and a small textual
// query language (package query) filters entries by field predicate.
//
// The store itself (package store) ties the schema registry (package
// schema), the foreign-key resolver (package fk), and a pluggable
// key/value engine (package kv) together behind a dictionary-style API.
package rack
