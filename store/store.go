package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/fk"
	"github.com/raxodb/rack/kv"
	"github.com/raxodb/rack/query"
	"github.com/raxodb/rack/schema"
	"github.com/raxodb/rack/value"
)

// Store is the façade over one kv.Engine for one schema.Registry. Per
// spec.md §9 ("the schema registry is per-store, injected at
// construction") a Store owns both, rather than reaching for a
// process-wide singleton.
type Store struct {
	reg      *schema.Registry
	engine   kv.Engine
	resolver *fk.Resolver

	diagMu sync.Mutex
	diags  rack.Diagnostics
}

// New builds a Store over reg and engine. wipe=true truncates the engine
// immediately, without prompting (spec.md §5).
func New(reg *schema.Registry, engine kv.Engine, wipe bool) (*Store, error) {
	s := &Store{reg: reg, engine: engine}
	s.resolver = fk.New(reg, s)
	if wipe {
		if err := s.Wipe(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying engine.
func (s *Store) Close() error { return s.engine.Close() }

// Diagnostics returns every non-fatal diagnostic accumulated so far (FK
// cycle warnings, per-entry query evaluation errors — spec.md §7). It is
// cumulative across the Store's lifetime, not reset per call.
func (s *Store) Diagnostics() rack.Diagnostics {
	s.diagMu.Lock()
	defer s.diagMu.Unlock()
	out := make(rack.Diagnostics, len(s.diags))
	copy(out, s.diags)
	return out
}

func (s *Store) addDiagnostics(d rack.Diagnostics) {
	if len(d) == 0 {
		return
	}
	s.diagMu.Lock()
	s.diags = append(s.diags, d...)
	s.diagMu.Unlock()
}

// Get implements the polymorphic read described in spec.md §4.6: a
// canonical key returns the decoded entry (with FK views attached, and
// projected to its data field if it is a Tag); a query string returns the
// list of matching entries.
func (s *Store) Get(key string) (any, error) {
	if s.isQuery(key) {
		return s.QueryAll(key)
	}

	e, err := s.FetchRaw(key)
	if err != nil {
		return nil, err
	}
	resolved, err := s.attachViews(e)
	if err != nil {
		return nil, err
	}
	if e.Type == schema.TagType {
		return s.projectTag(resolved), nil
	}
	return resolved, nil
}

// FetchRaw decodes the entry stored under key without resolving any of
// its FK fields. It implements fk.Fetcher, so package fk can fetch
// cross-entry references without importing package store.
func (s *Store) FetchRaw(key string) (*schema.Entry, error) {
	raw, ok, err := s.engine.Get(key)
	if err != nil {
		return nil, rack.NewIOError("store.Get", err)
	}
	if !ok {
		return nil, rack.NewKeyNotFoundError(key)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, rack.NewIOError("store.Get", err)
	}
	return schema.Decode(s.reg, m)
}

// RunQueryRaw executes a query string and returns the matching entries
// without resolving their own FK fields. It implements fk.Fetcher's query
// path (spec.md §4.5 step 1).
func (s *Store) RunQueryRaw(queryString string) ([]*schema.Entry, error) {
	_, out, err := s.parseAndScan(queryString)
	return out, err
}

// QueryAll runs queryString and returns every matching entry with its FK
// views resolved (spec.md §4.6's query_all, and the query-string case of
// Get).
func (s *Store) QueryAll(queryString string) ([]*Resolved, error) {
	_, matches, err := s.parseAndScan(queryString)
	if err != nil {
		return nil, err
	}
	out := make([]*Resolved, len(matches))
	for i, e := range matches {
		r, err := s.attachViews(e)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (s *Store) parseAndScan(queryString string) (*query.Query, []*schema.Entry, error) {
	ast, err := query.Parse(queryString, s.fieldExists)
	if err != nil {
		return nil, nil, err
	}
	candidates, err := s.scanType(ast.Target)
	if err != nil {
		return nil, nil, err
	}
	sch, err := s.reg.SchemaFor(ast.Target)
	if err != nil {
		return nil, nil, err
	}

	var matches []*schema.Entry
	for _, e := range candidates {
		ok, evalErr := query.Eval(ast, s.resolveFor(sch, e))
		if evalErr != nil {
			key, _ := e.CanonicalKey()
			s.addDiagnostics(rack.Diagnostics{{Key: key, Err: evalErr}})
			continue
		}
		if ok {
			matches = append(matches, e)
		}
	}
	return ast, matches, nil
}

func (s *Store) resolveFor(sch *schema.Schema, e *schema.Entry) query.Resolve {
	return func(field string) (value.Value, bool) {
		return schema.FieldLiteral(sch, e, field)
	}
}

func (s *Store) fieldExists(target, name string) bool {
	sch, err := s.reg.SchemaFor(target)
	if err != nil {
		return false
	}
	_, ok := sch.FieldByName(name)
	return ok
}

// isQuery applies spec.md §4.6's classification heuristic: a string is a
// query iff it contains ':' and the prefix before the first ':' is either
// a registered type or a tag name that currently exists.
func (s *Store) isQuery(key string) bool {
	idx := strings.IndexByte(key, ':')
	if idx < 0 {
		return false
	}
	prefix := strings.TrimSpace(key[:idx])
	if s.reg.Has(prefix) {
		return true
	}
	ok, _ := s.Contains("tag_" + prefix)
	return ok
}

func (s *Store) attachViews(e *schema.Entry) (*Resolved, error) {
	views, diags := s.resolver.ResolveAll(e)
	s.addDiagnostics(diags)
	return &Resolved{Entry: e, Views: views}, nil
}

// projectTag implements the Tag shortcut (spec.md §3.2, §4.5): fk_data,
// once resolved, overrides what data would otherwise return; an empty
// fk_data leaves the literal data field untouched.
func (s *Store) projectTag(r *Resolved) any {
	v, ok := r.Views["data"]
	if !ok {
		return r.Entry.Fields["data"]
	}
	if v.Single != nil {
		return v.Single
	}
	return v.List
}

func (s *Store) scanType(typeName string) ([]*schema.Entry, error) {
	if !s.reg.Has(typeName) {
		return nil, rack.NewSchemaError(typeName, "not registered")
	}
	keys, err := s.engine.IterKeys()
	if err != nil {
		return nil, rack.NewIOError("store.scan", err)
	}
	prefix := schema.CanonicalKeyPrefix(typeName)
	var out []*schema.Entry
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		e, err := s.FetchRaw(k)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Put stores e. key is either value.Auto{} (the UNIQUE sentinel — assign a
// fresh id, or derive the key from e's own explicit id) or a literal
// canonical key string, which must be consistent with e's type/id (spec.md
// §4.6, §3.4).
func (s *Store) Put(key any, e *schema.Entry) (*schema.Entry, error) {
	if _, auto := key.(value.Auto); auto {
		if value.IsAuto(e.Ident) {
			id, err := s.NextID(e.Type)
			if err != nil {
				return nil, err
			}
			e.Ident = value.NumericIdent(id)
		}
		canon, err := e.CanonicalKey()
		if err != nil {
			return nil, err
		}
		return s.putAt(canon, e)
	}

	k, ok := key.(string)
	if !ok {
		return nil, rack.NewKeyMismatchError("", "put key must be UNIQUE or a string")
	}

	prefix := e.Type + "_"
	if !strings.HasPrefix(k, prefix) {
		return nil, rack.NewKeyMismatchError(k, "entry's type does not match the given key")
	}
	if value.IsAuto(e.Ident) {
		if e.Type == schema.TagType {
			e.Ident = value.NameIdent(k[len(prefix):])
		} else {
			id, err := s.NextID(e.Type)
			if err != nil {
				return nil, err
			}
			e.Ident = value.NumericIdent(id)
		}
	}
	canon, err := e.CanonicalKey()
	if err != nil {
		return nil, err
	}
	if canon != k {
		return nil, rack.NewKeyMismatchError(k, "entry's type/id does not match the given key")
	}
	return s.putAt(k, e)
}

func (s *Store) putAt(key string, e *schema.Entry) (*schema.Entry, error) {
	wire, err := schema.Encode(s.reg, e)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return nil, rack.NewIOError("store.Put", err)
	}
	if err := s.engine.Put(key, b); err != nil {
		return nil, rack.NewIOError("store.Put", err)
	}
	return e, nil
}

// Delete removes the entry stored under key. key must be a literal
// canonical key; it is a KeyError if absent.
func (s *Store) Delete(key string) error {
	ok, err := s.Contains(key)
	if err != nil {
		return err
	}
	if !ok {
		return rack.NewKeyNotFoundError(key)
	}
	if err := s.engine.Delete(key); err != nil {
		return rack.NewIOError("store.Delete", err)
	}
	return nil
}

// Contains reports whether key is present, literally (never as a query).
func (s *Store) Contains(key string) (bool, error) {
	_, ok, err := s.engine.Get(key)
	if err != nil {
		return false, rack.NewIOError("store.Contains", err)
	}
	return ok, nil
}

// Exists returns the first match for queryOrKey (or nil if none), never
// an error for a not-found key — only IO/parse failures propagate
// (spec.md §4.6's exists()).
func (s *Store) Exists(queryOrKey string) (any, error) {
	if s.isQuery(queryOrKey) {
		matches, err := s.QueryAll(queryOrKey)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, nil
		}
		return matches[0], nil
	}
	ok, err := s.Contains(queryOrKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.Get(queryOrKey)
}

// NextID scans keys prefixed "{typeName}_", parses the numeric suffixes
// and returns max+1 (0 if none exist) — spec.md §3.4, §4.6.
func (s *Store) NextID(typeName string) (int64, error) {
	keys, err := s.engine.IterKeys()
	if err != nil {
		return 0, rack.NewIOError("store.NextID", err)
	}
	prefix := schema.CanonicalKeyPrefix(typeName)
	max := int64(-1)
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		n, err := strconv.ParseInt(k[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

// Count returns the number of stored entries of typeName.
func (s *Store) Count(typeName string) (int, error) {
	keys, err := s.engine.IterKeys()
	if err != nil {
		return 0, rack.NewIOError("store.Count", err)
	}
	prefix := schema.CanonicalKeyPrefix(typeName)
	n := 0
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}

// Keys returns every stored key, in current iteration order.
func (s *Store) Keys() ([]string, error) {
	keys, err := s.engine.IterKeys()
	if err != nil {
		return nil, rack.NewIOError("store.Keys", err)
	}
	return keys, nil
}

// KeyValue is one (key, value) pair from Items.
type KeyValue struct {
	Key   string
	Value any
}

// Items returns every stored key paired with its fully-resolved value
// (spec.md §4.6's full ordered iteration).
func (s *Store) Items() ([]KeyValue, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		v, err := s.Get(k)
		if err != nil {
			return nil, err
		}
		out = append(out, KeyValue{Key: k, Value: v})
	}
	return out, nil
}

// Values returns every stored value, in the same order as Items.
func (s *Store) Values() ([]any, error) {
	items, err := s.Items()
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out, nil
}

// MakeOnce installs tagValue under "tag_{name}" if that key is not
// already present; otherwise it is a no-op (spec.md §4.6). It is how a
// tag whose fk_data is a persisted query gets installed exactly once.
func (s *Store) MakeOnce(name string, tagValue *schema.Entry) error {
	key := "tag_" + name
	ok, err := s.Contains(key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = s.Put(key, tagValue)
	return err
}

// Wipe deletes every stored key, the truncation step behind New's
// wipe=true and Restore's pre-reinsertion step (spec.md §5, §4.8).
func (s *Store) Wipe() error {
	keys, err := s.engine.IterKeys()
	if err != nil {
		return rack.NewIOError("store.Wipe", err)
	}
	for _, k := range keys {
		if err := s.engine.Delete(k); err != nil {
			return rack.NewIOError("store.Wipe", err)
		}
	}
	return nil
}
