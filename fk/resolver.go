// Package fk implements rack's lazy foreign-key resolver (spec component
// F): expanding an entry's fk_<name> fields into materialized <name> views
// on read, one level deep, with cycle detection. Fetching each key of a
// key-list fk_ field in request order is what keeps the resolved view
// ordered the way the teacher's contrib/dataloader.OrderByKeys keeps batch
// results ordered for its callers (spec.md §8's S5: ".books is a list of
// the two Book entries in the order given").
package fk

import (
	"strings"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/schema"
)

// Fetcher is what the resolver needs from the store, kept as a narrow
// interface so this package never imports package store (store imports fk,
// not the reverse — store.Store implements Fetcher itself).
type Fetcher interface {
	// FetchRaw decodes the entry stored under key without resolving any of
	// its own FK views — the "one level deep" contract (spec.md §4.5).
	FetchRaw(key string) (*schema.Entry, error)
	// RunQueryRaw executes a query string and returns the matching entries,
	// also without resolving their own FK views.
	RunQueryRaw(queryString string) ([]*schema.Entry, error)
}

// Resolver computes FK views for entries against a Fetcher.
type Resolver struct {
	reg   *schema.Registry
	fetch Fetcher
}

// New builds a Resolver over reg and fetch.
func New(reg *schema.Registry, fetch Fetcher) *Resolver {
	return &Resolver{reg: reg, fetch: fetch}
}

// View is one resolved projection: either a single entry (the fk_ field
// held one key) or a list (it held a key sequence or a query).
type View struct {
	Single *schema.Entry
	List   []*schema.Entry
}

// ResolveAll computes every fk_ field's view on e. It seeds the recursion
// guard with e's own canonical key so a self-referential fk_ field (e.g. a
// "friends" list that happens to include e itself) cannot re-enter e's own
// resolution (spec.md §4.5, §5's "per-call in-progress set").
func (r *Resolver) ResolveAll(e *schema.Entry) (map[string]View, rack.Diagnostics) {
	sch, err := r.reg.SchemaFor(e.Type)
	if err != nil {
		return nil, nil
	}
	key, _ := e.CanonicalKey()
	inProgress := map[string]bool{key: true}

	views := make(map[string]View)
	var diags rack.Diagnostics
	for _, f := range sch.FKFields() {
		v, d := r.resolveField(e, f, inProgress)
		diags = append(diags, d...)
		if v != nil {
			views[f.ViewName()] = *v
		}
	}
	return views, diags
}

// ResolveField computes the view for a single fk_ field of e, named by its
// projected view name (the name after the fk_ prefix).
func (r *Resolver) ResolveField(e *schema.Entry, viewName string) (*View, rack.Diagnostics) {
	sch, err := r.reg.SchemaFor(e.Type)
	if err != nil {
		return nil, nil
	}
	f, ok := sch.FieldByName(fkFieldName(viewName))
	if !ok {
		return nil, nil
	}
	key, _ := e.CanonicalKey()
	return r.resolveField(e, f, map[string]bool{key: true})
}

func fkFieldName(viewName string) string { return "fk_" + viewName }

func (r *Resolver) resolveField(e *schema.Entry, f *schema.Field, inProgress map[string]bool) (*View, rack.Diagnostics) {
	key, _ := e.CanonicalKey()

	raw, present := e.Fields[f.Name]
	if !present || isEmptyFKValue(raw) {
		return nil, nil
	}

	if qs, ok := raw.(string); ok && looksLikeQuery(qs) {
		entries, err := r.fetch.RunQueryRaw(qs)
		if err != nil {
			return nil, rack.Diagnostics{{Key: key, Err: rack.NewIOError("fk_resolve_query", err)}}
		}
		return &View{List: entries}, nil
	}

	keys, singleton := toKeyList(raw)
	var diags rack.Diagnostics
	var results []*schema.Entry
	for _, k := range keys {
		if inProgress[k] {
			diags = append(diags, rack.Diagnostic{Key: k, Err: rack.NewCycleWarning(k)})
			continue
		}
		ent, err := r.fetch.FetchRaw(k)
		if err != nil {
			diags = append(diags, rack.Diagnostic{Key: k, Err: err})
			continue
		}
		results = append(results, ent)
	}
	if singleton {
		if len(results) == 0 {
			return nil, diags
		}
		return &View{Single: results[0]}, diags
	}
	return &View{List: results}, diags
}

// looksLikeQuery reports whether s is a query string rather than a
// canonical key, per spec.md §4.5 step 1: "a string matching the query
// grammar (i.e., contains a ':')".
func looksLikeQuery(s string) bool { return strings.Contains(s, ":") }

// toKeyList normalizes a raw fk_ field value into an ordered key list, and
// reports whether the original value was a lone string (singleton) rather
// than a sequence — the resolved view is a single entry in that case
// (spec.md §4.6's "fk_data... key list or query string" and the Tag
// projection's single-value semantics).
func toKeyList(raw any) (keys []string, singleton bool) {
	switch v := raw.(type) {
	case string:
		return []string{v}, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, false
	case []string:
		return v, false
	default:
		return nil, false
	}
}

func isEmptyFKValue(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}
