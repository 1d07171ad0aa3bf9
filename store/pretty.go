package store

import (
	"encoding/json"

	"github.com/raxodb/rack/schema"
)

// Pretty renders the value stored under key as indented JSON: the store
// and any entry render as pretty JSON (spec.md §4.6's pretty-print note).
func (s *Store) Pretty(key string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return s.prettyValue(v)
}

// PrettyAll renders every stored item as an indented JSON object keyed by
// canonical key.
func (s *Store) PrettyAll() (string, error) {
	items, err := s.Items()
	if err != nil {
		return "", err
	}
	out := make(map[string]any, len(items))
	for _, it := range items {
		j, err := s.toJSON(it.Value)
		if err != nil {
			return "", err
		}
		out[it.Key] = j
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) prettyValue(v any) (string, error) {
	j, err := s.toJSON(v)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// toJSON converts a Get/QueryAll/Exists result (a *Resolved, a
// []*Resolved, a raw entry, or a literal) to a plain JSON-shaped value.
func (s *Store) toJSON(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *Resolved:
		return s.resolvedToJSON(t)
	case []*Resolved:
		out := make([]any, len(t))
		for i, r := range t {
			j, err := s.resolvedToJSON(r)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case *schema.Entry:
		return schema.Encode(s.reg, t)
	case []*schema.Entry:
		out := make([]any, len(t))
		for i, e := range t {
			j, err := schema.Encode(s.reg, e)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	default:
		return t, nil
	}
}

func (s *Store) resolvedToJSON(r *Resolved) (any, error) {
	wire, err := schema.Encode(s.reg, r.Entry)
	if err != nil {
		return nil, err
	}
	for name, v := range r.Views {
		if v.Single != nil {
			ej, err := schema.Encode(s.reg, v.Single)
			if err != nil {
				return nil, err
			}
			wire[name] = ej
			continue
		}
		list := make([]any, len(v.List))
		for i, e := range v.List {
			ej, err := schema.Encode(s.reg, e)
			if err != nil {
				return nil, err
			}
			list[i] = ej
		}
		wire[name] = list
	}
	return wire, nil
}
