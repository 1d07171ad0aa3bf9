package schema

import (
	"fmt"
	"strconv"
	"strings"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/value"
)

// Encode converts e to its JSON-shaped wire map (spec.md §6): the
// envelope ({id, type}) plus every declared field, FK fields stored
// verbatim (not resolved). Projected views are never emitted since they
// are never part of Entry.Fields to begin with.
func Encode(reg *Registry, e *Entry) (map[string]any, error) {
	sch, err := reg.SchemaFor(e.Type)
	if err != nil {
		return nil, err
	}
	if value.IsAuto(e.Ident) {
		return nil, rack.NewFieldError(e.Type, "id", "cannot encode an entry whose id has not been assigned")
	}

	out := map[string]any{"type": e.Type}
	switch id := e.Ident.(type) {
	case value.NumericIdent:
		out["id"] = int64(id)
	case value.NameIdent:
		out["id"] = string(id)
	default:
		return nil, rack.NewFieldError(e.Type, "id", fmt.Sprintf("unsupported identity type %T", e.Ident))
	}

	for _, f := range sch.Fields {
		v, present := e.Fields[f.Name]
		if !present {
			if f.hasDefault {
				v = f.def
			} else if f.optional {
				v = f.Kind.zeroValue()
			} else {
				return nil, rack.NewFieldError(e.Type, f.Name, "missing required field")
			}
		}
		if !f.matches(v) {
			return nil, rack.NewFieldError(e.Type, f.Name, fmt.Sprintf("value %#v does not match declared kind", v))
		}
		out[f.Name] = v
	}
	return out, nil
}

// Decode converts a JSON-shaped wire map back into an Entry. It looks up
// the schema by map["type"], fills missing optional fields with their
// defaults, and rejects unknown fields — including a field literally
// named after a declared FK field's projected view, since the serialized
// form must never contain one (spec.md §3.1, §4.2).
func Decode(reg *Registry, m map[string]any) (*Entry, error) {
	typeName, ok := m["type"].(string)
	if !ok {
		return nil, rack.NewFieldError("", "type", "missing or non-string type envelope field")
	}
	sch, err := reg.SchemaFor(typeName)
	if err != nil {
		return nil, err
	}

	id, err := decodeIdent(typeName, m["id"])
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(sch.Fields))
	seen := map[string]bool{"id": true, "type": true}
	for _, f := range sch.Fields {
		seen[f.Name] = true
		v, present := m[f.Name]
		if !present {
			if f.hasDefault {
				fields[f.Name] = f.def
				continue
			}
			if f.optional {
				fields[f.Name] = f.Kind.zeroValue()
				continue
			}
			return nil, rack.NewFieldError(typeName, f.Name, "missing required field")
		}
		if !f.matches(v) {
			return nil, rack.NewFieldError(typeName, f.Name, fmt.Sprintf("value %#v does not match declared kind", v))
		}
		// encoding/json decodes every number as float64; an Int field holding
		// a whole number is read back as int64.
		if fv, isFloat := v.(float64); isFloat && f.Kind == KindInt && fv == float64(int64(fv)) {
			v = int64(fv)
		}
		fields[f.Name] = v
	}

	for k := range m {
		if !seen[k] {
			return nil, rack.NewFieldError(typeName, k, "unexpected field (not declared on this schema)")
		}
	}

	return &Entry{Type: typeName, Ident: id, Fields: fields}, nil
}

// decodeIdent recovers the Ident from the envelope's raw "id" value:
// a JSON number becomes a NumericIdent, a JSON string becomes a
// NameIdent (used by tags), except that a numeric string on a non-tag
// type becomes a NumericIdent. decode never produces Auto — entries are
// only ever serialized after their id has been assigned.
func decodeIdent(typeName string, raw any) (value.Ident, error) {
	switch v := raw.(type) {
	case float64:
		return value.NumericIdent(int64(v)), nil
	case int64:
		return value.NumericIdent(v), nil
	case int:
		return value.NumericIdent(int64(v)), nil
	case string:
		n, convErr := strconv.ParseInt(v, 10, 64)
		if convErr == nil && typeName != TagType {
			return value.NumericIdent(n), nil
		}
		return value.NameIdent(v), nil
	default:
		return nil, rack.NewFieldError(typeName, "id", "missing or malformed id envelope field")
	}
}

// Pretty renders a decoded wire map as indented JSON text, the codec's
// "pretty JSON" side capability (spec.md §4.6, §4.9).
func Pretty(m map[string]any) (string, error) {
	return prettyJSON(m)
}

// canonicalKeyPrefix returns "{typeName}_", the prefix every canonical key
// of that type shares — used by store.NextID and store key scans.
func canonicalKeyPrefix(typeName string) string {
	var b strings.Builder
	b.WriteString(typeName)
	b.WriteByte('_')
	return b.String()
}

// CanonicalKeyPrefix is the exported form of canonicalKeyPrefix, used by
// package store.
func CanonicalKeyPrefix(typeName string) string { return canonicalKeyPrefix(typeName) }
