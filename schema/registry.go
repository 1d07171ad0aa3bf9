package schema

import (
	"fmt"

	rack "github.com/raxodb/rack"
)

// TagType is the type name of the built-in Tag entry (spec.md §3.2).
const TagType = "tag"

// Schema is a registered entry type: its name and its ordered field list.
type Schema struct {
	TypeName string
	Fields   []*Field

	byName map[string]*Field
}

// FieldByName looks up a declared field by name.
func (s *Schema) FieldByName(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FKFields returns the schema's foreign-key fields, in declaration order.
func (s *Schema) FKFields() []*Field {
	var out []*Field
	for _, f := range s.Fields {
		if f.IsFK() {
			out = append(out, f)
		}
	}
	return out
}

// Registry holds the set of registered entry schemas for one store.
// Per spec.md §9 ("Global state — the schema registry is per-store,
// injected at construction; no process-wide singletons") a Registry is
// never a package-level singleton: each store.Store owns one.
type Registry struct {
	order   []string
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry with the built-in Tag type
// pre-registered (spec.md §3.2).
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[string]*Schema)}
	// Tags are identified by name, not id; "data" is intentionally typed
	// Any since it holds arbitrary JSON (spec.md §3.2). fk_data's projected
	// view would ordinarily collide with the declared "data" field — Tag is
	// the one type exempted from that rule, since the store's read path
	// special-cases tags: fk_data, when non-empty, overrides what "data"
	// resolves to instead of sitting alongside it as a separate view
	// (spec.md §3.2, §4.6 "Tag projection").
	if _, err := r.register(TagType, true, Any("data"), FK("fk_data")); err != nil {
		panic(fmt.Sprintf("rack: registering built-in tag type: %v", err))
	}
	return r
}

// Register declares a new entry type and its fields. Registering a
// duplicate type name is rejected (SchemaError). A field named X whose
// sibling fk_X also exists is rejected, since the projected view for
// fk_X would collide with the declared field X (spec.md §3.1).
func (r *Registry) Register(typeName string, fields ...*Field) (*Schema, error) {
	return r.register(typeName, false, fields...)
}

func (r *Registry) register(typeName string, allowFKCollision bool, fields ...*Field) (*Schema, error) {
	if typeName == "" {
		return nil, rack.NewSchemaError(typeName, "type name must not be empty")
	}
	if _, exists := r.schemas[typeName]; exists {
		return nil, rack.NewSchemaError(typeName, "duplicate registration")
	}

	byName := make(map[string]*Field, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, rack.NewSchemaError(typeName, "field with empty name")
		}
		if _, dup := byName[f.Name]; dup {
			return nil, rack.NewSchemaError(typeName, fmt.Sprintf("duplicate field %q", f.Name))
		}
		byName[f.Name] = f
	}
	if !allowFKCollision {
		for _, f := range fields {
			if !f.IsFK() {
				continue
			}
			view := f.ViewName()
			if _, collide := byName[view]; collide {
				return nil, rack.NewFieldError(typeName, f.Name,
					fmt.Sprintf("foreign-key field forbids sibling field %q", view))
			}
		}
	}

	sch := &Schema{TypeName: typeName, Fields: fields, byName: byName}
	r.schemas[typeName] = sch
	r.order = append(r.order, typeName)
	return sch, nil
}

// SchemaFor looks up a registered schema by type name.
func (r *Registry) SchemaFor(typeName string) (*Schema, error) {
	sch, ok := r.schemas[typeName]
	if !ok {
		return nil, rack.NewSchemaError(typeName, "not registered")
	}
	return sch, nil
}

// Has reports whether typeName is a registered type, without erroring.
func (r *Registry) Has(typeName string) bool {
	_, ok := r.schemas[typeName]
	return ok
}

// AllRegisteredTypes returns every registered type name in stable
// registration order. This order defines the sort used by store.Sort
// (spec.md §4.1, §4.7).
func (r *Registry) AllRegisteredTypes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IndexOf returns the registration index of typeName, used to order
// entries by type for store.Sort. Tags always sort last regardless of
// their registration index (spec.md §4.7); callers special-case TagType.
func (r *Registry) IndexOf(typeName string) (int, bool) {
	for i, t := range r.order {
		if t == typeName {
			return i, true
		}
	}
	return 0, false
}
