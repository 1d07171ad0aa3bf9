// Package store implements rack's dictionary-style façade (spec component
// G): get/put/delete/iteration, UNIQUE-id assignment, the query_all scan
// executor, sort, and the backup/restore codec (component H). Like the
// teacher's dialect/sql.Driver wrapping a Conn, Store wraps a kv.Engine and
// exposes a narrower, higher-level surface over it.
package store

import (
	"github.com/raxodb/rack/fk"
	"github.com/raxodb/rack/schema"
)

// Resolved is a decoded entry together with its materialized FK views
// (spec.md §4.5). Get and Exists on a non-tag key, and QueryAll (as a
// *Resolved slice), return these rather than a bare *schema.Entry so
// callers can reach both the stored fields and the projected views from
// one value. Get on a tag key returns the tag's projected data instead.
type Resolved struct {
	Entry *schema.Entry
	Views map[string]fk.View
}

// View returns the projected view named name, if FK resolution produced
// one.
func (r *Resolved) View(name string) (fk.View, bool) {
	v, ok := r.Views[name]
	return v, ok
}
