package store

import (
	"sort"
	"strconv"
	"strings"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/schema"
)

// reorderer is implemented by a kv.Engine that preserves insertion order
// and can be rewritten in a new order (kv/memkv and kv/sqlitekv both do).
// An engine that does not implement it, or whose PreservesOrder() is
// false, makes Sort a no-op (spec.md §4.7, §9's open question).
type reorderer interface {
	Reorder(keys []string) error
}

// Sort reorders the underlying storage so iteration yields entries
// grouped by registration order of types, then by id ascending; tags sort
// last by name (spec.md §4.7). It is a no-op against an engine that does
// not preserve insertion order.
func (s *Store) Sort() error {
	if !s.engine.PreservesOrder() {
		return nil
	}
	ro, ok := s.engine.(reorderer)
	if !ok {
		return nil
	}

	keys, err := s.engine.IterKeys()
	if err != nil {
		return rack.NewIOError("store.Sort", err)
	}
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return s.sortLess(sorted[i], sorted[j])
	})

	if err := ro.Reorder(sorted); err != nil {
		return rack.NewIOError("store.Sort", err)
	}
	return nil
}

type sortKey struct {
	typeIdx int
	id      int64
	isTag   bool
	name    string
}

func (s *Store) sortLess(a, b string) bool {
	ka, kb := s.keyOrder(a), s.keyOrder(b)
	if ka.isTag != kb.isTag {
		return kb.isTag // non-tags sort before tags
	}
	if ka.isTag {
		return ka.name < kb.name
	}
	if ka.typeIdx != kb.typeIdx {
		return ka.typeIdx < kb.typeIdx
	}
	return ka.id < kb.id
}

func (s *Store) keyOrder(key string) sortKey {
	if strings.HasPrefix(key, schema.CanonicalKeyPrefix(schema.TagType)) {
		return sortKey{isTag: true, name: strings.TrimPrefix(key, schema.CanonicalKeyPrefix(schema.TagType))}
	}
	for _, t := range s.reg.AllRegisteredTypes() {
		if t == schema.TagType {
			continue
		}
		prefix := schema.CanonicalKeyPrefix(t)
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		idx, _ := s.reg.IndexOf(t)
		n, _ := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		return sortKey{typeIdx: idx, id: n}
	}
	return sortKey{typeIdx: len(s.reg.AllRegisteredTypes())}
}
