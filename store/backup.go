package store

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/schema"
)

type manifest struct {
	Types []string `json:"types"`
}

// Backup writes a single zip archive at name: a _manifest.json listing the
// registered types in backup order, and one "{type}.json" member per type
// holding that type's encoded entries in canonical order (spec.md §4.8).
// Each type's member is marshaled concurrently, the way the teacher reaches
// for golang.org/x/sync/errgroup wherever independent per-item work can
// run in parallel and fail as a unit.
func (s *Store) Backup(name string) error {
	types := s.reg.AllRegisteredTypes()
	members := make(map[string][]byte, len(types))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(context.Background())
	for _, t := range types {
		t := t
		g.Go(func() error {
			entries, err := s.scanType(t)
			if err != nil {
				return err
			}
			wire := make([]map[string]any, 0, len(entries))
			for _, e := range entries {
				w, err := schema.Encode(s.reg, e)
				if err != nil {
					return err
				}
				wire = append(wire, w)
			}
			b, err := json.Marshal(wire)
			if err != nil {
				return rack.NewIOError("store.Backup", err)
			}
			mu.Lock()
			members[t] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	mb, err := json.Marshal(manifest{Types: types})
	if err != nil {
		return rack.NewIOError("store.Backup", err)
	}

	f, err := os.Create(name)
	if err != nil {
		return rack.NewIOError("store.Backup", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if err := writeZipMember(zw, "_manifest.json", mb); err != nil {
		return err
	}
	for _, t := range types {
		if err := writeZipMember(zw, t+".json", members[t]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return rack.NewIOError("store.Backup", err)
	}
	return nil
}

func writeZipMember(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return rack.NewIOError("store.Backup", err)
	}
	if _, err := w.Write(data); err != nil {
		return rack.NewIOError("store.Backup", err)
	}
	return nil
}

// Restore reads the zip archive at name, wipes the store, and re-inserts
// every entry preserving its canonical key (no id reassignment). A member
// naming a type the registry does not know is rejected (spec.md §4.8).
func (s *Store) Restore(name string) error {
	r, err := zip.OpenReader(name)
	if err != nil {
		return rack.NewIOError("store.Restore", err)
	}
	defer r.Close()

	var man manifest
	manifestFound := false
	members := map[string]*zip.File{}
	for _, f := range r.File {
		if f.Name == "_manifest.json" {
			data, err := readZipMember(f)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &man); err != nil {
				return rack.NewIOError("store.Restore", err)
			}
			manifestFound = true
			continue
		}
		typeName := f.Name
		if len(typeName) > 5 && typeName[len(typeName)-5:] == ".json" {
			typeName = typeName[:len(typeName)-5]
		}
		members[typeName] = f
	}
	if !manifestFound {
		return rack.NewIOError("store.Restore", errors.New("archive is missing _manifest.json"))
	}
	for typeName := range members {
		if !s.reg.Has(typeName) {
			return rack.NewSchemaError(typeName, "unknown type in backup archive")
		}
	}

	if err := s.Wipe(); err != nil {
		return err
	}

	for _, t := range man.Types {
		f, ok := members[t]
		if !ok {
			continue
		}
		data, err := readZipMember(f)
		if err != nil {
			return err
		}
		var wire []map[string]any
		if err := json.Unmarshal(data, &wire); err != nil {
			return rack.NewIOError("store.Restore", err)
		}
		for _, m := range wire {
			e, err := schema.Decode(s.reg, m)
			if err != nil {
				return err
			}
			key, err := e.CanonicalKey()
			if err != nil {
				return err
			}
			if _, err := s.putAt(key, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func readZipMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, rack.NewIOError("store.Restore", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, rack.NewIOError("store.Restore", err)
	}
	return data, nil
}
