package store

import (
	"io"

	"gopkg.in/yaml.v3"

	rack "github.com/raxodb/rack"
)

// Config is the on-disk configuration for opening a Store: the KV file's
// path, and whether to wipe it at open time (spec.md §5, §6's "the
// database filename is passed at construction").
type Config struct {
	Path string `yaml:"path"`
	Wipe bool   `yaml:"wipe"`
}

// LoadConfig decodes a Config from r, the way the teacher's services load
// their YAML-configured settings rather than hand-rolling a flag parser.
func LoadConfig(r io.Reader) (*Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, rack.NewIOError("store.LoadConfig", err)
	}
	return &c, nil
}
