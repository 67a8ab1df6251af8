// Package manifest reads and writes task graphs as TOML documents so a graph
// can be seeded, reviewed and moved between databases.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"taskgraph/internal/graph"
)

var (
	// ErrInvalidManifest is returned when a manifest fails to parse or validate.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrUnknownReference is returned when depends_on names a key that is not defined.
	ErrUnknownReference = errors.New("unknown task reference")
)

// Manifest is a whole task graph.
type Manifest struct {
	Tasks []Task `toml:"task"`
}

// Task is one manifest entry. Key is local to the manifest; depends_on
// refers to other entries by key.
type Task struct {
	Key         string   `toml:"key"`
	Title       string   `toml:"title"`
	Description string   `toml:"description,omitempty"`
	Status      string   `toml:"status,omitempty"`
	DependsOn   []string `toml:"depends_on,omitempty"`
}

// Decode parses a manifest. Unknown fields are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing TOML: %s", ErrInvalidManifest, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown fields: %s", ErrInvalidManifest, strings.Join(keys, ", "))
	}
	return &m, nil
}

// DecodeFile reads and parses the manifest at path.
func DecodeFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes m as TOML.
func Encode(w io.Writer, m *Manifest) error {
	if err := toml.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return nil
}

// Validate checks keys, titles, statuses and references. Cycles are left to
// the importer, which runs every edge through the cycle detector.
func (m *Manifest) Validate() error {
	if len(m.Tasks) == 0 {
		return fmt.Errorf("%w: no tasks defined", ErrInvalidManifest)
	}

	keys := make(map[string]bool, len(m.Tasks))
	for i, t := range m.Tasks {
		if strings.TrimSpace(t.Key) == "" {
			return fmt.Errorf("%w: task #%d has no key", ErrInvalidManifest, i+1)
		}
		if keys[t.Key] {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidManifest, t.Key)
		}
		keys[t.Key] = true

		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%w: task %q has no title", ErrInvalidManifest, t.Key)
		}
		if t.Status != "" {
			if _, err := graph.ParseStatus(t.Status); err != nil {
				return fmt.Errorf("%w: task %q: %s", ErrInvalidManifest, t.Key, err)
			}
		}
	}

	for _, t := range m.Tasks {
		for _, dep := range t.DependsOn {
			if !keys[dep] {
				return fmt.Errorf("%w: task %q depends on %q", ErrUnknownReference, t.Key, dep)
			}
		}
	}
	return nil
}

// Lookup returns the entry with the given key.
func (m *Manifest) Lookup(key string) (*Task, bool) {
	for i := range m.Tasks {
		if m.Tasks[i].Key == key {
			return &m.Tasks[i], true
		}
	}
	return nil, false
}
