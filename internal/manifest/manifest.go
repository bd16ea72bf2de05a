// Package manifest reads and writes YAML snapshots of file tags, used by
// "xatag export" and "xatag import" to move tags between machines or
// filesystems that drop extended attributes.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ohspite/xatag/internal/atomicfile"
	"github.com/ohspite/xatag/internal/paths"
	"github.com/ohspite/xatag/internal/tags"
)

// Version is the manifest format version written by this package.
const Version = 1

// Manifest is a set of files and their tags. Paths are relative to the
// directory holding the manifest unless they lie outside it.
type Manifest struct {
	Version int     `yaml:"version"`
	Files   []Entry `yaml:"files"`
}

// Entry is one file. Tag keys are display keys, so the default key is "tags".
type Entry struct {
	Path string              `yaml:"path"`
	Tags map[string][]string `yaml:"tags,omitempty"`
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{Version: Version}
}

// Add records d for path, stored relative to base.
func (m *Manifest) Add(base, path string, d tags.Dict) {
	entry := Entry{Path: paths.RelTo(base, path)}
	sorted := d.Sorted()
	if len(sorted) > 0 {
		entry.Tags = make(map[string][]string, len(sorted))
		for k, vs := range sorted {
			entry.Tags[tags.DisplayKey(k)] = vs
		}
	}
	m.Files = append(m.Files, entry)
}

// Sort orders entries by path.
func (m *Manifest) Sort() {
	sort.SliceStable(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })
}

// Dict returns the entry's tags with keys and values normalized.
func (e Entry) Dict() tags.Dict {
	d := make(tags.Dict)
	for k, vs := range e.Tags {
		for _, v := range vs {
			if v = tags.NormalizeValue(v); v != "" {
				d.Add(tags.NormalizeKey(k), v)
			}
		}
	}
	return d
}

// Encode writes m as YAML.
func Encode(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return enc.Close()
}

// Decode reads a manifest.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Version == 0 {
		m.Version = Version
	}
	if m.Version > Version {
		return nil, fmt.Errorf("manifest version %d is newer than supported version %d", m.Version, Version)
	}
	for i, e := range m.Files {
		if e.Path == "" {
			return nil, fmt.Errorf("manifest entry %d has no path", i+1)
		}
	}
	return &m, nil
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Save writes m to path atomically.
func Save(path string, m *Manifest) error {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
