// Package testutil provides a scratch workspace for xatag integration tests
// that run the built binary.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ohspite/xatag/internal/codec"
	"github.com/ohspite/xatag/internal/xattr"
)

// defaultConfig keeps integration runs from starting recollindex.
const defaultConfig = `[recoll]
enabled = false
`

// Workspace is a temporary directory holding data files and an xatag config
// dir.
type Workspace struct {
	Root      string
	ConfigDir string

	t      *testing.T
	files  map[string]string
	config string
	known  *string
}

// NewWorkspace returns a workspace builder. Call Build to create it.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{t: t, files: make(map[string]string), config: defaultConfig}
}

// WithFile adds a data file, relative to Root.
func (w *Workspace) WithFile(rel, content string) *Workspace {
	w.files[rel] = content
	return w
}

// WithConfig replaces config.toml.
func (w *Workspace) WithConfig(toml string) *Workspace {
	w.config = toml
	return w
}

// WithKnownTags writes a known_tags file. Without it the config dir has none.
func (w *Workspace) WithKnownTags(content string) *Workspace {
	w.known = &content
	return w
}

// Build creates the workspace. The test is skipped when the temp
// filesystem cannot store user extended attributes.
func (w *Workspace) Build() *Workspace {
	w.t.Helper()
	w.Root = w.t.TempDir()
	w.ConfigDir = filepath.Join(w.Root, ".xatag")

	w.write(filepath.Join(w.ConfigDir, "config.toml"), w.config)
	if w.known != nil {
		w.write(filepath.Join(w.ConfigDir, "known_tags"), *w.known)
	}
	for rel, content := range w.files {
		w.write(w.Path(rel), content)
	}

	w.requireXattrs()
	return w
}

// Path returns the absolute path of rel.
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// ReadFile returns the content of a file relative to Root.
func (w *Workspace) ReadFile(rel string) string {
	w.t.Helper()
	data, err := os.ReadFile(w.Path(rel))
	if err != nil {
		w.t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// Tags reads the xatag attributes of rel, keyed by display key with sorted
// values.
func (w *Workspace) Tags(rel string) map[string][]string {
	w.t.Helper()
	attrs, err := xattr.ReadAll(xattr.NewOSStore(), w.Path(rel))
	if err != nil {
		w.t.Fatalf("read attributes of %s: %v", rel, err)
	}

	c := codec.Default()
	out := make(map[string][]string)
	for name, raw := range attrs {
		if !c.IsManaged(name) {
			continue
		}
		key := c.Key(name)
		if key == "" {
			key = "tags"
		}
		values := c.DecodeValue(raw)
		sort.Strings(values)
		out[key] = values
	}
	return out
}

// SetAttr writes a raw attribute, for files tagged outside xatag.
func (w *Workspace) SetAttr(rel, name, value string) {
	w.t.Helper()
	if err := xattr.NewOSStore().Set(w.Path(rel), name, value); err != nil {
		w.t.Fatalf("set %s on %s: %v", name, rel, err)
	}
}

func (w *Workspace) write(path, content string) {
	w.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		w.t.Fatalf("write %s: %v", path, err)
	}
}

func (w *Workspace) requireXattrs() {
	w.t.Helper()
	probe := filepath.Join(w.Root, ".xattr-probe")
	w.write(probe, "")
	defer os.Remove(probe)

	err := xattr.NewOSStore().Set(probe, codec.Default().AttrName("probe"), "x")
	if errors.Is(err, xattr.ErrUnsupported) || errors.Is(err, xattr.ErrPermission) {
		w.t.Skipf("filesystem does not support user xattrs: %v", err)
	}
	if err != nil {
		w.t.Fatalf("probe xattrs: %v", err)
	}
}
