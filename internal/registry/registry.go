// Package registry reads and extends the known_tags and ignored_keys files
// in the xatag config dir.
//
// known_tags lists the tags a user expects to use. Lines starting with '#'
// are comments. Each other line is a tag string as given on the command
// line, "key: v1; v2", where a line without a colon lists default-key values.
// A key with no values accepts any value.
//
// ignored_keys names one key per line to leave out of Recoll's fields file.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ohspite/xatag/internal/printer"
	"github.com/ohspite/xatag/internal/tags"
)

const (
	KnownTagsFileName   = "known_tags"
	IgnoredKeysFileName = "ignored_keys"
)

// ErrMissing is returned when the known_tags file does not exist.
var ErrMissing = errors.New("known_tags file is missing")

// Registry is the pair of registry files in one config dir.
type Registry struct {
	KnownTagsPath   string
	IgnoredKeysPath string
}

// New returns the registry stored in configDir.
func New(configDir string) *Registry {
	return &Registry{
		KnownTagsPath:   filepath.Join(configDir, KnownTagsFileName),
		IgnoredKeysPath: filepath.Join(configDir, IgnoredKeysFileName),
	}
}

// Load reads the known tags.
func (r *Registry) Load() (tags.Dict, error) {
	f, err := os.Open(r.KnownTagsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, r.KnownTagsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read known_tags: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads known_tags content.
func Parse(r io.Reader) (tags.Dict, error) {
	known := make(tags.Dict)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ts := tags.Parse(line)
		named := false
		for _, t := range ts {
			if t.Value != "" {
				known.Add(t.Key, t.Value)
				named = true
			}
		}
		// "genre:" alone makes every genre value known.
		if !named {
			known.Add(ts[0].Key, "")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read known_tags: %w", err)
	}
	return known, nil
}

// FormatLines renders d the way known_tags stores it, one key per line.
func FormatLines(d tags.Dict) string {
	return printer.String(d, printer.Options{KeySep: ":", ValSep: "; "})
}

// Append adds d to the end of the known_tags file.
func (r *Registry) Append(d tags.Dict) error {
	if len(d) == 0 {
		return nil
	}
	if _, err := os.Stat(r.KnownTagsPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissing, r.KnownTagsPath)
	}

	f, err := os.OpenFile(r.KnownTagsPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open known_tags: %w", err)
	}
	if _, err := io.WriteString(f, FormatLines(d)); err != nil {
		f.Close()
		return fmt.Errorf("write known_tags: %w", err)
	}
	return f.Close()
}

// LoadIgnored reads the ignored keys. A missing file ignores nothing.
func (r *Registry) LoadIgnored() ([]string, error) {
	data, err := os.ReadFile(r.IgnoredKeysPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ignored_keys: %w", err)
	}

	var keys []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := tags.NormalizeKey(line)
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// IndexedKeys returns the known keys that are not ignored.
func (r *Registry) IndexedKeys() ([]string, error) {
	known, err := r.Load()
	if err != nil {
		return nil, err
	}
	ignored, err := r.LoadIgnored()
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, k := range known.Keys() {
		if !slices.Contains(ignored, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
