package recoll

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/ohspite/xatag/internal/atomicfile"
	"github.com/ohspite/xatag/internal/tags"
)

// FieldsHead opens a generated fields file. The marker line keeps the file
// eligible for regeneration.
const FieldsHead = `# Recoll fields for xatag tag keys
#
# XATAG WILL REGENERATE THIS FILE
#
# While one of the first five lines of this file contains the line above,
# xatag rewrites the file whenever a new key enters the known_tags file so
# that Recoll indexes the key.
#
# Every key in known_tags is listed except the keys named in ignored_keys.
#
# To maintain this file by hand, delete the marker line or move it below the
# fifth line. Keys you want to keep out of the index are better listed in
# ignored_keys, which lets xatag keep regenerating the rest.
`

// FieldsPrefixes introduces the [prefixes] section.
const FieldsPrefixes = `
# Field names start with "xa:" and map to an upper case Xapian prefix:
#
#     xa:keyname = XYXAKEYNAME
#
[prefixes]
`

// FieldsStored introduces the [stored] section.
const FieldsStored = `
# Stored fields are returned with search results.
#
[stored]
`

// FieldKeys orders keys for the fields file: the default key first, then
// the rest sorted, without duplicates.
func FieldKeys(keys []string) []string {
	rest := make([]string, 0, len(keys))
	for _, k := range keys {
		k = tags.NormalizeKey(k)
		if k == tags.DefaultKey || slices.Contains(rest, k) {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append([]string{tags.DefaultKey}, rest...)
}

// RenderFields builds the contents of the fields file for keys.
func RenderFields(keys []string) string {
	keys = FieldKeys(keys)

	var b strings.Builder
	b.WriteString(FieldsHead)
	b.WriteString(FieldsPrefixes)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %s\n", FieldName(k), XapianKey(k))
	}
	b.WriteString("\n")
	b.WriteString(FieldsStored)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=\n", FieldName(k))
	}
	b.WriteString("\n")
	return b.String()
}

// Regenerable reports whether the fields file at path may be overwritten.
// A missing file may always be written.
func Regenerable(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("open fields file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for line := 0; line < MarkerLines && scanner.Scan(); line++ {
		if strings.Contains(scanner.Text(), RegenerateMarker) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read fields file: %w", err)
	}
	return false, nil
}

// UpdateFields rewrites the fields file at path for keys unless the user has
// taken it over. It reports whether the file was written.
func UpdateFields(path string, keys []string) (bool, error) {
	ok, err := Regenerable(path)
	if err != nil || !ok {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create recoll config dir: %w", err)
	}
	if err := atomicfile.WriteFile(path, []byte(RenderFields(keys)), 0o644); err != nil {
		return false, fmt.Errorf("write fields file: %w", err)
	}
	return true, nil
}
