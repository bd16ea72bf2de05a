// Package paths provides the path helpers shared by config resolution, the
// index, and manifests:
// - shell-style "~" and "$VAR" expansion for configured directories
// - canonical absolute paths used as index keys
// - manifest-relative paths, always written with '/'
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandUser replaces a leading "~" or "~/" with home. Other paths are
// returned unchanged, including "~user" forms.
func ExpandUser(path, home string) string {
	if home == "" {
		return path
	}
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	}
	return path
}

// ExpandVars replaces $VAR and ${VAR} using lookup. Unknown variables are
// left in place.
func ExpandVars(s string, lookup func(string) (string, bool)) string {
	if lookup == nil || !strings.Contains(s, "$") {
		return s
	}
	return os.Expand(s, func(name string) string {
		if v, ok := lookup(name); ok {
			return v
		}
		if strings.ContainsAny(s, "{}") && strings.Contains(s, "${"+name+"}") {
			return "${" + name + "}"
		}
		return "$" + name
	})
}

// Canonical returns an absolute, cleaned form of path. If the working
// directory cannot be determined, the cleaned path is returned.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// RelTo returns path relative to base with '/' separators. Paths outside
// base stay absolute.
func RelTo(base, path string) string {
	base = Canonical(base)
	path = Canonical(path)
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Resolve joins a manifest-relative path onto base. Absolute paths are
// returned cleaned.
func Resolve(base, path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
