package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ohspite/xatag/internal/paths"
)

// Env carries the environment values config resolution depends on, so
// callers and tests can supply them without touching the process state.
type Env struct {
	// ConfigDir is $XATAG_DIR.
	ConfigDir string
	// RecollDir is $RECOLL_CONFDIR.
	RecollDir string
	// Home is the user's home directory.
	Home string
	// Lookup expands $VAR references in configured paths.
	Lookup func(string) (string, bool)
}

// EnvFromOS reads Env from the running process.
func EnvFromOS() Env {
	home, _ := os.UserHomeDir()
	return Env{
		ConfigDir: os.Getenv(DirEnvVar),
		RecollDir: os.Getenv(RecollDirEnvVar),
		Home:      home,
		Lookup:    os.LookupEnv,
	}
}

// Dir is a resolved xatag config directory.
type Dir struct {
	Path string
}

// ResolveDir picks the config dir with precedence:
//  1. explicit (the --config-dir flag), with "~" expanded
//  2. $XATAG_DIR, with "~" and $VAR expanded
//  3. ~/.xatag
func ResolveDir(explicit string, env Env) Dir {
	if explicit != "" {
		return Dir{Path: paths.ExpandUser(explicit, env.Home)}
	}
	if env.ConfigDir != "" {
		return Dir{Path: paths.ExpandVars(paths.ExpandUser(env.ConfigDir, env.Home), env.Lookup)}
	}
	return Dir{Path: filepath.Join(env.Home, DefaultDirName)}
}

// Exists reports whether the directory exists.
func (d Dir) Exists() bool {
	st, err := os.Stat(d.Path)
	return err == nil && st.IsDir()
}

// Check returns an error naming the directory when it is missing.
func (d Dir) Check() error {
	if d.Exists() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDirMissing, d.Path)
}

func (d Dir) ConfigFile() string  { return filepath.Join(d.Path, FileName) }
func (d Dir) KnownTags() string   { return filepath.Join(d.Path, "known_tags") }
func (d Dir) IgnoredKeys() string { return filepath.Join(d.Path, "ignored_keys") }
func (d Dir) RecollDir() string   { return filepath.Join(d.Path, "recoll") }
func (d Dir) FieldsFile() string  { return filepath.Join(d.RecollDir(), "fields") }
func (d Dir) IndexDB() string     { return filepath.Join(d.Path, "index.db") }
func (d Dir) AuditLog() string    { return filepath.Join(d.Path, "audit.log") }

var (
	// ErrDirMissing is returned when the config dir does not exist.
	ErrDirMissing = errors.New("xatag config dir is missing or cannot be read")
	// ErrDirExists is returned by Create for a non-empty directory.
	ErrDirExists = errors.New("xatag config dir already exists")
)

// Create makes the config dir and writes a commented config.toml. It fails
// with ErrDirExists when the directory already has content.
func Create(d Dir) error {
	entries, err := os.ReadDir(d.Path)
	if err == nil && len(entries) > 0 {
		return fmt.Errorf("%w: %s", ErrDirExists, d.Path)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot read xatag config dir: %w", err)
	}

	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("cannot make xatag config dir: %w", err)
	}
	if err := os.WriteFile(d.ConfigFile(), []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const defaultConfig = `# xatag configuration

# Attribute namespace tags are stored under. Changing it hides existing tags.
# namespace = "org.xatag.tags"

# Default separators for printed tags (-F, -K and -V override them).
# [output]
# file_separator = ":"
# key_separator = ":"
# value_separator = " "

# Reindex changed files with Recoll.
# [recoll]
# enabled = true
# base_dir = "~/.recoll"
# command = "recollindex"

# Mirror tags into index.db for "xatag index".
# [index]
# enabled = true

# Append every change to audit.log.
# [audit]
# enabled = false

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`
