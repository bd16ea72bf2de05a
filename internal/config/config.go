// Package config locates the xatag config dir and loads its config.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ohspite/xatag/internal/codec"
	"github.com/ohspite/xatag/internal/paths"
)

const (
	// DirEnvVar overrides the config dir location.
	DirEnvVar = "XATAG_DIR"
	// RecollDirEnvVar is Recoll's own config dir override.
	RecollDirEnvVar = "RECOLL_CONFDIR"
	// DefaultDirName is the config dir under the home directory.
	DefaultDirName = ".xatag"
	// DefaultRecollDirName is Recoll's config dir under the home directory.
	DefaultRecollDirName = ".recoll"
	// FileName is the settings file inside the config dir.
	FileName = "config.toml"
)

// Config represents the settings in config.toml.
type Config struct {
	// Namespace is the attribute prefix tags are stored under.
	Namespace string `toml:"namespace"`

	Output OutputConfig `toml:"output"`
	Recoll RecollConfig `toml:"recoll"`
	Index  IndexConfig  `toml:"index"`
	Audit  AuditConfig  `toml:"audit"`
	UI     UIConfig     `toml:"ui"`
}

// OutputConfig holds the default printing separators.
type OutputConfig struct {
	KeySeparator   string `toml:"key_separator"`
	ValueSeparator string `toml:"value_separator"`
	FileSeparator  string `toml:"file_separator"`
}

// RecollConfig controls the Recoll integration.
type RecollConfig struct {
	// Enabled turns the reindex trigger on. Defaults to true.
	Enabled *bool `toml:"enabled"`
	// BaseDir is Recoll's config dir. Defaults to $RECOLL_CONFDIR or ~/.recoll.
	BaseDir string `toml:"base_dir"`
	// Command is the indexer executable.
	Command string `toml:"command"`
}

// IndexConfig controls the local SQLite tag index.
type IndexConfig struct {
	// Enabled mirrors every change into index.db. Defaults to true.
	Enabled *bool `toml:"enabled"`
}

// AuditConfig controls the mutation log.
type AuditConfig struct {
	Enabled bool `toml:"enabled"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	CodeTheme string `toml:"code_theme"`
}

// Default returns the settings used when config.toml is absent.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = codec.DefaultPrefix
	}
	if c.Output.KeySeparator == "" {
		c.Output.KeySeparator = ":"
	}
	if c.Output.ValueSeparator == "" {
		c.Output.ValueSeparator = " "
	}
	if c.Output.FileSeparator == "" {
		c.Output.FileSeparator = ":"
	}
	if c.Recoll.Command == "" {
		c.Recoll.Command = "recollindex"
	}
}

// RecollEnabled reports whether the reindex trigger runs.
func (c *Config) RecollEnabled() bool {
	return c.Recoll.Enabled == nil || *c.Recoll.Enabled
}

// IndexEnabled reports whether changes are mirrored into index.db.
func (c *Config) IndexEnabled() bool {
	return c.Index.Enabled == nil || *c.Index.Enabled
}

// Codec returns the attribute codec for the configured namespace.
func (c *Config) Codec() codec.Codec {
	return codec.New(c.Namespace)
}

// RecollBaseDir resolves Recoll's config dir.
func (c *Config) RecollBaseDir(env Env) string {
	if c.Recoll.BaseDir != "" {
		return paths.ExpandVars(paths.ExpandUser(c.Recoll.BaseDir, env.Home), env.Lookup)
	}
	if env.RecollDir != "" {
		return paths.ExpandVars(paths.ExpandUser(env.RecollDir, env.Home), env.Lookup)
	}
	return filepath.Join(env.Home, DefaultRecollDirName)
}

// Load loads config.toml from dir. A missing file yields the defaults.
func Load(dir Dir) (*Config, error) {
	path := dir.ConfigFile()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}
