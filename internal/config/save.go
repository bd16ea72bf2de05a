package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ohspite/xatag/internal/atomicfile"
	"github.com/ohspite/xatag/internal/codec"
)

type persistedConfig struct {
	Namespace *string              `toml:"namespace,omitempty"`
	Output    *persistedOutput     `toml:"output,omitempty"`
	Recoll    *persistedRecoll     `toml:"recoll,omitempty"`
	Index     *persistedIndex      `toml:"index,omitempty"`
	Audit     *persistedAudit      `toml:"audit,omitempty"`
	UI        *persistedUISettings `toml:"ui,omitempty"`
}

type persistedOutput struct {
	KeySeparator   *string `toml:"key_separator,omitempty"`
	ValueSeparator *string `toml:"value_separator,omitempty"`
	FileSeparator  *string `toml:"file_separator,omitempty"`
}

type persistedRecoll struct {
	Enabled *bool   `toml:"enabled,omitempty"`
	BaseDir *string `toml:"base_dir,omitempty"`
	Command *string `toml:"command,omitempty"`
}

type persistedIndex struct {
	Enabled *bool `toml:"enabled,omitempty"`
}

type persistedAudit struct {
	Enabled bool `toml:"enabled"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// nonDefaultPtr keeps separators verbatim, since " " is a valid value, and
// drops them when they match the default.
func nonDefaultPtr(value, def string) *string {
	if value == "" || value == def {
		return nil
	}
	return &value
}

// Save writes cfg to the config dir.
func Save(d Dir, cfg *Config) error {
	return SaveTo(d.ConfigFile(), cfg)
}

// SaveTo writes cfg to path atomically. Values equal to their defaults are
// left out so the file stays short.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = Default()
	}

	var out persistedConfig
	if ns := nonEmptyPtr(cfg.Namespace); ns != nil && *ns != codec.DefaultPrefix {
		out.Namespace = ns
	}

	output := persistedOutput{
		KeySeparator:   nonDefaultPtr(cfg.Output.KeySeparator, ":"),
		ValueSeparator: nonDefaultPtr(cfg.Output.ValueSeparator, " "),
		FileSeparator:  nonDefaultPtr(cfg.Output.FileSeparator, ":"),
	}
	if output != (persistedOutput{}) {
		out.Output = &output
	}

	recoll := persistedRecoll{
		Enabled: cfg.Recoll.Enabled,
		BaseDir: nonEmptyPtr(cfg.Recoll.BaseDir),
		Command: nonDefaultPtr(strings.TrimSpace(cfg.Recoll.Command), "recollindex"),
	}
	if recoll != (persistedRecoll{}) {
		out.Recoll = &recoll
	}

	if cfg.Index.Enabled != nil {
		out.Index = &persistedIndex{Enabled: cfg.Index.Enabled}
	}
	if cfg.Audit.Enabled {
		out.Audit = &persistedAudit{Enabled: true}
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
