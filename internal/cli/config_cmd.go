package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/config"
	"github.com/ohspite/xatag/internal/ui"
)

// configField is one config.toml setting editable from the command line.
type configField struct {
	name  string // dotted name in config.toml
	flag  string
	usage string
	get   func(c *config.Config) string
	set   func(c *config.Config, v string) error
	unset func(c *config.Config)
}

func boolSetting(p **bool) (func(*config.Config, string) error, func(*config.Config)) {
	set := func(_ *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		*p = &b
		return nil
	}
	return set, func(*config.Config) { *p = nil }
}

func configFields(c *config.Config) []configField {
	recollSet, recollUnset := boolSetting(&c.Recoll.Enabled)
	indexSet, indexUnset := boolSetting(&c.Index.Enabled)
	str := func(p *string) (func(*config.Config, string) error, func(*config.Config)) {
		return func(_ *config.Config, v string) error { *p = v; return nil },
			func(*config.Config) { *p = "" }
	}
	nsSet, nsUnset := str(&c.Namespace)
	ksSet, ksUnset := str(&c.Output.KeySeparator)
	vsSet, vsUnset := str(&c.Output.ValueSeparator)
	fsSet, fsUnset := str(&c.Output.FileSeparator)
	baseSet, baseUnset := str(&c.Recoll.BaseDir)
	cmdSet, cmdUnset := str(&c.Recoll.Command)
	accentSet, accentUnset := str(&c.UI.Accent)
	themeSet, themeUnset := str(&c.UI.CodeTheme)

	return []configField{
		{"namespace", "namespace", "Attribute namespace tags are stored under",
			func(c *config.Config) string { return c.Namespace },
			func(c *config.Config, v string) error {
				v = strings.Trim(strings.TrimSpace(v), ".")
				if v == "" {
					return fmt.Errorf("namespace cannot be empty")
				}
				return nsSet(c, v)
			}, nsUnset},
		{"output.key_separator", "key-separator", "Default separator after keys",
			func(c *config.Config) string { return c.Output.KeySeparator }, ksSet, ksUnset},
		{"output.value_separator", "value-separator", "Default separator between values",
			func(c *config.Config) string { return c.Output.ValueSeparator }, vsSet, vsUnset},
		{"output.file_separator", "file-separator", "Default separator after file names",
			func(c *config.Config) string { return c.Output.FileSeparator }, fsSet, fsUnset},
		{"recoll.enabled", "recoll", "Trigger recollindex after changes (true|false)",
			func(c *config.Config) string { return strconv.FormatBool(c.RecollEnabled()) }, recollSet, recollUnset},
		{"recoll.base_dir", "recoll-base-dir", "Recoll config dir",
			func(c *config.Config) string { return c.Recoll.BaseDir }, baseSet, baseUnset},
		{"recoll.command", "recoll-command", "Indexer executable",
			func(c *config.Config) string { return c.Recoll.Command }, cmdSet, cmdUnset},
		{"index.enabled", "index", "Mirror changes into index.db (true|false)",
			func(c *config.Config) string { return strconv.FormatBool(c.IndexEnabled()) }, indexSet, indexUnset},
		{"audit.enabled", "audit", "Log every change to audit.log (true|false)",
			func(c *config.Config) string { return strconv.FormatBool(c.Audit.Enabled) },
			func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return fmt.Errorf("expected true or false, got %q", v)
				}
				c.Audit.Enabled = b
				return nil
			},
			func(c *config.Config) { c.Audit.Enabled = false }},
		{"ui.accent", "ui-accent", "Accent color (ANSI 0-255 or #RRGGBB)",
			func(c *config.Config) string { return c.UI.Accent }, accentSet, accentUnset},
		{"ui.code_theme", "ui-code-theme", "Code block theme for xatag docs",
			func(c *config.Config) string { return c.UI.CodeTheme }, themeSet, themeUnset},
	}
}

// configFlagFields describes the flags of config set and unset. The
// setters are rebound to the loaded config before use.
var configFlagFields = configFields(config.Default())

func configData(s *session) map[string]any {
	values := make(map[string]string)
	for _, f := range configFields(s.cfg) {
		values[f.name] = f.get(s.cfg)
	}
	return map[string]any{
		"config_dir":  s.dir.Path,
		"config_file": s.dir.ConfigFile(),
		"exists":      s.dir.Exists(),
		"settings":    values,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s := current
	if isJSONOutput() {
		outputSuccess(configData(s), nil)
		return nil
	}

	fmt.Fprintf(outWriter, "%s %s\n", ui.Header("config:"), ui.FilePath(s.dir.ConfigFile()))
	if !s.dir.Exists() {
		fmt.Fprintln(outWriter, ui.Hint("The config dir does not exist. Run 'xatag new-config' to create it."))
	}
	for _, f := range configFields(s.cfg) {
		fmt.Fprintf(outWriter, "%s = %s\n", f.name, strconv.Quote(f.get(s.cfg)))
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit config.toml",
	Long: `Show and edit config.toml in the xatag config dir.

Examples:
  xatag config
  xatag config set --value-separator ', '
  xatag config set --audit true --ui-accent '#ff8800'
  xatag config unset --ui-accent`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set one or more config.toml fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		var changed []string
		for _, f := range configFields(s.cfg) {
			flag := cmd.Flags().Lookup(f.flag)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := f.set(s.cfg, flag.Value.String()); err != nil {
				return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("%s: %v", f.flag, err), "")
			}
			changed = append(changed, f.name)
		}
		if len(changed) == 0 {
			return handleErrorMsg(ErrMissingArgument, "no fields provided; pass at least one setting flag", "Run 'xatag config set --help' to list them")
		}
		return saveConfig(s, changed, "changed")
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Reset one or more config.toml fields to their defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		var changed []string
		for _, f := range configFields(s.cfg) {
			if on, _ := cmd.Flags().GetBool(f.flag); on {
				f.unset(s.cfg)
				changed = append(changed, f.name)
			}
		}
		if len(changed) == 0 {
			return handleErrorMsg(ErrMissingArgument, "no fields selected; pass one or more unset flags", "")
		}
		return saveConfig(s, changed, "cleared")
	},
}

func saveConfig(s *session, changed []string, verb string) error {
	if err := s.dir.Check(); err != nil {
		return handleError(ErrConfigMissing, err, "Run 'xatag new-config' to create it")
	}
	if err := config.Save(s.dir, s.cfg); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}
	if cfg, err := config.Load(s.dir); err == nil {
		s.cfg = cfg
	}

	if isJSONOutput() {
		data := configData(s)
		data[verb] = changed
		outputSuccess(data, nil)
		return nil
	}
	fmt.Fprintln(outWriter, ui.Success("Updated "+s.dir.ConfigFile()))
	fmt.Fprintf(outWriter, "%s: %s\n", verb, strings.Join(changed, ", "))
	return nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show config.toml values",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	for _, f := range configFlagFields {
		configSetCmd.Flags().String(f.flag, "", f.usage)
		configUnsetCmd.Flags().Bool(f.flag, false, "Reset "+f.name)
	}
	rootCmd.AddCommand(configCmd)
}
