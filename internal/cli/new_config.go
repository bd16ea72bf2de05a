package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/config"
	"github.com/ohspite/xatag/internal/recoll"
	"github.com/ohspite/xatag/internal/ui"
)

var newConfigCmd = &cobra.Command{
	Use:   "new-config [DIR]",
	Short: "Create the xatag config directory",
	Long: `Create a config directory with config.toml, known_tags, ignored_keys
and Recoll settings in recoll/. DIR defaults to --config-dir, $XATAG_DIR
or ~/.xatag. An existing non-empty directory is left alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		dir := s.dir
		if len(args) == 1 {
			dir = config.ResolveDir(args[0], s.env)
		}

		if err := config.Create(dir); err != nil {
			if errors.Is(err, config.ErrDirExists) {
				return handleError(ErrConfigExists, err, "")
			}
			return handleError(ErrFileWriteError, err, "")
		}
		s.dir = dir
		s.registry.KnownTagsPath = dir.KnownTags()
		s.registry.IgnoredKeysPath = dir.IgnoredKeys()

		if err := s.registry.WriteDefaults(); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		keys, err := s.registry.IndexedKeys()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		if err := recoll.WriteDefaults(dir.RecollDir(), keys); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if jsonOutput {
			outputSuccess(map[string]any{"config_dir": dir.Path}, nil)
			return nil
		}
		fmt.Fprintln(outWriter, ui.Success("config dir created at: "+ui.FilePath(dir.Path)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newConfigCmd)
}
