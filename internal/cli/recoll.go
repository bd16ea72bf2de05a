package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/printer"
	"github.com/ohspite/xatag/internal/recoll"
)

var recollTagsCmd = &cobra.Command{
	Use:   "recoll-tags FILE",
	Short: "Print tags in Recoll's metadata format",
	Long: `Print the tags of FILE as "field = values" lines for Recoll's
metadatacmds setting. recoll/recoll.conf in the config dir calls this.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		d, err := s.op.Read(args[0])
		if err != nil {
			return handleError(ErrAttributeError, err, "")
		}
		return printer.Render(outWriter, d, printer.RecollOptions())
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Rewrite Recoll's fields file from known_tags",
	Long: fmt.Sprintf(`Rewrite recoll/fields in the config dir with one field per key in
known_tags, minus ignored_keys. The file is only touched while one of its
first %d lines contains %q.`, recoll.MarkerLines, recoll.RegenerateMarker),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		if err := s.dir.Check(); err != nil {
			return handleError(ErrConfigMissing, err, "Run 'xatag new-config' to create it")
		}
		written := s.regenerateFields(true)
		if jsonOutput {
			outputSuccessWithWarnings(map[string]any{
				"fields_file": s.dir.FieldsFile(),
				"written":     written,
			}, s.warnings, nil)
		}
		return nil
	},
}

// regenerateFields rewrites the fields file for the current known keys and
// reports whether it did. A file the user has taken over is only mentioned
// when loud is set.
func (s *session) regenerateFields(loud bool) bool {
	keys, err := s.registry.IndexedKeys()
	if err != nil {
		s.warn(WarnGeneric, "", "cannot read known keys: "+err.Error())
		return false
	}
	written, err := recoll.UpdateFields(s.dir.FieldsFile(), keys)
	if err != nil {
		s.warn(WarnGeneric, "", err.Error())
		return false
	}
	if !written && loud {
		s.warn(WarnFieldsSkipped, s.dir.FieldsFile(),
			fmt.Sprintf("not regenerating %s: %q is not in its first %d lines", s.dir.FieldsFile(), recoll.RegenerateMarker, recoll.MarkerLines))
	}
	if written {
		s.log.Debugf("regenerated %s", s.dir.FieldsFile())
	}
	return written
}

func init() {
	rootCmd.AddCommand(recollTagsCmd)
	rootCmd.AddCommand(regenerateCmd)
}
