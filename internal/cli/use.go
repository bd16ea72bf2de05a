package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/printer"
	"github.com/ohspite/xatag/internal/registry"
	"github.com/ohspite/xatag/internal/tags"
)

var useCmd = &cobra.Command{
	Use:   "use TAG...",
	Short: "Enter tags into known_tags",
	Long: `Append the tags to the known_tags file so they are no longer reported
as unknown. New keys are added to Recoll's fields file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		ts := tags.ParseAll(args)
		rep, err := s.registry.CheckNew(ts, true)
		if errors.Is(err, registry.ErrMissing) {
			return handleError(ErrConfigMissing, err, "Run 'xatag new-config' to create it")
		}
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		if rep.Added {
			s.regenerateFields(false)
		}

		if jsonOutput {
			outputSuccessWithWarnings(map[string]any{
				"added_keys": rep.Keys,
				"added_tags": newFileTags("", rep.Tags).Tags,
			}, s.warnings, nil)
			return nil
		}
		for _, line := range rep.Lines() {
			fmt.Fprintln(outWriter, line)
		}
		return nil
	},
}

var usedTagsCmd = &cobra.Command{
	Use:   "used-tags [TAG...]",
	Short: "Show known tags, or which of the given tags are unknown",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		if len(args) > 0 {
			rep, err := s.registry.CheckNew(tags.ParseAll(args), false)
			if err != nil {
				return handleError(ErrFileReadError, err, "Run 'xatag new-config' to create known_tags")
			}
			if jsonOutput {
				outputSuccess(map[string]any{
					"unknown_keys": rep.Keys,
					"unknown_tags": newFileTags("", rep.Tags).Tags,
				}, nil)
				return nil
			}
			for _, line := range rep.Lines() {
				fmt.Fprintln(outWriter, line)
			}
			return nil
		}

		known, err := s.registry.Load()
		if err != nil {
			return handleError(ErrFileReadError, err, "Run 'xatag new-config' to create known_tags")
		}
		if jsonOutput {
			outputSuccess(map[string]any{"tags": newFileTags("", known).Tags}, &Meta{Count: known.Len()})
			return nil
		}
		return printer.Render(outWriter, known, tagging.printOptions(s.cfg))
	},
}

func init() {
	usedTagsCmd.Flags().AddFlagSet(tagging.flagSet())
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(usedTagsCmd)
}
