package cli

import (
	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/ops"
	"github.com/ohspite/xatag/internal/tags"
)

var copyCmd = &cobra.Command{
	Use:   "copy SRC DEST...",
	Short: "Copy tags from one file to others",
	Long: `Merge the tags of SRC into each DEST. With -t, copy only those tags;
with -n, copy everything except them.

Examples:
  xatag copy song.mp3 other.mp3
  xatag copy song.mp3 other.mp3 -t genre:
  xatag copy -n -t tag1 a.txt b.txt`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCopy("copy", args, false)
	},
}

var copyOverCmd = &cobra.Command{
	Use:   "copy-over SRC DEST...",
	Short: "Replace the tags of files with those of another",
	Long: `Remove every xatag tag from each DEST, then copy the tags of SRC.

Equivalent to 'xatag delete-all DEST...; xatag copy SRC DEST...'.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCopy("copy-over", args, true)
	},
}

func runCopy(name string, args []string, over bool) error {
	files := append(append([]string{}, tagging.files...), args...)
	if len(files) < 2 {
		return handleErrorMsg(ErrMissingArgument, name+" needs a source and at least one destination", "")
	}
	s := current
	source, dests := files[0], files[1:]

	if !pathExists(source) {
		return handleError(ErrFileNotFound, &ops.PathNotFoundError{Path: source, Role: "source"}, "")
	}
	sourceTags, err := s.op.Read(source)
	if err != nil {
		return handleError(ErrAttributeError, err, "")
	}

	subset := ops.SubsetOptions{
		Selector:   tags.FromTags(tags.ParseAll(tagging.tags)),
		Complement: tagging.complement,
	}
	selected := ops.Subset(sourceTags, subset)

	results := s.runMutation(mutation{
		name: name,
		role: "destination",
		apply: func(dest string) error {
			if over {
				return s.op.CopyOver(selected, dest, ops.SubsetOptions{})
			}
			return s.op.Copy(selected, dest, ops.SubsetOptions{})
		},
	}, dests)
	return s.finishMutation(results)
}

func init() {
	for _, c := range []*cobra.Command{copyCmd, copyOverCmd} {
		c.Flags().AddFlagSet(tagging.flagSet())
		rootCmd.AddCommand(c)
	}
}
