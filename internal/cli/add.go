package cli

import (
	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/tags"
)

var addCmd = &cobra.Command{
	Use:   "add TAG FILE...",
	Short: "Add tags to files",
	Long: `Add the tags to every file, keeping the tags already there.

This is what xatag does when run with two or more arguments and no
subcommand.

Examples:
  xatag add favorite a.txt b.txt
  xatag add 'genre:indie;pop' song.mp3
  xatag add song.mp3 other.mp3 -t genre:pop -t 'artist:The XX'
  xatag add favorite summer -f photo.jpg`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tagArgs, files := tagging.split(args, true)
		return runAdd(cmd, tagArgs, files)
	},
}

func runAdd(cmd *cobra.Command, tagArgs, files []string) error {
	if len(tagArgs) == 0 || len(files) == 0 {
		return handleErrorMsg(ErrMissingArgument, "add needs at least one tag and one file", "Run 'xatag help add' for usage")
	}
	s := current
	ts := tags.ParseAll(tagArgs)
	s.checkKnownTags(ts)
	results := s.runMutation(mutation{
		name:  "add",
		tags:  ts,
		apply: func(path string) error { return s.op.Add(path, ts) },
	}, files)
	return s.finishMutation(results)
}

var setCmd = &cobra.Command{
	Use:   "set TAG FILE...",
	Short: "Replace the values of the given keys",
	Long: `Set each key named in the tags to exactly the given values, leaving
other keys alone. "key:" removes the key.

Examples:
  xatag set genre:awesome song.mp3
  xatag set tag 'genre:awesome' -f a.txt -f b.txt`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tagArgs, files := tagging.split(args, true)
		if len(tagArgs) == 0 || len(files) == 0 {
			return handleErrorMsg(ErrMissingArgument, "set needs at least one tag and one file", "Run 'xatag help set' for usage")
		}
		s := current
		ts := tags.ParseAll(tagArgs)
		s.checkKnownTags(ts)
		results := s.runMutation(mutation{
			name:  "set",
			tags:  ts,
			apply: func(path string) error { return s.op.Set(path, ts) },
		}, files)
		return s.finishMutation(results)
	},
}

var setAllCmd = &cobra.Command{
	Use:   "set-all TAG FILE...",
	Short: "Replace all tags of files",
	Long: `Remove every xatag tag from the files, then add the given tags.
Attributes outside the xatag namespace are kept.

Equivalent to 'xatag delete-all FILE...; xatag add TAG FILE...'.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tagArgs, files := tagging.split(args, true)
		if len(tagArgs) == 0 || len(files) == 0 {
			return handleErrorMsg(ErrMissingArgument, "set-all needs at least one tag and one file", "Run 'xatag help set-all' for usage")
		}
		s := current
		ts := tags.ParseAll(tagArgs)
		s.checkKnownTags(ts)
		results := s.runMutation(mutation{
			name:  "set-all",
			tags:  ts,
			apply: func(path string) error { return s.op.SetAll(path, ts) },
		}, files)
		return s.finishMutation(results)
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, setCmd, setAllCmd} {
		c.Flags().AddFlagSet(tagging.flagSet())
		rootCmd.AddCommand(c)
	}
}
