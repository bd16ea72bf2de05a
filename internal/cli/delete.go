package cli

import (
	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/ops"
	"github.com/ohspite/xatag/internal/tags"
)

var deleteCmd = &cobra.Command{
	Use:   "delete TAG FILE...",
	Short: "Remove tags from files",
	Long: `Remove the given tags from every file. "key:" removes every value of the
key. With -n, remove everything except the given tags instead.

Examples:
  xatag delete tag1 a.txt
  xatag delete genre: song.mp3          # drop the genre key
  xatag delete -n -t genre: song.mp3    # keep only genre
  xatag delete -n -t : song.mp3         # keep only the default key`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tagArgs, files := tagging.split(args, true)
		if len(tagArgs) == 0 || len(files) == 0 {
			return handleErrorMsg(ErrMissingArgument, "delete needs at least one tag and one file", "Run 'xatag help delete' for usage")
		}
		s := current
		ts := tags.ParseAll(tagArgs)
		opts := ops.DeleteOptions{Complement: tagging.complement, Quiet: tagging.quiet}
		results := s.runMutation(mutation{
			name:  "delete",
			tags:  ts,
			apply: func(path string) error { return s.op.Delete(path, ts, opts) },
		}, files)
		return s.finishMutation(results)
	},
}

var deleteAllCmd = &cobra.Command{
	Use:   "delete-all FILE...",
	Short: "Remove every xatag tag from files",
	Long: `Remove every attribute in the xatag namespace from the files. Other
extended attributes are kept.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, files := tagging.split(args, false)
		if len(files) == 0 {
			return handleErrorMsg(ErrMissingArgument, "delete-all needs at least one file", "")
		}
		s := current
		results := s.runMutation(mutation{
			name:   "delete-all",
			apply:  s.op.DeleteAll,
			silent: true,
		}, files)
		return s.finishMutation(results)
	},
}

func init() {
	for _, c := range []*cobra.Command{deleteCmd, deleteAllCmd} {
		c.Flags().AddFlagSet(tagging.flagSet())
		rootCmd.AddCommand(c)
	}
}
