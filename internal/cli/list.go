package cli

import (
	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/ops"
	"github.com/ohspite/xatag/internal/printer"
	"github.com/ohspite/xatag/internal/tags"
)

var listCmd = &cobra.Command{
	Use:     "list FILE...",
	Aliases: []string{"ls"},
	Short:   "List the tags of files",
	Long: `Print the tags of each file. With -t, print only those tags; "key:"
selects a whole key. With -n, print everything except them.

Examples:
  xatag list a.txt b.txt
  xatag list -t genre: *.mp3
  xatag list -o -k song.mp3             # one line of key:value pairs
  xatag list -V, song.mp3               # comma separated values`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tagArgs, files := tagging.split(args, false)
		return runList(cmd, tagArgs, files)
	},
}

func runList(cmd *cobra.Command, tagArgs, files []string) error {
	if len(files) == 0 {
		return handleErrorMsg(ErrMissingArgument, "list needs at least one file", "")
	}
	s := current
	view := printer.View{Tags: tags.ParseAll(tagArgs), Subset: true, Complement: tagging.complement}
	opts := tagging.printOptions(s.cfg)
	longest := printer.Longest(files)
	fsep := tagging.fileSeparator(s.cfg)

	var results []fileTags
	batch := ops.Batch{Reporter: ops.ReporterFunc(s.report), Exists: pathExists}
	batch.Run(files, func(path string) error {
		d, err := s.op.Read(path)
		if err != nil {
			results = append(results, fileTags{Path: path, Error: err.Error()})
			return err
		}
		d = view.Apply(d)
		results = append(results, newFileTags(path, d))
		if jsonOutput {
			return nil
		}
		opts.Prefix = printer.FilePrefix(path, longest, fsep)
		return printer.Render(outWriter, d, opts)
	})
	return s.finishMutation(results)
}

func init() {
	listCmd.Flags().AddFlagSet(tagging.flagSet())
	rootCmd.AddCommand(listCmd)
}
