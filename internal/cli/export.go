package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/manifest"
	"github.com/ohspite/xatag/internal/ops"
	"github.com/ohspite/xatag/internal/paths"
	"github.com/ohspite/xatag/internal/tags"
	"github.com/ohspite/xatag/internal/ui"
)

var (
	exportOutput string
	importMerge  bool
)

var exportCmd = &cobra.Command{
	Use:   "export FILE...",
	Short: "Write the tags of files to a YAML manifest",
	Long: `Write the tags of each file to a YAML manifest that "xatag import"
reads back. Paths are stored relative to the manifest's directory, or to
the working directory when the manifest goes to stdout.

Examples:
  xatag export *.mp3 > tags.yaml
  xatag export -o backup/tags.yaml music/*`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		base, _ := os.Getwd()
		if exportOutput != "" {
			base = filepath.Dir(paths.Canonical(exportOutput))
		}

		m := manifest.New()
		batch := ops.Batch{Reporter: ops.ReporterFunc(s.report), Exists: pathExists}
		results := batch.Run(args, func(path string) error {
			d, err := s.op.Read(path)
			if err != nil {
				return err
			}
			m.Add(base, path, d)
			return nil
		})
		m.Sort()
		failed := ops.Failures(results)

		if exportOutput != "" {
			if err := manifest.Save(exportOutput, m); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		if jsonOutput {
			outputSuccessWithWarnings(m, s.warnings, &Meta{Count: len(m.Files), Failed: failed})
			return nil
		}
		if exportOutput == "" {
			if err := manifest.Encode(outWriter, m); err != nil {
				return handleError(ErrInternal, err, "")
			}
			return nil
		}
		s.log.Info().Msg(ui.BatchSummary("exported", len(m.Files), failed) + " to " + exportOutput)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import MANIFEST",
	Short: "Apply the tags in a YAML manifest to files",
	Long: `Give every file in MANIFEST exactly the tags listed for it, replacing
what it had. With --merge, add the listed tags to what the file has.
Relative paths are resolved against the manifest's directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		m, err := manifest.Load(args[0])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return handleError(ErrFileNotFound, err, "")
			}
			return handleError(ErrFileReadError, err, "")
		}
		base := filepath.Dir(paths.Canonical(args[0]))

		wanted := make(map[string]tags.Dict, len(m.Files))
		files := make([]string, 0, len(m.Files))
		var all []tags.Tag
		for _, e := range m.Files {
			path := paths.Resolve(base, e.Path)
			d := e.Dict()
			wanted[path] = d
			files = append(files, path)
			all = append(all, d.Tags()...)
		}
		s.checkKnownTags(all)

		results := s.runMutation(mutation{
			name: "import",
			apply: func(path string) error {
				if importMerge {
					return s.op.Add(path, wanted[path].Tags())
				}
				if err := s.op.DeleteAll(path); err != nil {
					return err
				}
				return s.op.SetDict(path, wanted[path])
			},
		}, files)
		return s.finishMutation(results)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the manifest to this file instead of stdout")
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Add the listed tags instead of replacing")
	importCmd.Flags().AddFlagSet(tagging.flagSet())
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
