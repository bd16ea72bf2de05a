package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/index"
	"github.com/ohspite/xatag/internal/ops"
	"github.com/ohspite/xatag/internal/paths"
	"github.com/ohspite/xatag/internal/tags"
	"github.com/ohspite/xatag/internal/ui"
	"github.com/ohspite/xatag/internal/watcher"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query and maintain the local tag index",
	Long: `Every command that changes tags also records them in index.db in the
config dir. The attributes stay the source of truth; the index lets xatag
find files by tag and count tags without walking the filesystem.`,
}

var indexUpdateCmd = &cobra.Command{
	Use:   "update [FILE...]",
	Short: "Re-read indexed files and add new ones",
	Long: `Re-read the tags of every indexed file and of the given files, and drop
files that no longer exist.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		db, err := s.openIndex()
		if err != nil {
			return err
		}

		known, err := db.Paths()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		given := ops.Batch{Reporter: ops.ReporterFunc(s.report), Exists: pathExists}.Existing(args)
		files := mergePaths(known, given)

		progress := ui.NewProgress(cmd.ErrOrStderr(), !jsonOutput && ui.DisplayContextFor(os.Stderr).IsTTY, "Indexing", len(files))
		batch := ops.Batch{Reporter: ops.ReporterFunc(s.report), Exists: func(string) bool { return true }}
		results := batch.Run(files, func(path string) error {
			defer progress.Increment()
			if !pathExists(path) {
				return nil
			}
			d, err := s.op.Read(path)
			if err != nil {
				return err
			}
			return db.Put(path, d)
		})
		progress.Done()

		removed, err := db.Prune(pathExists)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		failed := ops.Failures(results)
		updated := len(files) - failed - len(removed)

		if jsonOutput {
			outputSuccessWithWarnings(map[string]any{
				"updated": updated,
				"removed": removed,
			}, s.warnings, &Meta{Count: updated, Failed: failed})
			return nil
		}
		fmt.Fprintln(outWriter, ui.Success(ui.BatchSummary("indexed", updated, failed)))
		if len(removed) > 0 {
			fmt.Fprintln(outWriter, ui.Hint(ui.BatchSummary("removed", len(removed), 0)))
		}
		return nil
	},
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count indexed files and tags by key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		db, err := s.openIndex()
		if err != nil {
			return err
		}
		stats, err := db.Stats()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if jsonOutput {
			for i := range stats.Keys {
				stats.Keys[i].Key = tags.DisplayKey(stats.Keys[i].Key)
			}
			outputSuccess(stats, &Meta{Count: stats.Files})
			return nil
		}

		fmt.Fprintf(outWriter, "%s %s\n", ui.Header("Tag index"), ui.Count(stats.Files, "file", "files"))
		if len(stats.Keys) == 0 {
			return nil
		}
		rows := make([][]string, 0, len(stats.Keys))
		for _, k := range stats.Keys {
			rows = append(rows, []string{tags.DisplayKey(k.Key), strconv.Itoa(k.Values), strconv.Itoa(k.Files)})
		}
		fmt.Fprintln(outWriter, ui.Table([]string{"key", "values", "files"}, rows))
		return nil
	},
}

var indexFilesCmd = &cobra.Command{
	Use:   "files TAG...",
	Short: "List indexed files carrying every given tag",
	Long: `List indexed files that carry all the given tags. "key:" matches any
value of key.

Examples:
  xatag index files favorite
  xatag index files 'artist:The XX' genre:`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		db, err := s.openIndex()
		if err != nil {
			return err
		}
		files, err := db.FilesWith(tags.ParseAll(args))
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if jsonOutput {
			outputSuccess(map[string]any{"files": files}, &Meta{Count: len(files)})
			return nil
		}
		for _, f := range files {
			fmt.Fprintln(outWriter, f)
		}
		return nil
	},
}

var indexValuesCmd = &cobra.Command{
	Use:   "values KEY",
	Short: "List the indexed values of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		db, err := s.openIndex()
		if err != nil {
			return err
		}
		values, err := db.Values(tags.NormalizeKey(args[0]))
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if jsonOutput {
			outputSuccess(map[string]any{"values": values}, &Meta{Count: len(values)})
			return nil
		}
		for _, v := range values {
			fmt.Fprintln(outWriter, v)
		}
		return nil
	},
}

var indexWatchCmd = &cobra.Command{
	Use:   "watch [DIR...]",
	Short: "Keep the index up to date while tags change",
	Long: `Watch the directories (default: the current one) and re-read the tags
of every file whose attributes change, including changes made by other
programs. Runs until interrupted.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		db, err := s.openIndex()
		if err != nil {
			return err
		}
		dirs := args
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, d := range dirs {
			if info, err := os.Stat(d); err != nil || !info.IsDir() {
				return handleErrorMsg(ErrFileNotFound, "not a directory: "+d, "")
			}
		}

		w, err := watcher.New(watcher.Config{
			Roots:  dirs,
			Index:  db,
			Read:   s.op.Read,
			Ignore: []string{s.dir.Path},
			Logger: s.log,
			OnReindex: func(path string, err error) {
				if err != nil {
					s.log.Warn().Msgf("%s: %v", path, err)
					return
				}
				s.log.Info().Msg("indexed " + path)
			},
		})
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		s.log.Info().Msgf("watching %s (Ctrl-C to stop)", strings.Join(dirs, ", "))
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return handleError(ErrInternal, err, "")
		}
		if jsonOutput {
			outputSuccess(map[string]any{"watched": dirs}, nil)
		}
		return nil
	},
}

// openIndex is index() for commands that cannot do without it.
func (s *session) openIndex() (*index.Database, error) {
	if err := s.dir.Check(); err != nil {
		return nil, handleError(ErrConfigMissing, err, "Run 'xatag new-config' to create it")
	}
	if !s.cfg.IndexEnabled() {
		return nil, handleErrorMsg(ErrConfigInvalid, "the tag index is disabled", "Set index.enabled = true in "+s.dir.ConfigFile())
	}
	db := s.index()
	if db == nil {
		return nil, handleErrorMsg(ErrDatabaseError, "cannot open "+s.dir.IndexDB(), "")
	}
	return db, nil
}

// mergePaths returns the canonical union of indexed paths and extra.
func mergePaths(indexed, extra []string) []string {
	seen := make(map[string]bool, len(indexed)+len(extra))
	var out []string
	for _, p := range append(append([]string{}, indexed...), extra...) {
		p = paths.Canonical(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func init() {
	indexCmd.AddCommand(indexUpdateCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexFilesCmd)
	indexCmd.AddCommand(indexValuesCmd)
	indexCmd.AddCommand(indexWatchCmd)
	rootCmd.AddCommand(indexCmd)
}
