// Package cli implements the xatag command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ohspite/xatag/internal/logging"
)

var (
	configDirFlag string
	verboseFlag   bool
	noColorFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "xatag [TAG] FILE...",
	Short: "Tag files using extended attributes",
	Long: `xatag attaches key/value tags to files, storing them in the files'
extended attributes under the org.xatag.tags namespace.

A tag is "value" (the default "tags" key) or "key:value". Give several
values for one key as "key:v1;v2". With two or more arguments and no
subcommand, xatag adds the first argument as a tag to the rest. With one
argument it lists the tags of that file.

Examples:
  xatag favorite notes.txt              # add a simple tag
  xatag genre:rock;indie song.mp3       # add two genre values
  xatag song.mp3                        # list tags
  xatag set 'artist:The XX' *.mp3       # replace one key
  xatag delete genre: song.mp3          # remove a whole key
  xatag copy song.mp3 other.mp3 -t genre:`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		outWriter = cmd.OutOrStdout()
		return openSession(cmd)
	},
	RunE: runRoot,
}

// runRoot adds when given a tag and files, and lists when given files.
func runRoot(cmd *cobra.Command, args []string) error {
	tagArgs, files := tagging.split(args, true)
	switch {
	case len(tagArgs) > 0 && len(files) > 0:
		return runAdd(cmd, tagArgs, files)
	case len(args) == 1 || len(tagging.files) > 0:
		tagArgs, files = tagging.split(args, false)
		return runList(cmd, tagArgs, files)
	default:
		return cmd.Help()
	}
}

// Execute runs the CLI.
func Execute() error {
	defer closeSession()
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	var silent silentError
	if !errors.As(err, &silent) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "xatag: "+err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "xatag config directory (default $XATAG_DIR or ~/.xatag)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Print debugging messages")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", os.Getenv("NO_COLOR") != "", "Disable colored output")
	rootCmd.Flags().AddFlagSet(tagging.flagSet())
}

func newLogger(cmd *cobra.Command) *logging.Logger {
	quiet := false
	if f := cmd.Flags().Lookup("quiet"); f != nil {
		quiet = f.Value.String() == "true"
	}
	return logging.New(cmd.ErrOrStderr(), logging.Options{
		Verbose: verboseFlag,
		Quiet:   quiet || jsonOutput,
		NoColor: noColorFlag,
	})
}
