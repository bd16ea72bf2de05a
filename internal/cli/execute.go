package cli

import (
	"github.com/spf13/cobra"
)

var executeCmd = &cobra.Command{
	Use:    "execute QUERY",
	Short:  "Run a tag query (not implemented)",
	Args:   cobra.ArbitraryArgs,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		if jsonOutput {
			return handleErrorMsg(ErrNotImplemented, "the execute command is not implemented yet", "Use 'xatag index files TAG...' to find files by exact tags")
		}
		s.log.Warn().Msg("the execute command is not implemented yet")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(executeCmd)
}
