package cli

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	builtindocs "github.com/ohspite/xatag/docs"
	"github.com/ohspite/xatag/internal/ui"
)

var (
	docsSearchLimit int

	docsFS             fs.FS = builtindocs.FS
	docsStdoutIsTTY          = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
	docsMarkdownRender       = ui.RenderMarkdown
)

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the xatag guide",
	Long: `Read the guide bundled into xatag. Without a topic, list the topics.
For command usage, use 'xatag help <command>'.

Examples:
  xatag docs
  xatag docs known-tags
  xatag docs search fields`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := builtindocs.Topics(docsFS)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if len(args) == 0 {
			return outputDocsTopics(topics)
		}

		topic, ok := builtindocs.Find(topics, args[0])
		if !ok {
			ids := make([]string, 0, len(topics))
			for _, t := range topics {
				ids = append(ids, t.ID)
			}
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown docs topic: %s", args[0]), "Topics: "+strings.Join(ids, ", "))
		}
		return outputDocsTopic(topic)
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Search the guide",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		if docsSearchLimit < 1 {
			return handleErrorMsg(ErrInvalidInput, "--limit must be >= 1", "")
		}
		matches, err := builtindocs.Search(docsFS, query, docsSearchLimit)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"query": query, "matches": matches}, &Meta{Count: len(matches)})
			return nil
		}
		if len(matches) == 0 {
			fmt.Fprintf(outWriter, "No docs matched %q.\n", query)
			return nil
		}
		for _, m := range matches {
			fmt.Fprintf(outWriter, "%s:%d  %s\n", ui.Accent.Render(m.Topic), m.Line, m.Snippet)
		}
		return nil
	},
}

func outputDocsTopics(topics []builtindocs.Topic) error {
	if isJSONOutput() {
		outputSuccess(map[string]any{"topics": topics}, &Meta{Count: len(topics)})
		return nil
	}
	fmt.Fprintln(outWriter, ui.Header("Guide topics:"))
	for _, t := range topics {
		fmt.Fprintf(outWriter, "  %-28s %s\n", "xatag docs "+t.ID, t.Title)
	}
	fmt.Fprintln(outWriter)
	fmt.Fprintln(outWriter, ui.Hint("xatag docs search QUERY searches every topic."))
	return nil
}

func outputDocsTopic(topic builtindocs.Topic) error {
	content, err := fs.ReadFile(docsFS, topic.Path)
	if err != nil {
		return handleError(ErrFileReadError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{
			"topic":   topic.ID,
			"title":   topic.Title,
			"content": string(content),
		}, nil)
		return nil
	}

	out := string(content)
	if docsStdoutIsTTY() {
		display := ui.NewDisplayContext()
		if rendered, err := docsMarkdownRender(out, display.TermWidth); err == nil {
			out = rendered
		}
	}
	fmt.Fprint(outWriter, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(outWriter)
	}
	return nil
}

func init() {
	docsSearchCmd.Flags().IntVar(&docsSearchLimit, "limit", 20, "Maximum number of matches")
	docsCmd.AddCommand(docsSearchCmd)
	rootCmd.AddCommand(docsCmd)
}
