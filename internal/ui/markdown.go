package ui

import (
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
)

// MarkdownRenderMargin is the left margin of rendered docs.
const MarkdownRenderMargin = 2

const defaultCodeTheme = "monokai"

var markdownCodeTheme = defaultCodeTheme

// ConfigureMarkdownCodeTheme picks the chroma theme for code blocks in
// "xatag docs". Unknown names fall back to the default theme.
func ConfigureMarkdownCodeTheme(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || !slices.Contains(styles.Names(), name) {
		markdownCodeTheme = defaultCodeTheme
		return
	}
	markdownCodeTheme = name
}

// RenderMarkdown renders markdown for the terminal, wrapped at width.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width-MarkdownRenderMargin),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n") + "\n", nil
}

func markdownStyle() ansi.StyleConfig {
	muted := strPtr("8")
	code := strPtr("203")
	var accent *string
	if color, ok := AccentColor(); ok {
		accent = strPtr(color)
	}

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{BlockPrefix: "\n", BlockSuffix: "\n"},
			Margin:         uintPtr(MarkdownRenderMargin),
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: muted},
			Indent:         uintPtr(1),
			IndentToken:    strPtr("│ "),
		},
		List: ansi.StyleList{LevelIndent: 2},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       accent,
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Underline: boolPtr(true)}},
		H2: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Underline: boolPtr(true)}},
		H3: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "### "}},
		Emph:   ansi.StylePrimitive{Italic: boolPtr(true)},
		Strong: ansi.StylePrimitive{Bold: boolPtr(true)},
		HorizontalRule: ansi.StylePrimitive{
			Color:  muted,
			Format: "\n--------\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Link:        ansi.StylePrimitive{Color: muted, Underline: boolPtr(true)},
		LinkText:    ansi.StylePrimitive{Bold: boolPtr(true)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: code},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: code},
				Margin:         uintPtr(2),
			},
			Theme: markdownCodeTheme,
		},
		Table: ansi.StyleTable{
			CenterSeparator: strPtr("│"),
			ColumnSeparator: strPtr("│"),
			RowSeparator:    strPtr("─"),
		},
	}
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }
