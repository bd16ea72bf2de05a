// Package printer renders tag dicts for people, for grep, and for Recoll.
package printer

import (
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ohspite/xatag/internal/recoll"
	"github.com/ohspite/xatag/internal/tags"
)

// KeyWidth is the key column width values are aligned to.
const KeyWidth = 8

// Options controls Render.
type Options struct {
	// Prefix starts every line, usually a FilePrefix.
	Prefix string
	// KeySep follows each key. Defaults to ":".
	KeySep string
	// ValSep joins values. Values are quoted only when it is a single space.
	ValSep string
	// OneLine prints the whole dict on one line.
	OneLine bool
	// KeyValPairs prints one key:value pair per value.
	KeyValPairs bool
	// TagPrefix is prepended to every displayed key.
	TagPrefix string
	// ForRecoll selects Recoll's metadata format and overrides the layout
	// options above except Prefix.
	ForRecoll bool
	// Terse suppresses the bare prefix line for an empty dict.
	Terse bool
}

// DefaultOptions returns the separators used when none are given.
func DefaultOptions() Options {
	return Options{KeySep: ":", ValSep: " "}
}

// RecollOptions returns the options for Recoll's metadatacmds output.
func RecollOptions() Options {
	return Options{KeySep: "=", ValSep: "; ", ForRecoll: true}
}

func (o Options) normalized() Options {
	if o.ForRecoll {
		o.KeySep = "="
		o.ValSep = "; "
		o.OneLine = false
		o.KeyValPairs = false
		o.TagPrefix = ""
	}
	if o.KeySep == "" {
		o.KeySep = ":"
	}
	if o.ValSep == "" {
		o.ValSep = " "
	}
	return o
}

// FilePrefix builds "path<fsep>" padded so that values line up for paths no
// longer than longest.
func FilePrefix(path string, longest int, fsep string) string {
	padding := max(1, longest-lipgloss.Width(path)+1)
	return path + fsep + strings.Repeat(" ", padding)
}

// Longest returns the display width of the longest path.
func Longest(paths []string) int {
	n := 0
	for _, p := range paths {
		n = max(n, lipgloss.Width(p))
	}
	return n
}

// Render writes d to w. The default key comes first, shown as "tags", then
// the other keys in order. Values are sorted.
func Render(w io.Writer, d tags.Dict, opts Options) error {
	_, err := io.WriteString(w, String(d, opts))
	return err
}

// String is Render into a string.
func String(d tags.Dict, opts Options) string {
	opts = opts.normalized()
	var b strings.Builder

	keys := d.Keys()
	if opts.OneLine && len(keys) > 0 {
		b.WriteString(opts.Prefix)
	}
	for i, k := range keys {
		if len(d[k]) == 0 {
			continue
		}
		writeKey(&b, keyName(k, opts), d[k], opts, i == len(keys)-1)
	}
	if opts.OneLine && len(keys) > 0 {
		b.WriteString("\n")
	}

	if len(keys) == 0 && opts.Prefix != "" && !opts.Terse {
		b.WriteString(opts.Prefix)
		b.WriteString("\n")
	}
	return b.String()
}

func keyName(key string, opts Options) string {
	if opts.ForRecoll {
		return recoll.FieldName(key)
	}
	return opts.TagPrefix + tags.DisplayKey(key)
}

func writeKey(b *strings.Builder, name string, values []string, opts Options, last bool) {
	padding := strings.Repeat(" ", max(1, KeyWidth-lipgloss.Width(name)+1))

	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	quote := opts.ValSep == " "
	for i, v := range sorted {
		if quote {
			sorted[i] = tags.QuoteValue(v)
		} else {
			sorted[i] = tags.Format(v)
		}
	}

	switch {
	case opts.KeyValPairs && opts.OneLine:
		for i, v := range sorted {
			b.WriteString(name + opts.KeySep + v)
			if i < len(sorted)-1 || !last {
				b.WriteString(opts.ValSep)
			}
		}
	case opts.KeyValPairs:
		for _, v := range sorted {
			b.WriteString(opts.Prefix + name + opts.KeySep + padding + v + "\n")
		}
	case opts.OneLine:
		b.WriteString(name + opts.KeySep + `"` + strings.Join(sorted, opts.ValSep) + `" `)
	default:
		b.WriteString(opts.Prefix + name + opts.KeySep + padding + strings.Join(sorted, opts.ValSep) + "\n")
	}
}
