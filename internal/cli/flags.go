package cli

import (
	"github.com/spf13/pflag"

	"github.com/ohspite/xatag/internal/config"
	"github.com/ohspite/xatag/internal/printer"
)

// taggingFlags are shared by every command that reads or writes tags.
type taggingFlags struct {
	tags  []string
	files []string

	complement bool
	quiet      bool
	terse      bool
	noWarn     bool
	warnOnce   bool
	noIndex    bool

	keyValPairs bool
	oneLine     bool
	fileSep     string
	keySep      string
	valSep      string
	tagPrefix   string

	fs *pflag.FlagSet
}

var tagging taggingFlags

// flagSet returns the shared flags, building them once. Commands add the
// same set so the flags parse identically everywhere.
func (f *taggingFlags) flagSet() *pflag.FlagSet {
	if f.fs != nil {
		return f.fs
	}
	fs := pflag.NewFlagSet("tagging", pflag.ContinueOnError)
	fs.StringArrayVarP(&f.tags, "tag", "t", nil, "The next argument is a tag; other arguments are files")
	fs.StringArrayVarP(&f.files, "file", "f", nil, "The next argument is a file; other arguments are tags")
	fs.BoolVarP(&f.complement, "complement", "n", false, "Invert the given tags (delete, list, copy)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Print nothing but errors")
	fs.BoolVarP(&f.terse, "terse", "T", false, "Only print keys named in the given tags")
	fs.BoolVarP(&f.noWarn, "no-warn", "w", false, "Do not warn about tags missing from known_tags")
	fs.BoolVarP(&f.warnOnce, "warn-once", "W", false, "Warn about unknown tags, then add them to known_tags")
	fs.BoolVar(&f.noIndex, "no-index", false, "Skip updating index.db and Recoll")
	fs.BoolVarP(&f.keyValPairs, "key-val-pairs", "k", false, "Print one key:value pair per value")
	fs.BoolVarP(&f.oneLine, "one-line", "o", false, "Print all tags of a file on one line")
	fs.StringVarP(&f.fileSep, "file-separator", "F", "", `Separator after file names (default ":")`)
	fs.StringVarP(&f.keySep, "key-separator", "K", "", `Separator after keys (default ":")`)
	fs.StringVarP(&f.valSep, "val-separator", "V", "", `Separator between values (default " ")`)
	fs.StringVar(&f.tagPrefix, "tag-prefix", "", "Prefix printed before every key")
	f.fs = fs
	return fs
}

// split sorts arguments into tags and files. An explicit -t makes every
// argument a file, an explicit -f makes every argument a tag. Otherwise the
// first argument is a tag when firstIsTag is set.
func (f *taggingFlags) split(args []string, firstIsTag bool) (tagArgs, files []string) {
	switch {
	case len(f.tags) > 0:
		return f.tags, append(append([]string{}, f.files...), args...)
	case len(f.files) > 0:
		return args, f.files
	case firstIsTag && len(args) > 0:
		return args[:1], args[1:]
	default:
		return nil, args
	}
}

// printOptions merges the flags over the configured separators.
func (f *taggingFlags) printOptions(cfg *config.Config) printer.Options {
	opts := printer.DefaultOptions()
	opts.KeySep = firstNonEmpty(f.keySep, cfg.Output.KeySeparator, opts.KeySep)
	opts.ValSep = firstNonEmpty(f.valSep, cfg.Output.ValueSeparator, opts.ValSep)
	opts.OneLine = f.oneLine
	opts.KeyValPairs = f.keyValPairs
	opts.TagPrefix = f.tagPrefix
	return opts
}

func (f *taggingFlags) fileSeparator(cfg *config.Config) string {
	return firstNonEmpty(f.fileSep, cfg.Output.FileSeparator, ":")
}

// checkWarnings reports whether the known-tags check runs.
func (f *taggingFlags) checkWarnings() bool {
	return !(f.noWarn || f.quiet) || f.warnOnce
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
