// Package slugs turns tag keys into names other tools accept.
//
// There are two strategies:
//   - Field slugs: Recoll field names. ASCII punctuation becomes ':' so the
//     key stays readable in recoll's fields file.
//   - Term slugs: Xapian term prefixes. Upper case ASCII letters and digits
//     only, built on gosimple/slug so non-ASCII keys transliterate.
package slugs

import (
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

// FieldSlug maps every ASCII punctuation or symbol rune in key to ':'.
//
//	"newkey:with:punct" -> "newkey:with:punct"
//	"pub-date"          -> "pub:date"
func FieldSlug(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r < unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			b.WriteRune(':')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TermSlug upper-cases key and drops everything that is not a letter or
// digit after transliteration.
//
//	"newkey:with:punct" -> "NEWKEYWITHPUNCT"
//	"café"              -> "CAFE"
func TermSlug(key string) string {
	slugged := goslug.Make(key)
	if slugged == "" {
		slugged = key
	}

	var b strings.Builder
	for _, r := range slugged {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
