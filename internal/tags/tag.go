// Package tags defines the in-memory model of xatag data: individual
// key/value tags and the per-file tag dictionary with its set algebra.
package tags

import (
	"strings"
)

const (
	// DefaultKey is the canonical key for simple (unqualified) tags.
	DefaultKey = ""

	// DefaultKeyAlias is accepted anywhere a key is parsed and normalized to
	// DefaultKey. It is also how the default key is displayed.
	DefaultKeyAlias = "tags"

	// Separator splits multiple values given for one key.
	Separator = ";"

	// KeySeparator splits a key from its values in a tag string.
	KeySeparator = ":"
)

// Tag is a single key/value pair. A Tag with an empty Value means "every
// value under Key" when used for deletion or selection.
type Tag struct {
	Key   string
	Value string
}

// New returns a Tag with the key and value normalized.
func New(key, value string) Tag {
	return Tag{Key: NormalizeKey(key), Value: NormalizeValue(value)}
}

// Format collapses whitespace runs into single spaces and trims the ends.
func Format(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeKey formats a key and maps the default key alias to DefaultKey.
func NormalizeKey(key string) string {
	key = Format(key)
	if key == DefaultKeyAlias {
		return DefaultKey
	}
	return key
}

// NormalizeValue formats a value for storage.
func NormalizeValue(value string) string {
	return Format(value)
}

// QuoteValue formats a value for printing, wrapping it in single quotes when
// it contains a space. Quoted values are never written to attributes.
func QuoteValue(value string) string {
	value = Format(value)
	if strings.Contains(value, " ") {
		return "'" + value + "'"
	}
	return value
}

// DisplayKey returns the name shown to users for key.
func DisplayKey(key string) string {
	if key == DefaultKey {
		return DefaultKeyAlias
	}
	return key
}

// Parse converts a tag string into tags.
//
//	"simple-tag"            -> [("", "simple-tag")]
//	"genre:rock"            -> [("genre", "rock")]
//	"multi:part:key:v1;v2"  -> [("multi:part:key", "v1"), ("multi:part:key", "v2")]
//	"genre:"                -> [("genre", "")]
//
// Only the last colon separates the key from the values.
func Parse(s string) []Tag {
	key, values := DefaultKey, s
	if i := strings.LastIndex(s, KeySeparator); i >= 0 {
		key, values = s[:i], s[i+1:]
	}

	parts := strings.Split(values, Separator)
	out := make([]Tag, 0, len(parts))
	for _, v := range parts {
		out = append(out, New(key, v))
	}
	return out
}

// ParseAll parses every tag string and flattens the result.
func ParseAll(args []string) []Tag {
	var out []Tag
	for _, arg := range args {
		out = append(out, Parse(arg)...)
	}
	return out
}

// String renders the tag as "key:value", or just the value for the default key.
func (t Tag) String() string {
	if t.Key == DefaultKey {
		return t.Value
	}
	return t.Key + KeySeparator + t.Value
}

// IsWildcard reports whether the tag stands for all values of its key.
func (t Tag) IsWildcard() bool {
	return t.Value == ""
}
