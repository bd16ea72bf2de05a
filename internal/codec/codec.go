// Package codec translates between tag dictionaries and the flat extended
// attribute representation.
//
// Every tag key is stored in its own attribute. The default key lives under
// the bare namespace prefix and any other key K under "<prefix>.K". The
// attribute value is the sorted list of the key's values joined by the field
// separator. An attribute is never written with an empty value.
package codec

import (
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/ohspite/xatag/internal/tags"
)

const (
	// DefaultPrefix is the reserved attribute namespace for xatag data.
	DefaultPrefix = "org.xatag.tags"

	// FieldSeparator joins values inside one attribute.
	FieldSeparator = ";"

	// LinuxUserNamespace is the namespace Linux requires for unprivileged
	// extended attributes.
	LinuxUserNamespace = "user."
)

// Codec holds the naming parameters of the attribute representation.
type Codec struct {
	// Prefix is the reserved namespace, e.g. "org.xatag.tags".
	Prefix string
	// UserPrefix is prepended to every attribute name written.
	UserPrefix string
	// Separator joins values within an attribute.
	Separator string
}

// Default returns the codec for the running platform.
func Default() Codec {
	return New(DefaultPrefix)
}

// New returns a codec for the running platform using prefix as namespace.
func New(prefix string) Codec {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return Codec{
		Prefix:     prefix,
		UserPrefix: platformUserPrefix(runtime.GOOS),
		Separator:  FieldSeparator,
	}
}

func platformUserPrefix(goos string) string {
	switch goos {
	case "darwin", "ios":
		return ""
	default:
		return LinuxUserNamespace
	}
}

func (c Codec) separator() string {
	if c.Separator == "" {
		return FieldSeparator
	}
	return c.Separator
}

// stripUser removes the platform user namespace from name, if present.
func (c Codec) stripUser(name string) string {
	if c.UserPrefix != "" {
		if rest, ok := strings.CutPrefix(name, c.UserPrefix); ok {
			return rest
		}
	}
	if rest, ok := strings.CutPrefix(name, LinuxUserNamespace); ok {
		return rest
	}
	return name
}

// IsManaged reports whether an attribute name falls under the namespace,
// with or without the user namespace in front.
func (c Codec) IsManaged(name string) bool {
	return strings.HasPrefix(c.stripUser(name), c.Prefix)
}

// AttrName returns the attribute name that stores key.
func (c Codec) AttrName(key string) string {
	key = tags.NormalizeKey(key)
	if key == tags.DefaultKey {
		return c.UserPrefix + c.Prefix
	}
	return c.UserPrefix + c.Prefix + "." + key
}

// Key returns the tag key stored in the attribute called name. The name is
// assumed to be managed.
func (c Codec) Key(name string) string {
	rest := strings.TrimPrefix(c.stripUser(name), c.Prefix)
	rest = strings.TrimPrefix(rest, ".")
	return tags.NormalizeKey(rest)
}

// DecodeValue splits a stored attribute value into normalized values.
// Empty segments are dropped, so the wildcard never comes back from storage.
func (c Codec) DecodeValue(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, c.separator()) {
		v := tags.NormalizeValue(part)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// EncodeValue normalizes, deduplicates and sorts values and joins them.
// Empty values are skipped; an empty result means the attribute should be
// removed.
func (c Codec) EncodeValue(values []string) string {
	var out []string
	for _, v := range values {
		v = tags.NormalizeValue(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	sort.Strings(out)
	return strings.Join(out, c.separator())
}

// Canonical re-encodes a stored value.
func (c Codec) Canonical(raw string) string {
	return c.EncodeValue(c.DecodeValue(raw))
}

// AddValues returns raw with values appended.
func (c Codec) AddValues(raw string, values []string) string {
	return c.EncodeValue(append(c.DecodeValue(raw), values...))
}

// RemoveValues returns raw without values. With complement set it instead
// keeps only values, and a "" among them keeps everything.
func (c Codec) RemoveValues(raw string, values []string, complement bool) string {
	current := c.DecodeValue(raw)
	var kept []string
	switch {
	case complement && slices.Contains(values, ""):
		kept = current
	case complement:
		for _, v := range current {
			if slices.Contains(values, v) {
				kept = append(kept, v)
			}
		}
	default:
		for _, v := range current {
			if !slices.Contains(values, v) {
				kept = append(kept, v)
			}
		}
	}
	return c.EncodeValue(kept)
}

// Decode builds a settled dict from a name -> value attribute map,
// ignoring attributes outside the namespace.
func (c Codec) Decode(attrs map[string]string) tags.Dict {
	d := make(tags.Dict)
	for name, raw := range attrs {
		if !c.IsManaged(name) {
			continue
		}
		values := c.DecodeValue(raw)
		if len(values) == 0 {
			continue
		}
		key := c.Key(name)
		for _, v := range values {
			d.Add(key, v)
		}
	}
	return d
}

// Encode returns the attribute map representing d. Keys without storable
// values are omitted.
func (c Codec) Encode(d tags.Dict) map[string]string {
	out := make(map[string]string, len(d))
	for key, values := range d {
		raw := c.EncodeValue(values)
		if raw == "" {
			continue
		}
		out[c.AttrName(key)] = raw
	}
	return out
}
