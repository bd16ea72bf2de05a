package tags

import (
	"slices"
	"sort"
)

// Dict maps a tag key to its values. Values are unique per key; their order
// is not significant. A settled Dict never holds a key with no values.
//
// A value of "" inside a Dict used as a selector or subtrahend means "all
// values for this key"; it is never stored.
type Dict map[string][]string

// FromTags groups tags by key, dropping duplicate values. Keys whose only
// value is the wildcard are kept.
func FromTags(ts []Tag) Dict {
	d := make(Dict)
	for _, t := range ts {
		d.Add(t.Key, t.Value)
	}
	return d
}

// Add appends value to key unless it is already present.
func (d Dict) Add(key, value string) {
	if slices.Contains(d[key], value) {
		return
	}
	d[key] = append(d[key], value)
}

// Has reports whether key holds value.
func (d Dict) Has(key, value string) bool {
	return slices.Contains(d[key], value)
}

// HasWildcard reports whether key is present with the "all values" sentinel.
func (d Dict) HasWildcard(key string) bool {
	return slices.Contains(d[key], "")
}

// Keys returns the keys sorted, so the default key comes first.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of key/value pairs.
func (d Dict) Len() int {
	n := 0
	for _, vs := range d {
		n += len(vs)
	}
	return n
}

// Clone returns a deep copy.
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	for k, vs := range d {
		out[k] = slices.Clone(vs)
	}
	return out
}

// Sorted returns a deep copy with every value list sorted.
func (d Dict) Sorted() Dict {
	out := d.Clone()
	for _, vs := range out {
		sort.Strings(vs)
	}
	return out
}

// Tags flattens the dict into tags ordered by key, then value.
func (d Dict) Tags() []Tag {
	var out []Tag
	sorted := d.Sorted()
	for _, k := range sorted.Keys() {
		for _, v := range sorted[k] {
			out = append(out, Tag{Key: k, Value: v})
		}
	}
	return out
}

// Equal compares two dicts as maps of value sets.
func (d Dict) Equal(other Dict) bool {
	if len(d) != len(other) {
		return false
	}
	for k, vs := range d {
		ovs, ok := other[k]
		if !ok || len(vs) != len(ovs) {
			return false
		}
		for _, v := range vs {
			if !slices.Contains(ovs, v) {
				return false
			}
		}
	}
	return true
}

// Merge returns the union of base and overlay. For a key present in both,
// overlay's values come first followed by base's values not already in
// overlay. Nothing is dropped.
func Merge(base, overlay Dict) Dict {
	out := make(Dict, len(base)+len(overlay))
	for k, vs := range base {
		ovs, ok := overlay[k]
		if !ok {
			out.set(k, slices.Clone(vs))
			continue
		}
		merged := slices.Clone(ovs)
		for _, v := range vs {
			if !slices.Contains(ovs, v) {
				merged = append(merged, v)
			}
		}
		out.set(k, merged)
	}
	for k, vs := range overlay {
		if _, ok := base[k]; !ok {
			out.set(k, slices.Clone(vs))
		}
	}
	return out
}

// Subtract returns minuend with subtrahend's values removed. Keys that
// subtrahend does not mention pass through unchanged. If emptyMeansAll is
// set, a "" value in subtrahend removes the whole key.
func Subtract(minuend, subtrahend Dict, emptyMeansAll bool) Dict {
	out := make(Dict, len(minuend))
	for k, vs := range minuend {
		svs, ok := subtrahend[k]
		if !ok {
			out.set(k, slices.Clone(vs))
			continue
		}
		if emptyMeansAll && slices.Contains(svs, "") {
			continue
		}
		var rest []string
		for _, v := range vs {
			if !slices.Contains(svs, v) {
				rest = append(rest, v)
			}
		}
		out.set(k, rest)
	}
	return out
}

// Select returns the part of original named by selector. Keys that selector
// does not mention are dropped. A "" value in selector takes every value of
// the key.
func Select(original, selector Dict) Dict {
	out := make(Dict, len(selector))
	for k, svs := range selector {
		ovs, ok := original[k]
		if !ok {
			continue
		}
		if slices.Contains(svs, "") {
			out.set(k, slices.Clone(ovs))
			continue
		}
		var picked []string
		for _, v := range svs {
			if slices.Contains(ovs, v) && !slices.Contains(picked, v) {
				picked = append(picked, v)
			}
		}
		out.set(k, picked)
	}
	return out
}

// set stores vs under k, pruning empty lists.
func (d Dict) set(k string, vs []string) {
	if len(vs) == 0 {
		return
	}
	d[k] = vs
}
