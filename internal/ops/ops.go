// Package ops applies tag mutations to files through an attribute store.
//
// The single-key operations (Add, Set, Delete) only read the attributes of
// keys they touch. Whole-file operations (Read, DeleteAll, complement
// delete, Copy) list every attribute.
package ops

import (
	"errors"

	"github.com/ohspite/xatag/internal/codec"
	"github.com/ohspite/xatag/internal/tags"
	"github.com/ohspite/xatag/internal/xattr"
)

// Reporter receives non-fatal problems and diagnostics.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error)

// Report calls f(err).
func (f ReporterFunc) Report(err error) { f(err) }

// Operator performs tag operations on files.
type Operator struct {
	Store    xattr.Store
	Codec    codec.Codec
	Reporter Reporter
}

// New returns an Operator. A nil reporter discards reports.
func New(store xattr.Store, c codec.Codec, r Reporter) *Operator {
	return &Operator{Store: store, Codec: c, Reporter: r}
}

// DeleteOptions controls Delete.
type DeleteOptions struct {
	// Complement deletes everything except the given tags.
	Complement bool
	// Quiet suppresses the unchanged/empty key diagnostics.
	Quiet bool
}

// SubsetOptions picks part of a dict before copying or printing.
type SubsetOptions struct {
	// Selector names the tags to keep. An empty selector keeps everything.
	Selector tags.Dict
	// Complement keeps everything except Selector instead.
	Complement bool
}

func (o *Operator) report(err error) {
	if o.Reporter != nil && err != nil {
		o.Reporter.Report(err)
	}
}

// get returns the raw attribute, or "" if it does not exist.
func (o *Operator) get(path, name string) (string, bool, error) {
	v, err := o.Store.Get(path, name)
	if errors.Is(err, xattr.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, readErr(path, err)
	}
	return v, true, nil
}

func (o *Operator) remove(path, name string) error {
	err := o.Store.Remove(path, name)
	if err != nil && !errors.Is(err, xattr.ErrNotFound) {
		return writeErr(path, err)
	}
	return nil
}

// write stores raw under name, removing the attribute when raw is empty.
func (o *Operator) write(path, name, raw string) error {
	if raw == "" {
		return o.remove(path, name)
	}
	if err := o.Store.Set(path, name, raw); err != nil {
		return writeErr(path, err)
	}
	return nil
}

// Read returns every managed tag of path.
func (o *Operator) Read(path string) (tags.Dict, error) {
	names, err := o.Store.List(path)
	if err != nil {
		return nil, readErr(path, err)
	}
	attrs := make(map[string]string)
	for _, name := range names {
		if !o.Codec.IsManaged(name) {
			continue
		}
		raw, ok, err := o.get(path, name)
		if err != nil {
			return nil, err
		}
		if ok {
			attrs[name] = raw
		}
	}
	return o.Codec.Decode(attrs), nil
}

// Keys returns the tag keys present on path.
func (o *Operator) Keys(path string) ([]string, error) {
	names, err := o.Store.List(path)
	if err != nil {
		return nil, readErr(path, err)
	}
	var keys []string
	for _, name := range names {
		if o.Codec.IsManaged(name) {
			keys = append(keys, o.Codec.Key(name))
		}
	}
	return keys, nil
}

// Add unions the given values into the stored values of each key. A key
// given only with the wildcard value is reported and skipped.
func (o *Operator) Add(path string, ts []tags.Tag) error {
	d := tags.FromTags(ts)
	for _, key := range d.Keys() {
		var values []string
		for _, v := range d[key] {
			if v == "" {
				o.report(&ValueMissingError{Tag: tags.Tag{Key: key}})
				continue
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}

		name := o.Codec.AttrName(key)
		current, _, err := o.get(path, name)
		if err != nil {
			return err
		}
		if err := o.write(path, name, o.Codec.AddValues(current, values)); err != nil {
			return err
		}
	}
	return nil
}

// Set replaces the values of every key mentioned in ts. A key whose values
// reduce to nothing is removed. Other keys are untouched.
func (o *Operator) Set(path string, ts []tags.Tag) error {
	return o.SetDict(path, tags.FromTags(ts))
}

// SetDict is Set for an already grouped dict.
func (o *Operator) SetDict(path string, d tags.Dict) error {
	for _, key := range d.Keys() {
		name := o.Codec.AttrName(key)
		if err := o.write(path, name, o.Codec.EncodeValue(d[key])); err != nil {
			return err
		}
	}
	return nil
}

// SetAll makes ts the complete tag set of path.
func (o *Operator) SetAll(path string, ts []tags.Tag) error {
	if err := o.DeleteAll(path); err != nil {
		return err
	}
	return o.Set(path, ts)
}

// DeleteAll removes every managed attribute, leaving others alone.
func (o *Operator) DeleteAll(path string) error {
	names, err := o.Store.List(path)
	if err != nil {
		return readErr(path, err)
	}
	for _, name := range names {
		if !o.Codec.IsManaged(name) {
			continue
		}
		if err := o.remove(path, name); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the given tags from path. A wildcard value removes the
// whole key. With opts.Complement it keeps only the given tags instead.
func (o *Operator) Delete(path string, ts []tags.Tag, opts DeleteOptions) error {
	if opts.Complement {
		return o.deleteOthers(path, tags.FromTags(ts), opts.Quiet)
	}
	return o.deleteThese(path, tags.FromTags(ts), opts.Quiet)
}

func (o *Operator) deleteThese(path string, d tags.Dict, quiet bool) error {
	for _, key := range d.Keys() {
		values := d[key]
		name := o.Codec.AttrName(key)
		current, ok, err := o.get(path, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if d.HasWildcard(key) {
			if err := o.remove(path, name); err != nil {
				return err
			}
			continue
		}

		updated := o.Codec.RemoveValues(current, values, false)
		if updated == o.Codec.Canonical(current) && !quiet {
			o.report(&KeyUnchangedWarning{Path: path, Key: key})
		}
		if updated == "" && !quiet {
			o.report(&EmptyKeyRemovedWarning{Path: path, Key: key})
		}
		if err := o.write(path, name, updated); err != nil {
			return err
		}
	}
	return nil
}

func (o *Operator) deleteOthers(path string, keep tags.Dict, quiet bool) error {
	names, err := o.Store.List(path)
	if err != nil {
		return readErr(path, err)
	}
	for _, name := range names {
		if !o.Codec.IsManaged(name) {
			continue
		}
		key := o.Codec.Key(name)
		values, mentioned := keep[key]
		if !mentioned {
			if err := o.remove(path, name); err != nil {
				return err
			}
			continue
		}

		current, ok, err := o.get(path, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		updated := o.Codec.RemoveValues(current, values, true)
		if updated == "" && !quiet {
			o.report(&EmptyKeyRemovedWarning{Path: path, Key: key})
		}
		if err := o.write(path, name, updated); err != nil {
			return err
		}
	}
	return nil
}

// Subset applies opts to d.
func Subset(d tags.Dict, opts SubsetOptions) tags.Dict {
	if len(opts.Selector) == 0 {
		return d
	}
	if opts.Complement {
		return tags.Subtract(d, opts.Selector, true)
	}
	return tags.Select(d, opts.Selector)
}

// Copy merges the selected part of source into dest's existing tags.
func (o *Operator) Copy(source tags.Dict, dest string, opts SubsetOptions) error {
	current, err := o.Read(dest)
	if err != nil {
		return err
	}
	return o.SetDict(dest, tags.Merge(Subset(source, opts), current))
}

// CopyOver replaces dest's tags with the selected part of source.
func (o *Operator) CopyOver(source tags.Dict, dest string, opts SubsetOptions) error {
	if err := o.DeleteAll(dest); err != nil {
		return err
	}
	return o.Copy(source, dest, opts)
}
