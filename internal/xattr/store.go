// Package xattr provides access to per-file extended attribute stores.
package xattr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the named attribute does not exist.
	ErrNotFound = errors.New("attribute not found")
	// ErrPermission indicates the attributes cannot be read or written.
	ErrPermission = errors.New("permission denied")
	// ErrNoFile indicates the file itself does not exist.
	ErrNoFile = errors.New("no such file")
	// ErrUnsupported indicates the filesystem or platform lacks user xattrs.
	ErrUnsupported = errors.New("extended attributes not supported")
)

// Store is a key/value string store attached to each file.
type Store interface {
	List(path string) ([]string, error)
	Get(path, name string) (string, error)
	Set(path, name, value string) error
	Remove(path, name string) error
}

// Error records a failed store operation. errors.Is matches it against the
// Err* sentinels through Kind.
type Error struct {
	Op   string
	Path string
	Name string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	target := e.Path
	if e.Name != "" {
		target = e.Path + " [" + e.Name + "]"
	}
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("xattr %s %s: %v", e.Op, target, e.Kind)
	}
	return fmt.Sprintf("xattr %s %s: %v: %v", e.Op, target, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ReadAll returns every attribute of path.
func ReadAll(s Store, path string) (map[string]string, error) {
	names, err := s.List(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		v, err := s.Get(path, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
