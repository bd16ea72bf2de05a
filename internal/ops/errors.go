package ops

import (
	"errors"
	"fmt"

	"github.com/ohspite/xatag/internal/tags"
)

// ValueMissingError reports a tag given without a value where one is required.
type ValueMissingError struct {
	Tag tags.Tag
}

func (e *ValueMissingError) Error() string {
	return "tag is missing value: " + tags.DisplayKey(e.Tag.Key) + tags.KeySeparator
}

// AttributeIOError reports a failed read or write of a file's attributes.
type AttributeIOError struct {
	Path string
	Op   string // "read" or "write"
	Err  error
}

func (e *AttributeIOError) Error() string {
	return fmt.Sprintf("could not %s extended attributes: %s", e.Op, e.Path)
}

func (e *AttributeIOError) Unwrap() error { return e.Err }

// PathNotFoundError reports a file that does not exist.
type PathNotFoundError struct {
	Path string
	Role string // "", "source" or "destination"
}

func (e *PathNotFoundError) Error() string {
	if e.Role == "" {
		return "path does not exist: " + e.Path
	}
	return e.Role + " path does not exist: " + e.Path
}

// KeyUnchangedWarning reports a delete that left a key as it was, which
// usually means "key" was typed where "key:" was meant.
type KeyUnchangedWarning struct {
	Path string
	Key  string
}

func (e *KeyUnchangedWarning) Error() string {
	return e.Path + ": tag key unchanged: " + tags.DisplayKey(e.Key)
}

// EmptyKeyRemovedWarning reports a key deleted because no values remained.
type EmptyKeyRemovedWarning struct {
	Path string
	Key  string
}

func (e *EmptyKeyRemovedWarning) Error() string {
	return e.Path + ": removing empty tag key: " + tags.DisplayKey(e.Key)
}

// IsDiagnostic reports whether err is a non-fatal notice rather than a failure.
func IsDiagnostic(err error) bool {
	var unchanged *KeyUnchangedWarning
	var removed *EmptyKeyRemovedWarning
	var missing *ValueMissingError
	return errors.As(err, &unchanged) || errors.As(err, &removed) || errors.As(err, &missing)
}

func readErr(path string, err error) error {
	return &AttributeIOError{Path: path, Op: "read", Err: err}
}

func writeErr(path string, err error) error {
	return &AttributeIOError{Path: path, Op: "write", Err: err}
}
