//go:build linux || darwin

package xattr

import (
	"bytes"
	"errors"

	"golang.org/x/sys/unix"
)

// OSStore reads and writes the extended attributes of real files. Symlinks
// are followed.
type OSStore struct{}

// NewOSStore returns the store backed by the operating system.
func NewOSStore() *OSStore {
	return &OSStore{}
}

func (OSStore) List(path string) ([]string, error) {
	buf, err := readSized(func(dest []byte) (int, error) {
		return unix.Listxattr(path, dest)
	})
	if err != nil {
		return nil, wrapErrno("list", path, "", err)
	}

	var names []string
	for _, name := range bytes.Split(buf, []byte{0}) {
		if len(name) > 0 {
			names = append(names, string(name))
		}
	}
	return names, nil
}

func (OSStore) Get(path, name string) (string, error) {
	buf, err := readSized(func(dest []byte) (int, error) {
		return unix.Getxattr(path, name, dest)
	})
	if err != nil {
		return "", wrapErrno("get", path, name, err)
	}
	return string(buf), nil
}

func (OSStore) Set(path, name, value string) error {
	if err := unix.Setxattr(path, name, []byte(value), 0); err != nil {
		return wrapErrno("set", path, name, err)
	}
	return nil
}

func (OSStore) Remove(path, name string) error {
	if err := unix.Removexattr(path, name); err != nil {
		return wrapErrno("remove", path, name, err)
	}
	return nil
}

// readSized calls fn once to learn the size, then again with a buffer,
// retrying if the attribute grew in between.
func readSized(fn func(dest []byte) (int, error)) ([]byte, error) {
	for {
		size, err := fn(nil)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return nil, nil
		}
		buf := make([]byte, size)
		n, err := fn(buf)
		if errors.Is(err, unix.ERANGE) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	}
}

func wrapErrno(op, path, name string, err error) error {
	kind := err
	switch {
	case errors.Is(err, errNoAttr):
		kind = ErrNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EROFS):
		kind = ErrPermission
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENOTDIR):
		kind = ErrNoFile
	case errors.Is(err, unix.ENOTSUP), errors.Is(err, unix.EOPNOTSUPP):
		kind = ErrUnsupported
	}
	return &Error{Op: op, Path: path, Name: name, Kind: kind, Err: err}
}
