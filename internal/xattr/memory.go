package xattr

import (
	"sort"
)

// MemStore is an in-memory Store keyed by path. Paths must be created with
// Touch before use. It is used by tests and dry runs.
type MemStore struct {
	files  map[string]map[string]string
	denied map[string]bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		files:  make(map[string]map[string]string),
		denied: make(map[string]bool),
	}
}

// Touch creates path with the given attributes, replacing any existing ones.
func (m *MemStore) Touch(path string, attrs map[string]string) {
	a := make(map[string]string, len(attrs))
	for k, v := range attrs {
		a[k] = v
	}
	m.files[path] = a
}

// Deny makes every operation on path fail with ErrPermission.
func (m *MemStore) Deny(path string) {
	m.denied[path] = true
}

// Exists reports whether path was created with Touch.
func (m *MemStore) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

// Attrs returns a copy of path's attributes.
func (m *MemStore) Attrs(path string) map[string]string {
	out := make(map[string]string, len(m.files[path]))
	for k, v := range m.files[path] {
		out[k] = v
	}
	return out
}

func (m *MemStore) file(op, path, name string) (map[string]string, error) {
	if m.denied[path] {
		return nil, &Error{Op: op, Path: path, Name: name, Kind: ErrPermission}
	}
	attrs, ok := m.files[path]
	if !ok {
		return nil, &Error{Op: op, Path: path, Name: name, Kind: ErrNoFile}
	}
	return attrs, nil
}

func (m *MemStore) List(path string) ([]string, error) {
	attrs, err := m.file("list", path, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemStore) Get(path, name string) (string, error) {
	attrs, err := m.file("get", path, name)
	if err != nil {
		return "", err
	}
	v, ok := attrs[name]
	if !ok {
		return "", &Error{Op: "get", Path: path, Name: name, Kind: ErrNotFound}
	}
	return v, nil
}

func (m *MemStore) Set(path, name, value string) error {
	attrs, err := m.file("set", path, name)
	if err != nil {
		return err
	}
	attrs[name] = value
	return nil
}

func (m *MemStore) Remove(path, name string) error {
	attrs, err := m.file("remove", path, name)
	if err != nil {
		return err
	}
	if _, ok := attrs[name]; !ok {
		return &Error{Op: "remove", Path: path, Name: name, Kind: ErrNotFound}
	}
	delete(attrs, name)
	return nil
}
