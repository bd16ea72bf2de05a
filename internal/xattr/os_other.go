//go:build !linux && !darwin

package xattr

// OSStore is unavailable on this platform; every call fails with
// ErrUnsupported.
type OSStore struct{}

// NewOSStore returns the store backed by the operating system.
func NewOSStore() *OSStore {
	return &OSStore{}
}

func (OSStore) List(path string) ([]string, error) {
	return nil, &Error{Op: "list", Path: path, Kind: ErrUnsupported}
}

func (OSStore) Get(path, name string) (string, error) {
	return "", &Error{Op: "get", Path: path, Name: name, Kind: ErrUnsupported}
}

func (OSStore) Set(path, name, value string) error {
	return &Error{Op: "set", Path: path, Name: name, Kind: ErrUnsupported}
}

func (OSStore) Remove(path, name string) error {
	return &Error{Op: "remove", Path: path, Name: name, Kind: ErrUnsupported}
}
