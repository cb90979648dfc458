package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Storage.Open when no object exists at path.
var ErrNotFound = errors.New("packager: object not found")

// ErrExists is returned by Storage.Put when path is already taken. Stored
// artifacts are never overwritten.
var ErrExists = errors.New("packager: object already exists")

// Storage persists artifact bytes. Paths are slash separated and relative to
// the backend root.
type Storage interface {
	// Put creates the object at path, failing with ErrExists when it is
	// already present.
	Put(ctx context.Context, path string, data []byte, mimeType string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes every object under prefix.
	Delete(ctx context.Context, prefix string) error
}

// LocalStorage stores artifacts below a root directory.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates root when missing.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("packager: local storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("packager: create storage root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Root returns the storage directory.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Put(ctx context.Context, p string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("packager: create directory: %w", err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, p)
	}
	if err != nil {
		return fmt.Errorf("packager: create %s: %w", p, err)
	}
	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(full)
		return fmt.Errorf("packager: write %s: %w", p, werr)
	}
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("packager: open %s: %w", p, err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(prefix)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("packager: delete %s: %w", prefix, err)
	}
	return nil
}

// resolve maps a storage path to a file below root and rejects paths that
// would escape it.
func (s *LocalStorage) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if clean == "/" {
		return "", fmt.Errorf("packager: invalid storage path %q", p)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
