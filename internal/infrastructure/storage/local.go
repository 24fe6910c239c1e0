package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes processed images under a root directory on disk and
// serves them through the application's /uploads static route. It is the last
// link in the fallback chain: when remote storage is down or not configured,
// uploads degrade to local persistence instead of failing.
type LocalStorage struct {
	root    string
	baseURL string // URL path prefix, e.g. "/uploads"
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage root: %w", err)
	}
	return &LocalStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Name() string {
	return BackendLocal
}

// Root returns the directory files are written under. The API server mounts
// this directory on the baseURL route.
func (s *LocalStorage) Root() string {
	return s.root
}

// Put writes the buffer to <root>/<key>. Keys contain the category as their
// first segment, so files land in per-category directories. Filenames are
// generated uuids, so concurrent uploads never collide and no locking is
// needed.
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create category dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write local file: %w", err)
	}
	return path.Join(s.baseURL, key), nil
}

// Delete removes the file. A file that is already gone counts as success.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.Remove(dst); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete local file: %w", err)
	}
	return nil
}
