package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePut(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/uploads")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "menu-item/abc.jpg", []byte("image bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/menu-item/abc.jpg", url)

	written, err := os.ReadFile(filepath.Join(root, "menu-item", "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), written)
}

func TestLocalStorageCreatesCategoryDirs(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/uploads")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "logo/a.png", []byte("a"), "image/png")
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "banner/b.jpg", []byte("b"), "image/jpeg")
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(root, "logo"))
	assert.DirExists(t, filepath.Join(root, "banner"))
}

func TestLocalStorageDeleteIdempotent(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/uploads")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "logo/gone.png", []byte("x"), "image/png")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "logo/gone.png"))
	assert.NoFileExists(t, filepath.Join(root, "logo", "gone.png"))

	// Second delete of the same key is still success.
	assert.NoError(t, s.Delete(context.Background(), "logo/gone.png"))
}

func TestLocalStorageName(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, s.Name())

	// Trailing slash on the base URL must not produce double slashes.
	url, err := s.Put(context.Background(), "logo/x.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/logo/x.png", url)
}
