package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "http://localhost:8080/")
	ctx := context.Background()

	url, err := store.Put(ctx, "uploads/u1/a.png", "image/png", strings.NewReader("fake png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/assets/uploads/u1/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "u1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(data))

	require.NoError(t, store.Delete(ctx, "uploads/u1/a.png"))
	_, err = os.Stat(filepath.Join(dir, "uploads", "u1", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStoreRejectsEmptyBody(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "http://localhost:8080")

	_, err := store.Put(context.Background(), "uploads/u1/empty.png", "image/png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyObject)

	_, statErr := os.Stat(filepath.Join(dir, "uploads", "u1", "empty.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDiskStoreRejectsTraversalKeys(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "http://localhost:8080")
	ctx := context.Background()

	for _, key := range []string{"../escape.png", "uploads/../../etc/passwd", "", "a\\b.png"} {
		_, err := store.Put(ctx, key, "image/png", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrBadKey, key)
	}

	_, err := store.Path("../escape.png")
	assert.ErrorIs(t, err, ErrBadKey)
}

func TestDiskStorePathResolvesInsideBase(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "http://localhost:8080")

	path, err := store.Path("avatars/u1/pic")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "avatars", "u1", "pic"), path)
}
