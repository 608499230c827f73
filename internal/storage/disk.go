package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects on the local filesystem and serves them through
// the /media/assets route.
type DiskStore struct {
	BasePath      string
	PublicBaseURL string
}

func NewDiskStore(basePath, publicBaseURL string) *DiskStore {
	return &DiskStore{
		BasePath:      basePath,
		PublicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (s *DiskStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	size, err := io.Copy(file, body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	if size == 0 {
		_ = os.Remove(path)
		return "", ErrEmptyObject
	}
	return s.URL(key), nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *DiskStore) URL(key string) string {
	return s.PublicBaseURL + "/media/assets/" + key
}

// Path maps a key back to its location on disk for serving. Keys with
// traversal segments are rejected.
func (s *DiskStore) Path(key string) (string, error) {
	return s.resolve(key)
}

func (s *DiskStore) resolve(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", ErrBadKey
	}
	return filepath.Join(s.BasePath, filepath.FromSlash(key)), nil
}
