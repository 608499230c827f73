package storage

import (
	"context"
	"errors"
	"io"
)

// Store persists uploaded objects under a key and hands back a stable
// public URL for them.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrEmptyObject = errors.New("storage: empty object")
	ErrBadKey      = errors.New("storage: invalid key")
)
