package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrInvalidKey = errors.New("invalid cache key")
	ErrCorrupt    = errors.New("cache entry cannot be decoded")
)

// Store is the key-value substrate of the post cache. Keys are scoped by a
// namespace (one per page). Implementations must make Put atomic per key:
// a reader sees either no entry or the complete value.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock.go
type Store interface {
	Exists(ctx context.Context, namespace, key string) (bool, error)
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
