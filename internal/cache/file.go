package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/orgball2608/fb-repost-bot/pkg/paths"
)

// FileStore keeps one JSON file per entry under
// <data>/<namespace>/posts/<key>.json. Presence of the file is the index.
type FileStore struct {
	paths *paths.Paths
}

var _ Store = (*FileStore)(nil)

func NewFileStore(p *paths.Paths) *FileStore {
	return &FileStore{paths: p}
}

func (s *FileStore) Exists(_ context.Context, namespace, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := os.Stat(s.paths.EntryFile(namespace, key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat cache entry %s/%s: %w", namespace, key, err)
}

func (s *FileStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.paths.EntryFile(namespace, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry %s/%s: %w", namespace, key, err)
	}
	return data, nil
}

// Put writes through a temp file and a rename so a crash never leaves a
// truncated entry that Exists would report as cached.
func (s *FileStore) Put(_ context.Context, namespace, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	path := s.paths.EntryFile(namespace, key)
	if err := WriteFileAtomic(path, value); err != nil {
		return fmt.Errorf("write cache entry %s/%s: %w", namespace, key, err)
	}
	return nil
}

// WriteFileAtomic creates parent directories as needed and replaces path with data.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
