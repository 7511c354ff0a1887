package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps entries in an embedded BadgerDB under "<namespace>/<key>".
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens (or creates) a database in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return db, nil
}

func badgerKey(namespace, key string) []byte {
	return []byte(namespace + "/" + key)
}

func (s *BadgerStore) Exists(_ context.Context, namespace, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(namespace, key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get cache entry %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

func (s *BadgerStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(namespace, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

func (s *BadgerStore) Put(_ context.Context, namespace, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(namespace, key), value)
	})
	if err != nil {
		return fmt.Errorf("set cache entry %s/%s: %w", namespace, key, err)
	}
	return nil
}
