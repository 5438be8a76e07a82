package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerDB is the on-disk cache. Expiry is left to badger's entry TTL.
type BadgerDB struct {
	db *badger.DB
}

// NewBadger opens the cache directory at path, creating it if needed.
func NewBadger(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	switch {
	case err == nil:
		return &BadgerDB{db: db}, nil
	case isLockErr(err):
		return nil, fmt.Errorf("cache at %s is in use by another jcli: %w", path, err)
	default:
		return nil, fmt.Errorf("open cache at %s: %w", path, err)
	}
}

func isLockErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

// Get returns a copy of the value under key, or ErrNotFound once the
// entry has expired.
func (b *BadgerDB) Get(key []byte) (val []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %q: %w", key, err)
	}
	return val, nil
}

// PutTTL stores value under key for ttl.
func (b *BadgerDB) PutTTL(key, value []byte, ttl time.Duration) error {
	e := badger.NewEntry(key, value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	if err := b.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(e) }); err != nil {
		return fmt.Errorf("cache put %q: %w", key, err)
	}
	return nil
}

// DropPrefix removes a whole namespace in one pass.
func (b *BadgerDB) DropPrefix(prefix []byte) error {
	if err := b.db.DropPrefix(prefix); err != nil {
		return fmt.Errorf("cache drop %q: %w", prefix, err)
	}
	return nil
}

// Close flushes and releases the directory lock.
func (b *BadgerDB) Close() error {
	return b.db.Close()
}
