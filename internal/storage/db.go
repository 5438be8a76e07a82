// Package storage provides the key-value store behind the client's local
// caches.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("key not found")

// DB is a key-value store whose entries may expire.
type DB interface {
	Get(key []byte) ([]byte, error)
	// PutTTL stores value under key. It expires after ttl; a non-positive
	// ttl never expires.
	PutTTL(key, value []byte, ttl time.Duration) error
	// DropPrefix removes every key starting with prefix.
	DropPrefix(prefix []byte) error
	Close() error
}
