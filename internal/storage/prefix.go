package storage

import "time"

// PrefixDB scopes a DB to one namespace so several caches can share a
// single badger directory.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB scopes inner to keys starting with prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: append([]byte(nil), prefix...)}
}

func (p *PrefixDB) key(k []byte) []byte {
	return append(append(make([]byte, 0, len(p.prefix)+len(k)), p.prefix...), k...)
}

func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(p.key(key))
}

func (p *PrefixDB) PutTTL(key, value []byte, ttl time.Duration) error {
	return p.inner.PutTTL(p.key(key), value, ttl)
}

// DropPrefix removes the keys under prefix within this namespace.
func (p *PrefixDB) DropPrefix(prefix []byte) error {
	return p.inner.DropPrefix(p.key(prefix))
}

// DeleteAll empties the namespace.
func (p *PrefixDB) DeleteAll() error {
	return p.inner.DropPrefix(p.prefix)
}

// Close leaves the inner DB open; its owner closes it.
func (p *PrefixDB) Close() error {
	return nil
}
