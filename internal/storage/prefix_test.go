package storage

import (
	"errors"
	"testing"
	"time"
)

func TestPrefixDB_Namespaces(t *testing.T) {
	inner := NewMemory()
	registry := NewPrefixDB(inner, []byte("registry/"))
	snapshots := NewPrefixDB(inner, []byte("snapshot/"))

	if err := registry.PutTTL([]byte("finney"), []byte("a"), 0); err != nil {
		t.Fatalf("PutTTL: %v", err)
	}
	if err := snapshots.PutTTL([]byte("finney"), []byte("b"), 0); err != nil {
		t.Fatalf("PutTTL: %v", err)
	}

	got, err := registry.Get([]byte("finney"))
	if err != nil || string(got) != "a" {
		t.Fatalf("registry Get = %q, %v", got, err)
	}
	got, err = snapshots.Get([]byte("finney"))
	if err != nil || string(got) != "b" {
		t.Fatalf("snapshot Get = %q, %v", got, err)
	}

	raw, err := inner.Get([]byte("registry/finney"))
	if err != nil || string(raw) != "a" {
		t.Fatalf("inner Get = %q, %v", raw, err)
	}
}

func TestPrefixDB_PutTTL(t *testing.T) {
	inner := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	inner.now = func() time.Time { return now }
	db := NewPrefixDB(inner, []byte("registry/"))

	db.PutTTL([]byte("k"), []byte("v"), time.Second)
	if _, err := db.Get([]byte("k")); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}
	now = now.Add(time.Second)
	if _, err := db.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestPrefixDB_DropPrefixStaysInNamespace(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("registry/"))
	db.PutTTL([]byte("test/a"), []byte("1"), 0)
	db.PutTTL([]byte("finney/b"), []byte("2"), 0)
	inner.PutTTL([]byte("test/outside"), []byte("3"), 0)

	if err := db.DropPrefix([]byte("test/")); err != nil {
		t.Fatalf("DropPrefix: %v", err)
	}
	if _, err := db.Get([]byte("test/a")); !errors.Is(err, ErrNotFound) {
		t.Error("test/a survived DropPrefix")
	}
	if _, err := db.Get([]byte("finney/b")); err != nil {
		t.Errorf("finney/b dropped: %v", err)
	}
	if _, err := inner.Get([]byte("test/outside")); err != nil {
		t.Errorf("DropPrefix reached outside the namespace: %v", err)
	}
}

func TestPrefixDB_DeleteAll(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("registry/"))
	db.PutTTL([]byte("a"), []byte("1"), 0)
	db.PutTTL([]byte("b"), []byte("2"), 0)
	inner.PutTTL([]byte("keep"), []byte("3"), 0)

	if err := db.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if _, err := db.Get([]byte("a")); !errors.Is(err, ErrNotFound) {
		t.Error("a survived DeleteAll")
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := inner.Get([]byte("keep")); err != nil {
		t.Error("DeleteAll or Close affected a key outside the namespace")
	}
}
