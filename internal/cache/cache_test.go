package cache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "pending.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	proof := []byte("serialized proof bytes")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	key, err := store.Put(proof, "doc.txt.ots", now)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if key != Key(proof) {
		t.Errorf("key = %s, want content address %s", key, Key(proof))
	}

	got, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, proof) {
		t.Errorf("Get = %q, want %q", got, proof)
	}
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(Key([]byte("absent"))); err == nil {
		t.Error("Get should fail for a missing key")
	}
}

func TestListAndDelete(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	keyA, err := store.Put([]byte("proof a"), "a.ots", now)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put([]byte("proof b"), "b.ots", now); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List = %d entries, want 2", len(entries))
	}

	if err := store.Delete(keyA); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	entries, err = store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Source != "b.ots" {
		t.Errorf("after delete: %+v", entries)
	}
}

func TestPutSameProofTwice(t *testing.T) {
	store := openTestStore(t)
	proof := []byte("same bytes")

	k1, err := store.Put(proof, "first.ots", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	k2, err := store.Put(proof, "second.ots", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("content keys differ: %s != %s", k1, k2)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("duplicate Put created %d entries", len(entries))
	}
}
