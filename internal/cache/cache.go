// Package cache persists stamped-but-unconfirmed proofs so the CLI can
// revisit them without being handed file paths again.
//
// Proofs are content-addressed: the key is the BLAKE3-256 hash of the
// serialized timestamp, bodies are zstd-compressed, and metadata lives in
// a sibling bucket. The store is a single bbolt file under the user's
// home directory.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"
	"lukechampine.com/blake3"

	"github.com/javanhut/ots-go/internal/wire"
)

// Buckets
var (
	bucketProofs = []byte("proofs") // blake3 hex -> zstd(proof bytes)
	bucketMeta   = []byte("meta")   // blake3 hex -> json Entry
)

// Entry describes one cached proof.
type Entry struct {
	Key       string    `json:"key"`
	Source    string    `json:"source"` // original .ots file path, if any
	CreatedAt time.Time `json:"created_at"`
}

// Store is the pending-proof store.
type Store struct {
	db *bbolt.DB
}

// DefaultPath returns the store location under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ots", "pending.db"), nil
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o666, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists(bucketProofs); e != nil {
			return e
		}
		if _, e := tx.CreateBucketIfNotExists(bucketMeta); e != nil {
			return e
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key returns the content address of a serialized proof.
func Key(proof []byte) string {
	sum := blake3.Sum256(proof)
	return wire.ToHex(sum[:])
}

// Put stores a serialized proof and returns its content key. Storing the
// same bytes twice is a no-op that refreshes the metadata.
func (s *Store) Put(proof []byte, source string, now time.Time) (string, error) {
	key := Key(proof)

	compressed, err := compress(proof)
	if err != nil {
		return "", err
	}
	meta, err := json.Marshal(Entry{Key: key, Source: source, CreatedAt: now})
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketProofs).Put([]byte(key), compressed); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(key), meta)
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Get retrieves a proof by its content key.
func (s *Store) Get(key string) ([]byte, error) {
	var compressed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketProofs).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("proof not found: %s", key)
		}
		compressed = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	proof, err := decompress(compressed)
	if err != nil {
		return nil, err
	}
	if Key(proof) != key {
		return nil, fmt.Errorf("cache corruption: content hash mismatch for %s", key)
	}
	return proof, nil
}

// List returns the metadata of every cached proof.
func (s *Store) List() ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a proof and its metadata.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketProofs).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Delete([]byte(key))
	})
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}
