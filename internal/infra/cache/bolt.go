package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// DefaultBoltFileMode is the default file mode for the bbolt file
	DefaultBoltFileMode = 0600

	// DefaultBoltTimeout is the default timeout for opening the bbolt file
	DefaultBoltTimeout = 1 * time.Second
)

var entriesBucket = []byte("entries")

// boltEntry is the stored envelope: the payload plus its expiry.
type boltEntry struct {
	ExpiresAt time.Time `json:"expires_at"`
	Value     []byte    `json:"value"`
}

// BoltStore implements Store on an embedded bbolt database. Expiry is
// lazy: expired entries read as misses and are deleted on the next sweep.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) a bbolt-backed store at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(path, DefaultBoltFileMode, &bolt.Options{Timeout: DefaultBoltTimeout})
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Get returns the value for key and whether it was present and unexpired.
func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(entriesBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		var e boltEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("unmarshal cache entry: %w", err)
		}
		if time.Now().After(e.ExpiresAt) {
			return nil
		}
		value = e.Value
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// SetWithTTL stores value under key, expiring after ttl.
func (s *BoltStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(boltEntry{
		ExpiresAt: time.Now().Add(ttl),
		Value:     value,
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).Put([]byte(key), data)
	})
}

// Exists reports whether key is present and unexpired.
func (s *BoltStore) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := s.Get(ctx, key)
	return found, err
}

// Sweep deletes all expired entries. Intended to be run periodically by
// the worker so the file does not accumulate dead keys.
func (s *BoltStore) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		c := b.Cursor()
		now := time.Now()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e boltEntry
			if err := json.Unmarshal(v, &e); err != nil || now.After(e.ExpiresAt) {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
