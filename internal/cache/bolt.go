package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltFileName is the database file created inside the cache directory.
const BoltFileName = "cache.db"

// BoltBackend stores each namespace in its own bucket of a single bbolt database.
type BoltBackend struct {
	db *bolt.DB
}

// NewBoltBackend opens (or creates) the database in dir and provisions one bucket per namespace.
func NewBoltBackend(dir string) (*BoltBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, BoltFileName), 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, ns := range Namespaces {
			if _, err := tx.CreateBucketIfNotExists([]byte(ns)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltBackend{db: db}, nil
}

// Load returns the entry stored under key.
func (b *BoltBackend) Load(namespace, key string) (StoredEntry, bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return StoredEntry{}, false, err
	}

	var (
		entry StoredEntry
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(namespace)).Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("parse cache entry: %w", err)
		}
		found = true
		return nil
	})
	return entry, found, err
}

// Store writes entry under key.
func (b *BoltBackend) Store(namespace, key string, entry StoredEntry) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(namespace)).Put([]byte(key), data)
	})
}

// Clear recreates the namespace bucket.
func (b *BoltBackend) Clear(namespace string) (int, error) {
	if err := validateNamespace(namespace); err != nil {
		return 0, err
	}

	var removed int
	err := b.db.Update(func(tx *bolt.Tx) error {
		name := []byte(namespace)
		removed = tx.Bucket(name).Stats().KeyN
		if err := tx.DeleteBucket(name); err != nil {
			return err
		}
		_, err := tx.CreateBucket(name)
		return err
	})
	return removed, err
}

// Prune deletes entries created before cutoff. Unreadable entries are deleted too.
func (b *BoltBackend) Prune(namespace string, cutoff time.Time) (int, error) {
	if err := validateNamespace(namespace); err != nil {
		return 0, err
	}

	var removed int
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))

		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var entry StoredEntry
			if err := json.Unmarshal(v, &entry); err != nil || entry.CreatedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Close closes the database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
