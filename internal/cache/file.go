package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// fileNames maps namespaces to their JSON documents inside the cache directory.
var fileNames = map[string]string{
	NamespaceMovies: "movie_data.json",
	NamespaceLinks:  "links.json",
}

// FileBackend keeps each namespace as a single JSON object keyed by fingerprint.
// Writes are serialized in-process with a mutex and across processes with a lock file.
type FileBackend struct {
	dir   string
	mu    sync.RWMutex
	locks map[string]*flock.Flock
}

// NewFileBackend creates dir and an empty document per namespace if missing.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	b := &FileBackend{dir: dir, locks: make(map[string]*flock.Flock, len(Namespaces))}
	for _, ns := range Namespaces {
		path := b.path(ns)
		b.locks[ns] = flock.New(path + ".lock")

		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
				return nil, fmt.Errorf("initialize cache file %s: %w", path, err)
			}
			slog.Debug("Initialized cache file", "path", path)
		}
	}
	return b, nil
}

func (b *FileBackend) path(namespace string) string {
	return filepath.Join(b.dir, fileNames[namespace])
}

// Load returns the entry stored under key, reading the namespace document from disk.
func (b *FileBackend) Load(namespace, key string) (StoredEntry, bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return StoredEntry{}, false, err
	}

	// Writers replace the document by rename, so readers never see a partial file.
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries, err := b.read(namespace)
	if err != nil {
		return StoredEntry{}, false, err
	}
	entry, ok := entries[key]
	return entry, ok, nil
}

// Store writes entry under key, replacing any previous one. A corrupt document is replaced.
func (b *FileBackend) Store(namespace, key string, entry StoredEntry) error {
	return b.update(namespace, func(entries map[string]StoredEntry) int {
		entries[key] = entry
		return 1
	})
}

// Clear empties the namespace document.
func (b *FileBackend) Clear(namespace string) (int, error) {
	var removed int
	err := b.update(namespace, func(entries map[string]StoredEntry) int {
		removed = len(entries)
		for k := range entries {
			delete(entries, k)
		}
		return removed
	})
	return removed, err
}

// Prune drops entries created before cutoff.
func (b *FileBackend) Prune(namespace string, cutoff time.Time) (int, error) {
	var removed int
	err := b.update(namespace, func(entries map[string]StoredEntry) int {
		for k, e := range entries {
			if e.CreatedAt.Before(cutoff) {
				delete(entries, k)
				removed++
			}
		}
		return removed
	})
	return removed, err
}

// Close is a no-op; documents are written through on every change.
func (b *FileBackend) Close() error {
	return nil
}

// update runs mutate over the namespace document under both locks and saves it
// when mutate reports at least one change.
func (b *FileBackend) update(namespace string, mutate func(map[string]StoredEntry) int) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lock := b.locks[namespace]
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	defer lock.Unlock()

	entries, err := b.read(namespace)
	if err != nil {
		slog.Warn("Discarding unreadable cache file", "namespace", namespace, "error", err)
		entries = make(map[string]StoredEntry)
	}

	if mutate(entries) == 0 && err == nil {
		return nil
	}
	return b.save(namespace, entries)
}

func (b *FileBackend) read(namespace string) (map[string]StoredEntry, error) {
	data, err := os.ReadFile(b.path(namespace))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]StoredEntry), nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	entries := make(map[string]StoredEntry)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse cache file: %w", err)
	}
	return entries, nil
}

// save writes the namespace document atomically via a temp file.
func (b *FileBackend) save(namespace string, entries map[string]StoredEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	path := b.path(namespace)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
