// Package cache implements the expiring key-value store shared by the metadata
// and link adapters. Keys are query fingerprints; entries expire lazily on read.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
	"github.com/lepinkainen/cinemabot/internal/fingerprint"
	"github.com/lepinkainen/cinemabot/internal/metrics"
)

// DefaultTTL is the expiry window for cached entries (21 days)
const DefaultTTL = 21 * 24 * time.Hour

// FetchFunc represents a function that fetches data from an external source
type FetchFunc[T any] func() (T, error)

// Entry is a cached payload together with its creation time and the query that produced it.
type Entry[T any] struct {
	CreatedAt     time.Time `json:"createdAt"`
	Payload       T         `json:"payload"`
	OriginalQuery string    `json:"originalQuery"`
}

// Store wraps a Backend with fingerprinting, TTL checks and error containment.
type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured expiry window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Get returns the entry cached for query in namespace if it exists and has not expired.
// Storage failures are logged and reported as a miss.
func Get[T any](s *Store, namespace, query string) (Entry[T], bool) {
	var zero Entry[T]
	key := fingerprint.Of(query)

	raw, found, err := s.backend.Load(namespace, key)
	if err != nil {
		slog.Warn("Cache read failed, treating as miss", "error", cberrors.NewCacheIOError(namespace, "read", err))
		metrics.CacheLookupsTotal.WithLabelValues(namespace, "error").Inc()
		return zero, false
	}
	if !found {
		slog.Debug("Cache miss", "namespace", namespace, "query", query, "key", key)
		metrics.CacheLookupsTotal.WithLabelValues(namespace, "miss").Inc()
		return zero, false
	}

	age := s.now().Sub(raw.CreatedAt)
	if age > s.ttl {
		slog.Debug("Cache expired", "namespace", namespace, "query", query, "age", age)
		metrics.CacheLookupsTotal.WithLabelValues(namespace, "expired").Inc()
		return zero, false
	}

	var payload T
	if err := json.Unmarshal(raw.Payload, &payload); err != nil {
		slog.Warn("Failed to unmarshal cached data, treating as miss", "namespace", namespace, "key", key, "error", err)
		metrics.CacheLookupsTotal.WithLabelValues(namespace, "error").Inc()
		return zero, false
	}

	slog.Debug("Cache hit", "namespace", namespace, "query", query, "key", key)
	metrics.CacheLookupsTotal.WithLabelValues(namespace, "hit").Inc()
	return Entry[T]{CreatedAt: raw.CreatedAt, Payload: payload, OriginalQuery: raw.OriginalQuery}, true
}

// Put stores payload for query in namespace, replacing any previous entry.
// It reports whether the write succeeded; failures are logged, never returned.
func Put[T any](s *Store, namespace, query string, payload T) bool {
	key := fingerprint.Of(query)

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "namespace", namespace, "key", key, "error", err)
		return false
	}

	entry := StoredEntry{
		CreatedAt:     s.now().UTC(),
		Payload:       data,
		OriginalQuery: query,
	}
	if err := s.backend.Store(namespace, key, entry); err != nil {
		slog.Warn("Failed to cache data", "error", cberrors.NewCacheIOError(namespace, "write", err))
		return false
	}

	slog.Debug("Data cached successfully", "namespace", namespace, "query", query, "key", key)
	return true
}

// GetOrFetch returns the cached payload for query or calls fetch on a miss.
// shouldCache decides whether a fetched value is stored; nil stores everything.
// The boolean result reports whether the value came from the cache.
func GetOrFetch[T any](s *Store, namespace, query string, fetch FetchFunc[T], shouldCache func(T) bool) (T, bool, error) {
	if entry, ok := Get[T](s, namespace, query); ok {
		return entry.Payload, true, nil
	}

	data, err := fetch()
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("failed to fetch data: %w", err)
	}

	if shouldCache != nil && !shouldCache(data) {
		slog.Debug("Skipping cache store per policy", "namespace", namespace, "query", query)
		return data, false, nil
	}

	Put(s, namespace, query, data)
	return data, false, nil
}

// Clear removes every entry from namespace and returns how many were dropped.
func (s *Store) Clear(namespace string) (int, error) {
	n, err := s.backend.Clear(namespace)
	if err != nil {
		return 0, cberrors.NewCacheIOError(namespace, "clear", err)
	}
	slog.Info("Cache cleared", "namespace", namespace, "entries", n)
	return n, nil
}

// Prune removes entries of namespace that are past the expiry window.
func (s *Store) Prune(namespace string) (int, error) {
	cutoff := s.now().Add(-s.ttl)
	n, err := s.backend.Prune(namespace, cutoff)
	if err != nil {
		return 0, cberrors.NewCacheIOError(namespace, "prune", err)
	}
	if n > 0 {
		slog.Info("Cleared expired cache entries", "namespace", namespace, "count", n)
	}
	return n, nil
}
