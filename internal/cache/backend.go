package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// NamespaceMovies holds normalized movie records.
	NamespaceMovies = "movies"
	// NamespaceLinks holds ordered link candidate lists.
	NamespaceLinks = "links"
)

// Namespaces lists every namespace a backend must provision.
var Namespaces = []string{NamespaceMovies, NamespaceLinks}

// ValidNamespaces is the whitelist of namespace names accepted by backends.
var ValidNamespaces = map[string]bool{
	NamespaceMovies: true,
	NamespaceLinks:  true,
}

// StoredEntry is the serialized form of an Entry as kept by backends.
type StoredEntry struct {
	CreatedAt     time.Time       `json:"createdAt"`
	Payload       json.RawMessage `json:"payload"`
	OriginalQuery string          `json:"originalQuery"`
}

// Backend persists stored entries keyed by fingerprint, one logical table per namespace.
type Backend interface {
	Load(namespace, key string) (StoredEntry, bool, error)
	Store(namespace, key string, entry StoredEntry) error
	Clear(namespace string) (int, error)
	Prune(namespace string, cutoff time.Time) (int, error)
	Close() error
}

func validateNamespace(namespace string) error {
	if !ValidNamespaces[namespace] {
		return fmt.Errorf("invalid cache namespace: %s", namespace)
	}
	return nil
}

const (
	// BackendJSON selects FileBackend.
	BackendJSON = "json"
	// BackendBolt selects BoltBackend.
	BackendBolt = "bolt"
)

// Open creates a Store in dir using the named backend kind.
func Open(kind, dir string, opts ...Option) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch kind {
	case "", BackendJSON:
		backend, err = NewFileBackend(dir)
	case BackendBolt:
		backend, err = NewBoltBackend(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", kind)
	}
	if err != nil {
		return nil, err
	}
	return New(backend, opts...), nil
}
