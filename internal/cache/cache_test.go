package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lepinkainen/cinemabot/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// backends returns a fresh instance of every backend kind rooted in t.TempDir().
func backends(t *testing.T) map[string]Backend {
	t.Helper()

	fileBackend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	boltBackend, err := NewBoltBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { boltBackend.Close() })

	return map[string]Backend{
		BackendJSON: fileBackend,
		BackendBolt: boltBackend,
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			store := New(backend, WithClock(clock.now))

			require.True(t, Put(store, NamespaceMovies, "The Matrix", testPayload{Name: "Матрица", Value: 301}))

			entry, ok := Get[testPayload](store, NamespaceMovies, "the   matrix ")
			require.True(t, ok)
			assert.Equal(t, "Матрица", entry.Payload.Name)
			assert.Equal(t, 301, entry.Payload.Value)
			assert.Equal(t, "The Matrix", entry.OriginalQuery)
			assert.True(t, entry.CreatedAt.Equal(clock.t))
		})
	}
}

func TestStore_Miss(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend)

			_, ok := Get[testPayload](store, NamespaceLinks, "nothing here")
			assert.False(t, ok)
		})
	}
}

func TestStore_ExpiryBoundary(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			store := New(backend, WithClock(clock.now))
			require.True(t, Put(store, NamespaceMovies, "venom", testPayload{Name: "Venom"}))

			clock.advance(DefaultTTL - time.Second)
			_, ok := Get[testPayload](store, NamespaceMovies, "venom")
			assert.True(t, ok, "entry should be valid just before the window closes")

			clock.advance(time.Second)
			_, ok = Get[testPayload](store, NamespaceMovies, "venom")
			assert.True(t, ok, "entry should be valid exactly at the window")

			clock.advance(time.Second)
			_, ok = Get[testPayload](store, NamespaceMovies, "venom")
			assert.False(t, ok, "entry should be expired after the window")

			raw, found, err := backend.Load(NamespaceMovies, fingerprint.Of("venom"))
			require.NoError(t, err)
			assert.True(t, found, "expired entries stay stored until overwritten or pruned")
			assert.Equal(t, "venom", raw.OriginalQuery)
		})
	}
}

func TestStore_PutReplaces(t *testing.T) {
	clock := newClock()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	store := New(backend, WithClock(clock.now))

	require.True(t, Put(store, NamespaceMovies, "venom", testPayload{Value: 1}))
	clock.advance(time.Hour)
	require.True(t, Put(store, NamespaceMovies, "VENOM", testPayload{Value: 2}))

	entry, ok := Get[testPayload](store, NamespaceMovies, "venom")
	require.True(t, ok)
	assert.Equal(t, 2, entry.Payload.Value)
	assert.True(t, entry.CreatedAt.Equal(clock.t))
	assert.Equal(t, "VENOM", entry.OriginalQuery)
}

func TestStore_NamespacesAreIndependent(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend)
			require.True(t, Put(store, NamespaceMovies, "venom", testPayload{Name: "movie"}))

			_, ok := Get[testPayload](store, NamespaceLinks, "venom")
			assert.False(t, ok)

			n, err := store.Clear(NamespaceLinks)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			_, ok = Get[testPayload](store, NamespaceMovies, "venom")
			assert.True(t, ok)
		})
	}
}

func TestStore_ClearAndPrune(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			store := New(backend, WithClock(clock.now), WithTTL(time.Hour))

			require.True(t, Put(store, NamespaceLinks, "old", testPayload{}))
			clock.advance(2 * time.Hour)
			require.True(t, Put(store, NamespaceLinks, "new", testPayload{}))

			n, err := store.Prune(NamespaceLinks)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, ok := Get[testPayload](store, NamespaceLinks, "new")
			assert.True(t, ok)

			n, err = store.Clear(NamespaceLinks)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, ok = Get[testPayload](store, NamespaceLinks, "new")
			assert.False(t, ok)
		})
	}
}

func TestStore_InvalidNamespace(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend)

			assert.False(t, Put(store, "bogus", "q", testPayload{}))
			_, ok := Get[testPayload](store, "bogus", "q")
			assert.False(t, ok)

			_, err := store.Clear("bogus")
			assert.Error(t, err)
		})
	}
}

func TestFileBackend_InitializesFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFileBackend(dir)
	require.NoError(t, err)

	for _, name := range []string{"movie_data.json", "links.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	}
}

func TestFileBackend_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	store := New(backend)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "movie_data.json"), []byte("{not json"), 0o644))

	_, ok := Get[testPayload](store, NamespaceMovies, "venom")
	assert.False(t, ok)

	// Writing recovers the document.
	require.True(t, Put(store, NamespaceMovies, "venom", testPayload{Name: "Venom"}))
	entry, ok := Get[testPayload](store, NamespaceMovies, "venom")
	require.True(t, ok)
	assert.Equal(t, "Venom", entry.Payload.Name)
}

func TestFileBackend_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.True(t, Put(New(backend), NamespaceLinks, "venom", []string{"a", "b"}))

	reopened, err := NewFileBackend(dir)
	require.NoError(t, err)
	entry, ok := Get[[]string](New(reopened), NamespaceLinks, "venom")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, entry.Payload)
}

func TestGetOrFetch(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	store := New(backend)

	calls := 0
	fetch := func() (testPayload, error) {
		calls++
		return testPayload{Name: "fetched"}, nil
	}

	got, fromCache, err := GetOrFetch(store, NamespaceMovies, "q", fetch, nil)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "fetched", got.Name)

	got, fromCache, err = GetOrFetch(store, NamespaceMovies, "q", fetch, nil)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, "fetched", got.Name)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_PolicySkipsEmpty(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	store := New(backend)

	calls := 0
	fetch := func() ([]string, error) {
		calls++
		return nil, nil
	}
	nonEmpty := func(v []string) bool { return len(v) > 0 }

	for i := 0; i < 2; i++ {
		_, fromCache, err := GetOrFetch(store, NamespaceLinks, "q", fetch, nonEmpty)
		require.NoError(t, err)
		assert.False(t, fromCache)
	}
	assert.Equal(t, 2, calls)
}

func TestGetOrFetch_FetchError(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	store := New(backend)

	_, _, err = GetOrFetch(store, NamespaceMovies, "q", func() (testPayload, error) {
		return testPayload{}, errors.New("boom")
	}, nil)
	require.Error(t, err)

	_, ok := Get[testPayload](store, NamespaceMovies, "q")
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	store, err := Open(BackendBolt, t.TempDir(), WithTTL(time.Minute))
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, time.Minute, store.TTL())

	_, err = Open("redis", t.TempDir())
	assert.Error(t, err)
}
