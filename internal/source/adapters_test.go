package source

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/cinemabot/internal/cache"
	"github.com/lepinkainen/cinemabot/internal/movie"
)

type fakeCatalog struct {
	mu      sync.Mutex
	docs    []movie.CatalogDoc
	err     error
	delay   time.Duration
	queries []string
}

func (f *fakeCatalog) Name() string { return "fake-catalog" }

func (f *fakeCatalog) SearchCatalog(ctx context.Context, query string) ([]movie.CatalogDoc, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.docs, f.err
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeVideos struct {
	mu      sync.Mutex
	docs    []movie.VideoDoc
	err     error
	queries []string
}

func (f *fakeVideos) Name() string { return "fake-videos" }

func (f *fakeVideos) SearchVideos(_ context.Context, query string) ([]movie.VideoDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.docs, f.err
}

func (f *fakeVideos) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(cache.BackendJSON, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFetchMetadata_SelectsAndCaches(t *testing.T) {
	catalog := &fakeCatalog{docs: []movie.CatalogDoc{
		{ID: "1", Title: "Venom 2"},
		{ID: "2", Title: "Venom", Year: 2018, Rating: movie.Float(6.7), Genres: []string{"боевик", " "}},
		{ID: "3", Title: "Venom: Let There Be Carnage"},
	}}
	store := newStore(t)
	adapter := NewMetadataAdapter(catalog, store)

	rec := adapter.FetchMetadata(context.Background(), "venom")
	assert.Equal(t, "2", rec.CatalogID)
	assert.Equal(t, "Venom", rec.Title)
	assert.Equal(t, "fake-catalog", rec.Source)
	assert.Equal(t, 2018, rec.Year)
	assert.Equal(t, []string{"боевик"}, rec.Genres)

	cached, ok := cache.Get[movie.Record](store, cache.NamespaceMovies, "VENOM ")
	require.True(t, ok)
	assert.Equal(t, rec, cached.Payload)

	again := adapter.FetchMetadata(context.Background(), " Venom")
	assert.Equal(t, rec, again)
	assert.Equal(t, 1, catalog.calls(), "second lookup should be served from cache")
}

func TestFetchMetadata_FailuresYieldEmptyRecord(t *testing.T) {
	tests := []struct {
		name    string
		catalog *fakeCatalog
	}{
		{"error", &fakeCatalog{err: errors.New("connection refused")}},
		{"no results", &fakeCatalog{}},
		{"no identity", &fakeCatalog{docs: []movie.CatalogDoc{{Description: "nameless"}}}},
		{"timeout", &fakeCatalog{delay: time.Second, docs: []movie.CatalogDoc{{ID: "1", Title: "Late"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			adapter := NewMetadataAdapter(tt.catalog, store, WithMetadataTimeout(20*time.Millisecond))

			rec := adapter.FetchMetadata(context.Background(), "venom")
			assert.True(t, rec.IsEmpty())

			_, ok := cache.Get[movie.Record](store, cache.NamespaceMovies, "venom")
			assert.False(t, ok)
		})
	}
}

func TestFetchMetadata_TitleOnlyIsNotCached(t *testing.T) {
	catalog := &fakeCatalog{docs: []movie.CatalogDoc{{Title: "Venom"}}}
	store := newStore(t)

	rec := NewMetadataAdapter(catalog, store).FetchMetadata(context.Background(), "venom")
	assert.Equal(t, "Venom", rec.Title)
	assert.False(t, rec.HasCatalogID())

	_, ok := cache.Get[movie.Record](store, cache.NamespaceMovies, "venom")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	rec := normalize("kinopoisk", movie.CatalogDoc{ID: "301", Rating: movie.Float(11)})
	assert.Equal(t, movie.NoTitle, rec.Title)
	assert.Nil(t, rec.Rating, "out-of-range rating is dropped")

	assert.True(t, normalize("kinopoisk", movie.CatalogDoc{}).IsEmpty())
}

func TestFetchLinks_FreshThenCached(t *testing.T) {
	videos := &fakeVideos{docs: []movie.VideoDoc{
		{Title: "Матрица (1999) полный фильм", URL: "https://rutube.ru/video/a/"},
		{Title: "no url"},
		{Title: "Матрица трейлер", URL: "rutube.ru/video/b/"},
		{Title: "Матрица обзор", URL: "//rutube.ru/video/c/"},
		{Title: "fourth", URL: "https://rutube.ru/video/d/"},
	}}
	store := newStore(t)
	adapter := NewLinkAdapter(videos, store)

	links := adapter.FetchLinks(context.Background(), "матрица")
	require.Len(t, links, 3)
	assert.Equal(t, []string{"матрица фильм"}, videos.queries)
	assert.Equal(t, "https://rutube.ru/video/a/", links[0].URL)
	assert.Equal(t, "https://rutube.ru/video/b/", links[1].URL)
	assert.Equal(t, "https://rutube.ru/video/c/", links[2].URL)
	for _, l := range links {
		assert.Equal(t, movie.OriginFresh, l.Origin)
	}

	cached := adapter.FetchLinks(context.Background(), "Матрица")
	require.Len(t, cached, 3)
	for i, l := range cached {
		assert.Equal(t, movie.OriginFromCache, l.Origin)
		assert.Equal(t, links[i].URL, l.URL)
	}
	assert.Equal(t, 1, videos.calls())
}

func TestFetchLinks_FailureIsNotCached(t *testing.T) {
	videos := &fakeVideos{err: errors.New("503")}
	store := newStore(t)
	adapter := NewLinkAdapter(videos, store)

	assert.Empty(t, adapter.FetchLinks(context.Background(), "venom"))
	assert.Empty(t, adapter.FetchLinks(context.Background(), "venom"))
	assert.Equal(t, 2, videos.calls(), "a failed search must be retried on the next request")

	videos.mu.Lock()
	videos.err = nil
	videos.docs = []movie.VideoDoc{{Title: "Venom", URL: "https://rutube.ru/video/v/"}}
	videos.mu.Unlock()

	links := adapter.FetchLinks(context.Background(), "venom")
	require.Len(t, links, 1)
	assert.Equal(t, movie.OriginFresh, links[0].Origin)
}

func TestFetchLinks_EmptyIsNotCached(t *testing.T) {
	videos := &fakeVideos{docs: []movie.VideoDoc{{Title: "no url"}}}
	adapter := NewLinkAdapter(videos, newStore(t), WithQuerySuffix(""), WithLinkLimit(5))

	assert.Empty(t, adapter.FetchLinks(context.Background(), "venom"))
	assert.Empty(t, adapter.FetchLinks(context.Background(), "venom"))
	assert.Equal(t, []string{"venom", "venom"}, videos.queries)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short", 10))
	assert.Equal(t, "Video", truncateLabel("  ", 10))

	long := strings.Repeat("я", 70)
	got := truncateLabel(long, 60)
	assert.Equal(t, 60, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://rutube.ru/video/a/", "https://rutube.ru/video/a/", true},
		{"http://example.com/x", "http://example.com/x", true},
		{"rutube.ru/video/a/", "https://rutube.ru/video/a/", true},
		{"//rutube.ru/video/a/", "https://rutube.ru/video/a/", true},
		{"", "", false},
		{"ftp://example.com/x", "", false},
		{"https://", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalizeURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
