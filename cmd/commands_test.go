package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/lepinkainen/cinemabot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sourceServer fakes Kinopoisk, Rutube and the poster host on one listener.
type sourceServer struct {
	*httptest.Server
	searches    atomic.Int32
	videos      atomic.Int32
	posterHits  atomic.Int32
	failCatalog atomic.Bool
}

func newSourceServer(t *testing.T) *sourceServer {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 10, 15))
	img.Set(1, 1, color.White)
	var poster bytes.Buffer
	require.NoError(t, png.Encode(&poster, img))

	s := &sourceServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2.2/films":
			s.searches.Add(1)
			if s.failCatalog.Load() {
				http.Error(w, "down", http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			items := []map[string]any{}
			if r.URL.Query().Get("keyword") == "матрица" {
				items = append(items, map[string]any{
					"kinopoiskId":     301,
					"nameRu":          "Матрица",
					"nameOriginal":    "The Matrix",
					"year":            1999,
					"ratingKinopoisk": 8.5,
					"genres":          []map[string]string{{"genre": "фантастика"}},
					"description":     "Хакер Нео узнаёт правду о мире.",
					"posterUrl":       "http://" + r.Host + "/posters/301.png",
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
		case "/api/search/video/":
			s.videos.Add(1)
			w.Header().Set("Content-Type", "application/json")
			results := []map[string]any{}
			if r.URL.Query().Get("query") == "матрица фильм" {
				results = append(results, map[string]any{"id": "m1", "title": "Матрица (1999)"})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
		case "/posters/301.png":
			s.posterHits.Add(1)
			_, _ = w.Write(poster.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func setupCommandEnv(t *testing.T) (*testutil.TestEnv, *sourceServer, *bytes.Buffer) {
	t.Helper()

	buf := resetCmdState(t)
	env := testutil.NewTestEnv(t)
	srv := newSourceServer(t)
	testutil.SetTestConfig(t, env, testutil.WithSourceServer(srv.URL))
	return env, srv, buf
}

func TestSearchCommand(t *testing.T) {
	env, srv, buf := setupCommandEnv(t)

	cmd := &SearchCmd{Query: []string{"матрица"}, User: 5}
	require.NoError(t, cmd.Run(&Globals{}))

	output := buf.String()
	assert.Contains(t, output, "🎬 Матрица (1999)")
	assert.Contains(t, output, "Жанр: фантастика")
	assert.Contains(t, output, "https://www.kinopoisk.ru/film/301/")
	assert.Contains(t, output, "https://rutube.ru/video/m1/")
	assert.Contains(t, output, "Poster: "+env.Path("cache", "posters"))

	posters := env.ListFiles(filepath.Join("cache", "posters"))
	require.Len(t, posters, 1)
	assert.Regexp(t, `^301_\d+\.png$`, posters[0])
	assert.FileExists(t, env.Path("cache", "movie_data.json"))
	assert.FileExists(t, env.Path("cache", "links.json"))

	// The same query again is answered from the caches.
	buf.Reset()
	require.NoError(t, cmd.Run(&Globals{}))
	assert.Contains(t, buf.String(), "🎬 Матрица (1999)")
	assert.Equal(t, int32(1), srv.searches.Load())
	assert.Equal(t, int32(1), srv.videos.Load())
	assert.Equal(t, int32(1), srv.posterHits.Load())
}

func TestSearchCommandNothingFound(t *testing.T) {
	env, _, buf := setupCommandEnv(t)

	require.NoError(t, (&SearchCmd{Query: []string{"абвгд"}}).Run(&Globals{}))

	assert.Contains(t, buf.String(), "«абвгд»")
	assert.NotContains(t, buf.String(), "Poster:")
	assert.Empty(t, env.ListFiles(filepath.Join("cache", "posters")))
}

func TestSearchCommandSourceFailure(t *testing.T) {
	_, srv, buf := setupCommandEnv(t)
	srv.failCatalog.Store(true)

	require.NoError(t, (&SearchCmd{Query: []string{"матрица"}, NoLinks: true}).Run(&Globals{}))

	assert.Contains(t, buf.String(), "ничего не найдено")
}

func TestSearchCommandCommandLike(t *testing.T) {
	_, srv, buf := setupCommandEnv(t)

	require.NoError(t, (&SearchCmd{Query: []string{"history"}}).Run(&Globals{}))

	assert.Contains(t, buf.String(), "/history")
	assert.Zero(t, srv.searches.Load())
	assert.Zero(t, srv.videos.Load())
}

func TestSearchCommandMissingToken(t *testing.T) {
	env, _, _ := setupCommandEnv(t)
	testutil.SetTestConfig(t, env, testutil.WithValue("kinopoisk.token", ""))

	err := (&SearchCmd{Query: []string{"матрица"}}).Run(&Globals{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kinopoisk.token")
}

func TestHistoryAndTopCommands(t *testing.T) {
	_, _, buf := setupCommandEnv(t)

	require.NoError(t, (&SearchCmd{Query: []string{"матрица"}, User: 9}).Run(&Globals{}))
	require.NoError(t, (&SearchCmd{Query: []string{"матрица"}, User: 9}).Run(&Globals{}))
	require.NoError(t, (&SearchCmd{Query: []string{"абвгд"}, User: 9}).Run(&Globals{}))

	buf.Reset()
	require.NoError(t, (&HistoryCmd{User: 9, Limit: 2}).Run(&Globals{}))
	output := buf.String()
	assert.Contains(t, output, "1. абвгд")
	assert.Contains(t, output, "2. матрица")
	assert.NotContains(t, output, "3.")

	buf.Reset()
	require.NoError(t, (&TopCmd{User: 9, Limit: 10}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "1. Матрица (1999): 2")

	buf.Reset()
	require.NoError(t, (&HistoryCmd{User: 10}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "История поиска пуста.")
}

func TestHistoryCommandWorksWithoutCredentials(t *testing.T) {
	env, _, buf := setupCommandEnv(t)
	testutil.SetTestConfig(t, env, testutil.WithValue("kinopoisk.token", ""))

	require.NoError(t, (&TopCmd{User: 1}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "Статистика пуста.")
}

func TestSettingsCommand(t *testing.T) {
	_, srv, buf := setupCommandEnv(t)

	require.NoError(t, (&SettingsCmd{User: 3, Metadata: "keep", Links: "keep"}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "Описание фильма: ✅ включено")
	assert.Contains(t, buf.String(), "Ссылки на просмотр: ✅ включено")

	buf.Reset()
	require.NoError(t, (&SettingsCmd{User: 3, Metadata: "off", Links: "off"}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "Описание фильма: ❌ выключено")
	assert.Contains(t, buf.String(), "Ссылки на просмотр: ❌ выключено")

	// Stored toggles apply to later searches of that user only.
	buf.Reset()
	require.NoError(t, (&SearchCmd{Query: []string{"матрица"}, User: 3}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "Все источники поиска отключены")
	assert.Zero(t, srv.searches.Load())
}

func TestCacheCommands(t *testing.T) {
	env, _, buf := setupCommandEnv(t)

	require.NoError(t, (&SearchCmd{Query: []string{"матрица"}}).Run(&Globals{}))
	require.Len(t, env.ListFiles(filepath.Join("cache", "posters")), 1)

	buf.Reset()
	require.NoError(t, (&CachePruneCmd{}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "movies: pruned 0 entries")
	assert.Contains(t, buf.String(), "posters: pruned 0 files")

	buf.Reset()
	require.NoError(t, (&CacheClearCmd{Links: true}).Run(&Globals{}))
	assert.Equal(t, "links: removed 1 entries\n", buf.String())

	buf.Reset()
	require.NoError(t, (&CacheClearCmd{}).Run(&Globals{}))
	assert.Contains(t, buf.String(), "movies: removed 1 entries")
	assert.Contains(t, buf.String(), "links: removed 0 entries")
	assert.Contains(t, buf.String(), "posters: removed 1 files")
	assert.Empty(t, env.ListFiles(filepath.Join("cache", "posters")))
}

func TestSearchCommandWritesNote(t *testing.T) {
	env, _, buf := setupCommandEnv(t)

	cmd := &SearchCmd{Query: []string{"матрица"}, NoteDir: env.Path("vault")}
	require.NoError(t, cmd.Run(&Globals{}))

	assert.Contains(t, buf.String(), "Note: "+env.Path("vault", "Матрица (1999).md"))
	content := env.ReadFileString(filepath.Join("vault", "Матрица (1999).md"))
	assert.Contains(t, content, "catalog_id: \"301\"")
	assert.Contains(t, content, "- [Матрица (1999)](https://rutube.ru/video/m1/)")
	assert.Equal(t, []string{"Матрица (1999).png"}, env.ListFiles(filepath.Join("vault", "attachments")))
}
