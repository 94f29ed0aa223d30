package rutube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
	"github.com/lepinkainen/cinemabot/internal/ratelimit"
)

func newTestClient(serverURL string, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(serverURL), WithRateLimiter(ratelimit.Unlimited("test"))}, opts...)
	return NewClient(opts...)
}

func TestSearchVideos(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search/video/", r.URL.Path)
		captured = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": "abc", "title": "Матрица (1999)", "video_url": "https://rutube.ru/video/abc/"},
				{"id": "def", "title": "Матрица трейлер"},
				{"title": "no id no url"},
			},
		}))
	}))
	defer server.Close()

	docs, err := newTestClient(server.URL).SearchVideos(context.Background(), "матрица фильм")
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "матрица фильм", captured)
	assert.Equal(t, "https://rutube.ru/video/abc/", docs[0].URL)
	assert.Equal(t, "https://rutube.ru/video/def/", docs[1].URL)
	assert.Equal(t, "", docs[2].URL)
	assert.Equal(t, "Матрица трейлер", docs[1].Title)
}

func TestSearchVideos_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "slow":
			time.Sleep(200 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, WithTimeout(50*time.Millisecond))

	_, err := client.SearchVideos(context.Background(), "down")
	require.Error(t, err)
	assert.True(t, cberrors.IsSourceUnavailableError(err))

	_, err = client.SearchVideos(context.Background(), "slow")
	require.Error(t, err)
	assert.True(t, cberrors.IsSourceUnavailableError(err))
}
