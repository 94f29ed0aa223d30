package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// genreTables loads the genre list once per media type present in results.
// A failed list is logged and leaves that media type without genres.
func (c *Client) genreTables(ctx context.Context, results []SearchResult) map[string]map[int]string {
	tables := make(map[string]map[int]string)
	for _, r := range results {
		if len(r.GenreIDs) == 0 {
			continue
		}
		if _, seen := tables[r.MediaType]; seen {
			continue
		}
		genres, err := c.getGenres(ctx, r.MediaType)
		if err != nil {
			slog.Warn("Failed to load TMDB genre list", "media_type", r.MediaType, "error", err)
		}
		tables[r.MediaType] = genres
	}
	return tables
}

func genreNames(genres map[int]string, ids []int) []string {
	if len(ids) == 0 || len(genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genres[id]; ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (c *Client) getGenres(ctx context.Context, mediaType string) (map[int]string, error) {
	c.mu.RLock()
	if genres, ok := c.genreCache[mediaType]; ok {
		c.mu.RUnlock()
		return genres, nil
	}
	c.mu.RUnlock()

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	endpoint := fmt.Sprintf("%s/genre/%s/list?%s", c.baseURL, mediaType, params.Encode())

	var response struct {
		Genres []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"genres"`
	}

	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	result := make(map[int]string, len(response.Genres))
	for _, g := range response.Genres {
		result[g.ID] = g.Name
	}

	c.mu.Lock()
	c.genreCache[mediaType] = result
	c.mu.Unlock()

	return result, nil
}
