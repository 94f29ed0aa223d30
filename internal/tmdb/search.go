package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

// SearchMulti performs a multi-search on TMDB, keeping movies and TV shows in API order.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("language", c.language)
	params.Set("include_adult", "false")

	endpoint := fmt.Sprintf("%s/search/multi?%s", c.baseURL, params.Encode())

	var response struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(response.Results))
	for _, item := range response.Results {
		if item.MediaType != "movie" && item.MediaType != "tv" {
			continue
		}
		results = append(results, item)
	}
	return results, nil
}

// SearchCatalog searches TMDB and maps results to catalog documents.
func (c *Client) SearchCatalog(ctx context.Context, query string) ([]movie.CatalogDoc, error) {
	results, err := c.SearchMulti(ctx, query)
	if err != nil {
		return nil, err
	}

	genres := c.genreTables(ctx, results)
	docs := make([]movie.CatalogDoc, 0, len(results))
	for _, r := range results {
		docs = append(docs, c.toDoc(r, genres[r.MediaType]))
	}
	return docs, nil
}

func (c *Client) toDoc(r SearchResult, genres map[int]string) movie.CatalogDoc {
	doc := movie.CatalogDoc{
		Title:       r.DisplayTitle(),
		Year:        r.YearInt(),
		Description: r.Overview,
		Rating:      r.Rating(),
		Genres:      genreNames(genres, r.GenreIDs),
		Countries:   r.OriginCountry,
		PosterURL:   c.ImageURL(r.PosterPath),
	}
	if orig := r.OriginalDisplayTitle(); orig != "" && orig != doc.Title {
		doc.AltTitles = []string{orig}
	}
	if r.ID > 0 {
		// Movie and TV ids share a number space.
		doc.ID = r.MediaType + "-" + strconv.Itoa(r.ID)
		doc.PageURL = fmt.Sprintf("%s/%s/%d", c.pageBaseURL, r.MediaType, r.ID)
	}
	return doc
}
