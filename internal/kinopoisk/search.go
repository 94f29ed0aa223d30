package kinopoisk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

// SearchFilms queries the films endpoint by keyword, ordered by the catalog's rating ranking.
func (c *Client) SearchFilms(ctx context.Context, keyword string) ([]Film, error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("order", "RATING")
	params.Set("type", "ALL")
	params.Set("page", "1")

	endpoint := fmt.Sprintf("%s/api/v2.2/films?%s", c.baseURL, params.Encode())

	var response struct {
		Total int    `json:"total"`
		Items []Film `json:"items"`
	}
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// SearchCatalog searches films and maps them to catalog documents in API order.
func (c *Client) SearchCatalog(ctx context.Context, query string) ([]movie.CatalogDoc, error) {
	films, err := c.SearchFilms(ctx, query)
	if err != nil {
		return nil, err
	}

	docs := make([]movie.CatalogDoc, 0, len(films))
	for _, f := range films {
		docs = append(docs, c.toDoc(f))
	}
	return docs, nil
}

func (c *Client) toDoc(f Film) movie.CatalogDoc {
	doc := movie.CatalogDoc{
		Title:          f.DisplayTitle(),
		AltTitles:      f.AltTitles(),
		Year:           f.Year,
		Description:    f.Description,
		Rating:         f.Rating(),
		RuntimeMinutes: f.FilmLength,
		PosterURL:      f.Poster(),
	}
	if f.KinopoiskID > 0 {
		doc.ID = strconv.Itoa(f.KinopoiskID)
		doc.PageURL = c.pageBaseURL + doc.ID + "/"
	}
	for _, g := range f.Genres {
		if g.Genre != "" {
			doc.Genres = append(doc.Genres, g.Genre)
		}
	}
	for _, ct := range f.Countries {
		if ct.Country != "" {
			doc.Countries = append(doc.Countries, ct.Country)
		}
	}
	return doc
}
