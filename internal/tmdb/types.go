package tmdb

import (
	"strconv"
)

// SearchResult represents a single search result from TMDB.
type SearchResult struct {
	ID            int      `json:"id"`
	MediaType     string   `json:"media_type"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	Name          string   `json:"name"`
	OriginalName  string   `json:"original_name"`
	PosterPath    string   `json:"poster_path"`
	Overview      string   `json:"overview"`
	ReleaseDate   string   `json:"release_date"`
	FirstAirDate  string   `json:"first_air_date"`
	VoteAverage   float64  `json:"vote_average"`
	VoteCount     int      `json:"vote_count"`
	GenreIDs      []int    `json:"genre_ids"`
	OriginCountry []string `json:"origin_country"`
}

// DisplayTitle returns the appropriate title for the search result.
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// OriginalDisplayTitle returns the original-language title.
func (r SearchResult) OriginalDisplayTitle() string {
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.OriginalName
}

// YearInt returns the release year for movies or first air year for TV shows as int.
func (r SearchResult) YearInt() int {
	dateStr := r.ReleaseDate
	if r.MediaType == "tv" {
		dateStr = r.FirstAirDate
	}
	if len(dateStr) >= 4 {
		if year, err := strconv.Atoi(dateStr[:4]); err == nil {
			return year
		}
	}
	return 0
}

// Rating returns the vote average, or nil when nobody has voted.
func (r SearchResult) Rating() *float64 {
	if r.VoteCount == 0 && r.VoteAverage == 0 {
		return nil
	}
	v := r.VoteAverage
	return &v
}
