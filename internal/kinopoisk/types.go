package kinopoisk

// Film is one item of the films search response.
type Film struct {
	KinopoiskID      int       `json:"kinopoiskId"`
	NameRu           string    `json:"nameRu"`
	NameEn           string    `json:"nameEn"`
	NameOriginal     string    `json:"nameOriginal"`
	Year             int       `json:"year"`
	Description      string    `json:"description"`
	RatingKinopoisk  *float64  `json:"ratingKinopoisk"`
	RatingImdb       *float64  `json:"ratingImdb"`
	Genres           []Genre   `json:"genres"`
	Countries        []Country `json:"countries"`
	FilmLength       int       `json:"filmLength"`
	PosterURL        string    `json:"posterUrl"`
	PosterURLPreview string    `json:"posterUrlPreview"`
	Type             string    `json:"type"`
}

// Genre is a named genre.
type Genre struct {
	Genre string `json:"genre"`
}

// Country is a named production country.
type Country struct {
	Country string `json:"country"`
}

// DisplayTitle returns the Russian title, falling back to English and then the original.
func (f Film) DisplayTitle() string {
	for _, name := range []string{f.NameRu, f.NameEn, f.NameOriginal} {
		if name != "" {
			return name
		}
	}
	return ""
}

// AltTitles returns the remaining non-empty names that differ from DisplayTitle.
func (f Film) AltTitles() []string {
	primary := f.DisplayTitle()
	var alts []string
	for _, name := range []string{f.NameRu, f.NameEn, f.NameOriginal} {
		if name == "" || name == primary {
			continue
		}
		dup := false
		for _, a := range alts {
			if a == name {
				dup = true
				break
			}
		}
		if !dup {
			alts = append(alts, name)
		}
	}
	return alts
}

// Poster returns the full-size poster URL, falling back to the preview.
func (f Film) Poster() string {
	if f.PosterURL != "" {
		return f.PosterURL
	}
	return f.PosterURLPreview
}

// Rating returns the Kinopoisk rating, falling back to IMDb.
func (f Film) Rating() *float64 {
	if f.RatingKinopoisk != nil {
		return f.RatingKinopoisk
	}
	return f.RatingImdb
}
