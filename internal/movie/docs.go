package movie

// CatalogDoc is one search hit from a metadata catalog, mapped out of the
// provider's wire format but not yet chosen or normalized.
type CatalogDoc struct {
	ID             string
	Title          string
	AltTitles      []string
	Year           int
	Description    string
	Rating         *float64
	Genres         []string
	Countries      []string
	RuntimeMinutes int
	PosterURL      string
	PageURL        string
}

// Titles returns the primary title followed by the alternates, skipping blanks.
func (d CatalogDoc) Titles() []string {
	titles := make([]string, 0, 1+len(d.AltTitles))
	if d.Title != "" {
		titles = append(titles, d.Title)
	}
	for _, t := range d.AltTitles {
		if t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// VideoDoc is one hit from a video search provider.
type VideoDoc struct {
	ID    string
	Title string
	URL   string
}
