package content

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

const noDescription = "Описание отсутствует."

// RenderMovie formats rec as the metadata block of a reply. Empty records render as "".
func RenderMovie(rec movie.Record) string {
	if rec.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("🎬 ")
	b.WriteString(rec.Title)
	if rec.Year > 0 {
		b.WriteString(" (" + strconv.Itoa(rec.Year) + ")")
	}
	b.WriteString("\n")

	if len(rec.Genres) > 0 {
		fmt.Fprintf(&b, "Жанр: %s\n", strings.Join(rec.Genres, ", "))
	}
	if len(rec.Countries) > 0 {
		fmt.Fprintf(&b, "Страна: %s\n", strings.Join(rec.Countries, ", "))
	}
	if rec.RuntimeMinutes > 0 {
		fmt.Fprintf(&b, "Длительность: %d мин.\n", rec.RuntimeMinutes)
	}
	if rec.Rating != nil {
		fmt.Fprintf(&b, "Рейтинг: %s %s\n", strconv.FormatFloat(*rec.Rating, 'f', -1, 64), RatingStars(rec.Rating))
	} else {
		fmt.Fprintf(&b, "Рейтинг: %s\n", RatingStars(nil))
	}

	b.WriteString(Separator(""))
	b.WriteString("\n")

	description := strings.TrimSpace(rec.Description)
	if description == "" {
		description = noDescription
	}
	b.WriteString(description)

	if rec.PageURL != "" {
		b.WriteString("\n")
		b.WriteString(rec.PageURL)
	}
	return b.String()
}
