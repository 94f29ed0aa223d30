// Package content renders resolved movie data as plain chat text.
package content

import (
	"math"
	"strings"
)

const (
	fullStar  = "⭐"
	halfStar  = "✨"
	emptyStar = "☆"
	maxStars  = 5
)

// RatingStars converts a 0-10 rating to a five-star strip. A nil rating is five empty stars.
func RatingStars(rating *float64) string {
	if rating == nil {
		return strings.Repeat(emptyStar, maxStars)
	}

	r := math.Max(0, math.Min(10, *rating))
	full := int(math.Floor(r / 2))
	half := 0
	if full < maxStars && math.Mod(r, 2) >= 0.5 {
		half = 1
	}
	return strings.Repeat(fullStar, full) + strings.Repeat(halfStar, half) + strings.Repeat(emptyStar, maxStars-full-half)
}

// Separator returns a horizontal rule, optionally with a caption in the middle.
func Separator(text string) string {
	if text = strings.TrimSpace(text); text != "" {
		return "────── " + text + " ──────"
	}
	return "────────────"
}
