package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

// RenderLinks formats links as a numbered list under a captioned separator.
// Labels longer than labelMax characters are cut with an ellipsis; labelMax <= 0 disables cutting.
func RenderLinks(links []movie.LinkCandidate, labelMax int) string {
	if len(links) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Separator("Ссылки на просмотр"))
	for i, l := range links {
		label := l.Label
		if labelMax > 0 && utf8.RuneCountInString(label) > labelMax {
			label = string([]rune(label)[:labelMax-1]) + "…"
		}
		fmt.Fprintf(&b, "\n%d. %s\n   %s", i+1, label, l.URL)
	}
	return b.String()
}
