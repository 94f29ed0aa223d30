package note

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

// PosterDir is the attachments directory, relative to the notes directory.
const PosterDir = "attachments"

// Keys written on every export. Other keys in an existing note are kept.
var managedKeys = []string{
	"title", "year", "rating", "genres", "countries",
	"runtime", "source", "catalog_id", "url", "cover", "updated",
}

// FileName returns the note file name for rec: "Title (Year).md".
func FileName(rec movie.Record) string {
	name := rec.Title
	if rec.Year > 0 {
		name += " (" + strconv.Itoa(rec.Year) + ")"
	}
	return sanitize(name) + ".md"
}

func sanitize(name string) string {
	name = strings.ReplaceAll(name, ":", " -")
	name = strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "\"", "'", "<", "", ">", "", "|", "-").Replace(name)
	return strings.TrimSpace(name)
}

// Exporter writes notes into one directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an Exporter for dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Export writes or refreshes the note for rec and returns its path. posterPath,
// when set, is copied into the attachments directory and embedded.
// Keys and tags a user added to an existing note survive the refresh.
func (e *Exporter) Export(rec movie.Record, links []movie.LinkCandidate, posterPath string) (string, error) {
	if rec.IsEmpty() {
		return "", errors.New("nothing to export: empty record")
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create notes directory: %w", err)
	}

	path := filepath.Join(e.dir, FileName(rec))
	n := &Note{Frontmatter: NewFrontmatter()}
	if data, err := os.ReadFile(path); err == nil {
		existing, err := Parse(data)
		if err != nil {
			return "", fmt.Errorf("failed to parse existing note %s: %w", path, err)
		}
		n.Frontmatter = existing.Frontmatter
	}

	cover := ""
	if posterPath != "" {
		name, err := e.copyPoster(rec, posterPath)
		if err != nil {
			return "", err
		}
		cover = name
	}

	e.fill(n.Frontmatter, rec, cover)
	n.Body = body(rec, links, cover)

	data, err := n.Build()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write note: %w", err)
	}
	return path, nil
}

func (e *Exporter) fill(fm *Frontmatter, rec movie.Record, cover string) {
	values := map[string]any{
		"title":   rec.Title,
		"source":  rec.Source,
		"updated": e.now().Format("2006-01-02"),
	}
	if rec.Year > 0 {
		values["year"] = rec.Year
	}
	if rec.Rating != nil {
		values["rating"] = *rec.Rating
	}
	if len(rec.Genres) > 0 {
		values["genres"] = rec.Genres
	}
	if len(rec.Countries) > 0 {
		values["countries"] = rec.Countries
	}
	if rec.RuntimeMinutes > 0 {
		values["runtime"] = rec.RuntimeMinutes
	}
	if rec.CatalogID != "" {
		values["catalog_id"] = rec.CatalogID
	}
	if rec.PageURL != "" {
		values["url"] = rec.PageURL
	}
	if cover != "" {
		values["cover"] = PosterDir + "/" + cover
	}

	for _, key := range managedKeys {
		if v, ok := values[key]; ok {
			fm.Set(key, v)
		}
	}

	existing, _ := fm.Get("tags")
	tags := []string{"movie"}
	tags = append(tags, rec.Genres...)
	fm.Set("tags", MergeTags(stringsFromAny(existing), tags))
}

func body(rec movie.Record, links []movie.LinkCandidate, cover string) string {
	var b strings.Builder
	if cover != "" {
		fmt.Fprintf(&b, "![[%s]]\n\n", cover)
	}
	if d := strings.TrimSpace(rec.Description); d != "" {
		b.WriteString(d)
		b.WriteString("\n")
	}
	if len(links) > 0 {
		b.WriteString("\n## Watch\n\n")
		for _, l := range links {
			fmt.Fprintf(&b, "- [%s](%s)\n", strings.ReplaceAll(l.Label, "]", `\]`), l.URL)
		}
	}
	return b.String()
}

func (e *Exporter) copyPoster(rec movie.Record, src string) (string, error) {
	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".jpg"
	}
	name := strings.TrimSuffix(FileName(rec), ".md") + ext

	dir := filepath.Join(e.dir, PosterDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachments directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open poster: %w", err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create poster copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to copy poster: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to copy poster: %w", err)
	}
	return name, nil
}
