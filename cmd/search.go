package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/cinemabot/internal/note"
)

// SearchCmd resolves one query the way a chat message would be resolved.
type SearchCmd struct {
	Query      []string `arg:"" help:"Movie or series name"`
	User       int64    `short:"u" help:"User ID the search is recorded for" default:"0"`
	NoMetadata bool     `help:"Skip the metadata source for this query"`
	NoLinks    bool     `help:"Skip the link source for this query"`
	KeepPoster bool     `help:"Keep temporary poster files instead of removing them after printing"`
	NoteDir    string   `help:"Write a markdown note for the found title into this directory" type:"path"`
}

func (s *SearchCmd) Run(_ *Globals) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	query := strings.Join(s.Query, " ")

	toggles := a.toggles(ctx, s.User)
	if s.NoMetadata {
		toggles.Metadata = false
	}
	if s.NoLinks {
		toggles.Links = false
	}

	res := a.resolver.Resolve(ctx, s.User, query, toggles)
	slog.Debug("Query resolved", "query", query, "outcome", res.Outcome)
	if !s.KeepPoster {
		defer a.release(res)
	}

	if text := res.Text(); text != "" {
		_, _ = fmt.Fprintln(out, text)
	}
	if res.PosterPath != "" {
		_, _ = fmt.Fprintf(out, "\nPoster: %s\n", res.PosterPath)
	}

	if s.NoteDir != "" && !res.Record.IsEmpty() {
		path, err := note.NewExporter(s.NoteDir).Export(res.Record, res.Links, res.PosterPath)
		if err != nil {
			return fmt.Errorf("failed to export note: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Note: %s\n", path)
	}
	return nil
}
