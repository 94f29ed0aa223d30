package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

const timeLayout = "2006-01-02 15:04"

// HistoryCmd lists the most recent searches of a user.
type HistoryCmd struct {
	User  int64 `short:"u" help:"User ID" default:"0"`
	Limit int   `short:"n" help:"Number of searches to show" default:"10"`
}

func (h *HistoryCmd) Run(_ *Globals) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	searches, err := a.history.ListRecentSearches(context.Background(), h.User, h.Limit)
	if err != nil {
		return fmt.Errorf("failed to list searches: %w", err)
	}
	if len(searches) == 0 {
		_, _ = fmt.Fprintln(out, "История поиска пуста.")
		return nil
	}

	_, _ = fmt.Fprintln(out, "🔍 История поиска:")
	for i, s := range searches {
		_, _ = fmt.Fprintf(out, "%d. %s (%s)\n", i+1, s.Query, s.SearchedAt.Local().Format(timeLayout))
	}
	return nil
}

// TopCmd lists the titles a user was shown most often.
type TopCmd struct {
	User  int64 `short:"u" help:"User ID" default:"0"`
	Limit int   `short:"n" help:"Number of titles to show" default:"10"`
}

func (c *TopCmd) Run(_ *Globals) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stats, err := a.history.ListTopMovies(context.Background(), c.User, c.Limit)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}
	if len(stats) == 0 {
		_, _ = fmt.Fprintln(out, "Статистика пуста.")
		return nil
	}

	_, _ = fmt.Fprintln(out, "📊 Самые частые фильмы:")
	for i, m := range stats {
		title := m.Title
		if m.Year > 0 {
			title = fmt.Sprintf("%s (%d)", m.Title, m.Year)
		}
		_, _ = fmt.Fprintf(out, "%d. %s: %d\n", i+1, title, m.Count)
	}
	return nil
}

// SettingsCmd shows a user's source toggles and optionally changes them.
type SettingsCmd struct {
	User     int64  `short:"u" help:"User ID" default:"0"`
	Metadata string `help:"Turn the metadata source on or off" enum:"on,off,keep" default:"keep"`
	Links    string `help:"Turn the link source on or off" enum:"on,off,keep" default:"keep"`
}

func (s *SettingsCmd) Run(_ *Globals) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	toggles := a.toggles(ctx, s.User)

	changed := applySwitch(&toggles.Metadata, s.Metadata)
	changed = applySwitch(&toggles.Links, s.Links) || changed
	if changed {
		if err := a.history.SetToggles(ctx, s.User, toggles); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}

	_, _ = fmt.Fprint(out, formatToggles(toggles))
	return nil
}

func applySwitch(target *bool, value string) bool {
	switch value {
	case "on":
		*target = true
	case "off":
		*target = false
	default:
		return false
	}
	return true
}

func formatToggles(t movie.SourceToggles) string {
	state := func(on bool) string {
		if on {
			return "✅ включено"
		}
		return "❌ выключено"
	}

	var b strings.Builder
	b.WriteString("⚙️ Настройки источников:\n")
	fmt.Fprintf(&b, "Описание фильма: %s\n", state(t.Metadata))
	fmt.Fprintf(&b, "Ссылки на просмотр: %s\n", state(t.Links))
	return b.String()
}
