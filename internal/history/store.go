// Package history persists per-user search history, shown-movie statistics and
// source toggles in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

// DefaultSearchLimit is how many recent searches are listed when no limit is given.
const DefaultSearchLimit = 10

// Search is one recorded query.
type Search struct {
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searchedAt"`
}

// MovieStat is a title together with how often it was shown.
type MovieStat struct {
	Title       string    `json:"title"`
	Year        int       `json:"year,omitempty"`
	Description string    `json:"description,omitempty"`
	Count       int       `json:"count"`
	LastShown   time.Time `json:"lastShown"`
}

// Store is the SQLite-backed history store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (or creates) the database at dbPath and ensures the schema exists.
// Use ":memory:" for an in-memory database.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordSearch appends query to the user's search history.
func (s *Store) RecordSearch(ctx context.Context, userID int64, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (user_id, query, searched_at) VALUES (?, ?, ?)`,
		userID, query, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// RecordMovieShown counts one more display of title for the user, refreshing
// the stored year and description.
func (s *Store) RecordMovieShown(ctx context.Context, userID int64, title string, year int, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO movies (user_id, title, year, description, count, last_shown)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(user_id, title) DO UPDATE SET
			count = count + 1,
			year = excluded.year,
			description = excluded.description,
			last_shown = excluded.last_shown`,
		userID, title, year, description, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record movie: %w", err)
	}
	return nil
}

// ListRecentSearches returns the user's searches, newest first.
func (s *Store) ListRecentSearches(ctx context.Context, userID int64, limit int) ([]Search, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, searched_at FROM searches WHERE user_id = ? ORDER BY searched_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Search
	for rows.Next() {
		var (
			search Search
			ts     int64
		)
		if err := rows.Scan(&search.Query, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		search.SearchedAt = time.Unix(0, ts)
		out = append(out, search)
	}
	return out, rows.Err()
}

// ListTopMovies returns the user's most shown titles ordered by count, most
// recently shown first on ties. A limit <= 0 returns every title.
func (s *Store) ListTopMovies(ctx context.Context, userID int64, limit int) ([]MovieStat, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, year, description, count, last_shown FROM movies
		 WHERE user_id = ? ORDER BY count DESC, last_shown DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MovieStat
	for rows.Next() {
		var (
			stat MovieStat
			ts   int64
		)
		if err := rows.Scan(&stat.Title, &stat.Year, &stat.Description, &stat.Count, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		stat.LastShown = time.Unix(0, ts)
		out = append(out, stat)
	}
	return out, rows.Err()
}

// GetToggles returns the user's source toggles, or defaults when none were saved.
func (s *Store) GetToggles(ctx context.Context, userID int64, defaults movie.SourceToggles) (movie.SourceToggles, error) {
	var metadata, links bool
	err := s.db.QueryRowContext(ctx,
		`SELECT metadata_enabled, links_enabled FROM user_settings WHERE user_id = ?`, userID).
		Scan(&metadata, &links)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("failed to read settings: %w", err)
	}
	return movie.SourceToggles{Metadata: metadata, Links: links}, nil
}

// SetToggles saves the user's source toggles.
func (s *Store) SetToggles(ctx context.Context, userID int64, toggles movie.SourceToggles) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, metadata_enabled, links_enabled) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			metadata_enabled = excluded.metadata_enabled,
			links_enabled = excluded.links_enabled`,
		userID, toggles.Metadata, toggles.Links)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
