// Package poster stores poster images on disk and renders placeholder posters
// when no real image is available.
package poster

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/cinemabot/internal/cache"
	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
)

// DefaultTTL matches the metadata cache expiry window.
const DefaultTTL = cache.DefaultTTL

// Store keeps poster files named <movieID>_<unixTimestamp>.<ext> in one directory.
// Expired files are removed as soon as a lookup encounters them.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates the poster directory if needed.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cberrors.NewPosterIOError("", "init", err)
	}
	s := &Store{dir: dir, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the poster directory.
func (s *Store) Dir() string {
	return s.dir
}

// Owns reports whether path names a file directly inside the poster directory.
func (s *Store) Owns(path string) bool {
	if path == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !strings.ContainsRune(rel, filepath.Separator)
}

// Get returns the path of a valid poster for movieID. Expired posters are deleted.
func (s *Store) Get(movieID string) (string, bool) {
	id := sanitizeID(movieID)
	if id == "" {
		return "", false
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("Failed to scan poster directory", "error", cberrors.NewPosterIOError(movieID, "scan", err))
		return "", false
	}

	var (
		found     string
		foundTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fileID, created, ok := parseName(e.Name())
		if !ok || fileID != id {
			continue
		}

		path := filepath.Join(s.dir, e.Name())
		if s.now().Sub(created) > s.ttl {
			if err := os.Remove(path); err != nil {
				slog.Warn("Failed to remove expired poster", "path", path, "error", err)
			} else {
				slog.Debug("Removed expired poster", "path", path)
			}
			continue
		}
		if found == "" || created.After(foundTime) {
			found, foundTime = path, created
		}
	}

	if found == "" {
		return "", false
	}
	slog.Debug("Poster cache hit", "movie_id", movieID, "path", found)
	return found, true
}

// Put writes data as a new poster for movieID and returns its path.
func (s *Store) Put(movieID string, data []byte, ext string) (string, error) {
	id := sanitizeID(movieID)
	if id == "" {
		return "", cberrors.NewPosterIOError(movieID, "save", fmt.Errorf("empty movie id"))
	}
	if ext == "" {
		ext = "jpg"
	}

	name := fmt.Sprintf("%s_%d.%s", id, s.now().Unix(), strings.TrimPrefix(ext, "."))
	path := filepath.Join(s.dir, name)

	// Readers only see complete files: parseName rejects the temp name.
	tmp, err := os.CreateTemp(s.dir, ".poster-*.tmp")
	if err != nil {
		return "", cberrors.NewPosterIOError(movieID, "save", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", cberrors.NewPosterIOError(movieID, "save", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", cberrors.NewPosterIOError(movieID, "save", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", cberrors.NewPosterIOError(movieID, "save", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", cberrors.NewPosterIOError(movieID, "save", err)
	}

	slog.Debug("Poster saved", "movie_id", movieID, "path", path, "bytes", len(data))
	return path, nil
}

// Clear deletes every poster file and returns how many were removed.
func (s *Store) Clear() (int, error) {
	return s.remove(func(time.Time) bool { return true })
}

// Prune deletes posters past the expiry window.
func (s *Store) Prune() (int, error) {
	return s.remove(func(created time.Time) bool {
		return s.now().Sub(created) > s.ttl
	})
}

func (s *Store) remove(match func(created time.Time) bool) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, cberrors.NewPosterIOError("", "scan", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_, created, ok := parseName(e.Name())
		if !ok || !match(created) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return removed, cberrors.NewPosterIOError("", "delete", err)
		}
		removed++
	}
	slog.Info("Posters removed", "dir", s.dir, "count", removed)
	return removed, nil
}

// parseName splits "<id>_<unix>.<ext>" into its parts.
func parseName(name string) (string, time.Time, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.LastIndex(base, "_")
	if idx <= 0 || idx == len(base)-1 {
		return "", time.Time{}, false
	}
	ts, err := strconv.ParseInt(base[idx+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return base[:idx], time.Unix(ts, 0), true
}

// sanitizeID keeps identifiers safe for use in file names.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
