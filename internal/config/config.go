// Package config loads process configuration from viper (config file, environment, flags).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lepinkainen/cinemabot/internal/cache"
	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ProviderKinopoisk selects the Kinopoisk unofficial API as the metadata source.
	ProviderKinopoisk = "kinopoisk"
	// ProviderTMDB selects TheMovieDB as the metadata source.
	ProviderTMDB = "tmdb"

	// MinLinks and MaxLinks bound links.limit.
	MinLinks = 3
	MaxLinks = 5
)

// Config holds everything the resolver pipeline needs at startup.
type Config struct {
	MetadataProvider string

	KinopoiskToken   string
	KinopoiskBaseURL string

	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBImageBaseURL string
	TMDBLanguage     string

	RutubeBaseURL string

	CacheDir     string
	CacheBackend string
	CacheTTL     time.Duration

	HistoryDBFile string

	MetadataTimeout time.Duration
	LinksTimeout    time.Duration
	PosterTimeout   time.Duration

	LinksLimit   int
	LinksSuffix  string
	LinkLabelMax int

	DefaultMetadataEnabled bool
	DefaultLinksEnabled    bool

	// Synonyms maps an alias a user may type to a catalog title. Keys are
	// normalized by source.NewSynonyms.
	Synonyms map[string]string
}

// SetDefaults registers default values for every known key.
func SetDefaults() {
	viper.SetDefault("metadata.provider", ProviderKinopoisk)

	viper.SetDefault("kinopoisk.baseurl", "https://kinopoiskapiunofficial.tech")
	viper.SetDefault("tmdb.baseurl", "https://api.themoviedb.org/3")
	viper.SetDefault("tmdb.imagebaseurl", "https://image.tmdb.org/t/p/w500")
	viper.SetDefault("tmdb.language", "ru-RU")
	viper.SetDefault("rutube.baseurl", "https://rutube.ru")

	viper.SetDefault("cache.dir", "./cache")
	viper.SetDefault("cache.backend", cache.BackendJSON)
	viper.SetDefault("cache.ttl", "504h") // 21 days

	viper.SetDefault("history.dbfile", "./cinemabot.db")

	viper.SetDefault("timeouts.metadata", "8s")
	viper.SetDefault("timeouts.links", "15s")
	viper.SetDefault("timeouts.poster", "15s")

	viper.SetDefault("links.limit", 3)
	viper.SetDefault("links.suffix", "фильм")
	viper.SetDefault("links.labelmax", 60)

	viper.SetDefault("sources.metadata", true)
	viper.SetDefault("sources.links", true)

	viper.SetDefault("matching.synonyms", map[string]string{
		"the matrix": "Матрица",
		"matrix":     "Матрица",
	})
}

// BindEnv binds the credential keys to their conventional environment variables.
func BindEnv() error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := viper.BindEnv("kinopoisk.token", "KINOPOISK_TOKEN"); err != nil {
		return err
	}
	if err := viper.BindEnv("tmdb.apikey", "TMDB_API_KEY"); err != nil {
		return err
	}
	return nil
}

// Load builds a Config from the current viper state and validates it.
// The returned error is a ConfigurationError when the process must not start.
func Load() (*Config, error) {
	cfg, err := Build()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build reads the current viper state without checking credentials.
// Local maintenance commands (history, cache) use it so they work offline.
func Build() (*Config, error) {
	cfg := &Config{
		MetadataProvider: strings.ToLower(strings.TrimSpace(viper.GetString("metadata.provider"))),
		KinopoiskToken:   strings.TrimSpace(viper.GetString("kinopoisk.token")),
		KinopoiskBaseURL: viper.GetString("kinopoisk.baseurl"),
		TMDBAPIKey:       strings.TrimSpace(viper.GetString("tmdb.apikey")),
		TMDBBaseURL:      viper.GetString("tmdb.baseurl"),
		TMDBImageBaseURL: viper.GetString("tmdb.imagebaseurl"),
		TMDBLanguage:     viper.GetString("tmdb.language"),
		RutubeBaseURL:    viper.GetString("rutube.baseurl"),
		CacheDir:         viper.GetString("cache.dir"),
		CacheBackend:     strings.ToLower(strings.TrimSpace(viper.GetString("cache.backend"))),
		HistoryDBFile:    viper.GetString("history.dbfile"),
		LinksLimit:       viper.GetInt("links.limit"),
		LinksSuffix:      viper.GetString("links.suffix"),
		LinkLabelMax:     viper.GetInt("links.labelmax"),

		DefaultMetadataEnabled: viper.GetBool("sources.metadata"),
		DefaultLinksEnabled:    viper.GetBool("sources.links"),

		Synonyms: viper.GetStringMapString("matching.synonyms"),
	}

	var err error
	if cfg.CacheTTL, err = duration("cache.ttl", cache.DefaultTTL); err != nil {
		return nil, err
	}
	if cfg.MetadataTimeout, err = duration("timeouts.metadata", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.LinksTimeout, err = duration("timeouts.links", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.PosterTimeout, err = duration("timeouts.poster", 15*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required credentials and enumerations are present.
func (c *Config) Validate() error {
	switch c.MetadataProvider {
	case ProviderKinopoisk:
		if c.KinopoiskToken == "" {
			return cberrors.NewConfigurationError("kinopoisk.token", "missing API token (set KINOPOISK_TOKEN)")
		}
	case ProviderTMDB:
		if c.TMDBAPIKey == "" {
			return cberrors.NewConfigurationError("tmdb.apikey", "missing API key (set TMDB_API_KEY)")
		}
	default:
		return cberrors.NewConfigurationError("metadata.provider", fmt.Sprintf("unknown provider %q", c.MetadataProvider))
	}

	switch c.CacheBackend {
	case cache.BackendJSON, cache.BackendBolt:
	default:
		return cberrors.NewConfigurationError("cache.backend", fmt.Sprintf("unknown backend %q", c.CacheBackend))
	}

	if c.CacheDir == "" {
		return cberrors.NewConfigurationError("cache.dir", "must not be empty")
	}
	if c.LinksLimit < MinLinks || c.LinksLimit > MaxLinks {
		return cberrors.NewConfigurationError("links.limit", fmt.Sprintf("must be between %d and %d", MinLinks, MaxLinks))
	}
	return nil
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(viper.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, cberrors.NewConfigurationError(key, fmt.Sprintf("invalid duration %q", raw))
	}
	return d, nil
}
