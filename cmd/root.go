package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/cinemabot/internal/config"
	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// out receives command output. Tests swap it for a buffer.
var out io.Writer = os.Stdout

// CLI represents the complete command structure for the cinemabot application
type CLI struct {
	Globals

	Search   SearchCmd   `cmd:"" help:"Resolve a movie or series query and print the reply"`
	History  HistoryCmd  `cmd:"" help:"Show recent searches of a user"`
	Top      TopCmd      `cmd:"" help:"Show the most shown movies of a user"`
	Settings SettingsCmd `cmd:"" help:"Show or change per-user source toggles"`
	Cache    CacheCmd    `cmd:"" help:"Maintain the movie, link and poster caches"`
	Serve    ServeCmd    `cmd:"" help:"Serve the resolver over a JSON HTTP API"`
}

// Globals are flags shared by every command.
type Globals struct {
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	Config   string `short:"c" help:"Path to config file (defaults to ./config.yaml when present)" type:"path"`

	// Overrides for config file values
	Provider    string `help:"Metadata provider (kinopoisk or tmdb)"`
	CacheDir    string `help:"Directory for cache files and posters"`
	HistoryFile string `help:"Path to history SQLite database"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("cinemabot"),
		kong.Description("Movie and series lookup: metadata, watch links and posters for a free-text query."),
		kong.UsageOnError(),
	)

	initLogging(cli.LogLevel)

	if err := initConfig(cli.Config); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	applyOverrides(&cli.Globals)

	if err := ctx.Run(&cli.Globals); err != nil {
		if cberrors.IsConfigurationError(err) {
			slog.Error("Invalid configuration", "error", err)
		} else {
			slog.Error("Command failed", "error", err)
		}
		os.Exit(1)
	}
}

// initConfig registers defaults and environment bindings and reads the config file.
// A missing default config file is fine; an explicitly named one must exist.
func initConfig(path string) error {
	config.SetDefaults()
	if err := config.BindEnv(); err != nil {
		return fmt.Errorf("failed to bind environment: %w", err)
	}

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment")
			return nil
		}
		return cberrors.NewConfigurationError("config", err.Error())
	}
	slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	return nil
}

func applyOverrides(g *Globals) {
	if g.Provider != "" {
		viper.Set("metadata.provider", g.Provider)
	}
	if g.CacheDir != "" {
		viper.Set("cache.dir", g.CacheDir)
	}
	if g.HistoryFile != "" {
		viper.Set("history.dbfile", g.HistoryFile)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initLogging(level string) {
	// Logs go to stderr so command output stays clean on stdout
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: parseLevel(level),
	})

	slog.SetDefault(slog.New(handler))
}
