package testutil

import (
	"testing"

	"github.com/lepinkainen/cinemabot/internal/config"
	"github.com/spf13/viper"
)

// TestToken is the credential SetTestConfig installs for both metadata providers.
const TestToken = "test-token"

// ConfigOption adjusts the viper state prepared by SetTestConfig.
type ConfigOption func()

// WithSourceServer points every remote source at one fake server.
func WithSourceServer(url string) ConfigOption {
	return func() {
		viper.Set("kinopoisk.baseurl", url)
		viper.Set("tmdb.baseurl", url)
		viper.Set("tmdb.imagebaseurl", url+"/images")
		viper.Set("rutube.baseurl", url)
	}
}

// WithProvider selects the metadata provider.
func WithProvider(provider string) ConfigOption {
	return func() {
		viper.Set("metadata.provider", provider)
	}
}

// WithValue sets an arbitrary key.
func WithValue(key string, value any) ConfigOption {
	return func() {
		viper.Set(key, value)
	}
}

// ResetConfig resets viper, registers defaults and resets again when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

// SetTestConfig prepares a complete configuration whose storage lives inside env.
func SetTestConfig(t *testing.T, env *TestEnv, opts ...ConfigOption) {
	t.Helper()

	ResetConfig(t)
	viper.Set("cache.dir", env.Path("cache"))
	viper.Set("history.dbfile", env.Path("cinemabot.db"))
	viper.Set("kinopoisk.token", TestToken)
	viper.Set("tmdb.apikey", TestToken)

	for _, opt := range opts {
		opt()
	}
}
