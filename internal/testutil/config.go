package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfsearch/internal/config"
)

// ResetConfig resets viper to the application defaults and resets it again
// when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()

	t.Cleanup(viper.Reset)
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// Note: viper doesn't have an Unset function, so an unset key
		// can't be restored.
	})
}

// SetupTestCache points the sqlite cache at a database inside env.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	env.MkdirAll("cache")
	dbPath := env.Path("cache", "test-cache.db")

	SetViperValue(t, "cache.backend", "sqlite")
	SetViperValue(t, "cache.sqlite_path", dbPath)
	SetViperValue(t, "cache.ttl", "1h")

	return dbPath
}

// DisableProviders turns off every adapter so no test reaches the network.
func DisableProviders(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range names {
		SetViperValue(t, "providers."+name+".enabled", false)
	}
}
