package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_Path(t *testing.T) {
	env := NewTestEnv(t)

	p := env.Path("a", "b.txt")
	assert.Equal(t, filepath.Join(env.RootDir(), "a", "b.txt"), p)
	assert.True(t, env.isWithinSandbox(p))
	assert.False(t, env.isWithinSandbox(filepath.Dir(env.RootDir())))
}

func TestTestEnv_WriteFileString(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/dir/config.yaml", "cache:\n  backend: none\n")
	require.True(t, env.FileExists("nested/dir/config.yaml"))

	content, err := os.ReadFile(env.Path("nested", "dir", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "backend: none")
}

func TestTestEnv_Chdir(t *testing.T) {
	env := NewTestEnv(t)
	env.MkdirAll("work")

	orig, err := os.Getwd()
	require.NoError(t, err)

	t.Run("inside", func(t *testing.T) {
		env := NewTestEnv(t)
		env.Chdir(".")
		wd, err := os.Getwd()
		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(env.RootDir())
		require.NoError(t, err)
		wdResolved, err := filepath.EvalSymlinks(wd)
		require.NoError(t, err)
		assert.Equal(t, resolved, wdResolved)
	})

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, orig, wd)
}

func TestTestEnv_SetEnv(t *testing.T) {
	const key = "SHELFSEARCH_TESTUTIL_SETENV"

	t.Run("set", func(t *testing.T) {
		env := NewTestEnv(t)
		env.SetEnv(key, "value")
		assert.Equal(t, "value", os.Getenv(key))
	})

	_, ok := os.LookupEnv(key)
	assert.False(t, ok, "variable should be unset after cleanup")
}

func TestTestEnv_String(t *testing.T) {
	env := NewTestEnv(t)
	assert.Contains(t, env.String(), env.RootDir())
}

func TestResetConfig(t *testing.T) {
	viper.Set("cache.backend", "badger")

	ResetConfig(t)

	assert.Equal(t, "sqlite", viper.GetString("cache.backend"))
	assert.Equal(t, time.Hour, viper.GetDuration("cache.ttl"))
}

func TestSetViperValue(t *testing.T) {
	ResetConfig(t)

	t.Run("override", func(t *testing.T) {
		SetViperValue(t, "search.page_size", 5)
		assert.Equal(t, 5, viper.GetInt("search.page_size"))
	})

	assert.Equal(t, 20, viper.GetInt("search.page_size"))
}

func TestSetupTestCache(t *testing.T) {
	ResetConfig(t)
	env := NewTestEnv(t)

	dbPath := SetupTestCache(t, env)

	assert.True(t, env.FileExists("cache"))
	assert.Equal(t, dbPath, viper.GetString("cache.sqlite_path"))
	assert.Equal(t, "sqlite", viper.GetString("cache.backend"))
}

func TestDisableProviders(t *testing.T) {
	ResetConfig(t)

	DisableProviders(t, "openlibrary", "isbndb")

	assert.False(t, viper.GetBool("providers.openlibrary.enabled"))
	assert.False(t, viper.GetBool("providers.isbndb.enabled"))
	assert.True(t, viper.GetBool("providers.googlebooks.enabled"))
}

func TestNewIPv4Server(t *testing.T) {
	server := NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	assert.Contains(t, server.URL, "127.0.0.1")

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
