package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/shelfsearch/internal/book"
	"github.com/lepinkainen/shelfsearch/internal/cache"
	"github.com/lepinkainen/shelfsearch/internal/config"
	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
	"github.com/lepinkainen/shelfsearch/internal/provider"
	"github.com/lepinkainen/shelfsearch/internal/testutil"
	"github.com/lepinkainen/shelfsearch/internal/tui"
)

func resetCmdState(t *testing.T) {
	t.Helper()
	testutil.ResetConfig(t)
	testutil.SetViperValue(t, "cache.backend", cache.BackendNone)
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	orig := stdout
	stdout = buf
	t.Cleanup(func() { stdout = orig })
	return buf
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"shelfsearch"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("shelfsearch"),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)

	return cli, ctx
}

// openLibraryStub serves a fixed /search.json body and routes only
// openlibrary to it.
func openLibraryStub(t *testing.T) *int {
	t.Helper()

	calls := 0
	server := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			w.WriteHeader(http.StatusOK)
			return
		}
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"numFound":2,"docs":[
			{"key":"/works/OL893415W","title":"Dune","author_name":["Frank Herbert"],"first_publish_year":1965,"subject":["Science fiction","Deserts"]},
			{"key":"/works/OL893416W","title":"Dune Messiah","author_name":["Frank Herbert"],"first_publish_year":1969,"subject":["Science fiction"]}
		]}`)
	}))

	testutil.DisableProviders(t, "googlebooks", "isbndb")
	testutil.SetViperValue(t, "providers.openlibrary.base_url", server.URL)
	testutil.SetViperValue(t, "providers.openlibrary.rate_per_second", 100)
	return &calls
}

func TestUpdateGlobalConfig(t *testing.T) {
	resetCmdState(t)

	updateGlobalConfig(&CLI{
		LogLevel:     "debug",
		CacheBackend: "badger",
		CacheTTL:     "12h",
	})

	assert.Equal(t, "debug", viper.GetString("log.level"))
	assert.Equal(t, "badger", viper.GetString("cache.backend"))
	assert.Equal(t, "12h", viper.GetString("cache.ttl"))
}

func TestUpdateGlobalConfigKeepsUnsetFlags(t *testing.T) {
	resetCmdState(t)

	updateGlobalConfig(&CLI{})

	assert.Equal(t, "info", viper.GetString("log.level"))
	assert.Equal(t, cache.BackendNone, viper.GetString("cache.backend"))
	assert.Equal(t, "1h", viper.GetString("cache.ttl"))
}

func TestSearchCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, ctx := parseCLI(t, "search", "-t", "dune", "-a", "herbert", "--condition", "used", "-p", "2", "-f", "json")

	assert.Equal(t, "search", ctx.Command())
	assert.Equal(t, "dune", cli.Search.Title)
	assert.Equal(t, "herbert", cli.Search.Author)
	assert.Equal(t, "used", cli.Search.Condition)
	assert.Equal(t, 2, cli.Search.Page)
	assert.Equal(t, "json", cli.Search.Format)
	assert.Equal(t, book.SearchQuery{Title: "dune", Author: "herbert", Condition: "used", Sort: "relevance", Page: 2}, cli.Search.query())
}

func TestCLIDefaultFlags(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "search", "--subject", "deserts")

	assert.Equal(t, "any", cli.Search.Condition)
	assert.Equal(t, "relevance", cli.Search.Sort)
	assert.Equal(t, 1, cli.Search.Page)
	assert.Equal(t, "table", cli.Search.Format)
	assert.False(t, cli.Search.Interactive)
	assert.Empty(t, cli.CacheBackend)
}

func TestCommandStructure(t *testing.T) {
	resetCmdState(t)

	for _, args := range [][]string{
		{"serve", "--addr", "127.0.0.1:0"},
		{"cache", "clear"},
		{"cache", "purge"},
		{"providers", "list"},
		{"providers", "ping"},
	} {
		_, ctx := parseCLI(t, args...)
		assert.NotEmpty(t, ctx.Command())
	}
}

func TestInitConfigWithoutFile(t *testing.T) {
	resetCmdState(t)
	viper.Reset()
	env := testutil.NewTestEnv(t)
	env.Chdir(".")

	require.NoError(t, initConfig(""))

	assert.Equal(t, "sqlite", viper.GetString("cache.backend"))
	assert.Equal(t, 20, viper.GetInt("search.page_size"))
	assert.False(t, env.FileExists("config.yaml"), "a missing config must not be written")
}

func TestInitConfigReadsFile(t *testing.T) {
	resetCmdState(t)
	viper.Reset()
	env := testutil.NewTestEnv(t)
	env.WriteFileString("config.yaml", "cache:\n  backend: badger\nsearch:\n  page_size: 5\nproviders:\n  isbndb:\n    api_key: from-file\n")
	env.Chdir(".")

	require.NoError(t, initConfig(""))

	settings := config.Load()
	assert.Equal(t, "badger", settings.Cache.Backend)
	assert.Equal(t, 5, settings.Search.PageSize)
	assert.Equal(t, "from-file", settings.Providers["isbndb"].APIKey)
}

func TestInitConfigExplicitPath(t *testing.T) {
	resetCmdState(t)
	viper.Reset()
	env := testutil.NewTestEnv(t)
	env.WriteFileString("conf/custom.yaml", "merge:\n  priority: [openlibrary]\n")

	require.NoError(t, initConfig(env.Path("conf", "custom.yaml")))
	assert.Equal(t, []string{"openlibrary"}, config.Load().Merge.Priority)

	viper.Reset()
	assert.Error(t, initConfig(env.Path("conf", "missing.yaml")))
}

func TestEnvironmentVariableBinding(t *testing.T) {
	resetCmdState(t)
	viper.Reset()
	env := testutil.NewTestEnv(t)
	env.Chdir(".")

	env.SetEnv("SHELFSEARCH_CACHE_BACKEND", "none")
	env.SetEnv("SHELFSEARCH_PROVIDERS_GOOGLEBOOKS_API_KEY", "env-key")
	env.SetEnv("SHELFSEARCH_SEARCH_PROVIDER_TIMEOUT", "3s")

	require.NoError(t, initConfig(""))

	settings := config.Load()
	assert.Equal(t, "none", settings.Cache.Backend)
	assert.Equal(t, "env-key", settings.Providers["googlebooks"].APIKey)
	assert.Equal(t, 3*time.Second, settings.Search.ProviderTimeout)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "INFO"},
		{"debug", "DEBUG"},
		{"DEBUG", "DEBUG"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"invalid", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in).String())
		})
	}
}

func TestInitLogging(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error", "invalid"} {
		require.NotPanics(t, func() { initLogging(level) })
	}
}

func TestProviderNamesMatchRegistry(t *testing.T) {
	assert.Equal(t, provider.Names(), config.ProviderNames)
}

func TestSearchCommandJSON(t *testing.T) {
	resetCmdState(t)
	calls := openLibraryStub(t)
	out := captureStdout(t)

	cmd := &SearchCmd{Title: "dune", Condition: "any", Sort: "newest", Page: 1, Format: "json"}
	require.NoError(t, cmd.Run(context.Background()))

	var result book.SearchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))

	require.Len(t, result.Items, 2)
	assert.Equal(t, "Dune Messiah", result.Items[0].Title)
	assert.Equal(t, "Dune", result.Items[1].Title)
	assert.Equal(t, map[string]bool{"openlibrary": true}, result.SourceStatus)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, *calls)
}

func TestSearchCommandYAMLAndTable(t *testing.T) {
	resetCmdState(t)
	openLibraryStub(t)

	t.Run("yaml", func(t *testing.T) {
		out := captureStdout(t)
		cmd := &SearchCmd{Title: "dune", Page: 1, Format: "yaml"}
		require.NoError(t, cmd.Run(context.Background()))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
		assert.Contains(t, decoded, "sourceStatus")
		assert.Contains(t, decoded, "pagination")
	})

	t.Run("table", func(t *testing.T) {
		out := captureStdout(t)
		cmd := &SearchCmd{Title: "dune", Page: 1, Format: "table"}
		require.NoError(t, cmd.Run(context.Background()))

		text := out.String()
		assert.Contains(t, text, "TITLE")
		assert.Contains(t, text, "Dune Messiah")
		assert.Contains(t, text, "science fiction")
		assert.Contains(t, text, "Page 1 of 1 (2 results)")
	})
}

func TestSearchCommandValidationError(t *testing.T) {
	resetCmdState(t)
	calls := openLibraryStub(t)
	captureStdout(t)

	err := (&SearchCmd{Page: 1, Format: "json"}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Zero(t, *calls)
}

func TestSearchCommandInteractive(t *testing.T) {
	resetCmdState(t)
	testutil.SetViperValue(t, "search.page_size", 1)
	openLibraryStub(t)
	out := captureStdout(t)

	var pages []int
	orig := browse
	browse = func(_ string, result book.SearchResult) (tui.BrowseResult, error) {
		pages = append(pages, result.Pagination.CurrentPage)
		if result.Pagination.HasNext {
			return tui.BrowseResult{Action: tui.ActionNextPage}, nil
		}
		selected := result.Items[0]
		return tui.BrowseResult{Action: tui.ActionSelected, Selection: &selected}, nil
	}
	t.Cleanup(func() { browse = orig })

	cmd := &SearchCmd{Title: "dune", Condition: "any", Sort: "relevance", Page: 1, Interactive: true}
	require.NoError(t, cmd.Run(context.Background()))

	assert.Equal(t, []int{1, 2}, pages)
	assert.Contains(t, out.String(), "by Frank Herbert")
}

func TestSearchCommandUsesCache(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupTestCache(t, env)
	calls := openLibraryStub(t)
	captureStdout(t)

	for range 2 {
		require.NoError(t, (&SearchCmd{Title: "dune", Page: 1, Format: "json"}).Run(context.Background()))
	}
	assert.Equal(t, 1, *calls)

	require.NoError(t, (&CacheClearCmd{}).Run(context.Background()))
	require.NoError(t, (&SearchCmd{Title: "dune", Page: 1, Format: "json"}).Run(context.Background()))
	assert.Equal(t, 2, *calls)
}

func TestCachePurgeCommand(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	dbPath := testutil.SetupTestCache(t, env)

	store, err := cache.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "fresh", []byte(`{}`), time.Hour))
	require.NoError(t, store.Set(context.Background(), "stale", []byte(`{}`), time.Millisecond))
	require.NoError(t, store.Close())
	time.Sleep(1100 * time.Millisecond)

	require.NoError(t, (&CachePurgeCmd{}).Run(context.Background()))

	store, err = cache.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCachePurgeWithoutPurger(t *testing.T) {
	resetCmdState(t)
	assert.NoError(t, (&CachePurgeCmd{}).Run(context.Background()))
}

func TestProvidersList(t *testing.T) {
	resetCmdState(t)
	testutil.DisableProviders(t, "isbndb")
	out := captureStdout(t)

	require.NoError(t, (&ProvidersListCmd{}).Run())

	text := out.String()
	assert.Contains(t, text, "openlibrary")
	assert.Regexp(t, `isbndb\s+disabled`, text)
	assert.Regexp(t, `googlebooks\s+enabled`, text)
}

func TestProvidersPing(t *testing.T) {
	resetCmdState(t)
	openLibraryStub(t)
	out := captureStdout(t)

	require.NoError(t, (&ProvidersPingCmd{}).Run(context.Background()))
	assert.Regexp(t, `openlibrary\s+ok`, out.String())
}

func TestProvidersPingNoneEnabled(t *testing.T) {
	resetCmdState(t)
	testutil.DisableProviders(t, config.ProviderNames...)
	captureStdout(t)

	assert.Error(t, (&ProvidersPingCmd{}).Run(context.Background()))
}
