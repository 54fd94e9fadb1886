// Package config declares the viper keys shelfsearch reads and turns them
// into typed settings.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Affiliate modes.
const (
	AffiliateSearch = "search"
	AffiliateHTTP   = "http"
	AffiliateOff    = "off"
)

// Settings is the resolved configuration.
type Settings struct {
	Search    SearchSettings
	Merge     MergeSettings
	Cache     CacheSettings
	Providers map[string]ProviderSettings
	Breaker   BreakerSettings
	Affiliate AffiliateSettings
	Server    ServerSettings
	LogLevel  string
}

type SearchSettings struct {
	PageSize        int
	ProviderTimeout time.Duration
	MaxConcurrency  int
}

type MergeSettings struct {
	// Priority lists adapter names, most trusted first.
	Priority []string
}

type CacheSettings struct {
	Backend    string
	SQLitePath string
	BadgerDir  string
	TTL        time.Duration
}

// ProviderSettings configures one adapter. Zero values fall back to the
// adapter's own defaults.
type ProviderSettings struct {
	Enabled       bool
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	ResultLimit   int
	RetryAttempts int
}

type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
}

type AffiliateSettings struct {
	Mode          string
	Tag           string
	BaseURL       string
	Endpoint      string
	Timeout       time.Duration
	RatePerSecond float64
}

type ServerSettings struct {
	Addr string
}

// ProviderNames lists the adapters that have configuration keys.
var ProviderNames = []string{"openlibrary", "googlebooks", "isbndb"}

// providerRates holds the per-adapter request rates.
var providerRates = map[string]float64{
	"openlibrary": 1,
	"googlebooks": 2,
	"isbndb":      1,
}

// SetDefaults registers every default on the global viper instance.
func SetDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("search.page_size", 20)
	viper.SetDefault("search.provider_timeout", "10s")
	viper.SetDefault("search.max_concurrency", 8)

	viper.SetDefault("merge.priority", []string{"googlebooks", "isbndb", "openlibrary"})

	viper.SetDefault("cache.backend", "sqlite")
	viper.SetDefault("cache.sqlite_path", "./cache.db")
	viper.SetDefault("cache.badger_dir", "./cache-badger")
	viper.SetDefault("cache.ttl", "1h")

	for _, name := range ProviderNames {
		prefix := "providers." + name + "."
		viper.SetDefault(prefix+"enabled", true)
		viper.SetDefault(prefix+"base_url", "")
		viper.SetDefault(prefix+"api_key", "")
		viper.SetDefault(prefix+"rate_per_second", providerRates[name])
		viper.SetDefault(prefix+"result_limit", 20)
		viper.SetDefault(prefix+"retry_attempts", 1)
	}

	viper.SetDefault("providers.breaker.min_requests", 5)
	viper.SetDefault("providers.breaker.failure_ratio", 0.6)
	viper.SetDefault("providers.breaker.interval", "1m")
	viper.SetDefault("providers.breaker.open_timeout", "30s")

	viper.SetDefault("affiliate.mode", AffiliateSearch)
	viper.SetDefault("affiliate.tag", "")
	viper.SetDefault("affiliate.base_url", "https://www.amazon.com/s")
	viper.SetDefault("affiliate.endpoint", "")
	viper.SetDefault("affiliate.timeout", "3s")
	viper.SetDefault("affiliate.rate_per_second", 5)

	viper.SetDefault("server.addr", "127.0.0.1:8080")
}

// Load reads the current viper state.
func Load() Settings {
	s := Settings{
		Search: SearchSettings{
			PageSize:        viper.GetInt("search.page_size"),
			ProviderTimeout: viper.GetDuration("search.provider_timeout"),
			MaxConcurrency:  viper.GetInt("search.max_concurrency"),
		},
		Merge: MergeSettings{
			Priority: normalizeNames(viper.GetStringSlice("merge.priority")),
		},
		Cache: CacheSettings{
			Backend:    strings.ToLower(viper.GetString("cache.backend")),
			SQLitePath: viper.GetString("cache.sqlite_path"),
			BadgerDir:  viper.GetString("cache.badger_dir"),
			TTL:        viper.GetDuration("cache.ttl"),
		},
		Providers: make(map[string]ProviderSettings),
		Breaker: BreakerSettings{
			MinRequests:  viper.GetUint32("providers.breaker.min_requests"),
			FailureRatio: viper.GetFloat64("providers.breaker.failure_ratio"),
			Interval:     viper.GetDuration("providers.breaker.interval"),
			OpenTimeout:  viper.GetDuration("providers.breaker.open_timeout"),
		},
		Affiliate: AffiliateSettings{
			Mode:          strings.ToLower(viper.GetString("affiliate.mode")),
			Tag:           viper.GetString("affiliate.tag"),
			BaseURL:       viper.GetString("affiliate.base_url"),
			Endpoint:      viper.GetString("affiliate.endpoint"),
			Timeout:       viper.GetDuration("affiliate.timeout"),
			RatePerSecond: viper.GetFloat64("affiliate.rate_per_second"),
		},
		Server: ServerSettings{
			Addr: viper.GetString("server.addr"),
		},
		LogLevel: viper.GetString("log.level"),
	}

	for _, name := range ProviderNames {
		prefix := "providers." + name + "."
		s.Providers[name] = ProviderSettings{
			Enabled:       viper.GetBool(prefix + "enabled"),
			BaseURL:       viper.GetString(prefix + "base_url"),
			APIKey:        viper.GetString(prefix + "api_key"),
			RatePerSecond: viper.GetFloat64(prefix + "rate_per_second"),
			ResultLimit:   viper.GetInt(prefix + "result_limit"),
			RetryAttempts: viper.GetInt(prefix + "retry_attempts"),
		}
	}

	return s
}

// normalizeNames lower-cases a comma-or-list value. Environment variables
// arrive as one comma separated string.
func normalizeNames(in []string) []string {
	var out []string
	for _, item := range in {
		for _, name := range strings.Split(item, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
