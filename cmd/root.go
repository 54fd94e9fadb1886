package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfsearch/internal/config"
)

// CLI represents the complete command structure for the shelfsearch application
type CLI struct {
	// Global flags
	Config   string `help:"Path to config file (defaults to ./config.yaml when present)" type:"path"`
	LogLevel string `help:"Log level: debug, info, warn or error"`

	// Cache flags
	CacheBackend string `help:"Cache backend: sqlite, badger or none"`
	CacheTTL     string `help:"Cache time-to-live duration (e.g., 30m)"`

	Search    SearchCmd    `cmd:"" help:"Search every enabled book provider"`
	Serve     ServeCmd     `cmd:"" help:"Serve the search API over HTTP"`
	Cache     CacheCmd     `cmd:"" help:"Manage the search response cache"`
	Providers ProvidersCmd `cmd:"" help:"Inspect the configured book providers"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	kctx := kong.Parse(&cli,
		kong.Name("shelfsearch"),
		kong.Description("Search several book catalogues at once and merge the results."),
		kong.UsageOnError(),
	)

	if err := initConfig(cli.Config); err != nil {
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}
	updateGlobalConfig(&cli)
	initLogging(viper.GetString("log.level"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// initConfig sets defaults, binds SHELFSEARCH_* environment variables and
// reads the config file. A missing default config file is not an error.
func initConfig(path string) error {
	config.SetDefaults()

	viper.SetEnvPrefix("shelfsearch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment")
			return nil
		}
		return err
	}
	return nil
}

// updateGlobalConfig lets explicitly set flags override config values.
func updateGlobalConfig(cli *CLI) {
	if cli.LogLevel != "" {
		viper.Set("log.level", cli.LogLevel)
	}
	if cli.CacheBackend != "" {
		viper.Set("cache.backend", cli.CacheBackend)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initLogging(level string) {
	// Logs go to stderr so search output on stdout stays machine readable
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: parseLevel(level),
	})

	slog.SetDefault(slog.New(handler))
}
