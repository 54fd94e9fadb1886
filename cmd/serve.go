package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfsearch/internal/server"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr  string `help:"Listen address (overrides server.addr)"`
	Debug bool   `help:"Include internal error messages in error responses"`
}

func (s *ServeCmd) Run(ctx context.Context) error {
	if s.Addr != "" {
		viper.Set("server.addr", s.Addr)
	}

	a := newApp(slog.Default())
	defer a.Close()

	srv := &http.Server{
		Addr:              a.settings.Server.Addr,
		Handler:           server.Handler(a.service, &server.Responder{DebugMode: s.Debug, Logger: a.logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", srv.Addr, "providers", len(a.adapters))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
