package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"PrimeTerminal/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Starts the HTTP API.

Endpoints:
  GET    /health
  GET    /api/analysis/{ticker}?period=&policy=&verdict=
  GET    /api/report/{ticker}       - PDF audit report
  GET    /api/chart/{ticker}        - PNG price chart
  GET    /api/compare?tickers=A,B   - rebased performance (format=png for a chart)
  GET    /api/favorites
  POST   /api/favorites             - {"symbol": "AAPL"}
  DELETE /api/favorites/{symbol}

Example:
  primeterminal serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr string
	serveDev  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "disable response compression")
}

func newServer(a *app) *server.Server {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return server.New(server.Config{
		Addr:           addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            a.log,
		Collector:      a.collector,
		Store:          a.store,
		Renderer:       a.renderer,
		DefaultPeriod:  a.period,
		DevMode:        serveDev,
	})
}

// listen runs srv until ctx ends, then shuts it down.
func listen(ctx context.Context, a *app, srv *server.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return listen(ctx, a, newServer(a))
}
