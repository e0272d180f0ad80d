// ABOUTME: Serve subcommand for the capacity-report CLI
// ABOUTME: Runs the JSON HTTP API with logging, CORS and rate limiting

package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rnelson0/vsphere-capacity-report/cache"
	"github.com/rnelson0/vsphere-capacity-report/config"
	"github.com/rnelson0/vsphere-capacity-report/handlers"
	"github.com/rnelson0/vsphere-capacity-report/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report HTTP API",
	Long: `Serve the capacity report API over HTTP.

The inventory source follows the global flags: a live vCenter by default,
or an offline --rvtools/--snapshot file. Without any source configured the
API still serves health and manual POST reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runServe(ctx); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// preflightHandler answers OPTIONS requests that the CORS middleware did not
// already terminate (same-origin requests carry no Origin header).
func preflightHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// runServe starts the HTTP server and blocks until shutdown.
func runServe(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return exitError
	}

	slog.Info("Starting capacity report API")

	// An unconfigured source is not fatal; manual POST reports still work.
	src, err := openSource(ctx, cfg)
	if err != nil {
		slog.Warn("No inventory source; serving in manual mode", "reason", err)
		src = nil
	} else {
		slog.Info("Inventory source configured", "source", src.Name())
		defer src.Close(context.Background())
	}

	snapshotCache := cache.New(time.Duration(cfg.SnapshotTTL) * time.Second)
	defer snapshotCache.Stop()

	h := handlers.NewHandler(cfg, snapshotCache, src)

	corsEnabled := len(cfg.CORSAllowedOrigins) > 0

	chain := []middleware.Middleware{middleware.LogRequest}
	if corsEnabled {
		chain = append(chain, middleware.CORSWithConfig(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
		chain = append(chain, middleware.RateLimit(limiter, middleware.ClientIP))
	}

	mux := http.NewServeMux()
	registered := make(map[string]bool)
	for _, route := range h.Routes() {
		mux.HandleFunc(route.Method+" "+route.Path, middleware.Chain(route.Handler, chain...))

		// Method-qualified patterns never match OPTIONS, so preflight
		// requests need their own route to reach the CORS middleware.
		if corsEnabled && !registered[route.Path] {
			registered[route.Path] = true
			mux.HandleFunc("OPTIONS "+route.Path, middleware.Chain(preflightHandler, chain...))
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		return exitError
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
			return exitError
		}
	}

	return exitOK
}
