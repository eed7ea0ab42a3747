// Command tropimon-stats ingests Cobblemon capture logs and serves
// anonymized aggregate statistics.
//
// Usage:
//
//	tropimon-stats load              # rebuild the database from the logs
//	tropimon-stats serve             # serve the read-only stats API
//	tropimon-stats genlogs --players 20
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tropimon/tropimon-stats/internal/api"
	"github.com/tropimon/tropimon-stats/internal/app"
	"github.com/tropimon/tropimon-stats/internal/config"
	"github.com/tropimon/tropimon-stats/internal/genlogs"
	"github.com/tropimon/tropimon-stats/internal/ingest"
	"github.com/tropimon/tropimon-stats/internal/metrics"
	"github.com/tropimon/tropimon-stats/internal/runlock"
	"github.com/tropimon/tropimon-stats/internal/store"
	"github.com/tropimon/tropimon-stats/internal/version"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:     "tropimon-stats",
		Short:   "Anonymous Cobblemon capture statistics",
		Version: version.String(),
	}

	root.AddCommand(loadCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(genLogsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger from the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// --------------------------------------------------------------------------
// load command
// --------------------------------------------------------------------------

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Rebuild the statistics database from the capture logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := newLogger(cfg.LogLevel)
			slog.SetDefault(logger)

			// At most one rebuild may run at a time; a concurrent run
			// would race the reset/rebuild sequence.
			release, ok, err := runlock.Acquire(cfg.LockPath)
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !ok {
				return errors.New("another rebuild is already running")
			}
			defer release()

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ingester := ingest.New(st, cfg.LogRoot,
				ingest.WithLogger(logger),
				ingest.WithMetrics(metrics.NewIngest(metrics.NewRegistry())),
			)

			result, err := ingester.Run(ctx)
			if err != nil {
				return fmt.Errorf("rebuild failed: %w", err)
			}

			if err := st.Vacuum(ctx); err != nil {
				logger.Warn("vacuum after rebuild failed", "error", err)
			}

			logger.Info("load complete",
				"records", result.Records,
				"players", result.Players,
				"species", result.Species,
			)
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only statistics API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := newLogger(cfg.LogLevel)
			slog.SetDefault(logger)

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			registry := metrics.NewRegistry()

			serverOpts := []api.ServerOption{
				api.WithStats(&app.StatsService{Store: st}),
				api.WithMetricsRegistry(registry),
				api.WithCORS(cfg.CORSAllowOrigins),
			}

			var limiter *api.RateLimiter
			if cfg.RateLimitEnabled {
				limiter = api.NewRateLimiter(api.RateLimiterConfig{
					Rate:            cfg.RateLimitPerSecond,
					Burst:           cfg.RateLimitBurst,
					CleanupInterval: 5 * time.Minute,
				})
				defer limiter.Stop()
				serverOpts = append(serverOpts, api.WithRateLimiter(limiter))
			}

			health := app.HealthService{Store: st, Version: version.String()}
			server := api.NewServer(cfg.Addr, health, serverOpts...)

			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting tropimon-stats", "version", version.String(), "addr", cfg.Addr)
				if err := server.Start(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case <-done:
				logger.Info("shutting down")
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("server shutdown error", "error", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// genlogs command
// --------------------------------------------------------------------------

func genLogsCmd() *cobra.Command {
	var (
		players  int
		captures int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "genlogs",
		Short: "Write a synthetic capture log tree for demos and testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := newLogger(cfg.LogLevel)
			if err := genlogs.Generate(cfg.LogRoot, genlogs.Options{
				Players:     players,
				MaxCaptures: captures,
				Seed:        seed,
			}); err != nil {
				return err
			}
			logger.Info("sample logs written", "root", cfg.LogRoot, "players", players)
			return nil
		},
	}

	cmd.Flags().IntVar(&players, "players", 10, "number of synthetic players")
	cmd.Flags().IntVar(&captures, "captures", 25, "max captures per player")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for capture placement")
	return cmd
}
