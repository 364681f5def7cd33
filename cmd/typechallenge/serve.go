package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/typechallenge/internal/api"
	"github.com/verte-zerg/typechallenge/internal/auth"
	"github.com/verte-zerg/typechallenge/internal/config"
	"github.com/verte-zerg/typechallenge/internal/health"
	"github.com/verte-zerg/typechallenge/internal/logger"
	"github.com/verte-zerg/typechallenge/internal/progress"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr       string
	serveLogLevel   string
	serveRevalidate bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&serveLogLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().BoolVar(&serveRevalidate, "revalidate", false, "re-score submitted progress instead of trusting client numbers")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, &cfg)

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	checks := []health.Checker{{Name: "sqlite", Check: b.store.Ping}}
	if b.redis != nil {
		checks = append(checks, health.Checker{Name: "redis", Check: b.redis.Ping})
	}
	srv := &api.Server{
		Auth:       auth.NewService(b.store, auth.LogNotifier{}),
		Users:      b.store,
		Tracker:    progress.NewTracker(b.progress, catalog),
		Catalog:    catalog,
		Health:     health.New(checks...),
		Logger:     log,
		Revalidate: cfg.Revalidate,
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening",
			slog.String("addr", cfg.Addr),
			slog.String("store", cfg.Backend),
			slog.Int("levels", catalog.Len()),
			slog.Bool("revalidate", cfg.Revalidate),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Server) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = serveAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if flags.Changed("revalidate") {
		cfg.Revalidate = serveRevalidate
	}
}
