package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bankist.org/internal/config"
	"bankist.org/internal/httpapi"
	"bankist.org/internal/obs"
	"bankist.org/internal/schedule"
	"bankist.org/internal/session"
	"bankist.org/internal/stream"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default BANKIST_ADDR or :8080)")
	serveCmd.Flags().String("seed", "", "TOML seed file (default: built-in demo accounts)")
	serveCmd.Flags().Int("idle-ticks", 0, "ticks of inactivity before logout")
	serveCmd.Flags().Duration("loan-delay", 0, "delay before an approved loan is posted")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}
	dir, err := seed.Directory(cfg.PINCost)
	if err != nil {
		return err
	}

	views := stream.New()
	ctrl := session.New(dir,
		session.WithScheduler(schedule.Real{}),
		session.WithRenderer(views),
		session.WithIdleTicks(cfg.IdleTicks),
		session.WithTickInterval(cfg.TickInterval),
		session.WithLoanDelay(cfg.LoanDelay),
	)
	defer ctrl.Close()

	api := httpapi.New(ctrl, views, version, httpapi.WithRateLimit(cfg.RateBurst, cfg.RatePerSec))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// WriteTimeout stays unset: /v1/stream is long-lived.
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		obs.Info("server_start", map[string]any{
			"addr":     srv.Addr,
			"version":  version,
			"accounts": dir.Len(),
			"idle":     cfg.IdleTimeout().String(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	obs.Info("server_shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	obs.Info("server_stopped", nil)
	return nil
}
