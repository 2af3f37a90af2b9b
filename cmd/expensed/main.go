package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/apiclient"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store/memory"
	"expensetracker/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	remote := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	snapshot := memory.New()

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer events.Close()
	} else {
		slog.Info("Change events disabled - no AMQP_URL provided")
	}

	var srv *apphttp.Server
	refresher := worker.NewRefresher(remote, snapshot, cfg.RefreshInterval, func() {
		srv.InvalidateViews()
	})

	opts := apphttp.Options{
		OnChange: refresher.TriggerRefresh,
		CacheTTL: cfg.CacheTTL,
	}
	if events != nil {
		opts.Events = events
	}
	srv = apphttp.NewServer(":"+cfg.Port, snapshot, remote, cfg.PageSize, opts)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting expensed server",
			applog.FieldComponent, applog.ComponentHTTP,
			"port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if events != nil {
		g.Go(func() error {
			if err := events.ConsumeChanges(ctx, refresher.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", applog.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	slog.Info("Server stopped gracefully")
}
