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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/centromex/request-relay-bot/internal/bot"
	"github.com/centromex/request-relay-bot/internal/config"
	"github.com/centromex/request-relay-bot/internal/db"
	"github.com/centromex/request-relay-bot/internal/janitor"
	"github.com/centromex/request-relay-bot/internal/metrics"
	"github.com/centromex/request-relay-bot/internal/settings"
)

func runServe(ctx context.Context, envFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Info("starting request relay bot", "version", version)

	if cfg.OwnerID == 0 {
		logger.Warn("BOT_OWNER_ID not set, owner commands and buttons are disabled")
	}
	if cfg.AdminChatID == 0 {
		logger.Warn("ADMIN_CHAT_ID not set, forwarding requests will fail")
	}

	ledger, err := db.New()
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	defer ledger.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	telegramBot, err := bot.New(bot.Config{
		Token:       cfg.TelegramToken,
		OwnerID:     cfg.OwnerID,
		AdminChatID: cfg.AdminChatID,
		PollTimeout: cfg.PollTimeoutSeconds,
		Debug:       cfg.Debug,
	}, ledger, settings.New(cfg.DefaultDeadlineHours), m, logger.With("component", "bot"))
	if err != nil {
		return err
	}

	purger, err := janitor.New(ledger, cfg.PurgeSchedule, cfg.Retention, m, logger.With("component", "janitor"))
	if err != nil {
		return err
	}
	purger.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		purger.Stop(stopCtx)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return telegramBot.Run(groupCtx)
	})
	if cfg.MetricsAddr != "" {
		group.Go(func() error {
			return serveMetrics(groupCtx, cfg.MetricsAddr, reg, logger)
		})
	}

	logger.Info("bot is running, press Ctrl+C to stop")
	return group.Wait()
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}()

	logger.Info("metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
