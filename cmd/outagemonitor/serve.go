package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"outagemonitor/internal/config"
	"outagemonitor/internal/logging"
	"outagemonitor/internal/monitor"
	"outagemonitor/internal/server"
	"outagemonitor/internal/source"
	"outagemonitor/internal/telemetry"
)

var serveAddr string

func init() {
	rootCmd.Flags().StringVar(&serveAddr, "addr", "", "address for the web server (overrides http.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error().Err(err).Msg("close page store")
		}
	}()

	var (
		metrics  *telemetry.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		metrics, err = telemetry.NewMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		gatherer = prometheus.DefaultGatherer
	}

	opts := server.Options{
		Addr:           cfg.HTTP.Addr,
		Source:         source.New(cfg, store, metrics),
		Location:       cfg.Location(),
		DateLayout:     cfg.DateLayout,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		StreamInterval: cfg.StreamInterval(),
		Logger:         logging.Component(logger, "server"),
		Metrics:        metrics,
		Gatherer:       gatherer,
	}

	if cfg.Refresh.Policy == config.RefreshPeriodic {
		refresher := monitor.New(source.NewHTTPFetcher(cfg.Source, metrics), store, monitor.Options{
			Interval:    cfg.RefreshInterval(),
			Timeout:     cfg.FetchTimeout(),
			HistorySize: cfg.Refresh.HistorySize,
			Logger:      logging.Component(logger, "refresher"),
			Metrics:     metrics,
		})
		refresher.Start()
		defer refresher.Stop()
		opts.Refresher = refresher
	}

	srv := server.New(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().
		Str("addr", cfg.HTTP.Addr).
		Str("serve", cfg.Source.Serve).
		Str("refresh", cfg.Refresh.Policy).
		Str("cache", cfg.Cache.Backend).
		Msg("outagemonitor listening")
	if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info().Msg("outagemonitor stopped")
	return nil
}
