package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/water-deficit-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/water-deficit-service/internal/adapter/kafka"
	"github.com/couchcryptid/water-deficit-service/internal/adapter/weather"
	"github.com/couchcryptid/water-deficit-service/internal/config"
	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	"github.com/couchcryptid/water-deficit-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var source domain.WeatherSource = weather.NewSource(
		weather.NewACISClient(cfg.ACISURL, cfg.UpstreamTimeout, metrics, logger),
		weather.NewOutlookClient(cfg.OutlookURL, cfg.OutlookToken, domain.DefaultPercentiles, cfg.UpstreamTimeout, metrics, logger),
		weather.NewPETClient(cfg.PETURL, cfg.PETToken, cfg.UpstreamTimeout, metrics, logger),
	)
	if cfg.WeatherCacheSize > 0 {
		source = weather.NewCachedSource(source, cfg.WeatherCacheSize, metrics)
		logger.Info("weather cache enabled", "size", cfg.WeatherCacheSize)
	}

	engine := domain.NewEngine(domain.NewModelData())
	forecaster := pipeline.NewForecaster(source, engine, cfg.OutlookHorizonDays, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(reader, forecaster, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, forecaster, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
