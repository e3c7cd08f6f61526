package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/au-temperature-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/au-temperature-map/internal/adapter/kafka"
	"github.com/couchcryptid/au-temperature-map/internal/adapter/loader"
	"github.com/couchcryptid/au-temperature-map/internal/adapter/raster"
	"github.com/couchcryptid/au-temperature-map/internal/config"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

// Canvas sizes for the rendered views.
const (
	mapWidth   = 630
	mapHeight  = 570
	plotWidth  = 480
	plotHeight = 300
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Kafka frame sink (feature-flagged via KAFKA_ENABLED).
	var sinks []session.FrameSink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		sinks = append(sinks, writer)
		logger.Info("kafka frame sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaFrameTopic)
	} else {
		logger.Info("kafka frame sink disabled")
	}

	manager := session.NewManager(session.Config{
		Width:        mapWidth,
		Height:       mapHeight,
		MinTemp:      cfg.MinTemp,
		MaxTemp:      cfg.MaxTemp,
		Transition:   cfg.TransitionDuration,
		TickInterval: cfg.TickInterval,
		EndPolicy:    cfg.EndPolicy,
		Selection:    cfg.DefaultSelection,
	}, sinks, logger, metrics)

	cache := raster.NewImageCache(cfg.FrameCacheSize, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, manager, cache, httpadapter.Options{
		Width:          mapWidth,
		Height:         mapHeight,
		PlotWidth:      plotWidth,
		PlotHeight:     plotHeight,
		HTTP2Cleartext: cfg.HTTP2Cleartext,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server; /readyz reports 503 until the dataset is in.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the dataset once. A failure leaves the service permanently not ready.
	go func() {
		ds, err := loader.LoadDataset(ctx, loader.Paths{
			Regions:           cfg.RegionsPath,
			Temperatures:      cfg.TemperaturesPath,
			RegionKeyProperty: cfg.RegionKeyProperty,
		}, cfg.Start, cfg.End, logger)
		if err != nil {
			manager.SetLoadError(err)
			return
		}
		if err := manager.SetDataset(ds); err != nil {
			manager.SetLoadError(err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("session shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
