// Command tail follows the frame topic and prints one line per published
// frame. It reads the same KAFKA_* variables as the service.
//
// Usage:
//
//	KAFKA_BROKERS=localhost:9092 go run ./cmd/tail -session <id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	kafkaadapter "github.com/couchcryptid/au-temperature-map/internal/adapter/kafka"
	"github.com/couchcryptid/au-temperature-map/internal/config"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

func main() {
	sessionID := flag.String("session", "", "only print frames from this session")
	group := flag.String("group", "", "consumer group; empty reads the topic from the start")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := kafkaadapter.NewReader(cfg.KafkaBrokers, cfg.KafkaFrameTopic, *group, logger)
	defer reader.Close()

	logger.Info("tailing frames", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaFrameTopic)
	err = reader.Run(ctx, func(u session.Update) {
		if *sessionID != "" && u.Session != *sessionID {
			return
		}
		avg := "n/a"
		if u.Frame.HasAverage {
			avg = fmt.Sprintf("%.2f°C", u.Frame.Average)
		}
		fmt.Printf("%s  %3d  %-8s  %-6s  regions=%d updated=%d  avg=%s\n",
			u.Session, u.Frame.Offset, u.Frame.Label, u.Frame.Season,
			u.Frame.BucketSize, len(u.Delta.Regions.Updated), avg)
	})
	if err != nil {
		logger.Error("tail stopped", "error", err)
		os.Exit(1)
	}
}
