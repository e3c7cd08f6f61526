package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/au-temperature-map/internal/config"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

// SinkName labels this sink in logs and metrics.
const SinkName = "kafka"

// Message header keys.
const (
	HeaderLabel  = "label"
	HeaderOffset = "offset"
)

// Writer publishes every session frame to a Kafka topic, keyed by session ID
// so one session's frames stay ordered within a partition.
// It implements session.FrameSink.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates an asynchronous producer for the configured frame topic.
// Publish never waits on the broker; delivery failures are logged and counted.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &Writer{logger: logger, metrics: metrics}
	w.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFrameTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
		Completion:   w.completion,
	}
	return w
}

// Name implements session.FrameSink.
func (w *Writer) Name() string { return SinkName }

// Publish implements session.FrameSink.
func (w *Writer) Publish(ctx context.Context, u session.Update) error {
	msg, err := serializeToMessage(u)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) completion(msgs []kafkago.Message, err error) {
	if err == nil {
		return
	}
	w.metrics.SinkErrors.WithLabelValues(SinkName).Add(float64(len(msgs)))
	w.logger.Error("kafka frame delivery failed", "messages", len(msgs), "error", err)
}

// serializeToMessage marshals an Update into a Kafka message.
func serializeToMessage(u session.Update) (kafkago.Message, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize frame update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(u.Session),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderLabel, Value: []byte(u.Frame.Label)},
			{Key: HeaderOffset, Value: []byte(strconv.Itoa(u.Frame.Offset))},
		},
	}, nil
}
