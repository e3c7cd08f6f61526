package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/au-temperature-map/internal/session"
)

// Reader consumes published frame updates from a Kafka topic.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer for topic. An empty groupID reads the single
// partition directly from the first offset.
func NewReader(brokers []string, topic, groupID string, logger *slog.Logger) *Reader {
	cfg := kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	if groupID == "" {
		cfg.StartOffset = kafkago.FirstOffset
	}
	return &Reader{reader: kafkago.NewReader(cfg), logger: logger}
}

// ReadUpdate blocks for the next update.
func (r *Reader) ReadUpdate(ctx context.Context) (session.Update, error) {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return session.Update{}, err
	}
	return mapMessageToUpdate(msg)
}

// Run calls fn for every update until ctx is cancelled. Broker errors are
// retried with exponential backoff; undecodable messages are skipped.
func (r *Reader) Run(ctx context.Context, fn func(session.Update)) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		u, err := r.ReadUpdate(ctx)
		switch {
		case err == nil:
			backoff = 200 * time.Millisecond
			fn(u)
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, errDecode):
			r.logger.Warn("skipping undecodable frame message", "error", err)
		default:
			r.logger.Error("kafka read failed", "error", err, "backoff", backoff)
			if !retry.SleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
		}
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

var errDecode = errors.New("decode frame message")

func mapMessageToUpdate(msg kafkago.Message) (session.Update, error) {
	var u session.Update
	if err := json.Unmarshal(msg.Value, &u); err != nil {
		return session.Update{}, fmt.Errorf("%w at offset %d: %w", errDecode, msg.Offset, err)
	}
	if u.Session == "" {
		u.Session = string(msg.Key)
	}
	return u, nil
}
