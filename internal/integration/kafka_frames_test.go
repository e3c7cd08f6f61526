//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/au-temperature-map/internal/adapter/kafka"
	"github.com/couchcryptid/au-temperature-map/internal/animation"
	"github.com/couchcryptid/au-temperature-map/internal/config"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

const testFrameTopic = "test-frames"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("tempmap-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func square(x, y float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

func testDataset(t *testing.T) session.Dataset {
	t.Helper()
	ti, err := domain.NewTimeIndex(domain.YearMonth{Year: 2010, Month: 1}, domain.YearMonth{Year: 2010, Month: 3})
	require.NoError(t, err)
	idx, err := domain.NewMonthIndex(ti, []domain.TemperatureRecord{
		{Postcode: "2000", Year: 2010, Month: 1, AvgTemp: 22.5},
		{Postcode: "3000", Year: 2010, Month: 1, AvgTemp: 19.0},
		{Postcode: "2000", Year: 2010, Month: 2, AvgTemp: 23.0},
		{Postcode: "3000", Year: 2010, Month: 3, AvgTemp: 17.5},
	})
	require.NoError(t, err)
	return session.Dataset{
		Index: idx,
		Regions: geo.NewRegionSet([]geo.Region{
			{Key: "2000", Geometry: square(151, -34)},
			{Key: "3000", Geometry: square(144, -38)},
		}),
	}
}

// TestSessionFramesReachKafka drives a session with the Kafka sink attached and
// reads the frames back through kafka.Reader.
func TestSessionFramesReachKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFrameTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaFrameTopic: testFrameTopic}
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger(), metrics)

	mgr := session.NewManager(session.Config{
		Width:        630,
		Height:       570,
		MinTemp:      0,
		MaxTemp:      35,
		Transition:   200 * time.Millisecond,
		TickInterval: 300 * time.Millisecond,
		EndPolicy:    animation.EndStop,
		Selection:    domain.DefaultSelection(),
		Clock:        clockwork.NewFakeClock(),
	}, []session.FrameSink{writer}, discardLogger(), metrics)
	require.NoError(t, mgr.SetDataset(testDataset(t)))

	s, err := mgr.Create()
	require.NoError(t, err)
	_, err = s.Scrub(ctx, 1)
	require.NoError(t, err)
	_, err = s.Scrub(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, mgr.Shutdown(ctx))
	require.NoError(t, writer.Close(), "flush pending frames")

	reader := kafka.NewReader([]string{broker}, testFrameTopic, "", discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var labels []string
	for len(labels) < 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		u, err := reader.ReadUpdate(readCtx)
		readCancel()
		require.NoError(t, err, "read frame %d", len(labels))
		assert.Equal(t, s.ID(), u.Session)
		labels = append(labels, u.Frame.Label)
	}
	assert.Equal(t, []string{"Jan 2010", "Feb 2010", "Mar 2010"}, labels)
	assert.Zero(t, testutil.ToFloat64(metrics.SinkErrors.WithLabelValues(kafka.SinkName)))
}

// TestReaderSkipsUndecodable publishes a poison message ahead of a valid frame
// and checks that Run delivers only the valid one.
func TestReaderSkipsUndecodable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFrameTopic)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testFrameTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("abc"), Value: []byte(`{"frame":{"offset":4,"label":"May 2010"}}`)},
	))

	reader := kafka.NewReader([]string{broker}, testFrameTopic,
		fmt.Sprintf("test-reader-%d", time.Now().UnixNano()), discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	runCtx, runCancel := context.WithCancel(ctx)
	got := make(chan session.Update, 2)
	errCh := make(chan error, 1)
	go func() {
		errCh <- reader.Run(runCtx, func(u session.Update) { got <- u })
	}()

	select {
	case u := <-got:
		assert.Equal(t, "abc", u.Session)
		assert.Equal(t, 4, u.Frame.Offset)
		assert.Equal(t, "May 2010", u.Frame.Label)
	case <-ctx.Done():
		t.Fatal("timed out waiting for frame")
	}

	runCancel()
	require.NoError(t, <-errCh)
	assert.Empty(t, got)
}
