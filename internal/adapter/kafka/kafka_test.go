package kafka

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/au-temperature-map/internal/config"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/render"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

func testUpdate() session.Update {
	return session.Update{
		Session: "sess-1",
		Frame: render.Frame{
			Offset:     13,
			Label:      "Feb 2001",
			Season:     "summer",
			Average:    22.5,
			HasAverage: true,
			Selection:  domain.DefaultSelection(),
			Regions: []render.RegionFill{
				{Postcode: "2000", Temperature: 22.5, Source: render.SourceRegion, Fill: "#aabbcc"},
			},
		},
		Delta: render.Delta{Regions: render.Diff{Updated: []string{"2000"}}},
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(testUpdate())
	require.NoError(t, err)

	assert.Equal(t, []byte("sess-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"label":"Feb 2001"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, HeaderLabel, msg.Headers[0].Key)
	assert.Equal(t, []byte("Feb 2001"), msg.Headers[0].Value)
	assert.Equal(t, HeaderOffset, msg.Headers[1].Key)
	assert.Equal(t, []byte("13"), msg.Headers[1].Value)
}

func TestMapMessageToUpdate(t *testing.T) {
	msg, err := serializeToMessage(testUpdate())
	require.NoError(t, err)

	u, err := mapMessageToUpdate(msg)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", u.Session)
	assert.Equal(t, 13, u.Frame.Offset)
	assert.Equal(t, []string{"2000"}, u.Delta.Regions.Updated)
}

func TestMapMessageToUpdate_FallsBackToKey(t *testing.T) {
	u, err := mapMessageToUpdate(kafkago.Message{Key: []byte("from-key"), Value: []byte(`{"frame":{"offset":2}}`)})
	require.NoError(t, err)
	assert.Equal(t, "from-key", u.Session)
	assert.Equal(t, 2, u.Frame.Offset)
}

func TestMapMessageToUpdate_Invalid(t *testing.T) {
	_, err := mapMessageToUpdate(kafkago.Message{Value: []byte("not json"), Offset: 7})
	require.ErrorIs(t, err, errDecode)
	assert.Contains(t, err.Error(), "offset 7")
}

func TestWriterCompletionCountsFailures(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaFrameTopic: "frames"},
		slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	defer w.Close()

	assert.Equal(t, SinkName, w.Name())
	w.completion(make([]kafkago.Message, 3), errors.New("broker down"))
	w.completion(make([]kafkago.Message, 5), nil)

	assert.InDelta(t, 3.0, testutil.ToFloat64(metrics.SinkErrors.WithLabelValues(SinkName)), 1e-9)
}
