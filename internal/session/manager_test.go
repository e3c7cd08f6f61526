package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/au-temperature-map/internal/animation"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
)

func newTestManager(t *testing.T) (*Manager, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	m := NewManager(Config{
		Width:        630,
		Height:       570,
		MinTemp:      0,
		MaxTemp:      35,
		Transition:   200 * time.Millisecond,
		TickInterval: testInterval,
		EndPolicy:    animation.EndStop,
		Selection:    domain.DefaultSelection(),
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m, metrics
}

func TestManager_NotReadyUntilDatasetLoaded(t *testing.T) {
	m, _ := newTestManager(t)

	require.ErrorIs(t, m.CheckReadiness(context.Background()), ErrNotReady)
	_, err := m.Create()
	require.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, m.SetDataset(testDataset(t)))
	assert.NoError(t, m.CheckReadiness(context.Background()))
}

func TestManager_LoadErrorKeepsNotReady(t *testing.T) {
	m, _ := newTestManager(t)
	boom := errors.New("no such file")

	m.SetLoadError(boom)

	err := m.CheckReadiness(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "dataset load failed")
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m, metrics := newTestManager(t)
	require.NoError(t, m.SetDataset(testDataset(t)))
	ctx := context.Background()

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, m.Len())
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.SessionsActive), 1e-9)

	_, err = a.Scrub(ctx, 2)
	require.NoError(t, err)
	fb, err := b.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fb.Offset)

	got, ok := m.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestManager_Close(t *testing.T) {
	m, metrics := newTestManager(t)
	require.NoError(t, m.SetDataset(testDataset(t)))

	s, err := m.Create()
	require.NoError(t, err)

	assert.True(t, m.Close(s.ID()))
	assert.False(t, m.Close(s.ID()))
	_, ok := m.Get(s.ID())
	assert.False(t, ok)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.SessionsActive), 1e-9)

	_, err = s.Frame(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestManager_ShutdownStopsAll(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.SetDataset(testDataset(t)))

	s, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Shutdown(context.Background()))
	<-s.Done()
	assert.Equal(t, 0, m.Len())

	_, err = m.Create()
	require.ErrorIs(t, err, ErrClosed)
}

func TestManager_RecordsDatasetSize(t *testing.T) {
	m, metrics := newTestManager(t)
	require.NoError(t, m.SetDataset(testDataset(t)))
	assert.InDelta(t, 4.0, testutil.ToFloat64(metrics.DatasetRecords), 1e-9)
}
