package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/au-temperature-map/internal/animation"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/render"
)

// ErrNotReady is returned while the dataset is still loading.
var ErrNotReady = errors.New("dataset not loaded")

// Dataset is the immutable data every session renders from.
type Dataset struct {
	Index   *domain.MonthIndex
	Regions *geo.RegionSet
}

// Config holds the settings shared by all sessions of a Manager.
type Config struct {
	Width      float64
	Height     float64
	MinTemp    float64
	MaxTemp    float64
	Transition time.Duration

	TickInterval time.Duration
	EndPolicy    animation.EndPolicy
	Selection    domain.Selection
	Clock        clockwork.Clock
}

// Manager creates and tracks sessions. The dataset is installed once,
// possibly after the manager starts serving, and readiness reflects it.
type Manager struct {
	cfg     Config
	sinks   []FrameSink
	logger  *slog.Logger
	metrics *observability.Metrics

	dispatcher atomic.Pointer[render.Dispatcher]
	loadErr    atomic.Pointer[error]

	mu       sync.Mutex
	sessions map[string]*entry
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// NewManager creates a Manager. Sinks are attached to every session.
func NewManager(cfg Config, sinks []FrameSink, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]*entry),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetDataset installs the loaded dataset, making the manager ready.
func (m *Manager) SetDataset(ds Dataset) error {
	scale, err := render.NewScale(m.cfg.MinTemp, m.cfg.MaxTemp)
	if err != nil {
		return err
	}
	d := render.NewDispatcher(ds.Index, ds.Regions, render.Options{
		Scale:      scale,
		Projection: geo.AustraliaProjection(m.cfg.Width, m.cfg.Height),
		Transition: m.cfg.Transition,
	})
	m.dispatcher.Store(d)
	m.metrics.DatasetRecords.Set(float64(ds.Index.Len()))
	m.logger.Info("dataset ready",
		"records", ds.Index.Len(),
		"months", ds.Index.TimeIndex().TotalMonths(),
		"missing_months", len(ds.Index.MissingMonths()),
		"regions", ds.Regions.Len(),
	)
	return nil
}

// SetLoadError records a fatal load failure; readiness stays failed.
func (m *Manager) SetLoadError(err error) {
	m.loadErr.Store(&err)
	m.logger.Error("dataset load failed", "error", err)
}

// Dispatcher returns the shared renderer once the dataset is loaded.
func (m *Manager) Dispatcher() (*render.Dispatcher, bool) {
	d := m.dispatcher.Load()
	return d, d != nil
}

// CheckReadiness reports whether sessions can be created.
func (m *Manager) CheckReadiness(_ context.Context) error {
	if p := m.loadErr.Load(); p != nil {
		return fmt.Errorf("dataset load failed: %w", *p)
	}
	if m.dispatcher.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// Create starts a new session with the configured defaults.
func (m *Manager) Create() (*Session, error) {
	d, ok := m.Dispatcher()
	if !ok {
		return nil, ErrNotReady
	}
	s, err := New(uuid.NewString(), d, Options{
		Clock:        m.cfg.Clock,
		TickInterval: m.cfg.TickInterval,
		EndPolicy:    m.cfg.EndPolicy,
		Selection:    m.cfg.Selection,
		Viewport:     geo.Viewport{Width: m.cfg.Width, Height: m.cfg.Height},
		Sinks:        m.sinks,
		Logger:       m.logger,
		Metrics:      m.metrics,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx.Err() != nil {
		return nil, ErrClosed
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.sessions[s.ID()] = &entry{session: s, cancel: cancel}
	m.metrics.SessionsActive.Inc()
	m.wg.Go(func() { s.Run(ctx) })
	return s, nil
}

// Get looks up a running session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops a session and waits for its loop to exit.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		m.metrics.SessionsActive.Dec()
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	e.cancel()
	<-e.session.Done()
	return true
}

// Shutdown stops every session and waits for their loops, or for ctx.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.cancel()
	n := len(m.sessions)
	clear(m.sessions)
	m.metrics.SessionsActive.Set(0)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.logger.Info("sessions stopped", "count", n)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
