package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/couchcryptid/au-temperature-map/internal/adapter/raster"
	"github.com/couchcryptid/au-temperature-map/internal/render"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

// Sessions is the session store the API drives.
type Sessions interface {
	sharedobs.ReadinessChecker
	Dispatcher() (*render.Dispatcher, bool)
	Create() (*session.Session, error)
	Get(id string) (*session.Session, bool)
	Close(id string) bool
}

// Options configures the API surface.
type Options struct {
	Width          int
	Height         int
	PlotWidth      int
	PlotHeight     int
	HTTP2Cleartext bool
}

// Server exposes health, readiness, metrics, and the session API.
type Server struct {
	httpServer *http.Server
	sessions   Sessions
	cache      *raster.ImageCache
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the probe routes and the /api routes.
func NewServer(addr string, sessions Sessions, cache *raster.ImageCache, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sessions: sessions,
		cache:    cache,
		opts:     opts,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(sessions))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/cities", s.handleCities)
	mux.HandleFunc("GET /api/legend", s.handleLegend)
	mux.HandleFunc("GET /api/legend.png", s.handleLegendPNG)

	mux.HandleFunc("POST /api/sessions", s.handleCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleFrame)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/sessions/{id}/play", s.command((*session.Session).Play))
	mux.HandleFunc("POST /api/sessions/{id}/pause", s.command((*session.Session).Pause))
	mux.HandleFunc("POST /api/sessions/{id}/toggle", s.command((*session.Session).Toggle))
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.command((*session.Session).Reset))
	mux.HandleFunc("POST /api/sessions/{id}/scrub", s.handleScrub)
	mux.HandleFunc("PUT /api/sessions/{id}/selection/{slot}", s.handleSelect)
	mux.HandleFunc("POST /api/sessions/{id}/zoom/{action}", s.handleZoom)
	mux.HandleFunc("GET /api/sessions/{id}/tooltip", s.handleTooltip)
	mux.HandleFunc("GET /api/sessions/{id}/map.png", s.handleMapPNG)
	mux.HandleFunc("GET /api/sessions/{id}/lineplot.png", s.handleLinePlotPNG)
	mux.HandleFunc("GET /api/sessions/{id}/stream", s.handleStream)

	var handler http.Handler = mux
	if opts.HTTP2Cleartext {
		handler = h2c.NewHandler(mux, &http2.Server{})
	}
	s.httpServer.Handler = handler

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr, "h2c", s.opts.HTTP2Cleartext)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
