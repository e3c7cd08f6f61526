package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/au-temperature-map/internal/adapter/plot"
	"github.com/couchcryptid/au-temperature-map/internal/adapter/raster"
	"github.com/couchcryptid/au-temperature-map/internal/animation"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
	"github.com/couchcryptid/au-temperature-map/internal/render"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

type createResponse struct {
	ID    string       `json:"id"`
	Frame render.Frame `json:"frame"`
}

type scrubRequest struct {
	Offset *int `json:"offset"`
}

type selectRequest struct {
	Postcode string `json:"postcode"`
}

type legendResponse struct {
	Min   float64             `json:"min"`
	Max   float64             `json:"max"`
	Stops []render.LegendStop `json:"stops"`
}

type citiesResponse struct {
	Cities   []domain.City    `json:"cities"`
	Defaults domain.Selection `json:"defaults"`
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, citiesResponse{Cities: domain.Cities, Defaults: domain.DefaultSelection()})
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	d, ok := s.sessions.Dispatcher()
	if !ok {
		writeError(w, session.ErrNotReady)
		return
	}
	sc := d.Scale()
	sharedobs.WriteJSON(w, http.StatusOK, legendResponse{Min: sc.Min, Max: sc.Max, Stops: render.Legend()})
}

func (s *Server) handleLegendPNG(w http.ResponseWriter, _ *http.Request) {
	d, ok := s.sessions.Dispatcher()
	if !ok {
		writeError(w, session.ErrNotReady)
		return
	}
	b, err := s.cache.GetOrRender("legend", func() ([]byte, error) { return raster.LegendPNG(d.Scale()) })
	if err != nil {
		s.logger.Error("legend render failed", "error", err)
		writeError(w, err)
		return
	}
	writePNG(w, b)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := sess.Frame(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID())
	sharedobs.WriteJSON(w, http.StatusCreated, createResponse{ID: sess.ID(), Frame: f})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Close(r.PathValue("id")) {
		writeError(w, errSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (render.Frame, error) {
		return sess.Frame(ctx)
	})
}

// command adapts a no-argument session trigger to a handler.
func (s *Server) command(fn func(*session.Session, context.Context) (render.Frame, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.withSession(w, r, func(ctx context.Context, sess *session.Session) (render.Frame, error) {
			return fn(sess, ctx)
		})
	}
}

func (s *Server) handleScrub(w http.ResponseWriter, r *http.Request) {
	var req scrubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Offset == nil {
		writeError(w, badRequest("body must be {\"offset\": <int>}"))
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (render.Frame, error) {
		return sess.Scrub(ctx, *req.Offset)
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil {
		writeError(w, badRequest("slot must be 1 or 2"))
		return
	}
	slot, err := domain.ParseSlot(n)
	if err != nil {
		writeError(w, badRequest(err.Error()))
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Postcode == "" {
		writeError(w, badRequest("body must be {\"postcode\": \"<code>\"}"))
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (render.Frame, error) {
		return sess.Select(ctx, slot, req.Postcode)
	})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	action := geo.ZoomAction(r.PathValue("action"))
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (render.Frame, error) {
		return sess.Zoom(ctx, action)
	})
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		writeError(w, badRequest("postcode query parameter is required"))
		return
	}
	f, ok := s.frame(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{
		"postcode": postcode,
		"text":     f.Tooltip(postcode),
	})
}

func (s *Server) handleMapPNG(w http.ResponseWriter, r *http.Request) {
	f, ok := s.frame(w, r)
	if !ok {
		return
	}
	d, ok := s.sessions.Dispatcher()
	if !ok {
		writeError(w, session.ErrNotReady)
		return
	}
	mr := raster.NewMapRenderer(d.Regions(), d.Projection(), s.opts.Width, s.opts.Height, s.cache)
	b, err := mr.PNG(f)
	if err != nil {
		s.logger.Error("map render failed", "session", r.PathValue("id"), "error", err)
		writeError(w, err)
		return
	}
	writePNG(w, b)
}

func (s *Server) handleLinePlotPNG(w http.ResponseWriter, r *http.Request) {
	f, ok := s.frame(w, r)
	if !ok {
		return
	}
	d, ok := s.sessions.Dispatcher()
	if !ok {
		writeError(w, session.ErrNotReady)
		return
	}
	sc := d.Scale()
	b, err := plot.LinePlot{
		Width:   s.opts.PlotWidth,
		Height:  s.opts.PlotHeight,
		MinTemp: sc.Min,
		MaxTemp: sc.Max,
	}.PNG(f)
	if err != nil {
		s.logger.Error("line plot render failed", "session", r.PathValue("id"), "error", err)
		writeError(w, err)
		return
	}
	writePNG(w, b)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, errSessionNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) frame(w http.ResponseWriter, r *http.Request) (render.Frame, bool) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return render.Frame{}, false
	}
	f, err := sess.Frame(r.Context())
	if err != nil {
		writeError(w, err)
		return render.Frame{}, false
	}
	return f, true
}

func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(context.Context, *session.Session) (render.Frame, error)) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	f, err := fn(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, f)
}

var errSessionNotFound = errors.New("session not found")

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return badRequestError{msg: msg} }

func statusFor(err error) int {
	var br badRequestError
	switch {
	case errors.As(err, &br),
		errors.Is(err, animation.ErrOffsetOutOfRange),
		errors.Is(err, session.ErrUnknownZoom):
		return http.StatusBadRequest
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.Is(err, session.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	sharedobs.WriteJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writePNG(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(b) //nolint:errcheck // client went away
}
