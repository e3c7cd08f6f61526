package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
	"github.com/couchcryptid/au-temperature-map/internal/render"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// control is a client message on the stream; it carries the same triggers as
// the REST routes.
type control struct {
	Action   string `json:"action"`
	Offset   int    `json:"offset,omitempty"`
	Slot     int    `json:"slot,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Zoom     string `json:"zoom,omitempty"`
}

type streamError struct {
	Error string `json:"error"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the failure response.
		s.logger.Warn("websocket upgrade failed", "session", sess.ID(), "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, unsubscribe, err := sess.Subscribe(ctx)
	if err != nil {
		s.writeClose(conn, err)
		return
	}
	defer unsubscribe()

	errs := make(chan error, 1)
	go s.readControls(ctx, conn, sess, errs)

	s.logger.Info("stream opened", "session", sess.ID())
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case u, open := <-updates:
			if !open {
				s.writeClose(conn, session.ErrClosed)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // surfaced by the write
			if err := conn.WriteJSON(u); err != nil {
				s.logger.Info("stream write failed", "session", sess.ID(), "error", err)
				return
			}
		case err := <-errs:
			if err != nil {
				conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // surfaced by the write
				if werr := conn.WriteJSON(streamError{Error: err.Error()}); werr != nil {
					return
				}
				continue
			}
			s.logger.Info("stream closed by client", "session", sess.ID())
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readControls applies client triggers until the connection closes. Command
// errors are reported on errs; a nil send means the reader has finished.
func (s *Server) readControls(ctx context.Context, conn *websocket.Conn, sess *session.Session, errs chan<- error) {
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck // surfaced by the read
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg control
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case errs <- nil:
			case <-ctx.Done():
			}
			return
		}
		if _, err := apply(ctx, sess, msg); err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			}
		}
	}
}

func apply(ctx context.Context, sess *session.Session, msg control) (render.Frame, error) {
	switch msg.Action {
	case "play":
		return sess.Play(ctx)
	case "pause":
		return sess.Pause(ctx)
	case "toggle":
		return sess.Toggle(ctx)
	case "reset":
		return sess.Reset(ctx)
	case "scrub":
		return sess.Scrub(ctx, msg.Offset)
	case "select":
		slot, err := domain.ParseSlot(msg.Slot)
		if err != nil {
			return render.Frame{}, err
		}
		if msg.Postcode == "" {
			return render.Frame{}, errors.New("select needs a postcode")
		}
		return sess.Select(ctx, slot, msg.Postcode)
	case "zoom":
		return sess.Zoom(ctx, geo.ZoomAction(msg.Zoom))
	default:
		return render.Frame{}, fmt.Errorf("unknown action %q", msg.Action)
	}
}

func (s *Server) writeClose(conn *websocket.Conn, err error) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error())
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)) //nolint:errcheck // best effort
}
