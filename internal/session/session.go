// Package session owns the interactive animation state. Each Session runs one
// event loop that receives every trigger (timer ticks, scrubs, button presses,
// selection changes) and applies them strictly one at a time, so the cursor,
// selection and zoom never see overlapping updates.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/au-temperature-map/internal/animation"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/render"
)

// ErrClosed is returned for commands sent after the session loop has exited.
var ErrClosed = errors.New("session closed")

// ErrUnknownZoom is returned for a zoom action other than in, out or reset.
var ErrUnknownZoom = errors.New("unknown zoom action")

const subscriberBuffer = 8

// Update is one published frame together with its change set against the
// previously published frame of the same session.
type Update struct {
	Session string       `json:"session"`
	Frame   render.Frame `json:"frame"`
	Delta   render.Delta `json:"delta"`
}

// Options configures a Session.
type Options struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	EndPolicy    animation.EndPolicy
	Selection    domain.Selection
	Viewport     geo.Viewport
	Sinks        []FrameSink
	Logger       *slog.Logger
	Metrics      *observability.Metrics
}

type command struct {
	// apply runs on the loop goroutine and reports whether view state changed.
	apply func() (bool, error)
	reply chan reply
}

type reply struct {
	frame render.Frame
	err   error
}

// subscriber tracks the last frame a listener actually received, so its
// deltas stay applicable after a dropped update.
type subscriber struct {
	ch   chan Update
	last *render.Frame
}

// Session is a single controller instance. All state below cmds is owned by
// the loop goroutine started by Run.
type Session struct {
	id         string
	dispatcher *render.Dispatcher
	logger     *slog.Logger
	metrics    *observability.Metrics
	cmds       chan command
	done       chan struct{}

	player    *animation.Player
	viewport  geo.Viewport
	selection domain.Selection
	zoom      geo.Transform
	sinks     []FrameSink
	subs      map[int]*subscriber
	nextSub   int
	last      *render.Frame
}

// New creates a session over the dispatcher's dataset. The session does
// nothing until Run is called.
func New(id string, d *render.Dispatcher, opts Options) (*Session, error) {
	cursor, err := animation.NewCursor(d.Index().TimeIndex().TotalMonths(), opts.EndPolicy)
	if err != nil {
		return nil, fmt.Errorf("create cursor: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Session{
		id:         id,
		dispatcher: d,
		logger:     logger.With("session", id),
		metrics:    metrics,
		cmds:       make(chan command),
		done:       make(chan struct{}),
		player:     animation.NewPlayer(cursor, opts.Clock, opts.TickInterval),
		viewport:   opts.Viewport,
		selection:  opts.Selection,
		zoom:       geo.Identity,
		sinks:      opts.Sinks,
		subs:       make(map[int]*subscriber),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run processes triggers until ctx is cancelled. It publishes the initial
// frame before accepting commands.
func (s *Session) Run(ctx context.Context) {
	defer s.shutdown()
	s.logger.Info("session started")
	s.publish(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopping", "reason", ctx.Err())
			return
		case cmd := <-s.cmds:
			changed, err := cmd.apply()
			if err == nil && changed {
				s.publish(ctx)
			}
			cmd.reply <- reply{frame: *s.last, err: err}
		case <-s.player.Ticks():
			s.player.Tick()
			s.metrics.Ticks.Inc()
			s.publish(ctx)
		}
	}
}

func (s *Session) shutdown() {
	s.player.Stop()
	for id, sub := range s.subs {
		close(sub.ch)
		delete(s.subs, id)
	}
	close(s.done)
}

// Play starts the animation. Playing while already running changes nothing.
func (s *Session) Play(ctx context.Context) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) {
		return s.player.Play(), nil
	})
}

// Pause stops the animation at the current month.
func (s *Session) Pause(ctx context.Context) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) {
		return s.player.Pause(), nil
	})
}

// Toggle flips between playing and paused.
func (s *Session) Toggle(ctx context.Context) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) {
		s.player.Toggle()
		return true, nil
	})
}

// Reset rewinds to the first month and stops the animation.
func (s *Session) Reset(ctx context.Context) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) {
		s.player.Reset()
		s.metrics.Resets.Inc()
		return true, nil
	})
}

// Scrub jumps to offset. A running animation keeps playing from there.
func (s *Session) Scrub(ctx context.Context, offset int) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) {
		if err := s.player.Scrub(offset); err != nil {
			return false, err
		}
		s.metrics.Scrubs.Inc()
		return true, nil
	})
}

// Select replaces the postcode compared in slot.
func (s *Session) Select(ctx context.Context, slot domain.Slot, postcode string) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) {
		next := s.selection.With(slot, postcode)
		if next == s.selection {
			return false, nil
		}
		s.selection = next
		return true, nil
	})
}

// Zoom applies one of the map zoom buttons.
func (s *Session) Zoom(ctx context.Context, action geo.ZoomAction) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) {
		next, ok := s.viewport.Zoom(s.zoom, action)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownZoom, action)
		}
		if next == s.zoom {
			return false, nil
		}
		s.zoom = next
		return true, nil
	})
}

// Frame returns the most recently published frame.
func (s *Session) Frame(ctx context.Context) (render.Frame, error) {
	return s.do(ctx, func() (bool, error) { return false, nil })
}

// Subscribe registers a listener for published updates. The current frame is
// delivered first, as a full delta. Slow listeners miss updates rather than
// stall the loop; the next update they do receive carries a delta against the
// last frame they were sent. The channel is closed when cancel is called or
// the session ends.
func (s *Session) Subscribe(ctx context.Context) (<-chan Update, func(), error) {
	ch := make(chan Update, subscriberBuffer)
	var id int
	_, err := s.do(ctx, func() (bool, error) {
		id = s.nextSub
		s.nextSub++
		s.subs[id] = &subscriber{ch: ch, last: s.last}
		ch <- Update{Session: s.id, Frame: *s.last, Delta: render.Compare(nil, s.last)}
		return false, nil
	})
	if err != nil {
		return nil, nil, err
	}
	cancel := func() {
		// Removal on an exited loop is already done by shutdown.
		_, _ = s.do(context.Background(), func() (bool, error) {
			if sub, ok := s.subs[id]; ok {
				close(sub.ch)
				delete(s.subs, id)
			}
			return false, nil
		})
	}
	return ch, cancel, nil
}

func (s *Session) do(ctx context.Context, apply func() (bool, error)) (render.Frame, error) {
	cmd := command{apply: apply, reply: make(chan reply, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return render.Frame{}, ErrClosed
	case <-ctx.Done():
		return render.Frame{}, ctx.Err()
	}
	// Once accepted, the loop always replies before it can exit.
	r := <-cmd.reply
	return r.frame, r.err
}

func (s *Session) state() render.State {
	c := s.player.Cursor()
	return render.State{
		Offset:    c.Offset(),
		Running:   c.Running(),
		Selection: s.selection,
		Zoom:      s.zoom,
	}
}

func (s *Session) publish(ctx context.Context) {
	start := time.Now()
	f := s.dispatcher.Render(s.state())
	s.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	s.metrics.FramesRendered.Inc()
	s.metrics.CursorOffset.Set(float64(f.Offset))
	if !f.HasAverage {
		s.metrics.MissingBuckets.Inc()
		s.logger.Debug("no records for month", "label", f.Label, "offset", f.Offset)
	}

	u := Update{Session: s.id, Frame: f, Delta: render.Compare(s.last, &f)}
	prev := s.last
	s.last = &f

	for id, sub := range s.subs {
		su := u
		if sub.last != prev {
			su.Delta = render.Compare(sub.last, &f)
		}
		select {
		case sub.ch <- su:
			sub.last = &f
		default:
			s.metrics.SinkErrors.WithLabelValues("subscriber").Inc()
			s.logger.Warn("subscriber lagging, update dropped", "subscriber", id, "offset", f.Offset)
		}
	}
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, u); err != nil {
			s.metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			s.logger.Error("frame sink publish failed", "sink", sink.Name(), "offset", f.Offset, "error", err)
		}
	}
}
