package animation

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Player binds a Cursor to a repeating ticker. It is not safe for concurrent
// use: the owning event loop calls every method, including Tick, from one
// goroutine.
//
// Pause and Reset stop the ticker and drop its channel before returning, so
// a tick that was already buffered can never reach the cursor.
type Player struct {
	cursor   *Cursor
	clock    clockwork.Clock
	interval time.Duration
	ticker   clockwork.Ticker
}

// NewPlayer wraps cursor. A nil clock uses the real clock.
func NewPlayer(cursor *Cursor, clock clockwork.Clock, interval time.Duration) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Player{cursor: cursor, clock: clock, interval: interval}
}

// Cursor exposes the underlying state for reading.
func (p *Player) Cursor() *Cursor { return p.cursor }

// Play starts the ticker. Calling Play while running is a no-op and never
// schedules a second ticker.
func (p *Player) Play() bool {
	if !p.cursor.Play() {
		return false
	}
	p.ticker = p.clock.NewTicker(p.interval)
	return true
}

// Pause stops the ticker.
func (p *Player) Pause() bool {
	p.stopTicker()
	return p.cursor.Pause()
}

// Toggle flips between playing and paused and reports the new running state.
func (p *Player) Toggle() bool {
	if p.cursor.Running() {
		p.Pause()
		return false
	}
	p.Play()
	return true
}

// Scrub jumps to offset without touching the ticker.
func (p *Player) Scrub(offset int) error {
	return p.cursor.Scrub(offset)
}

// Reset stops the ticker and rewinds the cursor.
func (p *Player) Reset() {
	p.stopTicker()
	p.cursor.Reset()
}

// Ticks returns the active ticker channel, or nil while paused. A nil channel
// blocks forever in a select, which is what a paused loop wants.
func (p *Player) Ticks() <-chan time.Time {
	if p.ticker == nil {
		return nil
	}
	return p.ticker.Chan()
}

// Tick advances the cursor after a tick was received from Ticks. When the end
// policy stops playback the ticker is released.
func (p *Player) Tick() {
	if !p.cursor.Advance() {
		p.stopTicker()
	}
}

// Stop releases the ticker without changing the cursor; used on shutdown.
func (p *Player) Stop() {
	p.stopTicker()
}

func (p *Player) stopTicker() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	p.ticker = nil
}
