// Package animation holds the time cursor that drives every synchronized view
// and the player that advances it on a ticker.
package animation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOffsetOutOfRange is returned by Scrub for offsets outside [0, total).
var ErrOffsetOutOfRange = errors.New("offset out of range")

// EndPolicy decides what a tick does after the last month.
type EndPolicy int

const (
	// EndStop rewinds to offset 0 and stops playback.
	EndStop EndPolicy = iota
	// EndWrap rewinds to offset 0 and keeps playing.
	EndWrap
)

// ParseEndPolicy accepts "stop" or "wrap".
func ParseEndPolicy(s string) (EndPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop":
		return EndStop, nil
	case "wrap":
		return EndWrap, nil
	default:
		return 0, fmt.Errorf("invalid end policy %q (allowed: stop, wrap)", s)
	}
}

func (p EndPolicy) String() string {
	switch p {
	case EndStop:
		return "stop"
	case EndWrap:
		return "wrap"
	default:
		return fmt.Sprintf("EndPolicy(%d)", int(p))
	}
}

// Cursor is the authoritative month offset plus the play/pause flag.
// It has no timers of its own; see Player.
type Cursor struct {
	offset  int
	total   int
	running bool
	policy  EndPolicy
}

// NewCursor creates a paused cursor at offset 0 over total months.
func NewCursor(total int, policy EndPolicy) (*Cursor, error) {
	if total <= 0 {
		return nil, fmt.Errorf("cursor needs at least one month, got %d", total)
	}
	return &Cursor{total: total, policy: policy}, nil
}

func (c *Cursor) Offset() int       { return c.offset }
func (c *Cursor) Total() int        { return c.total }
func (c *Cursor) Running() bool     { return c.running }
func (c *Cursor) Policy() EndPolicy { return c.policy }

// Play marks the cursor running. It returns false if it already was.
func (c *Cursor) Play() bool {
	if c.running {
		return false
	}
	c.running = true
	return true
}

// Pause marks the cursor stopped. It returns false if it already was.
func (c *Cursor) Pause() bool {
	if !c.running {
		return false
	}
	c.running = false
	return true
}

// Scrub moves directly to offset regardless of the running state.
func (c *Cursor) Scrub(offset int) error {
	if offset < 0 || offset >= c.total {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOffsetOutOfRange, offset, c.total)
	}
	c.offset = offset
	return nil
}

// Reset rewinds to offset 0 and stops, unconditionally.
func (c *Cursor) Reset() {
	c.offset = 0
	c.running = false
}

// Advance moves one month forward. Past the last month the end policy applies:
// both policies rewind to 0, EndStop also stops. It returns whether the cursor
// is still running afterwards.
func (c *Cursor) Advance() bool {
	c.offset++
	if c.offset < c.total {
		return c.running
	}
	c.offset = 0
	if c.policy == EndStop {
		c.running = false
	}
	return c.running
}
