package animation

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 300 * time.Millisecond

// countingClock records how many tickers were created.
type countingClock struct {
	clockwork.Clock
	tickers int
}

func (c *countingClock) NewTicker(d time.Duration) clockwork.Ticker {
	c.tickers++
	return c.Clock.NewTicker(d)
}

type fakeClock interface {
	clockwork.Clock
	Advance(time.Duration)
}

func newTestPlayer(t *testing.T, total int, policy EndPolicy) (*Player, fakeClock, *countingClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	cc := &countingClock{Clock: fc}
	c, err := NewCursor(total, policy)
	require.NoError(t, err)
	return NewPlayer(c, cc, testInterval), fc, cc
}

func waitTick(t *testing.T, p *Player) {
	t.Helper()
	select {
	case <-p.Ticks():
		p.Tick()
	case <-time.After(time.Second):
		t.Fatal("expected a tick")
	}
}

func TestPlayer_PlayTwiceSchedulesOnce(t *testing.T) {
	p, _, cc := newTestPlayer(t, 10, EndStop)

	assert.True(t, p.Play())
	assert.False(t, p.Play())
	assert.Equal(t, 1, cc.tickers)
}

func TestPlayer_TickAdvances(t *testing.T) {
	p, fc, _ := newTestPlayer(t, 10, EndStop)
	p.Play()

	fc.Advance(testInterval)
	waitTick(t, p)
	assert.Equal(t, 1, p.Cursor().Offset())

	fc.Advance(testInterval)
	waitTick(t, p)
	assert.Equal(t, 2, p.Cursor().Offset())
}

func TestPlayer_PausedHasNoTickSource(t *testing.T) {
	p, fc, _ := newTestPlayer(t, 10, EndStop)
	assert.Nil(t, p.Ticks())

	p.Play()
	fc.Advance(testInterval) // a tick is now buffered on the old channel
	p.Pause()

	assert.Nil(t, p.Ticks(), "pause drops the channel so the buffered tick is unreachable")
	assert.Equal(t, 0, p.Cursor().Offset())
}

func TestPlayer_ResetCancelsPendingTick(t *testing.T) {
	p, fc, _ := newTestPlayer(t, 10, EndWrap)
	p.Play()
	fc.Advance(testInterval)
	waitTick(t, p)
	require.Equal(t, 1, p.Cursor().Offset())

	fc.Advance(testInterval)
	p.Reset()

	assert.Nil(t, p.Ticks())
	assert.Equal(t, 0, p.Cursor().Offset())
	assert.False(t, p.Cursor().Running())
}

func TestPlayer_EndStopReleasesTicker(t *testing.T) {
	p, fc, _ := newTestPlayer(t, 2, EndStop)
	p.Play()

	fc.Advance(testInterval)
	waitTick(t, p)
	fc.Advance(testInterval)
	waitTick(t, p)

	assert.Equal(t, 0, p.Cursor().Offset())
	assert.False(t, p.Cursor().Running())
	assert.Nil(t, p.Ticks())
}

func TestPlayer_Toggle(t *testing.T) {
	p, _, cc := newTestPlayer(t, 10, EndStop)

	assert.True(t, p.Toggle())
	assert.NotNil(t, p.Ticks())
	assert.False(t, p.Toggle())
	assert.Nil(t, p.Ticks())
	assert.True(t, p.Toggle())
	assert.Equal(t, 2, cc.tickers)
}
