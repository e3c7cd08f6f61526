package session

import "context"

// FrameSink receives every frame a session publishes, in order, on the
// session's loop goroutine. Implementations must not block for long.
type FrameSink interface {
	Name() string
	Publish(ctx context.Context, u Update) error
}
