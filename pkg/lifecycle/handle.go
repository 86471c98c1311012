package lifecycle

import (
	"context"
	"time"
)

// Handle is the lifecycle controller given to one background service.
type Handle struct {
	ctx context.Context
	// Close tells the Manager the service has stopped. Defer it in the
	// service goroutine.
	Close func()
}

// Ctx returns the handle's context.
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done is closed when the manager broadcasts shutdown.
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err reports why Done was closed.
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep pauses for duration, returning early with the context error if the
// handle is cancelled. Background loops should sleep through this.
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)

	select {
	case <-h.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return h.Err()
	case <-timer.C:
		return nil
	}
}
