package host

import (
	"context"
	"time"
)

// limiter paces the host loop at a fixed frame rate. A zero rate never
// waits.
type limiter struct {
	ticker *time.Ticker
}

func newLimiter(fps int) *limiter {
	if fps <= 0 {
		return &limiter{}
	}
	return &limiter{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

// wait blocks until the next frame is due or ctx is done.
func (lim *limiter) wait(ctx context.Context) error {
	if lim.ticker == nil {
		return ctx.Err()
	}
	select {
	case <-lim.ticker.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (lim *limiter) stop() {
	if lim.ticker != nil {
		lim.ticker.Stop()
	}
}
