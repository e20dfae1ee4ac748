package opendata

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// retryAfterFallback is the pause used when a 429 has no Retry-After header.
const retryAfterFallback = 30 * time.Second

// pacer spaces page requests and holds every caller while the portal has
// asked us to back off.
type pacer struct {
	bucket *rate.Limiter

	mu     sync.Mutex
	resume time.Time
}

func newPacer(rps float64) *pacer {
	return &pacer{bucket: rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))}
}

// paused returns how long callers must still hold off.
func (p *pacer) paused() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Until(p.resume)
}

func (p *pacer) wait(ctx context.Context) error {
	if d := p.paused(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return p.bucket.Wait(ctx)
}

// backoff pauses all requests for d, or retryAfterFallback when d is zero.
func (p *pacer) backoff(d time.Duration) {
	if d <= 0 {
		d = retryAfterFallback
	}
	p.mu.Lock()
	p.resume = time.Now().Add(d)
	p.mu.Unlock()
}

// ready reports whether a request could go out right now, consuming a token
// when it can.
func (p *pacer) ready() bool {
	return p.paused() <= 0 && p.bucket.Allow()
}
