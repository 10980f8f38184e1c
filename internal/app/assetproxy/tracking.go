package assetproxy

import (
	"context"
	"log/slog"
	"sync"

	"companion.local/internal/platform/metrics"
)

// trackingPing is one best-effort download-tracking call.
type trackingPing struct {
	provider Provider
	url      string
	auth     string
}

// tracker runs tracking pings on their own workers. A ping failure is logged
// and dropped; it never reaches the request that queued it.
type tracker struct {
	mu     sync.RWMutex
	ch     chan trackingPing
	closed bool
}

func newTracker(bufferSize int) *tracker {
	return &tracker{ch: make(chan trackingPing, bufferSize)}
}

// enqueue never blocks. It reports false when the ping was dropped.
func (t *tracker) enqueue(p trackingPing) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		metrics.TrackingPingsDropped.Inc()
		return false
	}
	select {
	case t.ch <- p:
		return true
	default:
		metrics.TrackingPingsDropped.Inc()
		return false
	}
}

func (t *tracker) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.ch)
}

// run starts workers and blocks until ctx is done or the queue is closed and
// drained.
func (t *tracker) run(ctx context.Context, workers int, send func(context.Context, trackingPing) error) {
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case p, ok := <-t.ch:
					if !ok {
						return
					}
					if err := send(ctx, p); err != nil {
						slog.Warn("failed to trigger download tracking",
							"provider", p.provider.String(),
							"err", err)
					}
				}
			}
		}()
	}
	wg.Wait()
}
