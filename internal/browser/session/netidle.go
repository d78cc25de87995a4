// internal/browser/session/netidle.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const defaultQuietPeriod = 500 * time.Millisecond

// idleWaiter tracks in-flight network requests through CDP events and
// reports idleness once no request has been active for a quiet period.
// It imposes no deadline of its own; a hung page blocks only the call that
// owns it, bounded by whatever the caller's context carries.
type idleWaiter struct {
	quiet time.Duration

	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	lastSeen time.Time
}

// newIdleWaiter must be attached before navigation starts so the initial
// document request is counted.
func newIdleWaiter(tabCtx context.Context, quiet time.Duration) *idleWaiter {
	if quiet <= 0 {
		quiet = defaultQuietPeriod
	}
	w := &idleWaiter{
		quiet:    quiet,
		inflight: make(map[network.RequestID]struct{}),
		lastSeen: time.Now(),
	}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			w.track(e.RequestID, true)
		case *network.EventLoadingFinished:
			w.track(e.RequestID, false)
		case *network.EventLoadingFailed:
			w.track(e.RequestID, false)
		}
	})
	return w
}

func (w *idleWaiter) track(id network.RequestID, started bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if started {
		w.inflight[id] = struct{}{}
	} else {
		delete(w.inflight, id)
	}
	w.lastSeen = time.Now()
}

func (w *idleWaiter) idleFor() (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.inflight) > 0 {
		return 0, false
	}
	return time.Since(w.lastSeen), true
}

// Wait blocks until the quiet period elapses with no network activity, or
// the context ends.
func (w *idleWaiter) Wait(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if since, quiet := w.idleFor(); quiet && since >= w.quiet {
				return nil
			}
		}
	}
}
