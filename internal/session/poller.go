package session

import (
	"context"
	"sync"
	"time"
)

// poller owns the reconciliation timer for an active session. It is a
// cancellable interval handle with idempotent start and stop: starting an
// already-running poller is a no-op, so at most one timer goroutine exists
// per controller.
type poller struct {
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

func newPoller(interval time.Duration) *poller {
	return &poller{interval: interval}
}

// Start launches the tick loop. A no-op when already running.
func (p *poller) Start(ctx context.Context, tick func(context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(pollCtx, p.done, tick)
}

// Stop cancels the tick loop and waits for it to exit. A no-op when not
// running.
func (p *poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the tick loop is active.
func (p *poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *poller) run(ctx context.Context, done chan struct{}, tick func(context.Context)) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}
