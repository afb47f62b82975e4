package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoller_TicksUntilStopped(t *testing.T) {
	p := newPoller(5 * time.Millisecond)
	var ticks atomic.Int64

	p.Start(context.Background(), func(context.Context) {
		ticks.Add(1)
	})

	deadline := time.After(time.Second)
	for ticks.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("poller never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	p.Stop()
	if p.Running() {
		t.Error("poller still running after Stop")
	}

	// No ticks arrive after Stop returns.
	settled := ticks.Load()
	time.Sleep(25 * time.Millisecond)
	if got := ticks.Load(); got != settled {
		t.Errorf("ticks after stop: %d, want %d", got, settled)
	}
}

func TestPoller_StartIsIdempotent(t *testing.T) {
	p := newPoller(time.Hour)

	p.Start(context.Background(), func(context.Context) {})
	if !p.Running() {
		t.Fatal("poller not running after Start")
	}
	first := p.done

	// Starting twice is a no-op: no second goroutine, same handle.
	p.Start(context.Background(), func(context.Context) {})
	if p.done != first {
		t.Error("second Start replaced the running loop")
	}

	p.Stop()
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := newPoller(time.Hour)

	// Stop before Start is a no-op.
	p.Stop()

	p.Start(context.Background(), func(context.Context) {})
	p.Stop()
	p.Stop()

	if p.Running() {
		t.Error("poller running after Stop")
	}
}

func TestPoller_ParentContextCancelEndsLoop(t *testing.T) {
	p := newPoller(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx, func(context.Context) {})
	cancel()

	// The loop exits on its own; Stop still cleans up the handle.
	p.Stop()
	if p.Running() {
		t.Error("poller running after parent cancel and Stop")
	}
}
