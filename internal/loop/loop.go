package loop

import (
	"context"
	"sync"
)

// Scheduler runs callbacks on the goroutine that owns UI state.
// Queue must not block on the callback running.
type Scheduler interface {
	Queue(fn func())
}

// Func adapts a plain function to Scheduler.
type Func func(fn func())

// Queue implements Scheduler.
func (f Func) Queue(fn func()) { f(fn) }

// Loop is a headless single-goroutine scheduler. Callbacks run in the order
// they were queued, one at a time, on the goroutine that called Run.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Queue appends fn to the loop. Safe from any goroutine.
func (l *Loop) Queue(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do queues fn and waits until it has run. Must not be called from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Queue(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		for {
			fn := l.next()
			if fn == nil {
				break
			}
			fn()
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil
	}
	fn := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return fn
}
