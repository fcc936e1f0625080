package scroll

import (
	"sync"
	"time"

	"github.com/matheus3301/campchat/internal/loop"
)

// Debouncer delays a callback until no trigger happened for the configured
// delay, then runs it on the scheduler.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	sched loop.Scheduler
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer that runs callbacks on sched.
func NewDebouncer(delay time.Duration, sched loop.Scheduler) *Debouncer {
	return &Debouncer{delay: delay, sched: sched}
}

// Trigger (re)starts the delay for fn. Only the last fn of a burst runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.sched.Queue(func() {
			// A Cancel or newer Trigger may have happened after the timer fired.
			if d.current(gen) {
				fn()
			}
		})
	})
}

// Cancel drops any pending callback, including one already queued.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen == gen
}
