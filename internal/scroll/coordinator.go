// Package scroll keeps the message viewport in place while history is
// prepended and follows the tail when new messages arrive.
package scroll

import (
	"time"

	"github.com/matheus3301/campchat/internal/loop"
)

const (
	// DefaultThreshold is how close to the top, in viewport units, a scroll
	// has to end to request older messages.
	DefaultThreshold = 30
	// DefaultDebounce collapses bursts of scroll events.
	DefaultDebounce = 200 * time.Millisecond
	// TopOnly as a threshold requests older messages only at the very top.
	TopOnly = -1
)

// Viewport is the scrollable message area.
type Viewport interface {
	ScrollTop() int
	ScrollHeight() int
	SetScrollTop(top int)
}

// Options tunes a Coordinator.
type Options struct {
	// Threshold is in viewport units. Zero uses DefaultThreshold.
	Threshold int
	Debounce  time.Duration
}

// Coordinator reacts to viewport scrolling and timeline changes. All methods
// except OnScroll must be called on the scheduler's goroutine.
type Coordinator struct {
	vp        Viewport
	threshold int
	debouncer *Debouncer
	loadOlder func() bool

	backward   bool
	prevHeight int
	prevTop    int
}

// New creates a coordinator. loadOlder is called when the user reaches the
// top; it reports whether a backward fetch was started.
func New(vp Viewport, sched loop.Scheduler, loadOlder func() bool, opts Options) *Coordinator {
	switch {
	case opts.Threshold == 0:
		opts.Threshold = DefaultThreshold
	case opts.Threshold < 0:
		opts.Threshold = 0
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if vp == nil {
		vp = &MemViewport{}
	}
	return &Coordinator{
		vp:        vp,
		threshold: opts.Threshold,
		debouncer: NewDebouncer(opts.Debounce, sched),
		loadOlder: loadOlder,
	}
}

// OnScroll is called for every scroll event of the viewport.
func (c *Coordinator) OnScroll() {
	c.debouncer.Trigger(c.checkTop)
}

func (c *Coordinator) checkTop() {
	if c.backward || c.vp.ScrollTop() > c.threshold {
		return
	}
	if c.loadOlder != nil && c.loadOlder() {
		c.backward = true
	}
}

// Backward reports whether a backward pagination is in flight.
func (c *Coordinator) Backward() bool { return c.backward }

// BeforePrepend snapshots the viewport. Call it right before older messages
// are inserted and rendered.
func (c *Coordinator) BeforePrepend() {
	c.prevHeight = c.vp.ScrollHeight()
	c.prevTop = c.vp.ScrollTop()
}

// AfterPrepend keeps the content that was visible in place.
func (c *Coordinator) AfterPrepend() {
	c.vp.SetScrollTop(c.vp.ScrollHeight() - c.prevHeight + c.prevTop)
	c.backward = false
}

// PrependFailed ends a backward pagination that produced nothing.
func (c *Coordinator) PrependFailed() {
	c.backward = false
}

// AfterInitialLoad scrolls to the newest message of a freshly opened room.
// It also ends a backward pagination that was retrying the first page.
func (c *Coordinator) AfterInitialLoad() {
	c.backward = false
	c.ScrollToBottom()
}

// AfterAppend follows the tail unless older history is being loaded.
func (c *Coordinator) AfterAppend() {
	if c.backward {
		return
	}
	c.ScrollToBottom()
}

// ScrollToBottom moves the viewport to the end.
func (c *Coordinator) ScrollToBottom() {
	c.vp.SetScrollTop(c.vp.ScrollHeight())
}

// Reset cancels pending scroll checks; used on room switch and unmount.
func (c *Coordinator) Reset() {
	c.debouncer.Cancel()
	c.backward = false
}

// MemViewport is an in-memory viewport for headless use.
type MemViewport struct {
	Top    int
	Height int
	Client int // visible height
}

// ScrollTop implements Viewport.
func (v *MemViewport) ScrollTop() int { return v.Top }

// ScrollHeight implements Viewport.
func (v *MemViewport) ScrollHeight() int { return v.Height }

// SetScrollTop implements Viewport, clamping like a browser does.
func (v *MemViewport) SetScrollTop(top int) {
	maxTop := max(v.Height-v.Client, 0)
	v.Top = min(max(top, 0), maxTop)
}
