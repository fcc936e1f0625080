package console

import (
	"github.com/matheus3301/campchat/internal/loop"
	"github.com/matheus3301/campchat/internal/scroll"
	"github.com/matheus3301/campchat/internal/widget"
)

// Headless is a Surface without a screen: a loop.Loop scheduler and an
// in-memory viewport one row per message.
type Headless struct {
	Loop     *loop.Loop
	View     *scroll.MemViewport
	OnRender func(widget.Change)

	timeline func() int
}

// NewHeadless creates a headless surface calling onRender after every
// change. onRender may be nil.
func NewHeadless(onRender func(widget.Change)) *Headless {
	return &Headless{
		Loop:     loop.New(),
		View:     &scroll.MemViewport{Client: 20},
		OnRender: onRender,
	}
}

// Attach sizes the viewport from the widget's timeline.
func (h *Headless) Attach(w *widget.Widget) {
	h.timeline = w.Timeline().Len
}

// Scheduler implements Surface.
func (h *Headless) Scheduler() loop.Scheduler { return h.Loop }

// Viewport implements Surface.
func (h *Headless) Viewport() scroll.Viewport { return h.View }

// ScrollOptions implements Surface. The defaults apply.
func (h *Headless) ScrollOptions() scroll.Options { return scroll.Options{} }

// Render implements Surface.
func (h *Headless) Render(c widget.Change) {
	if h.timeline != nil {
		h.View.Height = h.timeline()
	}
	if h.OnRender != nil {
		h.OnRender(c)
	}
}
