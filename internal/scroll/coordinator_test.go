package scroll

import (
	"context"
	"testing"
	"time"

	"github.com/matheus3301/campchat/internal/loop"
)

func runLoop(t *testing.T) *loop.Loop {
	t.Helper()
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)
	return l
}

func do(t *testing.T, l *loop.Loop, fn func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Do(ctx, fn); err != nil {
		t.Fatal(err)
	}
}

func TestOffsetPreservedAcrossPrepend(t *testing.T) {
	tests := []struct {
		name   string
		h1, t1 int
		h2     int
	}{
		{"at top", 1000, 0, 1600},
		{"near top", 1000, 25, 1480},
		{"tiny page", 800, 10, 820},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := &MemViewport{Height: tt.h1, Top: tt.t1, Client: 300}
			c := New(vp, loop.Func(func(fn func()) { fn() }), nil, Options{})

			c.BeforePrepend()
			vp.Height = tt.h2 // render grew the content
			c.AfterPrepend()

			want := tt.h2 - tt.h1 + tt.t1
			if vp.Top != want {
				t.Errorf("ScrollTop = %d, want %d", vp.Top, want)
			}
		})
	}
}

func TestScrollNearTopTriggersLoadOnce(t *testing.T) {
	l := runLoop(t)
	vp := &MemViewport{Height: 1000, Client: 300, Top: 500}
	calls := 0
	var c *Coordinator
	do(t, l, func() {
		c = New(vp, l, func() bool { calls++; return true }, Options{Debounce: 10 * time.Millisecond})
	})

	// A burst of scroll events ending near the top.
	for _, top := range []int{400, 200, 80, 20} {
		do(t, l, func() { vp.Top = top })
		c.OnScroll()
	}
	time.Sleep(60 * time.Millisecond)

	do(t, l, func() {
		if calls != 1 {
			t.Errorf("loadOlder called %d times, want 1", calls)
		}
		if !c.Backward() {
			t.Error("coordinator should be in backward mode")
		}
	})

	// While backward, further top scrolls do nothing.
	c.OnScroll()
	time.Sleep(40 * time.Millisecond)
	do(t, l, func() {
		if calls != 1 {
			t.Errorf("loadOlder called %d times during backward load, want 1", calls)
		}
	})
}

func TestScrollAwayFromTopDoesNotLoad(t *testing.T) {
	l := runLoop(t)
	vp := &MemViewport{Height: 1000, Client: 300, Top: 31}
	calls := 0
	var c *Coordinator
	do(t, l, func() {
		c = New(vp, l, func() bool { calls++; return true }, Options{Debounce: 5 * time.Millisecond})
	})
	c.OnScroll()
	time.Sleep(30 * time.Millisecond)
	do(t, l, func() {
		if calls != 0 {
			t.Errorf("loadOlder called %d times at top=31, want 0", calls)
		}
	})
}

func TestResetCancelsPendingCheck(t *testing.T) {
	l := runLoop(t)
	vp := &MemViewport{Height: 1000, Client: 300, Top: 0}
	calls := 0
	var c *Coordinator
	do(t, l, func() {
		c = New(vp, l, func() bool { calls++; return true }, Options{Debounce: 20 * time.Millisecond})
	})
	c.OnScroll()
	do(t, l, c.Reset)
	time.Sleep(60 * time.Millisecond)
	do(t, l, func() {
		if calls != 0 {
			t.Errorf("loadOlder ran %d times after Reset, want 0", calls)
		}
	})
}

func TestRefusedLoadStaysIdle(t *testing.T) {
	l := runLoop(t)
	vp := &MemViewport{Height: 1000, Client: 300}
	var c *Coordinator
	do(t, l, func() {
		c = New(vp, l, func() bool { return false }, Options{Debounce: 5 * time.Millisecond})
	})
	c.OnScroll()
	time.Sleep(30 * time.Millisecond)
	do(t, l, func() {
		if c.Backward() {
			t.Error("refused load must not enter backward mode")
		}
	})
}

func TestAutoScrollPolicy(t *testing.T) {
	vp := &MemViewport{Height: 1000, Client: 300, Top: 100}
	c := New(vp, loop.Func(func(fn func()) { fn() }), func() bool { return true }, Options{})

	c.AfterInitialLoad()
	if vp.Top != 700 {
		t.Errorf("after initial load top = %d, want 700", vp.Top)
	}

	vp.Top = 0
	c.checkTop() // user reached the top; backward load starts
	vp.Height = 1100
	c.AfterAppend()
	if vp.Top != 0 {
		t.Errorf("append during backward load moved top to %d", vp.Top)
	}

	c.BeforePrepend()
	vp.Height = 1500
	c.AfterPrepend()
	if vp.Top != 400 {
		t.Errorf("after prepend top = %d, want 400 (no jump to bottom)", vp.Top)
	}

	vp.Height = 1560
	c.AfterAppend()
	if vp.Top != 1260 {
		t.Errorf("after append top = %d, want 1260", vp.Top)
	}
}

func TestMemViewportClamps(t *testing.T) {
	vp := &MemViewport{Height: 500, Client: 200}
	vp.SetScrollTop(10_000)
	if vp.Top != 300 {
		t.Errorf("Top = %d, want 300", vp.Top)
	}
	vp.SetScrollTop(-5)
	if vp.Top != 0 {
		t.Errorf("Top = %d, want 0", vp.Top)
	}
}

func TestThresholdUnits(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		top       int
		want      int
	}{
		{"default reaches 30", 0, 30, 1},
		{"default stops at 31", 0, 31, 0},
		{"one row", 1, 1, 1},
		{"one row ignores 25", 1, 25, 0},
		{"top only at zero", TopOnly, 0, 1},
		{"top only ignores 1", TopOnly, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := runLoop(t)
			vp := &MemViewport{Height: 1000, Client: 300, Top: tt.top}
			calls := 0
			var c *Coordinator
			do(t, l, func() {
				c = New(vp, l, func() bool { calls++; return true }, Options{Threshold: tt.threshold, Debounce: 5 * time.Millisecond})
			})
			c.OnScroll()
			time.Sleep(30 * time.Millisecond)
			do(t, l, func() {
				if calls != tt.want {
					t.Errorf("loadOlder called %d times, want %d", calls, tt.want)
				}
			})
		})
	}
}
