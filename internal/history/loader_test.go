package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matheus3301/campchat/internal/chat"
)

// fakeFetcher serves newest-first pages from a fixed history.
type fakeFetcher struct {
	mu      sync.Mutex
	total   int
	calls   []string
	err     error
	release chan struct{} // when set, fetches block until closed
	count   atomic.Int32
}

func (f *fakeFetcher) FetchMessages(_ context.Context, roomID string, pageIndex, pageSize int) ([]chat.Message, error) {
	f.count.Add(1)
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("%s:%d", roomID, pageIndex))
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []chat.Message
	// Index 0 is the newest message.
	for i := (pageIndex - 1) * pageSize; i < pageIndex*pageSize && i < f.total; i++ {
		n := f.total - 1 - i
		out = append(out, chat.Message{
			ID:        fmt.Sprintf("m%d", n),
			RoomID:    roomID,
			CreatedAt: base.Add(time.Duration(n) * time.Minute),
		})
	}
	return out, nil
}

func TestFetchPageReversesToOldestFirst(t *testing.T) {
	f := &fakeFetcher{total: 14}
	l := NewLoader(f, nil)

	p, err := l.FetchPage(context.Background(), "r1", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Messages) != 10 {
		t.Fatalf("got %d messages, want 10", len(p.Messages))
	}
	if p.Messages[0].ID != "m4" || p.Messages[9].ID != "m13" {
		t.Errorf("page = %s..%s, want m4..m13", p.Messages[0].ID, p.Messages[9].ID)
	}
	if p.Exhausted {
		t.Error("full page must not be exhausted")
	}

	p2, err := l.FetchPage(context.Background(), "r1", 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(p2.Messages) != 4 || !p2.Exhausted {
		t.Errorf("page 2 = %d messages exhausted=%v, want 4 exhausted=true", len(p2.Messages), p2.Exhausted)
	}
}

func TestFetchPageCoalescesIdenticalRequests(t *testing.T) {
	f := &fakeFetcher{total: 30, release: make(chan struct{})}
	l := NewLoader(f, nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.FetchPage(context.Background(), "r1", 2, 10); err != nil {
				t.Error(err)
			}
		}()
	}
	// Give the goroutines time to pile onto the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	if n := f.count.Load(); n != 1 {
		t.Errorf("fetcher called %d times, want 1", n)
	}
}

func TestFetchPageDistinctKeysAreNotCoalesced(t *testing.T) {
	f := &fakeFetcher{total: 30}
	l := NewLoader(f, nil)
	ctx := context.Background()

	_, _ = l.FetchPage(ctx, "r1", 1, 10)
	_, _ = l.FetchPage(ctx, "r1", 2, 10)
	_, _ = l.FetchPage(ctx, "r2", 1, 10)

	if n := f.count.Load(); n != 3 {
		t.Errorf("fetcher called %d times, want 3", n)
	}
}

func TestFetchPageError(t *testing.T) {
	cause := errors.New("boom")
	l := NewLoader(&fakeFetcher{err: cause}, nil)

	_, err := l.FetchPage(context.Background(), "r1", 3, 10)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LoadError", err)
	}
	if le.RoomID != "r1" || le.Page != 3 {
		t.Errorf("LoadError = %+v", le)
	}
	if !errors.Is(err, cause) {
		t.Error("LoadError should wrap the cause")
	}
}

func TestCursorExhaustionIsMonotonic(t *testing.T) {
	c := NewCursor(10)
	c.BeginInitial()
	c.Complete(Page{Number: 1})

	page, ok := c.BeginOlder()
	if !ok || page != 2 {
		t.Fatalf("BeginOlder() = %d, %v; want 2, true", page, ok)
	}
	c.Complete(Page{Number: 2, Exhausted: true})

	for range 5 {
		if _, ok := c.BeginOlder(); ok {
			t.Fatal("exhausted cursor started another fetch")
		}
	}
	if c.Page != 2 {
		t.Errorf("Page = %d, want 2", c.Page)
	}
}

func TestCursorSingleInFlight(t *testing.T) {
	c := NewCursor(10)
	c.BeginInitial()
	if _, ok := c.BeginOlder(); ok {
		t.Error("BeginOlder() while the initial page is loading should fail")
	}
	c.Complete(Page{Number: 1})
	if _, ok := c.BeginOlder(); !ok {
		t.Fatal("BeginOlder() after initial load should succeed")
	}
	if _, ok := c.BeginOlder(); ok {
		t.Error("second BeginOlder() while loading should fail")
	}
}

func TestCursorFailDoesNotAdvanceOrExhaust(t *testing.T) {
	c := NewCursor(10)
	c.BeginInitial()
	c.Complete(Page{Number: 1})
	c.BeginOlder()
	c.Fail()

	if c.Exhausted || c.Page != 1 || c.Loading() {
		t.Errorf("cursor after failure = %+v", c)
	}
	page, ok := c.BeginOlder()
	if !ok || page != 2 {
		t.Errorf("retry BeginOlder() = %d, %v; want 2, true", page, ok)
	}
}

func TestCursorIgnoresStaleCompletion(t *testing.T) {
	c := NewCursor(10)
	c.BeginInitial()
	c.Reset()
	c.Complete(Page{Number: 1, Exhausted: true})
	if c.Exhausted {
		t.Error("completion for a page that is not in flight must be ignored")
	}
}

func TestCursorReset(t *testing.T) {
	c := NewCursor(5)
	c.Page = 4
	c.Exhausted = true
	c.Reset()
	if c.Page != 1 || c.Exhausted || c.Size != 5 {
		t.Errorf("Reset() = %+v, want page 1 size 5 not exhausted", c)
	}
}
