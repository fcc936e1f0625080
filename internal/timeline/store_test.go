package timeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/matheus3301/campchat/internal/chat"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func msg(id string, minutes int) chat.Message {
	return chat.Message{
		ID:        id,
		Content:   "text " + id,
		SenderID:  "cust1",
		RoomID:    "r1",
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func page(from, to int) []chat.Message {
	var out []chat.Message
	for i := from; i <= to; i++ {
		out = append(out, msg(fmt.Sprintf("m%d", i), i))
	}
	return out
}

func assertChronological(t *testing.T, s *Store) {
	t.Helper()
	msgs := s.Messages()
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("messages[%d] (%v) is older than messages[%d] (%v)", i, msgs[i].CreatedAt, i-1, msgs[i-1].CreatedAt)
		}
	}
}

func TestChronologicalAfterEveryOperation(t *testing.T) {
	s := New(time.UTC)

	ops := []func(){
		func() { s.Prepend(page(20, 29)) },
		func() { s.Append(msg("m30", 30)) },
		func() { s.Prepend(page(10, 19)) },
		func() { s.Append(msg("m31", 31)) },
		func() { s.Prepend(page(6, 9)) },
		func() { s.Append(msg("m32", 32)) },
	}
	for i, op := range ops {
		op()
		t.Run(fmt.Sprintf("op%d", i), func(t *testing.T) { assertChronological(t, s) })
	}
	if s.Len() != 27 {
		t.Errorf("Len() = %d, want 27", s.Len())
	}
	first, _ := s.Oldest()
	last, _ := s.Newest()
	if first.ID != "m6" || last.ID != "m32" {
		t.Errorf("range = %s..%s, want m6..m32", first.ID, last.ID)
	}
}

func TestAppendDropsDuplicates(t *testing.T) {
	s := New(time.UTC)
	m := msg("m1", 1)
	if !s.Append(m) {
		t.Fatal("first Append() = false")
	}
	if s.Append(m) {
		t.Error("Append() of the same ID should be dropped")
	}

	// Redelivered push without an ID but same sender/time/content.
	noID := m
	noID.ID = ""
	if s.Append(noID) {
		t.Error("Append() of an ID-less copy should be dropped")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestDistinctSendsWithSameContentAreKept(t *testing.T) {
	s := New(time.UTC)
	a := msg("a", 1)
	b := a
	b.ID = "b"
	s.Append(a)
	if !s.Append(b) {
		t.Error("two confirmed messages with distinct IDs must both be kept")
	}
}

func TestAppendOlderThanTailKeepsOrder(t *testing.T) {
	s := New(time.UTC)
	s.Prepend(page(1, 5))
	s.Append(msg("late", 3)) // clock skew between origin and push
	assertChronological(t, s)
	if s.Len() != 6 {
		t.Errorf("Len() = %d, want 6", s.Len())
	}
}

func TestPrependMergesWhenPushArrivedFirst(t *testing.T) {
	s := New(time.UTC)
	// Push arrives before the first page resolves; the page also contains it.
	s.Append(msg("m9", 9))
	s.Append(msg("m11", 11))
	n := s.Prepend(page(1, 10))

	if n != 9 {
		t.Errorf("Prepend() inserted %d, want 9 (m9 already present)", n)
	}
	assertChronological(t, s)
	if s.Len() != 11 {
		t.Errorf("Len() = %d, want 11", s.Len())
	}
}

func TestReset(t *testing.T) {
	s := New(time.UTC)
	s.Prepend(page(1, 3))
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("Len() after Reset = %d", s.Len())
	}
	// Previously seen messages are accepted again after a reset.
	if !s.Append(msg("m1", 1)) {
		t.Error("Append() after Reset should accept a previously seen message")
	}
}

func TestGroupedByDayCalendarBoundary(t *testing.T) {
	s := New(time.UTC)
	s.Prepend([]chat.Message{
		{ID: "a", SenderID: "u", CreatedAt: time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)},
		{ID: "b", SenderID: "u", CreatedAt: time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)},
	})

	var keys []time.Time
	var sizes []int
	for key, msgs := range s.GroupedByDay() {
		keys = append(keys, key)
		sizes = append(sizes, len(msgs))
	}
	if len(keys) != 2 {
		t.Fatalf("got %d groups, want 2", len(keys))
	}
	if sizes[0] != 1 || sizes[1] != 1 {
		t.Errorf("group sizes = %v, want [1 1]", sizes)
	}
}

func TestGroupedByDayUsesDisplayLocation(t *testing.T) {
	// 23:59Z and 00:01Z are the same calendar day in UTC-5.
	loc := time.FixedZone("UTC-5", -5*3600)
	s := New(loc)
	s.Prepend([]chat.Message{
		{ID: "a", SenderID: "u", CreatedAt: time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)},
		{ID: "b", SenderID: "u", CreatedAt: time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)},
	})
	groups := 0
	for range s.GroupedByDay() {
		groups++
	}
	if groups != 1 {
		t.Errorf("got %d groups, want 1", groups)
	}
}

func TestGroupedByDayKeysAndMembership(t *testing.T) {
	s := New(time.UTC)
	day := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }
	s.Prepend([]chat.Message{
		{ID: "1", CreatedAt: day(1, 8)},
		{ID: "2", CreatedAt: day(1, 22)},
		{ID: "3", CreatedAt: day(2, 7)},
		{ID: "4", CreatedAt: day(5, 1)},
		{ID: "5", CreatedAt: day(5, 23)},
	})

	for key, msgs := range s.GroupedByDay() {
		if !msgs[0].CreatedAt.Equal(key) {
			t.Errorf("group key %v is not the first message's time %v", key, msgs[0].CreatedAt)
		}
		limit := startOfDay(key, time.UTC).AddDate(0, 0, 1)
		for _, m := range msgs {
			if !m.CreatedAt.Before(limit) {
				t.Errorf("message %s at %v belongs past group %v", m.ID, m.CreatedAt, key)
			}
		}
	}
}

func TestGroupedByDayIsRestartableAndStopsEarly(t *testing.T) {
	s := New(time.UTC)
	for i := range 3 {
		s.Append(chat.Message{ID: fmt.Sprint(i), CreatedAt: base.AddDate(0, 0, i)})
	}
	seq := s.GroupedByDay()

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if a, b := count(), count(); a != 3 || b != 3 {
		t.Errorf("two passes yielded %d and %d groups, want 3 and 3", a, b)
	}

	n := 0
	for range seq {
		n++
		break
	}
	if n != 1 {
		t.Errorf("early break yielded %d groups", n)
	}
}

func TestGroupedByDayEmpty(t *testing.T) {
	s := New(nil)
	for range s.GroupedByDay() {
		t.Fatal("empty store yielded a group")
	}
}
