// Package timeline holds the ordered message list of the open room.
package timeline

import (
	"iter"
	"slices"
	"time"

	"github.com/matheus3301/campchat/internal/chat"
)

// Store is the chronological, deduplicated message list of one room.
// It is owned by a single goroutine and is not safe for concurrent use.
type Store struct {
	loc      *time.Location
	messages []chat.Message
	ids      map[string]struct{}
	// triples maps (sender, createdAt, content) to the ID of the first message
	// holding it ("" when that message had no ID).
	triples map[triple]string
}

type triple struct {
	sender  string
	at      int64
	content string
}

func tripleOf(m chat.Message) triple {
	return triple{sender: m.SenderID, at: m.CreatedAt.UnixNano(), content: m.Content}
}

// New creates an empty store grouping days in loc. A nil loc means time.Local.
func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	s := &Store{loc: loc}
	s.Reset()
	return s
}

// Reset drops every message.
func (s *Store) Reset() {
	s.messages = nil
	s.ids = make(map[string]struct{})
	s.triples = make(map[triple]string)
}

// Len returns the number of messages.
func (s *Store) Len() int { return len(s.messages) }

// Messages returns a copy of the timeline, oldest first.
func (s *Store) Messages() []chat.Message {
	return slices.Clone(s.messages)
}

// Oldest returns the earliest message.
func (s *Store) Oldest() (chat.Message, bool) {
	if len(s.messages) == 0 {
		return chat.Message{}, false
	}
	return s.messages[0], true
}

// Newest returns the latest message.
func (s *Store) Newest() (chat.Message, bool) {
	if len(s.messages) == 0 {
		return chat.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Contains reports whether m is already in the timeline.
func (s *Store) Contains(m chat.Message) bool {
	if m.ID != "" {
		if _, ok := s.ids[m.ID]; ok {
			return true
		}
	}
	prevID, ok := s.triples[tripleOf(m)]
	if !ok {
		return false
	}
	// Two confirmed messages with different IDs are distinct sends.
	return prevID == "" || m.ID == ""
}

func (s *Store) remember(m chat.Message) {
	if m.ID != "" {
		s.ids[m.ID] = struct{}{}
	}
	t := tripleOf(m)
	if _, ok := s.triples[t]; !ok {
		s.triples[t] = m.ID
	}
}

// Prepend inserts an older page, already ordered oldest first, at the head.
// Messages already present are skipped. If a push landed before the page
// resolved, the page is merged rather than concatenated. Returns the number
// of messages inserted.
func (s *Store) Prepend(older []chat.Message) int {
	kept := make([]chat.Message, 0, len(older))
	for _, m := range older {
		if s.Contains(m) {
			continue
		}
		s.remember(m)
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return 0
	}

	if len(s.messages) == 0 || !kept[len(kept)-1].CreatedAt.After(s.messages[0].CreatedAt) {
		s.messages = append(kept, s.messages...)
		return len(kept)
	}

	merged := make([]chat.Message, 0, len(kept)+len(s.messages))
	i, j := 0, 0
	for i < len(kept) && j < len(s.messages) {
		if s.messages[j].CreatedAt.Before(kept[i].CreatedAt) {
			merged = append(merged, s.messages[j])
			j++
		} else {
			merged = append(merged, kept[i])
			i++
		}
	}
	merged = append(merged, kept[i:]...)
	merged = append(merged, s.messages[j:]...)
	s.messages = merged
	return len(kept)
}

// Append adds a live message at the tail. It returns false when the message
// is a duplicate. A message older than the tail is placed after the last
// message that is not newer than it.
func (s *Store) Append(m chat.Message) bool {
	if s.Contains(m) {
		return false
	}
	s.remember(m)

	i := len(s.messages)
	for i > 0 && s.messages[i-1].CreatedAt.After(m.CreatedAt) {
		i--
	}
	s.messages = slices.Insert(s.messages, i, m)
	return true
}

// GroupedByDay yields (dayKey, messages) pairs in chronological order. The
// key is the CreatedAt of the group's first message; a message starts a new
// group once it is at or past the start of the next calendar day after the
// key, in the store's location. The sequence works on a snapshot taken when
// GroupedByDay is called and can be ranged over any number of times.
func (s *Store) GroupedByDay() iter.Seq2[time.Time, []chat.Message] {
	msgs := slices.Clone(s.messages)
	loc := s.loc
	return func(yield func(time.Time, []chat.Message) bool) {
		start := 0
		for start < len(msgs) {
			key := msgs[start].CreatedAt
			next := startOfDay(key, loc).AddDate(0, 0, 1)
			end := start + 1
			for end < len(msgs) && msgs[end].CreatedAt.Before(next) {
				end++
			}
			if !yield(key, msgs[start:end:end]) {
				return
			}
			start = end
		}
	}
}

// Location returns the display location used for day grouping.
func (s *Store) Location() *time.Location { return s.loc }

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
