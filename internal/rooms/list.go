// Package rooms tracks the conversations of a campaign and which one is open.
package rooms

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/campchat/internal/chat"
	"go.uber.org/zap"
)

// FallbackPhoto is shown when a customer has no photo.
const FallbackPhoto = "/assets/images/no-image.png"

// PreviewWidth is the cell width of the latest-message preview.
const PreviewWidth = 40

// ErrUnknownRoom is returned when selecting a room that is not in the list.
var ErrUnknownRoom = errors.New("unknown room")

// Source lists the rooms of a campaign.
type Source interface {
	ListRooms(ctx context.Context, campaignID string) (chat.Campaign, []chat.Room, error)
}

// Entry is one rendered row of the room list.
type Entry struct {
	RoomID       string
	Name         string
	Photo        string
	Preview      string
	LastActivity time.Time
	Current      bool
}

// List holds the rooms of one campaign as seen by one admin.
type List struct {
	mu       sync.RWMutex
	adminID  string
	source   Source
	logger   *zap.Logger
	campaign chat.Campaign
	rooms    []chat.Room
	index    map[string]int
	current  string
	filter   string
}

// NewList creates an empty room list for adminID.
func NewList(adminID string, src Source, logger *zap.Logger) *List {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List{
		adminID: adminID,
		source:  src,
		logger:  logger,
		index:   make(map[string]int),
	}
}

// AdminID returns the admin whose perspective the list renders.
func (l *List) AdminID() string { return l.adminID }

// Load fetches the rooms of campaignID, replacing the current list.
func (l *List) Load(ctx context.Context, campaignID string) error {
	campaign, rooms, err := l.source.ListRooms(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	l.Set(campaign, rooms)
	l.logger.Info("room list loaded", zap.String("campaign_id", campaignID), zap.Int("rooms", len(rooms)))
	return nil
}

// Set replaces the list content. The current selection survives if the room
// is still present.
func (l *List) Set(campaign chat.Campaign, rooms []chat.Room) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.campaign = campaign
	l.rooms = slices.Clone(rooms)
	l.index = make(map[string]int, len(rooms))
	for i, r := range l.rooms {
		l.index[r.RoomID] = i
	}
	if _, ok := l.index[l.current]; !ok {
		l.current = ""
	}
}

// Campaign returns the campaign the rooms belong to.
func (l *List) Campaign() chat.Campaign {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.campaign
}

// Len returns the number of rooms, ignoring the filter.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rooms)
}

// Empty reports whether the campaign has no rooms at all.
func (l *List) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rooms) == 0
}

// SetFilter restricts Entries to rooms whose name or preview contains s.
func (l *List) SetFilter(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = strings.ToLower(strings.TrimSpace(s))
}

// Filter returns the active filter.
func (l *List) Filter() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter
}

// Entries returns the visible rooms, most recent activity first. Rooms with
// equal activity keep the origin's order.
func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, 0, len(l.rooms))
	for _, r := range l.rooms {
		e := l.entry(r)
		if l.filter != "" &&
			!strings.Contains(strings.ToLower(e.Name), l.filter) &&
			!strings.Contains(strings.ToLower(e.Preview), l.filter) {
			continue
		}
		entries = append(entries, e)
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.LastActivity.UnixNano(), a.LastActivity.UnixNano())
	})
	return entries
}

func (l *List) entry(r chat.Room) Entry {
	_, other, err := r.Perspective(l.adminID)
	if err != nil {
		// Fall back to the customer id when the admin is not a participant.
		other = chat.Participant{ID: r.CustomerID}
	}
	name := other.Name
	if name == "" {
		name = other.ID
	}
	photo := other.Photo
	if photo == "" {
		photo = FallbackPhoto
	}
	var preview string
	if r.Latest != nil {
		preview = Truncate(r.Latest.Content, PreviewWidth)
	}
	return Entry{
		RoomID:       r.RoomID,
		Name:         name,
		Photo:        photo,
		Preview:      preview,
		LastActivity: r.LastActivity(),
		Current:      r.RoomID == l.current,
	}
}

// Select makes roomID current and returns who talks to whom in it.
func (l *List) Select(roomID string) (chat.Selection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[roomID]
	if !ok {
		return chat.Selection{}, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	r := l.rooms[i]
	self, other, err := r.Perspective(l.adminID)
	if err != nil {
		return chat.Selection{}, fmt.Errorf("select room %s: %w", roomID, err)
	}
	l.current = roomID

	name := other.Name
	if name == "" {
		name = other.ID
	}
	return chat.Selection{
		Sender:   self.ID,
		Receiver: other.ID,
		RoomID:   roomID,
		Name:     name,
	}, nil
}

// Current returns the open room id, or "".
func (l *List) Current() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// ClearCurrent forgets the open room.
func (l *List) ClearCurrent() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = ""
}

// Room returns a copy of the room with the given id.
func (l *List) Room(roomID string) (chat.Room, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[roomID]
	if !ok {
		return chat.Room{}, false
	}
	return l.rooms[i], true
}

// ObservePush records m as the latest message of its room unless the room
// already has a newer one. It returns false for rooms not in the list.
func (l *List) ObservePush(m chat.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[m.RoomID]
	if !ok {
		return false
	}
	r := &l.rooms[i]
	if r.Latest != nil && r.Latest.CreatedAt.After(m.CreatedAt) {
		return true
	}
	latest := m
	r.Latest = &latest
	return true
}
