// Package history loads past messages of a room page by page.
package history

import (
	"context"
	"fmt"
	"slices"

	"github.com/matheus3301/campchat/internal/chat"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultPageSize matches the page size the admin console requests.
const DefaultPageSize = 10

// Fetcher requests one page of a room's messages, newest first.
type Fetcher interface {
	FetchMessages(ctx context.Context, roomID string, pageIndex, pageSize int) ([]chat.Message, error)
}

// Page is one loaded page, ordered oldest first.
type Page struct {
	RoomID    string
	Number    int
	Messages  []chat.Message
	Exhausted bool
}

// LoadError is returned when a page could not be fetched.
type LoadError struct {
	RoomID string
	Page   int
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load room %s page %d: %v", e.RoomID, e.Page, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches history pages. Identical in-flight requests share one fetch.
type Loader struct {
	fetcher Fetcher
	group   singleflight.Group
	logger  *zap.Logger
}

// NewLoader creates a loader backed by the given fetcher.
func NewLoader(f Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: f, logger: logger}
}

// FetchPage loads page number page of roomID. Messages come back oldest first,
// ready to be prepended. A page shorter than size marks the room exhausted.
func (l *Loader) FetchPage(ctx context.Context, roomID string, page, size int) (Page, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	key := fmt.Sprintf("%s:%d:%d", roomID, page, size)

	v, err, shared := l.group.Do(key, func() (any, error) {
		return l.fetcher.FetchMessages(ctx, roomID, page, size)
	})
	if err != nil {
		l.logger.Warn("history fetch failed",
			zap.String("room_id", roomID), zap.Int("page", page), zap.Error(err))
		return Page{}, &LoadError{RoomID: roomID, Page: page, Err: err}
	}
	if shared {
		l.logger.Debug("history fetch coalesced", zap.String("room_id", roomID), zap.Int("page", page))
	}

	newestFirst := v.([]chat.Message)
	msgs := slices.Clone(newestFirst)
	slices.Reverse(msgs)

	return Page{
		RoomID:    roomID,
		Number:    page,
		Messages:  msgs,
		Exhausted: len(msgs) < size,
	}, nil
}
