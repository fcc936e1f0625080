package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/bus"
	"github.com/matheus3301/campchat/internal/conn"
	"github.com/matheus3301/campchat/internal/loop"
	"github.com/matheus3301/campchat/internal/origin"
	"github.com/matheus3301/campchat/internal/profile"
	"github.com/matheus3301/campchat/internal/rooms"
	"github.com/matheus3301/campchat/internal/scroll"
	"github.com/matheus3301/campchat/internal/widget"
)

const reloadTimeout = 15 * time.Second

// Surface is the front end a session renders to: the terminal UI or a
// headless loop.
type Surface interface {
	Scheduler() loop.Scheduler
	Viewport() scroll.Viewport
	// ScrollOptions tunes the scroll coordinator in the viewport's units.
	ScrollOptions() scroll.Options
	// Render runs on the scheduler. See widget.Options.Render.
	Render(widget.Change)
}

// Session bundles the components of one admin's chat panel.
type Session struct {
	Profile profile.Active
	Logger  *zap.Logger
	Client  *origin.Client
	Conn    *conn.Manager
	Rooms   *rooms.List
	Widget  *widget.Widget

	surface Surface

	mu       sync.Mutex
	roomsErr error
}

func newSession(p Params, logger *zap.Logger, c *origin.Client, m *conn.Manager, list *rooms.List, w *widget.Widget) *Session {
	if a, ok := p.Surface.(interface{ Attach(*widget.Widget) }); ok {
		a.Attach(w)
	}
	return &Session{
		Profile: p.Active,
		Logger:  logger,
		Client:  c,
		Conn:    m,
		Rooms:   list,
		Widget:  w,
		surface: p.Surface,
	}
}

// Bus returns the bus connectivity changes are published on.
func (s *Session) Bus() *bus.Bus { return s.Conn.Bus() }

// Reload fetches the room list in the background and renders
// widget.ChangeRooms once it is in.
func (s *Session) Reload(ctx context.Context) {
	campaignID := s.Profile.Settings.CampaignID
	go func() {
		ctx, cancel := context.WithTimeout(ctx, reloadTimeout)
		defer cancel()
		err := s.Rooms.Load(ctx, campaignID)
		if err != nil {
			s.Logger.Warn("room list not loaded", zap.String("campaign_id", campaignID), zap.Error(err))
		}
		s.mu.Lock()
		s.roomsErr = err
		s.mu.Unlock()
		s.surface.Scheduler().Queue(func() { s.surface.Render(widget.ChangeRooms) })
	}()
}

// RoomsErr returns the error of the last room list load, if any.
func (s *Session) RoomsErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomsErr
}

// Open selects roomID in the list and opens it in the widget. Scheduler
// goroutine only.
func (s *Session) Open(roomID string) error {
	if s.Rooms.Current() == roomID && s.Widget.Selection().RoomID == roomID {
		return nil
	}
	sel, err := s.Rooms.Select(roomID)
	if err != nil {
		return err
	}
	if err := s.Widget.SelectRoom(sel); err != nil {
		s.Rooms.ClearCurrent()
		return err
	}
	return nil
}

// Close leaves the open room. Scheduler goroutine only.
func (s *Session) Close() {
	s.Rooms.ClearCurrent()
	s.Widget.CloseRoom()
}
