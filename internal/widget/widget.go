// Package widget wires the chat components into the per-admin chat panel:
// one connection, one open room, its timeline, pagination and composer.
package widget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/chat"
	"github.com/matheus3301/campchat/internal/composer"
	"github.com/matheus3301/campchat/internal/history"
	"github.com/matheus3301/campchat/internal/loop"
	"github.com/matheus3301/campchat/internal/scroll"
	"github.com/matheus3301/campchat/internal/timeline"
)

// ErrIncompleteSelection is returned when opening a room without a sender,
// receiver or room id.
var ErrIncompleteSelection = errors.New("widget: incomplete room selection")

// Connection is the real-time channel the widget drives.
type Connection interface {
	Connect(ctx context.Context) error
	JoinRoom(roomID string) error
	LeaveRoom(roomID string) error
	Send(msg chat.Outbound) error
	Disconnect()
	OnMessage(handler func(chat.Message)) func()
}

// PushObserver is told about every pushed message, for any room.
type PushObserver interface {
	ObservePush(m chat.Message) bool
}

// Change tells the renderer what just happened.
type Change int

const (
	// ChangeReset: a room was opened or closed; the timeline is empty.
	ChangeReset Change = iota
	// ChangeLoading: a history page was requested.
	ChangeLoading
	// ChangeInitial: the first page of the open room arrived.
	ChangeInitial
	// ChangePrepend: an older page was inserted above.
	ChangePrepend
	// ChangeAppend: a pushed message was added.
	ChangeAppend
	// ChangeRooms: the room list changed.
	ChangeRooms
	// ChangeError: a history request failed; the timeline is unchanged.
	ChangeError
)

func (c Change) String() string {
	switch c {
	case ChangeReset:
		return "reset"
	case ChangeLoading:
		return "loading"
	case ChangeInitial:
		return "initial"
	case ChangePrepend:
		return "prepend"
	case ChangeAppend:
		return "append"
	case ChangeRooms:
		return "rooms"
	case ChangeError:
		return "error"
	}
	return fmt.Sprintf("change(%d)", int(c))
}

// Options configures a Widget.
type Options struct {
	Conn      Connection
	Loader    *history.Loader
	Scheduler loop.Scheduler
	// Viewport is the scrollable message area. Nil uses an in-memory one.
	Viewport scroll.Viewport
	Scroll   scroll.Options
	// Rooms, when set, sees every push.
	Rooms    PushObserver
	Location *time.Location
	PageSize int
	// Render redraws the panel. It runs on the scheduler and must update the
	// viewport height before returning.
	Render func(Change)
	Logger *zap.Logger
}

// Widget is the chat panel of one admin. Except for Mount and Unmount, its
// methods must be called on the scheduler's goroutine. Mount and Unmount may
// also be called while the scheduler is not running.
type Widget struct {
	conn     Connection
	loader   *history.Loader
	sched    loop.Scheduler
	rooms    PushObserver
	render   func(Change)
	logger   *zap.Logger
	timeline *timeline.Store
	cursor   history.Cursor
	scroll   *scroll.Coordinator
	composer *composer.Composer

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()

	sel           chat.Selection
	gen           uint64
	initialLoaded bool
	lastErr       error
}

// New creates an unmounted widget.
func New(opts Options) *Widget {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Render == nil {
		opts.Render = func(Change) {}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = loop.Func(func(fn func()) { fn() })
	}
	w := &Widget{
		conn:     opts.Conn,
		loader:   opts.Loader,
		sched:    opts.Scheduler,
		rooms:    opts.Rooms,
		render:   opts.Render,
		logger:   opts.Logger,
		timeline: timeline.New(opts.Location),
		cursor:   history.NewCursor(opts.PageSize),
		ctx:      context.Background(),
	}
	w.scroll = scroll.New(opts.Viewport, opts.Scheduler, w.LoadOlder, opts.Scroll)
	w.composer = composer.New(opts.Conn)
	return w
}

// Mount opens the connection and starts receiving pushes.
func (w *Widget) Mount(ctx context.Context) error {
	if w.unsub != nil {
		return nil
	}
	if err := w.conn.Connect(ctx); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	w.ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))
	w.unsub = w.conn.OnMessage(func(m chat.Message) {
		w.sched.Queue(func() { w.handlePush(m) })
	})
	w.logger.Info("chat widget mounted")
	return nil
}

// Unmount leaves the open room and closes the connection. In-flight fetches
// are cancelled and their results dropped.
func (w *Widget) Unmount() {
	w.scroll.Reset()
	w.leave()
	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}
	w.conn.Disconnect()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.gen++
	w.sel = chat.Selection{}
	w.composer.SetTarget(chat.Selection{})
	w.timeline.Reset()
	w.cursor.Reset()
	w.initialLoaded = false
	w.logger.Info("chat widget unmounted")
}

// SelectRoom opens a room: the previous room is left and its state
// discarded, the new room is joined and its first page requested.
// Reselecting the open room does nothing.
func (w *Widget) SelectRoom(sel chat.Selection) error {
	if !sel.Ready() {
		return ErrIncompleteSelection
	}
	if sel == w.sel {
		return nil
	}

	w.scroll.Reset()
	w.leave()
	w.timeline.Reset()
	w.cursor.Reset()
	w.gen++
	w.sel = sel
	w.initialLoaded = false
	w.lastErr = nil
	w.composer.SetTarget(sel)

	if err := w.conn.JoinRoom(sel.RoomID); err != nil {
		w.logger.Warn("join room failed", zap.String("room_id", sel.RoomID), zap.Error(err))
	}
	w.render(ChangeReset)

	w.fetch(w.cursor.BeginInitial())
	w.render(ChangeLoading)
	return nil
}

// CloseRoom leaves the open room without opening another one.
func (w *Widget) CloseRoom() {
	if w.sel.RoomID == "" {
		return
	}
	w.scroll.Reset()
	w.leave()
	w.gen++
	w.sel = chat.Selection{}
	w.composer.SetTarget(chat.Selection{})
	w.timeline.Reset()
	w.cursor.Reset()
	w.initialLoaded = false
	w.lastErr = nil
	w.render(ChangeReset)
}

// LoadOlder starts fetching the next older page. It returns false when no
// room is open, a fetch is already running or the room is exhausted. While
// the first page has not loaded it retries the first page instead.
func (w *Widget) LoadOlder() bool {
	if w.sel.RoomID == "" || w.cursor.Loading() {
		return false
	}
	var page int
	if !w.initialLoaded {
		page = w.cursor.BeginInitial()
	} else {
		var ok bool
		if page, ok = w.cursor.BeginOlder(); !ok {
			return false
		}
	}
	w.fetch(page)
	w.render(ChangeLoading)
	return true
}

// Send emits the composer's text to the open room.
func (w *Widget) Send() bool {
	return w.composer.Send()
}

// Selection returns the open room, or a zero Selection.
func (w *Widget) Selection() chat.Selection { return w.sel }

// Timeline returns the open room's messages.
func (w *Widget) Timeline() *timeline.Store { return w.timeline }

// Composer returns the message input.
func (w *Widget) Composer() *composer.Composer { return w.composer }

// Scroll returns the scroll coordinator the viewport reports to.
func (w *Widget) Scroll() *scroll.Coordinator { return w.scroll }

// Loading reports whether a page fetch is in flight.
func (w *Widget) Loading() bool { return w.cursor.Loading() }

// Exhausted reports whether the open room has no older history.
func (w *Widget) Exhausted() bool { return w.cursor.Exhausted }

// Page returns the last page loaded for the open room.
func (w *Widget) Page() int { return w.cursor.Page }

// Err returns the last fetch error for the open room, if any.
func (w *Widget) Err() error { return w.lastErr }

func (w *Widget) leave() {
	if w.sel.RoomID == "" {
		return
	}
	if err := w.conn.LeaveRoom(w.sel.RoomID); err != nil {
		w.logger.Warn("leave room failed", zap.String("room_id", w.sel.RoomID), zap.Error(err))
	}
}

func (w *Widget) fetch(page int) {
	gen, roomID, size, ctx := w.gen, w.sel.RoomID, w.cursor.Size, w.ctx
	go func() {
		p, err := w.loader.FetchPage(ctx, roomID, page, size)
		w.sched.Queue(func() { w.applyPage(gen, roomID, page, p, err) })
	}()
}

func (w *Widget) applyPage(gen uint64, roomID string, page int, p history.Page, err error) {
	if gen != w.gen || roomID != w.sel.RoomID {
		w.logger.Debug("dropping stale page", zap.String("room_id", roomID), zap.Int("page", page))
		return
	}
	if err != nil {
		w.cursor.Fail()
		w.scroll.PrependFailed()
		w.lastErr = err
		w.render(ChangeError)
		return
	}
	w.lastErr = nil
	w.cursor.Complete(p)

	if page == 1 {
		w.timeline.Prepend(p.Messages)
		w.initialLoaded = true
		w.render(ChangeInitial)
		w.scroll.AfterInitialLoad()
		return
	}
	w.scroll.BeforePrepend()
	w.timeline.Prepend(p.Messages)
	w.render(ChangePrepend)
	w.scroll.AfterPrepend()
}

// handlePush ignores everything while no room is open, which includes
// pushes that were already queued when the widget was unmounted.
func (w *Widget) handlePush(m chat.Message) {
	if w.sel.RoomID == "" {
		return
	}
	if w.rooms != nil && w.rooms.ObservePush(m) {
		w.render(ChangeRooms)
	}
	if m.RoomID != w.sel.RoomID {
		return
	}
	if !w.timeline.Append(m) {
		w.logger.Debug("duplicate push", zap.String("room_id", m.RoomID), zap.String("id", m.ID))
		return
	}
	w.render(ChangeAppend)
	w.scroll.AfterAppend()
}
