// Package tui is the terminal front end of the chat console.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/campchat/internal/bus"
	"github.com/matheus3301/campchat/internal/console"
	"github.com/matheus3301/campchat/internal/loop"
	"github.com/matheus3301/campchat/internal/scroll"
	"github.com/matheus3301/campchat/internal/status"
	"github.com/matheus3301/campchat/internal/tui/keys"
	"github.com/matheus3301/campchat/internal/tui/ui"
	"github.com/matheus3301/campchat/internal/tui/views"
	"github.com/matheus3301/campchat/internal/widget"
)

// Views, as named in the key registry.
const (
	viewRooms    = "rooms"
	viewMessages = "messages"
	viewComposer = "composer"
)

const (
	pageWelcome = "welcome"
	pageChat    = "chat"
)

const (
	flashRefresh    = time.Second
	scrollThreshold = 1
)

// App is the main TUI application shell. It is the console.Surface of the
// session it is bound to.
type App struct {
	app       *tview.Application
	theme     *ui.Theme
	flash     *ui.FlashModel
	registry  *keys.Registry
	root      *tview.Flex
	right     *tview.Pages
	chatFlex  *tview.Flex
	prompt    *ui.Prompt
	statusBar *views.StatusBar
	roomList  *views.RoomList
	card      *views.CampaignCard
	welcome   *views.Welcome
	msgView   *views.MessageView
	composer  *views.Composer

	session     *console.Session
	unsubscribe func()
	promptOpen  bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewApp creates the TUI application. Bind must be called once the session
// is built.
func NewApp() *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()
	flash := ui.NewFlashModel()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		flash:     flash,
		registry:  keys.NewRegistry(),
		right:     tview.NewPages(),
		prompt:    ui.NewPrompt(theme),
		statusBar: views.NewStatusBar(theme, flash),
		roomList:  views.NewRoomList(theme),
		card:      views.NewCampaignCard(theme),
		welcome:   views.NewWelcome(theme),
		msgView:   views.NewMessageView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}
	a.setupBindings()
	a.welcome.SetHints(a.registry.Hints(viewRooms))
	return a
}

// Scheduler implements console.Surface. Queued work runs on the tview
// event goroutine followed by a redraw.
func (a *App) Scheduler() loop.Scheduler {
	return loop.Func(func(fn func()) { a.app.QueueUpdateDraw(fn) })
}

// Viewport implements console.Surface.
func (a *App) Viewport() scroll.Viewport { return a.msgView }

// ScrollOptions implements console.Surface. The message view scrolls by
// rows, so older messages load once the first row is in view.
func (a *App) ScrollOptions() scroll.Options {
	return scroll.Options{Threshold: scrollThreshold}
}

// Render implements console.Surface.
func (a *App) Render(c widget.Change) {
	if a.session == nil {
		return
	}
	w := a.session.Widget
	switch c {
	case widget.ChangeRooms:
		a.refreshRooms()
	case widget.ChangeReset:
		sel := w.Selection()
		a.msgView.SetRoom(sel)
		a.msgView.Update(w.Timeline())
		if a.composer != nil {
			a.composer.SetEnabled(sel.RoomID != "")
		}
		if sel.RoomID == "" {
			a.right.SwitchToPage(pageWelcome)
		} else {
			a.right.SwitchToPage(pageChat)
		}
		a.refreshRooms()
	case widget.ChangeLoading:
		a.msgView.SetStatus("loading…")
	case widget.ChangeInitial, widget.ChangePrepend, widget.ChangeAppend:
		a.msgView.Update(w.Timeline())
		if w.Exhausted() {
			a.msgView.SetStatus("beginning of conversation")
		} else {
			a.msgView.SetStatus("")
		}
	case widget.ChangeError:
		a.msgView.SetStatus("failed, scroll up to retry")
	}
}

// Bind wires the views to s. It must run before Run.
func (a *App) Bind(s *console.Session) {
	a.session = s
	a.statusBar.SetProfile(s.Profile.Name, s.Profile.Settings.AdminID)
	a.statusBar.SetConn(s.Conn.Status())

	a.composer = views.NewComposer(a.theme, s.Widget.Composer())
	a.composer.SetEnabled(false)
	a.msgView.SetOnScroll(s.Widget.Scroll().OnScroll)
	a.roomList.SetOnOpen(a.openRoom)

	a.unsubscribe = s.Bus().Handle(bus.KindConnStatus, 16, func(evt bus.Event) {
		change, ok := evt.Payload.(status.StatusChange)
		if !ok {
			return
		}
		a.app.QueueUpdateDraw(func() { a.connChanged(change) })
	})

	a.setupLayout()
}

func (a *App) connChanged(change status.StatusChange) {
	a.statusBar.SetConn(change.To)
	switch change.To {
	case status.Reconnecting:
		a.flash.Warn("connection lost, reconnecting")
	case status.Disconnected:
		if change.From != status.Connecting {
			a.flash.Warn("disconnected from the origin")
		}
	case status.Connected:
		if change.From == status.Reconnecting {
			a.flash.Info("reconnected")
		}
	}
	a.statusBar.Refresh()
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Label: "q",
		Description: "quit", Visible: true,
		Handler: a.Stop,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':', Label: ":",
		Description: "command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand, "") },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Label: "r",
		Description: "reload rooms", Visible: true,
		Handler: a.reload,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyTab, Label: "Tab",
		Description: "next pane", Visible: true,
		Handler: a.cycleFocus,
	})

	a.registry.AddView(viewRooms, &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter",
		Description: "open room", Visible: true,
		Handler: func() {
			if id := a.roomList.SelectedRoom(); id != "" {
				a.openRoom(id)
			}
		},
	})
	a.registry.AddView(viewRooms, &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Label: "/",
		Description: "filter rooms", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptFilter, a.currentFilter()) },
	})
	a.registry.AddView(viewMessages, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Label: "i",
		Description: "write", Visible: true,
		Handler: a.focusComposer,
	})
	a.registry.AddView(viewMessages, &keys.Action{
		Key: tcell.KeyEscape, Label: "Esc",
		Description: "back to rooms", Visible: true,
		Handler: func() { a.app.SetFocus(a.roomList) },
	})
}

func (a *App) setupLayout() {
	a.chatFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.composer, 4, 0, false)

	a.right.AddPage(pageWelcome, a.welcome, true, true)
	a.right.AddPage(pageChat, a.chatFlex, true, false)

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.roomList, 0, 1, true).
		AddItem(a.card, 5, 0, false)

	main := tview.NewFlex().
		AddItem(left, 0, 2, true).
		AddItem(a.right, 0, 3, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(main, 0, 1, true)

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.applyFilter(text)
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptCommand {
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.applyFilter("")
		}
		a.hidePrompt()
	})

	a.app.SetRoot(a.root, true).
		SetFocus(a.roomList).
		EnableMouse(true).
		EnablePaste(true)
	a.app.SetInputCapture(a.capture)
}

func (a *App) capture(ev *tcell.EventKey) *tcell.EventKey {
	if a.promptOpen {
		return ev
	}
	if a.focusedView() == viewComposer {
		switch ev.Key() {
		case tcell.KeyEscape:
			a.app.SetFocus(a.msgView)
			return nil
		case tcell.KeyTab:
			a.cycleFocus()
			return nil
		}
		return ev
	}
	if a.registry.HandleEvent(a.focusedView(), ev) {
		return nil
	}
	return ev
}

func (a *App) focusedView() string {
	focus := a.app.GetFocus()
	switch {
	case focus == a.msgView:
		return viewMessages
	case a.composer != nil && (focus == a.composer || focus == a.composer.TextArea):
		return viewComposer
	}
	return viewRooms
}

func (a *App) cycleFocus() {
	if a.session == nil || a.session.Widget.Selection().RoomID == "" {
		a.app.SetFocus(a.roomList)
		return
	}
	switch a.focusedView() {
	case viewRooms:
		a.app.SetFocus(a.msgView)
	case viewMessages:
		a.focusComposer()
	default:
		a.app.SetFocus(a.roomList)
	}
}

func (a *App) focusComposer() {
	if a.session != nil && a.session.Widget.Selection().RoomID != "" {
		a.app.SetFocus(a.composer)
	}
}

func (a *App) openRoom(roomID string) {
	if err := a.session.Open(roomID); err != nil {
		a.flash.Err(err)
		a.statusBar.Refresh()
		return
	}
	a.focusComposer()
}

func (a *App) refreshRooms() {
	s := a.session
	a.roomList.Update(s.Rooms.Entries(), s.Rooms.Len(), s.Rooms.Filter(), s.RoomsErr())
	a.card.Update(s.Rooms.Campaign())
}

func (a *App) currentFilter() string {
	if a.session == nil {
		return ""
	}
	return a.session.Rooms.Filter()
}

func (a *App) applyFilter(text string) {
	a.session.Rooms.SetFilter(text)
	a.refreshRooms()
}

func (a *App) reload() {
	a.flash.Info("reloading rooms")
	a.statusBar.Refresh()
	a.session.Reload(a.ctx)
}

func (a *App) showPrompt(mode ui.PromptMode, text string) {
	if a.promptOpen {
		return
	}
	a.promptOpen = true
	a.prompt.Activate(mode, text)
	a.root.AddItem(a.prompt, 3, 0, true)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	if !a.promptOpen {
		return
	}
	a.promptOpen = false
	a.root.RemoveItem(a.prompt)
	a.app.SetFocus(a.roomList)
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "":
	case CmdQuit:
		a.Stop()
	case CmdReload:
		a.reload()
	case CmdClose:
		a.session.Close()
		a.app.SetFocus(a.roomList)
	case CmdOpen:
		id := a.roomList.RoomByName(cmd.Args)
		if id == "" {
			a.flash.Warn(fmt.Sprintf("no room named %q", cmd.Args))
			break
		}
		a.openRoom(id)
	case CmdFilter:
		a.applyFilter(cmd.Args)
	case CmdHelp:
		a.session.Close()
		a.right.SwitchToPage(pageWelcome)
	default:
		a.flash.Warn(fmt.Sprintf("unknown command %q", cmd.Name))
	}
	a.statusBar.Refresh()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	go a.refreshLoop()
	return a.app.Run()
}

// refreshLoop redraws the status bar so flash messages expire.
func (a *App) refreshLoop() {
	ticker := time.NewTicker(flashRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.statusBar.Refresh)
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop shuts the TUI down.
func (a *App) Stop() {
	a.cancel()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.app.Stop()
}
