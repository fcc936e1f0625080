package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/campchat/internal/chat"
	"github.com/matheus3301/campchat/internal/timeline"
	"github.com/matheus3301/campchat/internal/tui/ui"
)

type row struct {
	text  string
	align int
	color tcell.Color
}

// MessageView renders the open room's timeline grouped by day, the admin's
// messages on the right. It is the viewport the scroll coordinator keeps in
// place: positions count wrapped rows.
type MessageView struct {
	*tview.Box
	theme    *ui.Theme
	sel      chat.Selection
	store    *timeline.Store
	rows     []row
	top      int
	width    int
	onScroll func()
}

// NewMessageView creates an empty message view.
func NewMessageView(theme *ui.Theme) *MessageView {
	box := tview.NewBox()
	box.SetBorder(true)
	box.SetBorderColor(theme.BorderColor)
	box.SetBackgroundColor(theme.BgColor)
	box.SetTitleColor(theme.TitleColor)
	box.SetTitle(" Messages ")
	return &MessageView{Box: box, theme: theme}
}

// SetOnScroll sets the callback fired after the user scrolls.
func (mv *MessageView) SetOnScroll(fn func()) {
	mv.onScroll = fn
}

// SetRoom sets whose perspective messages are shown from.
func (mv *MessageView) SetRoom(sel chat.Selection) {
	mv.sel = sel
	mv.SetStatus("")
}

// SetStatus shows s next to the room name in the title.
func (mv *MessageView) SetStatus(s string) {
	name := mv.sel.Name
	if name == "" {
		name = mv.sel.Receiver
	}
	switch {
	case name == "":
		mv.SetTitle(" Messages ")
	case s == "":
		mv.SetTitle(fmt.Sprintf(" %s ", oneLine(name)))
	default:
		mv.SetTitle(fmt.Sprintf(" %s · %s ", oneLine(name), s))
	}
}

// Update re-renders the rows from store. The row count is current when it
// returns.
func (mv *MessageView) Update(store *timeline.Store) {
	mv.store = store
	mv.layout(mv.innerWidth())
}

// ScrollTop implements scroll.Viewport.
func (mv *MessageView) ScrollTop() int { return mv.top }

// ScrollHeight implements scroll.Viewport.
func (mv *MessageView) ScrollHeight() int { return len(mv.rows) }

// SetScrollTop implements scroll.Viewport.
func (mv *MessageView) SetScrollTop(top int) {
	mv.top = min(max(top, 0), mv.maxTop())
}

func (mv *MessageView) maxTop() int {
	_, _, _, h := mv.GetInnerRect()
	return max(len(mv.rows)-h, 0)
}

func (mv *MessageView) innerWidth() int {
	_, _, w, _ := mv.GetInnerRect()
	return max(w, 1)
}

func (mv *MessageView) layout(width int) {
	mv.width = width
	mv.rows = mv.rows[:0]
	if mv.store == nil {
		return
	}
	loc := mv.store.Location()
	bubble := max(width*3/4, min(width, 24))

	for day, msgs := range mv.store.GroupedByDay() {
		mv.rows = append(mv.rows, row{
			text:  "── " + day.In(loc).Format("Mon, Jan 2 2006") + " ──",
			align: tview.AlignCenter,
			color: mv.theme.DayColor,
		})
		for _, m := range msgs {
			align, color, who := tview.AlignLeft, mv.theme.PeerColor, mv.sel.Name
			if who == "" {
				who = m.SenderID
			}
			if m.SenderID == mv.sel.Sender {
				align, color, who = tview.AlignRight, mv.theme.SelfColor, "You"
			}
			mv.rows = append(mv.rows, row{
				text:  oneLine(who) + " · " + m.CreatedAt.In(loc).Format("15:04"),
				align: align,
				color: mv.theme.DimColor,
			})
			for _, line := range wrap(clean(m.Content), bubble) {
				mv.rows = append(mv.rows, row{text: line, align: align, color: color})
			}
			mv.rows = append(mv.rows, row{})
		}
	}
}

// Draw implements tview.Primitive.
func (mv *MessageView) Draw(screen tcell.Screen) {
	mv.DrawForSubclass(screen, mv)
	x, y, w, h := mv.GetInnerRect()
	if w <= 0 || h <= 0 {
		return
	}
	if w != mv.width {
		atBottom := mv.top >= mv.maxTop()
		mv.layout(w)
		if atBottom {
			mv.top = mv.maxTop()
		}
	}
	mv.SetScrollTop(mv.top)

	for i := 0; i < h && mv.top+i < len(mv.rows); i++ {
		r := mv.rows[mv.top+i]
		tview.Print(screen, tview.Escape(r.text), x, y+i, w, r.align, r.color)
	}
}

// scrollBy moves the view by delta rows. Upward attempts are reported even
// when the view is already at the top, so older history can still be asked
// for when everything fits or the last fetch failed.
func (mv *MessageView) scrollBy(delta int) {
	before := mv.top
	mv.SetScrollTop(mv.top + delta)
	if mv.onScroll != nil && (mv.top != before || delta < 0) {
		mv.onScroll()
	}
}

// InputHandler implements tview.Primitive.
func (mv *MessageView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return mv.WrapInputHandler(func(event *tcell.EventKey, _ func(p tview.Primitive)) {
		_, _, _, h := mv.GetInnerRect()
		switch event.Key() {
		case tcell.KeyUp:
			mv.scrollBy(-1)
		case tcell.KeyDown:
			mv.scrollBy(1)
		case tcell.KeyPgUp:
			mv.scrollBy(-h)
		case tcell.KeyPgDn:
			mv.scrollBy(h)
		case tcell.KeyHome:
			mv.scrollBy(-len(mv.rows))
		case tcell.KeyEnd:
			mv.scrollBy(len(mv.rows))
		case tcell.KeyRune:
			switch event.Rune() {
			case 'k':
				mv.scrollBy(-1)
			case 'j':
				mv.scrollBy(1)
			case 'g':
				mv.scrollBy(-len(mv.rows))
			case 'G':
				mv.scrollBy(len(mv.rows))
			}
		}
	})
}

// MouseHandler implements tview.Primitive.
func (mv *MessageView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return mv.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		if !mv.InRect(event.Position()) {
			return false, nil
		}
		switch action {
		case tview.MouseScrollUp:
			mv.scrollBy(-3)
			return true, nil
		case tview.MouseScrollDown:
			mv.scrollBy(3)
			return true, nil
		case tview.MouseLeftClick:
			setFocus(mv)
			return true, nil
		}
		return false, nil
	})
}
