package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/campchat/internal/rooms"
	"github.com/matheus3301/campchat/internal/tui/ui"
)

// RoomList is the table of a campaign's conversations, most recent first.
type RoomList struct {
	*tview.Table
	theme   *ui.Theme
	entries []rooms.Entry
	now     func() time.Time
}

// NewRoomList creates an empty room table.
func NewRoomList(theme *ui.Theme) *RoomList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Rooms ")
	table.SetTitleColor(theme.TitleColor)

	return &RoomList{
		Table: table,
		theme: theme,
		now:   time.Now,
	}
}

// SetOnOpen sets the callback fired when a room is chosen with Enter.
func (rl *RoomList) SetOnOpen(fn func(roomID string)) {
	rl.SetSelectedFunc(func(row, _ int) {
		if id := rl.roomAt(row); id != "" {
			fn(id)
		}
	})
}

// Update renders entries. total is the room count before filtering; a
// non-nil err is shown instead of the empty-list notice. The cursor stays on
// the same room when it is still listed.
func (rl *RoomList) Update(entries []rooms.Entry, total int, filter string, err error) {
	selected := rl.SelectedRoom()
	rl.entries = entries
	rl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" ", 0},
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
	}
	for col, h := range headers {
		rl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(rl.theme.TableHeaderFg).
			SetBackgroundColor(rl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	cursor := 1
	for i, e := range entries {
		row := i + 1
		marker := " "
		if e.Current {
			marker = "●"
		}
		if e.RoomID == selected {
			cursor = row
		}
		rl.SetCell(row, 0, tview.NewTableCell(marker).SetTextColor(rl.theme.SelfColor))
		rl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(oneLine(e.Name))).SetExpansion(1).SetTextColor(rl.theme.FgColor))
		rl.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(oneLine(e.Preview))).SetExpansion(2).SetTextColor(rl.theme.FgColor))
		rl.SetCell(row, 3, tview.NewTableCell(formatTimestamp(e.LastActivity, rl.now())).SetTextColor(rl.theme.CounterColor).SetAlign(tview.AlignRight))
	}

	switch {
	case err != nil:
		rl.SetCell(1, 1, tview.NewTableCell(" "+tview.Escape(err.Error())).SetSelectable(false).SetTextColor(rl.theme.FlashErrColor))
	case len(entries) == 0 && filter != "":
		rl.SetCell(1, 1, tview.NewTableCell(" no room matches").SetSelectable(false).SetTextColor(rl.theme.DimColor))
	case len(entries) == 0:
		rl.SetCell(1, 1, tview.NewTableCell(" no conversations yet").SetSelectable(false).SetTextColor(rl.theme.DimColor))
	default:
		rl.Select(cursor, 0)
	}

	if filter != "" {
		rl.SetTitle(fmt.Sprintf(" Rooms (%d/%d) /%s ", len(entries), total, tview.Escape(filter)))
	} else {
		rl.SetTitle(fmt.Sprintf(" Rooms (%d) ", len(entries)))
	}
}

// SelectedRoom returns the room under the cursor.
func (rl *RoomList) SelectedRoom() string {
	row, _ := rl.GetSelection()
	return rl.roomAt(row)
}

func (rl *RoomList) roomAt(row int) string {
	idx := row - 1 // header
	if idx < 0 || idx >= len(rl.entries) {
		return ""
	}
	return rl.entries[idx].RoomID
}

// RoomByName returns the first listed room whose name contains name,
// ignoring case.
func (rl *RoomList) RoomByName(name string) string {
	for _, e := range rl.entries {
		if containsFold(e.Name, name) {
			return e.RoomID
		}
	}
	return ""
}

func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	if y, m, d := t.Date(); y == now.Year() && m == now.Month() && d == now.Day() {
		return t.Format("15:04")
	}
	if t.Year() == now.Year() {
		return t.Format("01/02")
	}
	return t.Format("2006/01/02")
}
