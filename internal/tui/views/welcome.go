package views

import (
	"github.com/rivo/tview"

	"github.com/matheus3301/campchat/internal/tui/ui"
)

// Welcome fills the message pane while no room is open.
type Welcome struct {
	*tview.Flex
	menu *ui.Menu
}

// NewWelcome creates the welcome pane.
func NewWelcome(theme *ui.Theme) *Welcome {
	notice := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("Pick a conversation from the list")
	notice.SetBackgroundColor(theme.BgColor)
	notice.SetTextColor(theme.CounterColor)

	menu := ui.NewMenu(theme)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(ui.NewLogo(theme), 5, 0, false).
		AddItem(notice, 2, 0, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(menu, 36, 0, false).
			AddItem(nil, 0, 1, false), 0, 2, false)
	flex.SetBorder(true)
	flex.SetBorderColor(theme.BorderColor)
	flex.SetBackgroundColor(theme.BgColor)

	return &Welcome{Flex: flex, menu: menu}
}

// SetHints lists the key bindings.
func (w *Welcome) SetHints(hints []ui.MenuHint) {
	w.menu.Update(hints)
}
