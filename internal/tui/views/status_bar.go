package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/campchat/internal/status"
	"github.com/matheus3301/campchat/internal/tui/ui"
)

// StatusBar shows the profile, the connection state and flash messages.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	flash   *ui.FlashModel
	profile string
	admin   string
	conn    status.State
}

// NewStatusBar creates a new status bar reading flash messages from flash.
func NewStatusBar(theme *ui.Theme, flash *ui.FlashModel) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	sb := &StatusBar{
		TextView: tv,
		theme:    theme,
		flash:    flash,
		conn:     status.Disconnected,
	}
	sb.Refresh()
	return sb
}

// SetProfile sets the profile and admin shown on the left.
func (sb *StatusBar) SetProfile(name, adminID string) {
	sb.profile, sb.admin = name, adminID
	sb.Refresh()
}

// SetConn updates the connection indicator.
func (sb *StatusBar) SetConn(s status.State) {
	sb.conn = s
	sb.Refresh()
}

// Refresh redraws the bar, dropping an expired flash.
func (sb *StatusBar) Refresh() {
	sb.Clear()

	color := "red"
	switch sb.conn {
	case status.Connected:
		color = "green"
	case status.Connecting, status.Reconnecting:
		color = "yellow"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] %s | [%s]● %s[-]",
		tview.Escape(sb.profile), tview.Escape(sb.admin), color, strings.ToLower(string(sb.conn)))
	if m := sb.flash.Get(); m != nil {
		line += fmt.Sprintf(" | [%s]%s[-]", sb.theme.FlashColor(m.Level), tview.Escape(m.Text))
	}
	_, _ = fmt.Fprint(sb, line)
}
