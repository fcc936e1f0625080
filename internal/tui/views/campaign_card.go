package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/campchat/internal/chat"
	"github.com/matheus3301/campchat/internal/rooms"
	"github.com/matheus3301/campchat/internal/tui/ui"
)

// CampaignCard shows the campaign the rooms belong to.
type CampaignCard struct {
	*tview.TextView
	theme *ui.Theme
}

// NewCampaignCard creates an empty campaign card.
func NewCampaignCard(theme *ui.Theme) *CampaignCard {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Campaign ")
	tv.SetTitleColor(theme.TitleColor)

	return &CampaignCard{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders c. The key vision falls back to the placeholder image.
func (cc *CampaignCard) Update(c chat.Campaign) {
	cc.Clear()
	fg := ui.Tag(cc.theme.FgColor)
	ct := ui.Tag(cc.theme.CounterColor)

	title := c.Title
	if title == "" {
		title = c.ID
	}
	visual := c.KeyVision
	if visual == "" {
		visual = rooms.FallbackPhoto
	}

	_, _ = fmt.Fprintf(cc,
		" [%s::b]%s[-:-:-]\n"+
			" [%s]Creator:[-]    [%s]%s[-]\n"+
			" [%s]Key vision:[-] [%s]%s[-]",
		ct, tview.Escape(oneLine(title)),
		fg, ct, tview.Escape(c.Creator),
		fg, ct, tview.Escape(visual),
	)
}
