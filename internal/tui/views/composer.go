package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/campchat/internal/composer"
	"github.com/matheus3301/campchat/internal/tui/ui"
)

// Composer is the multi-line message input. Enter sends, Alt-Enter inserts
// a newline. Pasted text is treated like an input-method composition, so a
// newline inside it never sends.
type Composer struct {
	*tview.TextArea
	model  *composer.Composer
	onSent func()
}

// NewComposer creates a composer input bound to model.
func NewComposer(theme *ui.Theme, model *composer.Composer) *Composer {
	ta := tview.NewTextArea().
		SetPlaceholder("Pick a conversation to start typing")
	ta.SetBorder(true)
	ta.SetBorderColor(theme.BorderColor)
	ta.SetBackgroundColor(theme.BgColor)
	ta.SetTitle(" Message (Enter send · Alt-Enter newline) ")
	ta.SetTitleColor(theme.TitleColor)
	ta.SetTextStyle(tcell.StyleDefault.Background(theme.BgColor).Foreground(theme.FgColor))

	c := &Composer{TextArea: ta, model: model}
	ta.SetChangedFunc(func() {
		c.model.SetText(c.GetText())
	})
	ta.SetInputCapture(c.capture)
	return c
}

// SetOnSent sets the callback fired after a message went out.
func (c *Composer) SetOnSent(fn func()) {
	c.onSent = fn
}

// SetEnabled switches the placeholder between the idle and typing hints.
func (c *Composer) SetEnabled(enabled bool) {
	if enabled {
		c.SetPlaceholder("Type a message")
		return
	}
	c.SetPlaceholder("Pick a conversation to start typing")
}

func (c *Composer) capture(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() != tcell.KeyEnter {
		return ev
	}
	if ev.Modifiers()&(tcell.ModAlt|tcell.ModShift|tcell.ModCtrl) != 0 || c.model.Composing() {
		return tcell.NewEventKey(tcell.KeyEnter, '\n', tcell.ModNone)
	}
	c.model.SetText(c.GetText())
	if c.model.HandleEnter(false) {
		c.SetText("", false)
		if c.onSent != nil {
			c.onSent()
		}
	}
	return nil
}

// PasteHandler implements tview.Primitive.
func (c *Composer) PasteHandler() func(text string, setFocus func(p tview.Primitive)) {
	paste := c.TextArea.PasteHandler()
	return func(text string, setFocus func(p tview.Primitive)) {
		c.model.CompositionStart()
		defer c.model.CompositionEnd()
		paste(text, setFocus)
	}
}
