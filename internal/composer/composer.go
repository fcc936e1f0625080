// Package composer holds the outgoing message being typed.
package composer

import (
	"strings"

	"github.com/matheus3301/campchat/internal/chat"
)

// Emitter transmits an outbound message.
type Emitter interface {
	Send(msg chat.Outbound) error
}

// Composer guards sending: nothing goes out while an input-method
// composition is active, while the text is blank, or before a room is open.
type Composer struct {
	emitter   Emitter
	text      string
	composing bool
	target    chat.Selection
}

// New creates a composer that emits through e.
func New(e Emitter) *Composer {
	return &Composer{emitter: e}
}

// SetText replaces the input content.
func (c *Composer) SetText(s string) { c.text = s }

// Text returns the input content.
func (c *Composer) Text() string { return c.text }

// SetTarget sets the room messages are sent to. A zero Selection disables sending.
func (c *Composer) SetTarget(sel chat.Selection) { c.target = sel }

// Target returns the current room target.
func (c *Composer) Target() chat.Selection { return c.target }

// CompositionStart marks the start of an input-method composition.
func (c *Composer) CompositionStart() { c.composing = true }

// CompositionEnd marks its end.
func (c *Composer) CompositionEnd() { c.composing = false }

// Composing reports whether a composition is active.
func (c *Composer) Composing() bool { return c.composing }

// HandleEnter reacts to the Enter key. A modified Enter (shift, alt) or one
// typed during a composition does not send. Returns whether a message was sent.
func (c *Composer) HandleEnter(modified bool) bool {
	if modified || c.composing {
		return false
	}
	return c.Send()
}

// Send emits the current text and clears the input. It is a silent no-op
// when the text is blank or no room is open.
func (c *Composer) Send() bool {
	content := strings.TrimSpace(c.text)
	if content == "" || !c.target.Ready() {
		return false
	}
	err := c.emitter.Send(chat.Outbound{
		Content:  content,
		Sender:   c.target.Sender,
		Receiver: c.target.Receiver,
		RoomID:   c.target.RoomID,
	})
	if err != nil {
		return false
	}
	c.text = ""
	return true
}
