package composer

import (
	"errors"
	"testing"

	"github.com/matheus3301/campchat/internal/chat"
)

type recordingEmitter struct {
	sent []chat.Outbound
	err  error
}

func (r *recordingEmitter) Send(msg chat.Outbound) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

var target = chat.Selection{Sender: "admin1", Receiver: "cust1", RoomID: "r1", Name: "Alice"}

func TestSendGuards(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target chat.Selection
	}{
		{"empty", "", target},
		{"whitespace", "  \n\t ", target},
		{"no room", "hello", chat.Selection{Sender: "admin1", Receiver: "cust1"}},
		{"no receiver", "hello", chat.Selection{Sender: "admin1", RoomID: "r1"}},
		{"no sender", "hello", chat.Selection{Receiver: "cust1", RoomID: "r1"}},
		{"nothing selected", "hello", chat.Selection{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &recordingEmitter{}
			c := New(e)
			c.SetTarget(tt.target)
			c.SetText(tt.text)
			if c.Send() {
				t.Error("Send() = true, want silent no-op")
			}
			if len(e.sent) != 0 {
				t.Errorf("emitter called %d times", len(e.sent))
			}
			if c.Text() != tt.text {
				t.Error("guarded send must not clear the input")
			}
		})
	}
}

func TestSendEmitsAndClears(t *testing.T) {
	e := &recordingEmitter{}
	c := New(e)
	c.SetTarget(target)
	c.SetText("  hi there  ")

	if !c.Send() {
		t.Fatal("Send() = false")
	}
	want := chat.Outbound{Content: "hi there", Sender: "admin1", Receiver: "cust1", RoomID: "r1"}
	if len(e.sent) != 1 || e.sent[0] != want {
		t.Errorf("sent = %+v, want [%+v]", e.sent, want)
	}
	if c.Text() != "" {
		t.Errorf("Text() = %q after send", c.Text())
	}
}

func TestSendFailureKeepsText(t *testing.T) {
	c := New(&recordingEmitter{err: errors.New("not connected")})
	c.SetTarget(target)
	c.SetText("hello")
	if c.Send() {
		t.Error("Send() = true on emitter error")
	}
	if c.Text() != "hello" {
		t.Error("text should survive a failed emit")
	}
}

func TestEnterDuringCompositionDoesNotSend(t *testing.T) {
	e := &recordingEmitter{}
	c := New(e)
	c.SetTarget(target)
	c.SetText("こんにち")

	c.CompositionStart()
	if c.HandleEnter(false) {
		t.Error("Enter during composition sent the message")
	}
	c.CompositionEnd()

	if c.HandleEnter(true) {
		t.Error("modified Enter sent the message")
	}
	if !c.HandleEnter(false) {
		t.Error("plain Enter after composition should send")
	}
	if len(e.sent) != 1 {
		t.Errorf("sent %d messages, want 1", len(e.sent))
	}
}
