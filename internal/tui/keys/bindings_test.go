package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestHandleEventPrefersView(t *testing.T) {
	var got []string
	r := NewRegistry()
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Quit", Visible: true,
		Handler: func() { got = append(got, "quit") }})
	r.AddView("messages", &Action{Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Close room", Visible: true,
		Handler: func() { got = append(got, "close") }})
	r.AddView("messages", &Action{Key: tcell.KeyPgUp, Label: "PgUp", Description: "Older",
		Handler: func() { got = append(got, "older") }})

	tests := []struct {
		view string
		ev   *tcell.EventKey
		want string
		ok   bool
	}{
		{"messages", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), "close", true},
		{"rooms", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), "quit", true},
		{"messages", tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), "older", true},
		{"rooms", tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), "", false},
		{"messages", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), "", false},
	}
	for _, tt := range tests {
		got = nil
		if ok := r.HandleEvent(tt.view, tt.ev); ok != tt.ok {
			t.Errorf("%s %v: handled = %v, want %v", tt.view, tt.ev.Name(), ok, tt.ok)
		}
		if tt.ok && (len(got) != 1 || got[0] != tt.want) {
			t.Errorf("%s %v: ran %v, want %s", tt.view, tt.ev.Name(), got, tt.want)
		}
	}
}

func TestHintsOrder(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal(&Action{Label: "q", Description: "Quit", Visible: true})
	r.AddGlobal(&Action{Label: "x", Description: "hidden"})
	r.AddView("rooms", &Action{Label: "Enter", Description: "Open", Visible: true})
	r.AddView("rooms", &Action{Label: "/", Description: "Filter", Visible: true})

	hints := r.Hints("rooms")
	want := []string{"Enter", "/", "q"}
	if len(hints) != len(want) {
		t.Fatalf("hints = %+v", hints)
	}
	for i, h := range hints {
		if h.Key != want[i] {
			t.Errorf("hint %d = %q, want %q", i, h.Key, want[i])
		}
	}
}
