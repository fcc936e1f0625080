package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"quit", Command{Name: CmdQuit}},
		{"  Q ", Command{Name: CmdQuit}},
		{"open Alice Chen", Command{Name: CmdOpen, Args: "Alice Chen"}},
		{"f   refund ", Command{Name: CmdFilter, Args: "refund"}},
		{"reload", Command{Name: CmdReload}},
		{"", Command{}},
		{"bogus x", Command{Name: "bogus", Args: "x"}},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.in); got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
