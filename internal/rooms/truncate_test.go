package rooms

import (
	"testing"

	"github.com/rivo/uniseg"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello w…"},
		{"newlines", "line one\nline two", 40, "line one line two"},
		{"wide runes", "你好世界朋友", 7, "你好世…"},
		{"zero width", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if w := uniseg.StringWidth(got); w > tt.width {
				t.Errorf("width %d exceeds %d", w, tt.width)
			}
		})
	}
}

func TestTruncateKeepsGraphemes(t *testing.T) {
	// Family emoji is a single grapheme joined with ZWJ.
	got := Truncate("👨‍👩‍👧 family dinner", 6)
	if got[:len("👨‍👩‍👧")] != "👨‍👩‍👧" {
		t.Errorf("grapheme split: %q", got)
	}
}
