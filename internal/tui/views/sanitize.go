package views

import (
	"strings"
	"unicode"
)

// clean prepares user text for the terminal. Control characters other than
// newline are dropped and tabs become spaces. Codepoints tcell renders badly
// are removed too: skin tone modifiers, zero width joiners and variation
// selectors, so that 👍🏻 shows as a plain 👍.
func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t':
			b.WriteString("    ")
		case unicode.IsControl(r), badForTerminal(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func badForTerminal(r rune) bool {
	return r == 0x200D ||
		(r >= 0x1F3FB && r <= 0x1F3FF) ||
		(r >= 0xFE00 && r <= 0xFE0F) ||
		(r >= 0xE0100 && r <= 0xE01EF)
}

// oneLine flattens s for single-line cells.
func oneLine(s string) string {
	return strings.Join(strings.Fields(clean(s)), " ")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
