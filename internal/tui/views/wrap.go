package views

import (
	"strings"

	"github.com/rivo/uniseg"
)

// wrap breaks s into lines of at most width cells, at Unicode line break
// opportunities. Explicit newlines are kept. A word wider than width is
// split between grapheme clusters.
func wrap(s string, width int) []string {
	width = max(width, 1)
	var (
		lines []string
		line  strings.Builder
		used  int
		state = -1
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(line.String(), " "))
		line.Reset()
		used = 0
	}

	for s != "" {
		var (
			seg       string
			mustBreak bool
		)
		seg, s, mustBreak, state = uniseg.FirstLineSegmentInString(s, state)
		seg = strings.TrimRight(seg, "\r\n")

		if w := uniseg.StringWidth(strings.TrimRight(seg, " ")); w <= width {
			if used > 0 && used+w > width {
				flush()
			}
			line.WriteString(seg)
			used += uniseg.StringWidth(seg)
		} else {
			g := uniseg.NewGraphemes(seg)
			for g.Next() {
				if cw := g.Width(); used+cw > width {
					flush()
				}
				line.WriteString(g.Str())
				used += g.Width()
			}
		}
		if mustBreak {
			flush()
		}
	}
	if line.Len() > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}
