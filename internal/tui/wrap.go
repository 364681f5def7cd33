package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cell is one rendered rune of the reference text.
type cell struct {
	s       string
	width   int
	isSpace bool
}

// styleCells colours the reference text against the transcript position by
// position. A wrong rune typed where a space belongs shows as a dot.
func styleCells(reference, typed []rune, cursor int) []cell {
	active := activeWord(wordSpans(reference), cursor)

	out := make([]cell, 0, len(reference))
	for i, want := range reference {
		shown := want
		style := pendingStyle
		switch {
		case i < len(typed):
			switch {
			case typed[i] == want:
				style = correctStyle
			case want == ' ':
				shown = '·'
				style = incorrectStyle
			default:
				style = incorrectStyle
			}
		case want != ' ' && active != nil && active.contains(i):
			style = currentWordStyle
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out = append(out, cell{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		})
	}
	return out
}

type span struct {
	start int
	end   int
}

func (s span) contains(i int) bool {
	return i >= s.start && i < s.end
}

func wordSpans(text []rune) []span {
	var spans []span
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start >= 0 {
				spans = append(spans, span{start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start: start, end: len(text)})
	}
	return spans
}

// activeWord returns the word under the cursor, or the next word when the
// cursor sits on a space. A negative cursor means nothing is active.
func activeWord(spans []span, cursor int) *span {
	if cursor < 0 {
		return nil
	}
	for i := range spans {
		if cursor < spans[i].end {
			return &spans[i]
		}
	}
	return nil
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}

// wrapCells breaks lines at the last space that fits in width display
// columns, falling back to a hard break inside long words.
func wrapCells(cells []cell, width int) string {
	if width <= 0 {
		return joinCells(cells)
	}
	var lines []string
	for len(cells) > 0 {
		used, cut, lastSpace := 0, 0, -1
		for cut < len(cells) && used+cells[cut].width <= width {
			if cells[cut].isSpace {
				lastSpace = cut
			}
			used += cells[cut].width
			cut++
		}
		switch {
		case cut == len(cells):
			lines = append(lines, joinCells(cells))
			cells = nil
		case cells[cut].isSpace:
			lines = append(lines, joinCells(cells[:cut]))
			cells = cells[cut+1:]
		case lastSpace >= 0:
			lines = append(lines, joinCells(cells[:lastSpace]))
			cells = cells[lastSpace+1:]
		case cut == 0:
			// A single rune wider than the line still has to go somewhere.
			lines = append(lines, joinCells(cells[:1]))
			cells = cells[1:]
		default:
			lines = append(lines, joinCells(cells[:cut]))
			cells = cells[cut:]
		}
	}
	return strings.Join(lines, "\n")
}
