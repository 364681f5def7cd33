package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typechallenge/internal/scoring"
)

func (m *Model) updateResults(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "m":
		m.showMistakes = !m.showMistakes
	case "r":
		m.att.Restart()
		m.typed = nil
		m.outcome = nil
		m.showMistakes = false
		m.tickGen++
		m.screen = screenPlay
	case "esc":
		m.att = nil
		m.outcome = nil
		m.screen = screenPicker
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) viewResults() string {
	out := m.outcome
	if out == nil {
		return ""
	}
	var b strings.Builder
	headline := incorrectStyle
	if out.result.Passed {
		headline = passStyle
	}
	b.WriteString(headline.Render(out.headline))
	b.WriteString("\n\n")
	res := out.result
	fmt.Fprintf(&b, "WPM %d  Accuracy %.1f%%  Mistakes %d  Time %.0fs\n\n", res.WPM, res.Accuracy, res.Mistakes, res.ElapsedSeconds)

	met := 0
	for _, r := range out.checklist {
		if r.Passed {
			met++
		}
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("Requirements met: %d/%d", met, len(out.checklist))))
	b.WriteString("\n")
	for _, line := range out.feedback {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if out.warning != "" {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(out.warning))
		b.WriteString("\n")
	}
	if m.showMistakes {
		b.WriteString("\n")
		b.WriteString(renderMistakes(out.mistakes))
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("m mistakes · r retry · esc levels · q quit"))
	return b.String()
}

// renderMistakes lists the words that differ from the reference.
func renderMistakes(diffs []scoring.WordDiff) string {
	var b strings.Builder
	wrong := 0
	for i, d := range diffs {
		if d.Correct {
			continue
		}
		wrong++
		typed := d.Typed
		if typed == "" {
			typed = "(missing)"
		}
		fmt.Fprintf(&b, "%3d  %s → %s\n", i+1, correctStyle.Render(d.Expected), incorrectStyle.Render(typed))
	}
	if wrong == 0 {
		return passStyle.Render("No word mistakes.") + "\n"
	}
	return b.String()
}
