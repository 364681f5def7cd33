package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typechallenge/internal/attempt"
)

func (m *Model) updatePlay(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.tickGen++
		m.att = nil
		m.screen = screenPicker
		return nil
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.typed) == 0 {
			return nil
		}
		m.typed = m.typed[:len(m.typed)-1]
		m.record()
		return nil
	case tea.KeySpace:
		return m.typeRunes([]rune{' '})
	case tea.KeyRunes:
		return m.typeRunes(msg.Runes)
	default:
		return nil
	}
}

// typeRunes appends input, starting the countdown on the first keystroke.
func (m *Model) typeRunes(runes []rune) tea.Cmd {
	var cmd tea.Cmd
	if m.att.State() == attempt.Idle {
		m.att.Start()
		m.tickGen++
		cmd = m.scheduleTick()
	}
	// Extra spaces are normalized away, so allow some slack past the reference.
	limit := 2*len(m.reference) + 1
	for _, r := range runes {
		if len(m.typed) >= limit {
			break
		}
		m.typed = append(m.typed, r)
	}
	m.record()
	return cmd
}

func (m *Model) record() {
	if m.att.RecordKeystroke(string(m.typed)) {
		m.finish()
	}
}

func (m *Model) viewPlay() string {
	level := m.att.Level()
	header := titleStyle.Render(level.Name) + "  " + footerStyle.Render(level.Description)

	cursor := -1
	if len(m.typed) < len(m.reference) {
		cursor = len(m.typed)
	}
	cells := styleCells(m.reference, m.typed, cursor)
	footer := m.renderFooter()

	if m.width == 0 || m.height == 0 {
		return header + "\n\n" + joinCells(cells) + "\n\n" + footer
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapCells(cells, contentWidth))
	block := lipgloss.JoinVertical(lipgloss.Left, header, "", content)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, block)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) renderFooter() string {
	if m.att == nil {
		return ""
	}
	pct := 0
	if len(m.reference) > 0 {
		pct = len(m.typed) * 100 / len(m.reference)
		if pct > 100 {
			pct = 100
		}
	}
	segments := []string{fmt.Sprintf("Time %ds", m.att.Remaining())}
	if m.att.State() == attempt.Idle {
		segments = append(segments, "Start typing to begin")
	} else {
		segments = append(segments, fmt.Sprintf("Progress %d%%", pct))
	}
	level := m.att.Level()
	if rec := m.doc.Levels[level.Difficulty][level.Key()]; rec.Completed {
		segments = append(segments, fmt.Sprintf("Best %d WPM · %.1f%%", rec.BestWPM, rec.BestAccuracy))
	}
	segments = append(segments, "esc back")
	return footerStyle.Render(strings.Join(segments, "  "))
}
