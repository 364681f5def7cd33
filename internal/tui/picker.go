package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
)

const lockedNotice = "Impossible unlocks once every easy, medium and hard level is complete."

func newPicker() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Level", Width: 14},
			{Title: "Description", Width: 30},
			{Title: "Time", Width: 5},
			{Title: "WPM", Width: 4},
			{Title: "Acc", Width: 5},
			{Title: "Miss", Width: 4},
			{Title: "Status", Width: 8},
			{Title: "Best", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(pickerStyles())
	return t
}

func pickerStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#C89A3A")).
		Bold(true)
	return styles
}

// pickerRows lists every level in catalog order.
func pickerRows(catalog *levels.Catalog, doc model.ProgressDocument) []table.Row {
	all := catalog.All()
	rows := make([]table.Row, 0, len(all))
	for _, l := range all {
		rec := doc.Levels[l.Difficulty][l.Key()]
		status := ""
		best := "-"
		switch {
		case progress.Locked(doc, l):
			status = "locked"
		case rec.Completed:
			status = "✓ done"
		}
		if rec.Completed {
			best = fmt.Sprintf("%d wpm %.1f%%", rec.BestWPM, rec.BestAccuracy)
		}
		t := l.Thresholds
		rows = append(rows, table.Row{
			l.Name,
			l.Description,
			fmt.Sprintf("%ds", t.TimeLimitSeconds),
			fmt.Sprintf("%d", t.MinWPM),
			fmt.Sprintf("%g%%", t.MinAccuracy),
			fmt.Sprintf("%d", t.MaxMistakes),
			status,
			best,
		})
	}
	return rows
}

func (m *Model) resizePicker() {
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	if limit := m.catalog.Len() + 1; h > limit {
		h = limit
	}
	m.picker.SetHeight(h)
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "enter":
		all := m.catalog.All()
		idx := m.picker.Cursor()
		if idx < 0 || idx >= len(all) {
			return nil
		}
		level := all[idx]
		if progress.Locked(m.doc, level) {
			m.notice = lockedNotice
			return nil
		}
		m.play(level)
		return nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return cmd
}

func (m *Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("typechallenge"))
	b.WriteString("\n")
	if m.guest() {
		b.WriteString(footerStyle.Render("Playing as guest"))
	} else {
		b.WriteString(footerStyle.Render(fmt.Sprintf("%s · %d/%d levels · %d%%",
			m.opts.User, progress.TotalCompleted(m.doc), m.doc.TotalLevels, progress.CompletionPercentage(m.doc))))
	}
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(warnStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("↑/↓ select · enter play · q quit"))
	return b.String()
}
