package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
)

const completedAtLayout = "2006-01-02 15:04"

// RenderProgress writes the per-level table followed by a summary.
func RenderProgress(w io.Writer, catalog *levels.Catalog, doc model.ProgressDocument) error {
	doc = progress.Fill(doc, catalog)

	headers := []string{"Level", "Status", "Best WPM", "Best Acc", "Completed"}
	rows := make([][]string, 0, catalog.Len())
	for _, l := range catalog.All() {
		rec := doc.Levels[l.Difficulty][l.Key()]
		row := []string{l.Name, levelStatus(doc, l, rec), "-", "-", "-"}
		if rec.Completed {
			row[2] = fmt.Sprintf("%d", rec.BestWPM)
			row[3] = fmt.Sprintf("%.1f%%", rec.BestAccuracy)
		}
		if rec.CompletedAt != nil {
			row[4] = rec.CompletedAt.Local().Format(completedAtLayout)
		}
		rows = append(rows, row)
	}
	lines := formatTable(headers, rows, map[int]bool{2: true, 3: true})

	tableWidth := 0
	for _, line := range lines {
		tableWidth = max(tableWidth, runewidth.StringWidth(line))
	}
	lines = append(lines, strings.Repeat("─", separatorWidth(w, tableWidth)))
	lines = append(lines, summaryLines(catalog, doc)...)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func levelStatus(doc model.ProgressDocument, l model.Level, rec model.ProgressRecord) string {
	switch {
	case rec.Completed:
		return "done"
	case progress.Locked(doc, l):
		return "locked"
	default:
		return "open"
	}
}

func summaryLines(catalog *levels.Catalog, doc model.ProgressDocument) []string {
	lines := []string{
		fmt.Sprintf("Completed: %d/%d (%d%%)", progress.TotalCompleted(doc), doc.TotalLevels, progress.CompletionPercentage(doc)),
	}
	for _, d := range catalog.Difficulties() {
		s, ok := progress.DifficultyStats(doc, d)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-10s %d/%d (%d%%)", d, s.Completed, s.Total, s.Percentage))
	}
	best := progress.BestPerformance(doc)
	if best.BestWPM > 0 || best.BestAccuracy > 0 {
		lines = append(lines, fmt.Sprintf("Best: %d WPM · %.1f%% accuracy", best.BestWPM, best.BestAccuracy))
	} else {
		lines = append(lines, "Best: no completed levels yet")
	}
	if progress.ImpossibleUnlocked(doc) {
		lines = append(lines, "Impossible: unlocked")
	} else {
		lines = append(lines, "Impossible: locked")
	}
	return lines
}

// separatorWidth follows the terminal when w is one, otherwise the table.
func separatorWidth(w io.Writer, fallback int) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return fallback
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
