package report

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/scoring"
)

// RenderLevels writes the catalog with each level's pass thresholds.
func RenderLevels(w io.Writer, catalog *levels.Catalog) error {
	headers := []string{"Level", "Time", "Min WPM", "Min Acc", "Max Miss", "Chars", "Description"}
	rows := make([][]string, 0, catalog.Len())
	for _, l := range catalog.All() {
		t := l.Thresholds
		rows = append(rows, []string{
			l.Name,
			fmt.Sprintf("%ds", t.TimeLimitSeconds),
			fmt.Sprintf("%d", t.MinWPM),
			fmt.Sprintf("%g%%", t.MinAccuracy),
			fmt.Sprintf("%d", t.MaxMistakes),
			fmt.Sprintf("%d", runewidth.StringWidth(scoring.Normalize(l.Text))),
			l.Description,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write levels: %w", err)
		}
	}
	return nil
}
