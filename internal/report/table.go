// Package report renders progress as plain text tables.
package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// formatTable pads every column to its widest cell by display width.
func formatTable(headers []string, rows [][]string, rightAlign map[int]bool) []string {
	cols := len(headers)
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlign))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlign))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlign map[int]bool) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if rightAlign[i] {
			cells[i] = runewidth.FillLeft(cell, w)
		} else {
			cells[i] = runewidth.FillRight(cell, w)
		}
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}
