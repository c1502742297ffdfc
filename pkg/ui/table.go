package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/fixboard/pkg/model"
)

// Column width bounds for the issue table. Summary and Comments get the
// leftover space; the rest stay near their natural width.
const (
	minColWidth     = 7
	maxNarrowWidth  = 22
	flexShareFactor = 2
)

// columnWidths computes per-column display widths for the given terminal
// width. Narrow columns take their natural width (clamped); Summary and
// Comments split whatever remains, Comments getting the larger share since
// error sentences run long.
func columnWidths(tbl model.Table, width int) map[model.Column]int {
	cols := model.Columns()
	widths := make(map[model.Column]int, len(cols))

	for _, col := range cols {
		w := len(string(col))
		for _, row := range tbl {
			if cw := lipgloss.Width(row.Get(col)); cw > w {
				w = cw
			}
		}
		if w < minColWidth {
			w = minColWidth
		}
		widths[col] = w
	}

	// Clamp the flexible columns down first, then stretch them into any
	// leftover space.
	for _, col := range []model.Column{model.ColSummary, model.ColComments} {
		if widths[col] > maxNarrowWidth {
			widths[col] = maxNarrowWidth
		}
	}
	for _, col := range cols {
		if col == model.ColSummary || col == model.ColComments {
			continue
		}
		if widths[col] > maxNarrowWidth {
			widths[col] = maxNarrowWidth
		}
	}

	total := len(cols) + 1 // column separators
	for _, col := range cols {
		total += widths[col] + 2
	}
	if extra := width - total; extra > 0 {
		widths[model.ColSummary] += extra / (flexShareFactor + 1)
		widths[model.ColComments] += extra * flexShareFactor / (flexShareFactor + 1)
	}
	return widths
}

// renderTable renders the issue table with a header row, a rule, and one
// line per issue. The row at selected index is highlighted.
func renderTable(t Theme, tbl model.Table, width, selected int) string {
	widths := columnWidths(tbl, width)
	cols := model.Columns()

	var sb strings.Builder

	var header []string
	for _, col := range cols {
		header = append(header, padRight(truncateCell(string(col), widths[col]), widths[col]))
	}
	sb.WriteString(t.Header.Render(" " + strings.Join(header, "  ") + " "))
	sb.WriteString("\n")

	ruleWidth := lipgloss.Width(strings.Join(header, "  ")) + 2
	sb.WriteString(t.Muted.Render(strings.Repeat("─", ruleWidth)))
	sb.WriteString("\n")

	selStyle := t.Renderer.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		Reverse(true)

	for i, row := range tbl {
		var cells []string
		for _, col := range cols {
			cells = append(cells, padRight(truncateCell(row.Get(col), widths[col]), widths[col]))
		}
		line := " " + strings.Join(cells, "  ") + " "
		if i == selected {
			sb.WriteString(selStyle.Render(line))
		} else if row.Comments != "" {
			sb.WriteString(t.WarnText.Render(line))
		} else {
			sb.WriteString(t.Base.Render(line))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
