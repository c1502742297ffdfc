package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/fixboard/pkg/insight"
)

// renderBarChart renders one insight as a boxed horizontal bar chart:
// category labels on the left, bar length as magnitude, palette colors
// cycled across bars.
func renderBarChart(c insight.Chart, width int, t Theme) string {
	innerWidth := width - 4 // box border + padding
	if innerWidth < 20 {
		innerWidth = 20
	}

	labelWidth := 0
	for _, vc := range c.Counts {
		if w := runewidth.StringWidth(vc.Value); w > labelWidth {
			labelWidth = w
		}
	}
	if labelWidth > 18 {
		labelWidth = 18
	}

	const countWidth = 5
	barArea := innerWidth - labelWidth - countWidth - 2
	if barArea < 4 {
		barArea = 4
	}

	maxCount := c.Max()

	var sb strings.Builder
	sb.WriteString(t.Header.Render(truncateCell(c.Title, innerWidth)))
	sb.WriteString("\n")

	for i, vc := range c.Counts {
		label := padRight(truncateCell(vc.Value, labelWidth), labelWidth)
		barLen := 0
		if maxCount > 0 {
			barLen = vc.Count * barArea / maxCount
		}
		if barLen < 1 {
			barLen = 1
		}
		bar := t.BarStyle(i).Render(strings.Repeat("█", barLen))
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			t.Muted.Render(label), bar, t.KPIValue.Render(fmt.Sprintf("%d", vc.Count))))
	}

	return t.ChartBox.Width(innerWidth + 2).Render(strings.TrimRight(sb.String(), "\n"))
}
