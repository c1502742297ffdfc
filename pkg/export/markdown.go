package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/fixboard/pkg/dashboard"
	"github.com/vanderheijden86/fixboard/pkg/model"
)

// GenerateMarkdown renders a full view model as a markdown report: one
// section per selected fix version with its KPI block, data table, and
// value-count breakdowns.
func GenerateMarkdown(vm *dashboard.ViewModel, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	if vm.Guidance != "" {
		sb.WriteString(vm.Guidance + "\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**Projects selected:** %s\n\n", strings.Join(vm.ProjectNames(), ", ")))
	sb.WriteString(fmt.Sprintf("**Fix versions selected:** %s\n\n", strings.Join(vm.Selection.Versions, ", ")))

	for _, section := range vm.Sections {
		sb.WriteString("---\n\n")
		sb.WriteString(fmt.Sprintf("## Fix Version %s\n\n", section.Version))

		if section.Warning != "" {
			sb.WriteString(section.Warning + "\n\n")
			continue
		}

		// KPI block
		sb.WriteString("| Metric | Count |\n|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| **Total issue count** | %d |\n", section.KPI.Total))
		if section.KPI.HasTypeData {
			sb.WriteString(fmt.Sprintf("| Total Stories | %d |\n", section.KPI.Stories))
			sb.WriteString(fmt.Sprintf("| Total Defects | %d |\n", section.KPI.Defects))
			sb.WriteString(fmt.Sprintf("| Total Epics | %d |\n\n", section.KPI.Epics))
		} else {
			sb.WriteString("| Type counts | No data available |\n\n")
		}

		// Data table
		sb.WriteString("### Data Summary\n\n")
		writeTable(&sb, section.Table)

		// Value counts per selected insight
		for _, chart := range section.Charts {
			sb.WriteString(fmt.Sprintf("### %s\n\n", chart.Title))
			sb.WriteString(fmt.Sprintf("| %s | Count |\n|---|---|\n", chart.Column))
			for _, vc := range chart.Counts {
				sb.WriteString(fmt.Sprintf("| %s | %d |\n", escapeCell(vc.Value), vc.Count))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// SaveMarkdown writes the report to path.
func SaveMarkdown(vm *dashboard.ViewModel, title, path string) error {
	content := GenerateMarkdown(vm, title)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}
	return nil
}

func writeTable(sb *strings.Builder, table model.Table) {
	cols := model.Columns()

	header := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, col := range cols {
		header[i] = string(col)
		rule[i] = "---"
	}
	sb.WriteString("| # | " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|---|" + strings.Join(rule, "|") + "|\n")

	for i, row := range table {
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = escapeCell(row.Get(col))
		}
		// Row numbers start from 1.
		sb.WriteString(fmt.Sprintf("| %d | %s |\n", i+1, strings.Join(cells, " | ")))
	}
	sb.WriteString("\n")
}

// escapeCell sanitizes a value for a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}
