package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/fixboard/pkg/config"
	"github.com/vanderheijden86/fixboard/pkg/dashboard"
	"github.com/vanderheijden86/fixboard/pkg/insight"
	"github.com/vanderheijden86/fixboard/pkg/model"
)

func testTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(io.Discard))
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a longer string", 8, "a longe…"},
		{"anything", 0, ""},
	}
	for _, tc := range tests {
		if got := truncateCell(tc.in, tc.width); got != tc.want {
			t.Errorf("truncateCell(%q, %d) = %q, expected %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not truncate: %q", got)
	}
}

func TestColumnWidthsCoverAllColumns(t *testing.T) {
	table := model.Table{
		{Key: "OPS-1", Summary: "A very long summary that should be clamped down", Type: "Story"},
	}
	widths := columnWidths(table, 120)
	for _, col := range model.Columns() {
		if widths[col] < minColWidth {
			t.Errorf("column %q width %d below minimum", col, widths[col])
		}
	}
}

func TestRenderTableShowsAllRows(t *testing.T) {
	table := model.Table{
		{Key: "OPS-1", Summary: "First", Type: "Story", Status: "Done",
			FixVersion: "1.0", Project: "OPS", CATScope: "Yes", ITPortal: "SR-1"},
		{Key: "OPS-2", Summary: "Second", Type: "Defect", Status: "Open",
			FixVersion: "1.0", Project: "OPS", CATScope: "No", ITPortal: "SR-2"},
	}
	out := renderTable(testTheme(), table, 160, 0)

	for _, want := range []string{"JIRA Key", "Comments", "OPS-1", "OPS-2", "Story", "Defect"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
	lines := strings.Split(out, "\n")
	// Header, rule, and one line per row.
	if len(lines) != 2+len(table) {
		t.Errorf("expected %d lines, got %d", 2+len(table), len(lines))
	}
}

func TestRenderBarChartShowsCounts(t *testing.T) {
	chart := insight.Chart{
		Title: insight.ByType,
		Counts: []insight.ValueCount{
			{Value: "Story", Count: 12},
			{Value: "Defect", Count: 3},
		},
	}
	out := renderBarChart(chart, 60, testTheme())

	for _, want := range []string{"Story", "Defect", "12", "3", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart output missing %q", want)
		}
	}
}

func TestKPIRowWithoutTypeData(t *testing.T) {
	m := NewModel(dashboard.NewHandler(nil), config.DefaultConfig(), nil)
	out := m.kpiRow(model.KPI{Total: 3, HasTypeData: false})

	if !strings.Contains(out, "No data available") {
		t.Error("expected the no-type-data marker")
	}
	if strings.Contains(out, "Stories") {
		t.Error("per-type boxes should be hidden without type data")
	}
}

func TestKPIRowWithTypeData(t *testing.T) {
	m := NewModel(dashboard.NewHandler(nil), config.DefaultConfig(), nil)
	out := m.kpiRow(model.KPI{Total: 5, Stories: 2, Defects: 1, Epics: 1, HasTypeData: true})

	for _, want := range []string{"Total Issues", "Stories", "Defects", "Epics", "5", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("KPI row missing %q", want)
		}
	}
}

func TestDashboardContentGuidance(t *testing.T) {
	m := NewModel(dashboard.NewHandler(nil), config.DefaultConfig(), nil)
	m.vm = &dashboard.ViewModel{Guidance: "Please select at least one project."}
	m.width = 80

	out := m.dashboardContent()
	if !strings.Contains(out, "Please select at least one project.") {
		t.Errorf("guidance missing from %q", out)
	}
}

func TestDashboardContentWarningSection(t *testing.T) {
	m := NewModel(dashboard.NewHandler(nil), config.DefaultConfig(), nil)
	m.vm = &dashboard.ViewModel{
		Sections: []dashboard.Section{{
			Version: "9.9",
			Warning: "No data found for the selected project(s): Operations and fix version '9.9'.",
		}},
	}
	m.width = 100

	out := m.dashboardContent()
	if !strings.Contains(out, "Fix Version: 9.9 (1/1)") {
		t.Errorf("section header missing from %q", out)
	}
	if !strings.Contains(out, "No data found") {
		t.Error("warning missing")
	}
}

func TestRenderHelpMentionsKeys(t *testing.T) {
	out := renderHelp(100)
	for _, want := range []string{"fxb", "Copy", "Quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}
