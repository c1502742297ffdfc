// Package insight computes the per-column value-count aggregations behind
// the dashboard's bar charts. Each insight selects one column of the issue
// table and counts its distinct values; rendering (terminal bars, SVG, PNG)
// lives with the consumers.
package insight

import (
	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/fixboard/pkg/model"
)

// The six fixed insight names, in menu order.
const (
	ByType       = "Issue Distribution by Type"
	ByStatus     = "Issue Status Distribution"
	ByFixVersion = "Fix Version Status"
	ByProject    = "Project-wise Issue Count"
	ByCATScope   = "Issue Distribution by CAT Scope"
	ByITPortal   = "Issue Distribution by IT Portal / SR / CR"
)

// Names returns all insight names in menu order.
func Names() []string {
	return []string{ByType, ByStatus, ByFixVersion, ByProject, ByCATScope, ByITPortal}
}

// columnFor maps an insight name to the table column it aggregates.
// Unknown names report false; callers treat that as a silent no-op.
func columnFor(name string) (model.Column, bool) {
	switch name {
	case ByType:
		return model.ColType, true
	case ByStatus:
		return model.ColStatus, true
	case ByFixVersion:
		return model.ColFixVersion, true
	case ByProject:
		return model.ColProject, true
	case ByCATScope:
		return model.ColCATScope, true
	case ByITPortal:
		return model.ColITPortal, true
	}
	return "", false
}

// ValueCount is one bar of a chart: a distinct column value and how many
// rows carry it.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts aggregates one column of the table into distinct-value counts,
// ordered by descending frequency with ties broken by first encounter.
// Counts always sum to the table's row count.
func ValueCounts(t model.Table, col model.Column) []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for _, row := range t {
		v := row.Get(col)
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}

	// Insertion order is first-encountered order; a stable sort on count
	// alone keeps it for ties.
	stableSortByCountDesc(counts)
	return counts
}

func stableSortByCountDesc(counts []ValueCount) {
	// Insertion sort keeps equal-count entries in their original order.
	for i := 1; i < len(counts); i++ {
		for j := i; j > 0 && counts[j].Count > counts[j-1].Count; j-- {
			counts[j], counts[j-1] = counts[j-1], counts[j]
		}
	}
}

// Chart is a computed insight ready for rendering.
type Chart struct {
	Title  string
	Column model.Column
	Counts []ValueCount
}

// Compute aggregates the named insight over the table. Unknown insight names
// return (zero, false) and render nothing.
func Compute(name string, t model.Table) (Chart, bool) {
	col, ok := columnFor(name)
	if !ok {
		return Chart{}, false
	}
	return Chart{Title: name, Column: col, Counts: ValueCounts(t, col)}, true
}

// Max returns the largest bar count, or 0 for an empty chart.
func (c Chart) Max() int {
	if len(c.Counts) == 0 {
		return 0
	}
	vals := make([]float64, len(c.Counts))
	for i, vc := range c.Counts {
		vals[i] = float64(vc.Count)
	}
	return int(floats.Max(vals))
}

// Shares returns each bar's fraction of the total, in bar order. Empty
// charts yield nil.
func (c Chart) Shares() []float64 {
	if len(c.Counts) == 0 {
		return nil
	}
	vals := make([]float64, len(c.Counts))
	for i, vc := range c.Counts {
		vals[i] = float64(vc.Count)
	}
	total := floats.Sum(vals)
	floats.Scale(1/total, vals)
	return vals
}

// Palette is the fixed 8-color bar palette, cycled across bars.
var Palette = [8]string{
	"#3498db", "#2ecc71", "#f39c12", "#9b59b6",
	"#34495e", "#e74c3c", "#1abc9c", "#f1c40f",
}

// BarColor returns the palette color for the i-th bar.
func BarColor(i int) string {
	return Palette[i%len(Palette)]
}
