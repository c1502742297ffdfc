// Package model defines the core data types shared across fixboard: the
// fixed-schema issue row, the issue table built from it, and the project and
// version catalog entries fetched from the tracker.
package model

// Fallback sentinels used by the row normalizer. Every column except
// Comments carries either a real value or NotUpdated; the JIRA key uses
// UnknownKey instead.
const (
	NotUpdated = "Not updated"
	UnknownKey = "Unknown"
)

// Column identifies one column of the issue table by its display name.
type Column string

// The nine columns of an issue row, in table order.
const (
	ColKey        Column = "JIRA Key"
	ColSummary    Column = "Summary"
	ColType       Column = "Type"
	ColStatus     Column = "Status"
	ColFixVersion Column = "Fix Version"
	ColProject    Column = "Project"
	ColCATScope   Column = "CAT Scope"
	ColITPortal   Column = "IT Portal / SR / CR"
	ColComments   Column = "Comments"
)

// Columns returns the table columns in display order.
func Columns() []Column {
	return []Column{
		ColKey, ColSummary, ColType, ColStatus, ColFixVersion,
		ColProject, ColCATScope, ColITPortal, ColComments,
	}
}

// Row is one flattened issue. Comments concatenates one error sentence per
// column that fell back to its sentinel (empty when nothing fell back). A
// degraded row, produced when extraction fails mid-issue, carries only the
// JIRA key sentinel and a Comments entry describing the failure.
type Row struct {
	Key        string
	Summary    string
	Type       string
	Status     string
	FixVersion string
	Project    string
	CATScope   string
	ITPortal   string
	Comments   string
}

// Get returns the value of the given column. Unknown columns yield "".
func (r Row) Get(col Column) string {
	switch col {
	case ColKey:
		return r.Key
	case ColSummary:
		return r.Summary
	case ColType:
		return r.Type
	case ColStatus:
		return r.Status
	case ColFixVersion:
		return r.FixVersion
	case ColProject:
		return r.Project
	case ColCATScope:
		return r.CATScope
	case ColITPortal:
		return r.ITPortal
	case ColComments:
		return r.Comments
	}
	return ""
}

// Table is an ordered sequence of rows, one per issue returned by the
// search across all selected (project, version) pairs. Order follows the
// API response order, concatenated project-then-version.
type Table []Row

// Issue type names the KPI summary counts.
const (
	TypeStory  = "Story"
	TypeDefect = "Defect"
	TypeEpic   = "Epic"
)

// KPI holds the headline counts for one rendered version group.
type KPI struct {
	Total   int
	Stories int
	Defects int
	Epics   int

	// HasTypeData is false when no row carries a Type value at all
	// (e.g. a table of only degraded rows), in which case the per-type
	// counts are not meaningful and the UI shows a warning instead.
	HasTypeData bool
}

// ComputeKPI derives the headline counts from a table.
func ComputeKPI(t Table) KPI {
	k := KPI{Total: len(t)}
	for _, row := range t {
		if row.Type != "" {
			k.HasTypeData = true
		}
		switch row.Type {
		case TypeStory:
			k.Stories++
		case TypeDefect:
			k.Defects++
		case TypeEpic:
			k.Epics++
		}
	}
	return k
}

// Project is one catalog entry from the tracker, fetched fresh each session.
type Project struct {
	Key  string
	Name string
}

// ProjectMap returns the key -> name mapping for a catalog listing. The
// slice carries the wire order; the map is for lookups only.
func ProjectMap(projects []Project) map[string]string {
	m := make(map[string]string, len(projects))
	for _, p := range projects {
		m[p.Key] = p.Name
	}
	return m
}
