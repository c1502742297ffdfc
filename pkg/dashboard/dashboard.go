// Package dashboard orchestrates the fetch -> flatten -> aggregate pipeline
// behind a pure request/response handler: Render takes the current selection
// and returns a complete view model. It holds no state between calls and can
// be invoked idempotently, so the UI layer (TUI or export mode) owns the
// event loop and simply re-renders on every selection change.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vanderheijden86/fixboard/pkg/insight"
	"github.com/vanderheijden86/fixboard/pkg/jira"
	"github.com/vanderheijden86/fixboard/pkg/metrics"
	"github.com/vanderheijden86/fixboard/pkg/model"
	"github.com/vanderheijden86/fixboard/pkg/report"
)

// ErrNoProjects is returned when the tracker reports an empty project
// catalog; the UI surfaces it as a page-level error.
var ErrNoProjects = errors.New("no projects found in the tracker")

// Client is the upstream surface the dashboard needs. *jira.Client
// satisfies it.
type Client interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Versions(ctx context.Context, projectKey string) ([]string, error)
	SearchIssues(ctx context.Context, projectKey, versionName string) ([]jira.Issue, error)
}

// Selection is the user's current choice of projects, fix versions, and
// insights. Pure UI state; the pipeline receives it as plain input.
type Selection struct {
	ProjectKeys []string
	Versions    []string
	Insights    []string
}

// Section is the rendered result for one selected fix version: the table
// built across all selected projects for that single version, its KPIs, and
// the computed insight charts.
type Section struct {
	Version string
	Table   model.Table
	KPI     model.KPI
	Charts  []insight.Chart

	// Warning carries the no-data guidance for this section only; when set,
	// Table, KPI, and Charts are empty.
	Warning string
}

// ViewModel is everything a renderer needs for one pass.
type ViewModel struct {
	Projects  []model.Project
	Selection Selection

	// Guidance is the please-select message shown when the selection is
	// incomplete; Sections is empty then.
	Guidance string

	Sections []Section
}

// ProjectNames returns the display names of the selected projects, in
// selection order. Unknown keys fall back to the key itself.
func (vm *ViewModel) ProjectNames() []string {
	byKey := model.ProjectMap(vm.Projects)
	names := make([]string, 0, len(vm.Selection.ProjectKeys))
	for _, key := range vm.Selection.ProjectKeys {
		if name, ok := byKey[key]; ok {
			names = append(names, name)
		} else {
			names = append(names, key)
		}
	}
	return names
}

// ChartRows groups a section's charts in pairs for the two-per-row layout.
func (s Section) ChartRows() [][]insight.Chart {
	var rows [][]insight.Chart
	for i := 0; i < len(s.Charts); i += 2 {
		end := i + 2
		if end > len(s.Charts) {
			end = len(s.Charts)
		}
		rows = append(rows, s.Charts[i:end])
	}
	return rows
}

// Handler drives the pipeline. It owns nothing but the upstream client.
type Handler struct {
	client Client
}

// NewHandler returns a handler over the given upstream client.
func NewHandler(c Client) *Handler {
	return &Handler{client: c}
}

// Catalog fetches the project catalog, failing visibly when it is empty.
func (h *Handler) Catalog(ctx context.Context) ([]model.Project, error) {
	projects, err := h.client.Projects(ctx)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}
	return projects, nil
}

// VersionOptions returns the union of fix versions across the selected
// projects, deduplicated, first encounter winning the position.
func (h *Handler) VersionOptions(ctx context.Context, projectKeys []string) ([]string, error) {
	seen := make(map[string]bool)
	var options []string
	for _, key := range projectKeys {
		versions, err := h.client.Versions(ctx, key)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			if seen[v] {
				continue
			}
			seen[v] = true
			options = append(options, v)
		}
	}
	return options, nil
}

// Render runs the whole pipeline for the given selection. Upstream HTTP
// failures propagate unchanged; incomplete selections and empty results
// produce guidance text instead of errors.
func (h *Handler) Render(ctx context.Context, sel Selection) (*ViewModel, error) {
	defer metrics.Timer(metrics.RenderView)()

	projects, err := h.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	vm := &ViewModel{Projects: projects, Selection: sel}
	if len(sel.ProjectKeys) == 0 {
		vm.Guidance = "Please select at least one project."
		return vm, nil
	}
	if len(sel.Versions) == 0 {
		vm.Guidance = "Please select at least one fix version."
		return vm, nil
	}

	// Each selected version renders independently: the table spans all
	// selected projects crossed with that single version.
	for _, version := range sel.Versions {
		table, err := report.Build(ctx, h.client, sel.ProjectKeys, []string{version})
		if err != nil {
			return nil, err
		}

		section := Section{Version: version}
		if len(table) == 0 {
			section.Warning = fmt.Sprintf(
				"No data found for the selected project(s): %s and fix version '%s'.",
				strings.Join(vm.ProjectNames(), ", "), version)
			vm.Sections = append(vm.Sections, section)
			continue
		}

		section.Table = table
		section.KPI = model.ComputeKPI(table)
		for _, name := range sel.Insights {
			if chart, ok := insight.Compute(name, table); ok {
				section.Charts = append(section.Charts, chart)
			}
		}
		vm.Sections = append(vm.Sections, section)
	}
	return vm, nil
}
