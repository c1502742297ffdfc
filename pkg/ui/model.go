// Package ui is the interactive terminal dashboard: a Bubble Tea program
// that walks the user through project / fix-version / insight selection and
// renders the resulting issue tables, KPI counts, and bar charts. All data
// work happens in pkg/dashboard; this package only drives the event loop
// and draws view models.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/fixboard/pkg/config"
	"github.com/vanderheijden86/fixboard/pkg/dashboard"
	"github.com/vanderheijden86/fixboard/pkg/debug"
	"github.com/vanderheijden86/fixboard/pkg/insight"
	"github.com/vanderheijden86/fixboard/pkg/model"
	"github.com/vanderheijden86/fixboard/pkg/version"
	"github.com/vanderheijden86/fixboard/pkg/watcher"
)

// fetchTimeout bounds every upstream round trip issued from the event loop.
const fetchTimeout = 60 * time.Second

// statusDuration is how long transient status messages stay visible.
const statusDuration = 2 * time.Second

type phase int

const (
	phaseCatalog phase = iota // fetching the project catalog
	phaseSelectProjects
	phaseVersionOptions // fetching fix versions for the chosen projects
	phaseSelectDetails  // fix version + insight selection
	phaseBuilding       // running the report pipeline
	phaseDashboard
	phaseError
)

type catalogMsg struct {
	projects []model.Project
	err      error
}

type versionOptionsMsg struct {
	options []string
	err     error
}

type viewMsg struct {
	vm  *dashboard.ViewModel
	err error
}

type configChangedMsg struct{}

type statusClearMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	handler *dashboard.Handler
	cfg     config.Config
	theme   Theme
	watch   *watcher.Watcher

	phase  phase
	width  int
	height int

	spinner  spinner.Model
	viewport viewport.Model
	form     *huh.Form

	projects       []model.Project
	versionOptions []string
	selection      dashboard.Selection

	vm      *dashboard.ViewModel
	section int // active fix version section
	cursor  int // selected row in the active section's table

	showHelp    bool
	status      string
	configStale bool
	err         error
}

// NewModel builds the root model. watch may be nil when no config file
// exists to monitor.
func NewModel(h *dashboard.Handler, cfg config.Config, watch *watcher.Watcher) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		handler:  h,
		cfg:      cfg,
		theme:    DefaultTheme(lipgloss.DefaultRenderer()),
		watch:    watch,
		phase:    phaseCatalog,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
	m.selection.Insights = append([]string(nil), cfg.UI.DefaultInsights...)
	m.spinner.Style = m.theme.Header
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadCatalog()}
	if cmd := m.waitConfigChange(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadCatalog() tea.Cmd {
	h := m.handler
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		projects, err := h.Catalog(ctx)
		return catalogMsg{projects: projects, err: err}
	}
}

func (m *Model) loadVersionOptions() tea.Cmd {
	h := m.handler
	keys := append([]string(nil), m.selection.ProjectKeys...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		options, err := h.VersionOptions(ctx, keys)
		return versionOptionsMsg{options: options, err: err}
	}
}

func (m *Model) renderView() tea.Cmd {
	h := m.handler
	sel := dashboard.Selection{
		ProjectKeys: append([]string(nil), m.selection.ProjectKeys...),
		Versions:    append([]string(nil), m.selection.Versions...),
		Insights:    append([]string(nil), m.selection.Insights...),
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		vm, err := h.Render(ctx, sel)
		return viewMsg{vm: vm, err: err}
	}
}

// waitConfigChange blocks on the watcher's change channel; the resulting
// message flips the restart-to-apply notice and the command re-arms itself.
func (m *Model) waitConfigChange() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	ch := m.watch.Changed()
	return func() tea.Msg {
		<-ch
		return configChangedMsg{}
	}
}

func (m *Model) projectForm() *huh.Form {
	opts := make([]huh.Option[string], 0, len(m.projects))
	chosen := make(map[string]bool, len(m.selection.ProjectKeys))
	for _, k := range m.selection.ProjectKeys {
		chosen[k] = true
	}
	for _, p := range m.projects {
		opt := huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Key), p.Key)
		opts = append(opts, opt.Selected(chosen[p.Key]))
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Projects").
			Description("Select the projects to report on").
			Options(opts...).
			Value(&m.selection.ProjectKeys),
	)).WithTheme(huh.ThemeDracula())
}

func (m *Model) detailsForm() *huh.Form {
	verOpts := make([]huh.Option[string], 0, len(m.versionOptions))
	chosenVer := make(map[string]bool, len(m.selection.Versions))
	for _, v := range m.selection.Versions {
		chosenVer[v] = true
	}
	for _, v := range m.versionOptions {
		verOpts = append(verOpts, huh.NewOption(v, v).Selected(chosenVer[v]))
	}

	chosenIns := make(map[string]bool, len(m.selection.Insights))
	for _, n := range m.selection.Insights {
		chosenIns[n] = true
	}
	insOpts := make([]huh.Option[string], 0, len(insight.Names()))
	for _, n := range insight.Names() {
		insOpts = append(insOpts, huh.NewOption(n, n).Selected(chosenIns[n]))
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Fix versions").
			Description("Each selected version renders its own section").
			Options(verOpts...).
			Value(&m.selection.Versions),
		huh.NewMultiSelect[string]().
			Title("Insights").
			Options(insOpts...).
			Value(&m.selection.Insights),
	)).WithTheme(huh.ThemeDracula())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4 // header + status bar
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case catalogMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseError
			return m, nil
		}
		m.projects = msg.projects
		m.phase = phaseSelectProjects
		m.form = m.projectForm()
		return m, m.form.Init()

	case versionOptionsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseError
			return m, nil
		}
		m.versionOptions = msg.options
		m.phase = phaseSelectDetails
		m.form = m.detailsForm()
		return m, m.form.Init()

	case viewMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseError
			return m, nil
		}
		m.vm = msg.vm
		m.section = 0
		m.cursor = 0
		m.phase = phaseDashboard
		m.refreshViewport()
		debug.Log("dashboard rendered: %d section(s)", len(m.vm.Sections))
		return m, nil

	case configChangedMsg:
		m.configStale = true
		cmds := []tea.Cmd{m.setStatus("Config file changed on disk; restart to apply.")}
		if cmd := m.waitConfigChange(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case statusClearMsg:
		m.status = ""
		return m, nil

	case spinner.TickMsg:
		if m.phase == phaseCatalog || m.phase == phaseVersionOptions || m.phase == phaseBuilding {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.phase {
	case phaseSelectProjects, phaseSelectDetails:
		return m.updateForm(msg)
	case phaseDashboard:
		return m.updateDashboard(msg)
	case phaseError:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q", "esc", "enter":
				return m, tea.Quit
			case "r":
				m.err = nil
				m.phase = phaseCatalog
				return m, tea.Batch(m.spinner.Tick, m.loadCatalog())
			}
		}
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		return m, tea.Quit
	case huh.StateCompleted:
		if m.phase == phaseSelectProjects {
			if len(m.selection.ProjectKeys) == 0 {
				// Nothing chosen: render anyway so the guidance text shows.
				m.phase = phaseBuilding
				return m, tea.Batch(m.spinner.Tick, m.renderView())
			}
			m.phase = phaseVersionOptions
			return m, tea.Batch(m.spinner.Tick, m.loadVersionOptions())
		}
		m.phase = phaseBuilding
		return m, tea.Batch(m.spinner.Tick, m.renderView())
	}
	return m, cmd
}

func (m *Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		switch key.String() {
		case "?", "esc", "q":
			m.showHelp = false
			m.refreshViewport()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		m.viewport.SetContent(renderHelp(m.width))
		m.viewport.GotoTop()
		return m, nil
	case "s":
		m.phase = phaseSelectProjects
		m.form = m.projectForm()
		return m, m.form.Init()
	case "r":
		m.phase = phaseBuilding
		return m, tea.Batch(m.spinner.Tick, m.renderView())
	case "tab", "]":
		if n := len(m.vm.Sections); n > 0 {
			m.section = (m.section + 1) % n
			m.cursor = 0
			m.refreshViewport()
		}
		return m, nil
	case "shift+tab", "[":
		if n := len(m.vm.Sections); n > 0 {
			m.section = (m.section - 1 + n) % n
			m.cursor = 0
			m.refreshViewport()
		}
		return m, nil
	case "j", "down":
		if tbl := m.activeTable(); m.cursor < len(tbl)-1 {
			m.cursor++
			m.refreshViewport()
			m.viewport.LineDown(1)
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.refreshViewport()
			m.viewport.LineUp(1)
		}
		return m, nil
	case "g":
		m.cursor = 0
		m.refreshViewport()
		m.viewport.GotoTop()
		return m, nil
	case "G":
		if tbl := m.activeTable(); len(tbl) > 0 {
			m.cursor = len(tbl) - 1
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, nil
	case "c":
		tbl := m.activeTable()
		if m.cursor >= len(tbl) {
			return m, nil
		}
		issueKey := tbl[m.cursor].Key
		if err := clipboard.WriteAll(issueKey); err != nil {
			return m, m.setStatus("Clipboard unavailable: " + err.Error())
		}
		return m, m.setStatus("Copied " + issueKey)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) activeTable() model.Table {
	if m.vm == nil || m.section >= len(m.vm.Sections) {
		return nil
	}
	return m.vm.Sections[m.section].Table
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.status = s
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m *Model) refreshViewport() {
	if m.phase != phaseDashboard || m.showHelp || m.vm == nil {
		return
	}
	m.viewport.SetContent(m.dashboardContent())
}

func (m *Model) View() string {
	switch m.phase {
	case phaseCatalog:
		return m.loadingView("Fetching project catalog…")
	case phaseVersionOptions:
		return m.loadingView("Fetching fix versions…")
	case phaseBuilding:
		return m.loadingView("Building the report…")
	case phaseSelectProjects, phaseSelectDetails:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Header.Render(" fxb "+version.Version),
			"",
			m.form.View(),
		)
	case phaseError:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.ErrText.Render("Error: "+m.err.Error()),
			"",
			m.theme.Muted.Render("r retry · q quit"),
		)
	case phaseDashboard:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.headerView(),
			m.viewport.View(),
			m.statusView(),
		)
	}
	return ""
}

func (m *Model) loadingView(text string) string {
	return "\n  " + m.spinner.View() + " " + m.theme.Muted.Render(text)
}

func (m *Model) headerView() string {
	title := m.theme.Header.Render(" fxb ")
	parts := []string{title}
	if m.vm != nil && len(m.vm.Selection.ProjectKeys) > 0 {
		parts = append(parts, m.theme.Muted.Render(
			strings.Join(m.vm.ProjectNames(), ", ")))
	}
	if m.configStale {
		parts = append(parts, m.theme.WarnText.Render("config changed — restart to apply"))
	}
	return strings.Join(parts, "  ") + "\n"
}

func (m *Model) statusView() string {
	hints := "s selection · r refresh · tab section · c copy key · ? help · q quit"
	if m.status != "" {
		return m.theme.StatusBar.Render(" " + m.status)
	}
	return m.theme.StatusBar.Render(" " + hints)
}

// dashboardContent renders the active fix version section: KPI boxes, the
// issue table, then the insight charts two per row.
func (m *Model) dashboardContent() string {
	vm := m.vm
	if vm.Guidance != "" {
		return "\n  " + m.theme.WarnText.Render(vm.Guidance)
	}
	if len(vm.Sections) == 0 {
		return ""
	}
	sec := vm.Sections[m.section]

	var blocks []string
	blocks = append(blocks, m.theme.Section.Render(fmt.Sprintf(
		"Fix Version: %s (%d/%d)", sec.Version, m.section+1, len(vm.Sections))))

	if sec.Warning != "" {
		blocks = append(blocks, m.theme.WarnText.Render(sec.Warning))
		return strings.Join(blocks, "\n\n")
	}

	blocks = append(blocks, m.kpiRow(sec.KPI))
	blocks = append(blocks, renderTable(m.theme, sec.Table, m.width, m.cursor))

	chartWidth := m.width/2 - 2
	if chartWidth < 30 {
		chartWidth = 30
	}
	for _, row := range sec.ChartRows() {
		var cells []string
		for _, c := range row {
			cells = append(cells, renderBarChart(c, chartWidth, m.theme))
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return strings.Join(blocks, "\n\n")
}

func (m *Model) kpiRow(k model.KPI) string {
	box := func(label, value string) string {
		return m.theme.KPIBox.Render(lipgloss.JoinVertical(lipgloss.Center,
			m.theme.KPIValue.Render(value),
			m.theme.KPILabel.Render(label),
		))
	}

	cells := []string{box("Total Issues", fmt.Sprintf("%d", k.Total))}
	if k.HasTypeData {
		cells = append(cells,
			box("Stories", fmt.Sprintf("%d", k.Stories)),
			box("Defects", fmt.Sprintf("%d", k.Defects)),
			box("Epics", fmt.Sprintf("%d", k.Epics)),
		)
	} else {
		cells = append(cells, box("Issue Types", "No data available"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
