package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/fixboard/pkg/config"
	"github.com/vanderheijden86/fixboard/pkg/dashboard"
	"github.com/vanderheijden86/fixboard/pkg/export"
	"github.com/vanderheijden86/fixboard/pkg/jira"
	"github.com/vanderheijden86/fixboard/pkg/metrics"
	"github.com/vanderheijden86/fixboard/pkg/ui"
	"github.com/vanderheijden86/fixboard/pkg/version"
	"github.com/vanderheijden86/fixboard/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file path (default: XDG config dir)")

	projectsFlag := flag.String("projects", "", "Comma-separated project keys (export mode)")
	versionsFlag := flag.String("versions", "", "Comma-separated fix versions (export mode)")
	insightsFlag := flag.String("insights", "", "Comma-separated insight names (default: config)")
	reportPath := flag.String("report", "", "Write a markdown report to this path and exit")
	chartsDir := flag.String("charts", "", "Write chart images into this directory and exit")
	chartFormat := flag.String("chart-format", "", "Chart image format: svg or png (default: config)")
	snapshotPath := flag.String("snapshot", "", "Write a SQLite snapshot to this path and exit")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: fxb [options]")
		fmt.Println("\nA fix version reporting dashboard for JIRA.")
		fmt.Println("\nWithout export flags, fxb starts the interactive TUI. With --report,")
		fmt.Println("--charts, or --snapshot it renders once and writes the requested")
		fmt.Println("artifacts (requires --projects and --versions).")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("fxb %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Jira.BaseURL == "" || cfg.Jira.Username == "" || cfg.Jira.APIToken == "" {
		fmt.Fprintf(os.Stderr, "Missing JIRA connection settings.\n")
		fmt.Fprintf(os.Stderr, "Set them in %s or via %s, %s, and %s.\n",
			config.ConfigPath(), config.EnvBaseURL, config.EnvUsername, config.EnvAPIToken)
		os.Exit(1)
	}

	client := jira.NewClient(jira.Config{
		BaseURL:  cfg.Jira.BaseURL,
		Username: cfg.Jira.Username,
		APIToken: cfg.Jira.APIToken,
	})
	handler := dashboard.NewHandler(client)

	exportMode := *reportPath != "" || *chartsDir != "" || *snapshotPath != ""
	if exportMode {
		if err := runExport(handler, cfg, exportOptions{
			projects:    splitList(*projectsFlag),
			versions:    splitList(*versionsFlag),
			insights:    splitList(*insightsFlag),
			reportPath:  *reportPath,
			chartsDir:   *chartsDir,
			chartFormat: *chartFormat,
			snapshot:    *snapshotPath,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		reportMetrics()
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Not a terminal; use --report, --charts, or --snapshot for non-interactive runs.")
		os.Exit(1)
	}

	var watch *watcher.Watcher
	if path := configPathFor(*configPath); path != "" {
		if w, err := watcher.New(path); err == nil && w.Start() == nil {
			watch = w
			defer watch.Stop()
		}
	}

	m := ui.NewModel(handler, cfg, watch)
	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running fxb: %v\n", err)
		os.Exit(1)
	}
	reportMetrics()
}

// reportMetrics dumps pipeline timing stats to stderr on exit. Collection is
// on by default, so the dump itself is opt-in via FXB_METRICS=1.
func reportMetrics() {
	if v := os.Getenv("FXB_METRICS"); v != "" && v != "0" {
		metrics.Report(os.Stderr)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func configPathFor(override string) string {
	if override != "" {
		return override
	}
	return config.ConfigPath()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type exportOptions struct {
	projects    []string
	versions    []string
	insights    []string
	reportPath  string
	chartsDir   string
	chartFormat string
	snapshot    string
}

// runExport renders the dashboard once for the flag-provided selection and
// writes the requested artifacts.
func runExport(h *dashboard.Handler, cfg config.Config, opts exportOptions) error {
	if len(opts.projects) == 0 || len(opts.versions) == 0 {
		return errors.New("export mode requires --projects and --versions")
	}

	insights := opts.insights
	if len(insights) == 0 {
		insights = cfg.UI.DefaultInsights
	}
	format := opts.chartFormat
	if format == "" {
		format = cfg.UI.ChartFormat
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vm, err := h.Render(ctx, dashboard.Selection{
		ProjectKeys: opts.projects,
		Versions:    opts.versions,
		Insights:    insights,
	})
	if err != nil {
		return err
	}
	if vm.Guidance != "" {
		return errors.New(vm.Guidance)
	}

	if opts.reportPath != "" {
		if err := export.SaveMarkdown(vm, "Fix Version Report", opts.reportPath); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Report written to %s\n", opts.reportPath)
	}

	if opts.chartsDir != "" {
		for _, sec := range vm.Sections {
			if len(sec.Charts) == 0 {
				continue
			}
			dir := filepath.Join(opts.chartsDir, sanitizeDir(sec.Version))
			if err := export.SaveCharts(ctx, dir, format, sec.Charts); err != nil {
				return fmt.Errorf("writing charts for %s: %w", sec.Version, err)
			}
			fmt.Printf("Charts for %s written to %s\n", sec.Version, dir)
		}
	}

	if opts.snapshot != "" {
		if err := export.SaveSnapshot(vm, opts.snapshot); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Printf("Snapshot written to %s\n", opts.snapshot)
	}
	return nil
}

// sanitizeDir makes a fix version name safe as a directory component.
func sanitizeDir(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, s)
}

func runTUIProgram(m *ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set FXB_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("FXB_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
