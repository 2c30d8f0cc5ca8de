package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treetable/pkg/config"
	"github.com/vanderheijden86/treetable/pkg/loader"
	"github.com/vanderheijden86/treetable/pkg/model"
	"github.com/vanderheijden86/treetable/pkg/tree"
	"github.com/vanderheijden86/treetable/pkg/ui"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// outputMode selects how the forest is shown.
type outputMode int

const (
	outputTUI outputMode = iota
	outputPlain
	outputJSON
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file (default: .treetable/config.yaml in the project root)")
	sourceFlag := flag.String("source", "", "Comma-separated data files (overrides config sources)")
	viewFlag := flag.String("view", "", "Forest to show: menus or units")
	printFlag := flag.Bool("print", false, "Print the visible rows and exit")
	robotJSON := flag.Bool("robot-json", false, "Output the flattened rows as JSON for scripts and agents")
	expandAll := flag.Bool("expand-all", false, "Start with every row expanded")
	collapseAll := flag.Bool("collapse-all", false, "Start with every row collapsed")
	watchFlag := flag.Bool("watch", false, "Reload when a source file changes")
	logFile := flag.String("log", "", "Write warnings to this file (interactive mode discards them otherwise)")
	flag.Parse()

	if *help {
		fmt.Println("Usage: treetable [options]")
		fmt.Println("\nA terminal grid for hierarchical data (menus, business units).")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("treetable %s\n", version)
		os.Exit(0)
	}

	if *expandAll && *collapseAll {
		fmt.Fprintln(os.Stderr, "Error: --expand-all and --collapse-all are mutually exclusive")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file
	if *sourceFlag != "" {
		cfg.Sources = splitSources(*sourceFlag)
		if wd, err := os.Getwd(); err == nil {
			cfg = cfg.WithRoot(wd)
		}
	}
	if *viewFlag != "" {
		cfg.View = *viewFlag
	}
	switch {
	case *expandAll:
		cfg.Start = config.StartExpanded
	case *collapseAll:
		cfg.Start = config.StartCollapsed
	}
	if *watchFlag {
		cfg.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	sources := cfg.ResolvedSources()
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no data sources configured or found")
		fmt.Fprintln(os.Stderr, "Pass --source or list sources in .treetable/config.yaml")
		os.Exit(1)
	}

	mode := outputTUI
	switch {
	case *robotJSON:
		mode = outputJSON
	case *printFlag, !term.IsTerminal(int(os.Stdout.Fd())):
		mode = outputPlain
	}

	if mode == outputTUI {
		closeLog, err := setupLogging(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
	}

	res, err := loader.LoadAll(context.Background(), sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sources: %v\n", err)
		os.Exit(1)
	}
	if res.Skipped > 0 {
		log.Printf("warning: skipped %d invalid entries", res.Skipped)
	}
	for _, cycle := range model.FindCycles(res.Records) {
		log.Printf("warning: parent cycle among %s", strings.Join(cycle, " -> "))
	}

	if cfg.View == config.ViewUnits {
		err = run(cfg, sources, res, mode, model.UnitAccessor, model.BusinessUnit.Label, unitsOf)
	} else {
		err = run(cfg, sources, res, mode, model.MenuAccessor, model.Menu.Label, (*loader.Result).Menus)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func unitsOf(res *loader.Result) []model.BusinessUnit {
	return res.Units
}

// loadConfig reads an explicit config file, or the one in the project root.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("getting working directory: %w", err)
	}
	return config.LoadOrDefault(wd)
}

// setupLogging keeps warnings off the alt screen. With a path they go to
// that file; otherwise they are discarded.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "treetable")
	if err != nil {
		return nil, err
	}
	return func() { f.Close() }, nil
}

func splitSources(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// run shows one forest in the chosen output mode.
func run[T any](cfg config.Config, sources []string, res *loader.Result, mode outputMode,
	acc tree.Accessor[T, string], label func(T) string, project func(*loader.Result) []T) error {

	switch mode {
	case outputPlain:
		return ui.WritePlain(os.Stdout, buildView(acc, project(res), cfg.Start), label, cfg.Indent)
	case outputJSON:
		return writeRobotJSON(os.Stdout, buildView(acc, project(res), cfg.Start), label)
	}
	return runInteractive(cfg, sources, res, acc, label, project)
}

// buildView flattens forest and applies the start mode outside the TUI.
func buildView[T any](acc tree.Accessor[T, string], forest []T, start config.StartMode) *tree.View[T, string] {
	v := tree.NewView(acc)
	v.SetForest(forest)
	switch start {
	case config.StartExpanded:
		v.ExpandAll()
	case config.StartCollapsed:
		v.CollapseAll()
	}
	return v
}

func runInteractive[T any](cfg config.Config, sources []string, res *loader.Result,
	acc tree.Accessor[T, string], label func(T) string, project func(*loader.Result) []T) error {

	debounce, err := cfg.DebounceDuration()
	if err != nil {
		return err
	}

	var worker *ui.BackgroundWorker
	m := ui.NewModel(acc, label, project, ui.Options{
		Title:  cfg.Title,
		Indent: cfg.Indent,
		Start:  cfg.Start,
		Refresh: func() {
			if worker != nil {
				worker.TriggerRefresh()
			}
		},
	})
	m.SetResult(res)

	p := tea.NewProgram(m, tea.WithAltScreen())

	worker, err = ui.NewBackgroundWorker(ui.WorkerConfig{
		Sources:       sources,
		DebounceDelay: debounce,
		Watch:         cfg.Watch,
		Send:          p.Send,
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	if hash, err := ui.ComputeDataHash(res); err == nil {
		worker.SetInitialHash(hash)
	}
	if err := worker.Start(); err != nil {
		log.Printf("warning: file watcher not started: %v", err)
	}
	defer worker.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// robotRow is one flattened row in --robot-json output.
type robotRow struct {
	ID          string `json:"id"`
	ParentID    string `json:"parent_id,omitempty"`
	Label       string `json:"label"`
	Depth       int    `json:"depth"`
	HasChildren bool   `json:"has_children"`
	Expanded    bool   `json:"expanded"`
	Visible     bool   `json:"visible"`
}

// robotOutput is the --robot-json document.
type robotOutput struct {
	Rows      []robotRow `json:"rows"`
	Visible   int        `json:"visible"`
	Total     int        `json:"total"`
	Cycles    []string   `json:"cycles,omitempty"`
	Malformed []string   `json:"malformed,omitempty"`
}

// writeRobotJSON writes every flattened row, marking which are visible.
func writeRobotJSON[T any](w io.Writer, v *tree.View[T, string], label func(T) string) error {
	rows := v.Rows()
	out := robotOutput{
		Rows:      make([]robotRow, 0, len(rows)),
		Total:     len(rows),
		Cycles:    v.Report().Cycles,
		Malformed: v.Report().Malformed,
	}
	expansion := v.Expansion()
	for i, row := range rows {
		state := v.State(row)
		r := robotRow{
			ID:          row.ID,
			Label:       label(row.Item),
			Depth:       state.Depth,
			HasChildren: state.HasChildren,
			Expanded:    state.Expanded,
			Visible:     true,
		}
		// Rows repeated by a cycle cut share an id, so resolve by position
		for n, a := range tree.Ancestors(rows, i) {
			if n == 0 {
				r.ParentID = rows[a].ID
			}
			if !expansion.IsExpanded(rows[a].ID) {
				r.Visible = false
			}
		}
		if r.Visible {
			out.Visible++
		}
		out.Rows = append(out.Rows, r)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
