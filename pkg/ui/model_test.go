package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treetable/pkg/loader"
	"github.com/vanderheijden86/treetable/pkg/model"
)

type menuModel = Model[model.Menu, string]

func consoleResult() *loader.Result {
	return &loader.Result{Records: model.Records(consoleMenus())}
}

func newTestModel(t *testing.T, opts Options) menuModel {
	t.Helper()
	theme := newTreeTestTheme()
	opts.Theme = &theme
	if opts.Copy == nil {
		opts.Copy = func(string) error { return nil }
	}
	m := NewModel(model.MenuAccessor, menuLabel, (*loader.Result).Menus, opts)
	m.SetResult(consoleResult())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return next.(menuModel)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m menuModel, msgs ...tea.Msg) (menuModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(menuModel)
	}
	return m, cmd
}

func modelVisible(m menuModel) string {
	return visibleIDs(m.Tree())
}

func TestModelInitialView(t *testing.T) {
	m := newTestModel(t, Options{Title: "Admin console"})

	if m.Init() != nil {
		t.Error("expected no initial command")
	}
	view := m.View()
	for _, want := range []string{"Admin console", "6/7 rows", "Students", "space toggle"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestModelNotReadyBeforeSize(t *testing.T) {
	m := NewModel(model.MenuAccessor, menuLabel, (*loader.Result).Menus, Options{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("unexpected view before size: %q", got)
	}
}

// TestModelMenuScenario drives the basic menu flow through key presses
func TestModelMenuScenario(t *testing.T) {
	m := newTestModel(t, Options{})

	// j j → enrol, space expands it
	m, _ = press(t, m, runeKey("j"), runeKey("j"), tea.KeyMsg{Type: tea.KeySpace})
	if got := modelVisible(m); got != "students,list,enrol,years,admin,users,home" {
		t.Errorf("after toggle: %s", got)
	}

	m, _ = press(t, m, runeKey("C"))
	if got := modelVisible(m); got != "students,admin,home" {
		t.Errorf("after collapse all: %s", got)
	}

	m, _ = press(t, m, runeKey("E"))
	if got := modelVisible(m); got != "students,list,enrol,years,admin,users,home" {
		t.Errorf("after expand all: %s", got)
	}
}

func TestModelArrowKeys(t *testing.T) {
	m := newTestModel(t, Options{})

	// → on expanded students moves to list
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := selected(m.Tree()); got != "list" {
		t.Errorf("expected list, got %s", got)
	}
	// ← on a leaf jumps to the parent, again collapses it
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft})
	if got := modelVisible(m); got != "students,admin,users,home" {
		t.Errorf("expected students collapsed, got %s", got)
	}
	m, _ = press(t, m, runeKey("G"))
	if got := selected(m.Tree()); got != "home" {
		t.Errorf("expected home at bottom, got %s", got)
	}
	m, _ = press(t, m, runeKey("g"))
	if got := selected(m.Tree()); got != "students" {
		t.Errorf("expected students at top, got %s", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	_, cmd := press(t, m, runeKey("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelCopy(t *testing.T) {
	var copied string
	m := newTestModel(t, Options{Copy: func(s string) error {
		copied = s
		return nil
	}})

	m, cmd := press(t, m, runeKey("j"), runeKey("c"))
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	msg := cmd()
	if copied != "list" {
		t.Errorf("expected list copied, got %q", copied)
	}
	m, _ = press(t, m, msg)
	if m.Status() != "copied list" {
		t.Errorf("unexpected status %q", m.Status())
	}

	m, _ = press(t, m, CopyResultMsg{ID: "x", Err: errors.New("no clipboard")})
	if !strings.Contains(m.Status(), "copy failed") {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestModelRefreshKey(t *testing.T) {
	calls := 0
	m := newTestModel(t, Options{Refresh: func() { calls++ }})
	m, _ = press(t, m, runeKey("r"))
	if calls != 1 {
		t.Errorf("expected refresh called once, got %d", calls)
	}
	if m.Status() != "reloading..." {
		t.Errorf("unexpected status %q", m.Status())
	}
}

// TestModelSnapshotReload verifies a reload installs the new forest
func TestModelSnapshotReload(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = press(t, m, runeKey("C"))

	res := &loader.Result{Records: []model.Record{
		{ID: "admin", Title: "Admin"},
		{ID: "users", ParentID: "admin", Title: "Users"},
		{ID: "roles", ParentID: "admin", Title: "Roles"},
	}}
	m, _ = press(t, m, SnapshotReadyMsg{Snapshot: &DataSnapshot{Result: res}})

	// New forest: auto-expand replaces the collapsed state
	if got := modelVisible(m); got != "admin,roles,users" {
		t.Errorf("unexpected rows after reload %s", got)
	}
	if m.Status() != "reloaded 3/3 rows" {
		t.Errorf("unexpected status %q", m.Status())
	}

	m, _ = press(t, m, SnapshotErrorMsg{Err: errors.New("bad json"), Recoverable: true})
	if !strings.Contains(m.Status(), "reload failed: bad json") {
		t.Errorf("unexpected status %q", m.Status())
	}
	if !strings.Contains(m.View(), "reload failed") {
		t.Error("expected error in footer")
	}
}

func TestModelSkippedStatus(t *testing.T) {
	m := newTestModel(t, Options{})
	m.SetResult(&loader.Result{Skipped: 2})
	if m.Status() != "2 invalid entries skipped" {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestModelUnitsForest(t *testing.T) {
	theme := newTreeTestTheme()
	m := NewModel(model.UnitAccessor, model.BusinessUnit.Label,
		func(res *loader.Result) []model.BusinessUnit { return res.Units },
		Options{Theme: &theme, Start: "expanded"})
	m.SetResult(&loader.Result{Units: []model.BusinessUnit{
		{Code: "HQ", Name: "Head office", Manager: "A. Wanjiru", Units: []model.BusinessUnit{
			{Code: "FIN", Name: "Finance", Units: []model.BusinessUnit{{Code: "AP", Name: "Payables"}}},
		}},
	}})

	if got := m.Tree().NodeCount(); got != 3 {
		t.Errorf("expected all 3 units drawn, got %d", got)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if view := next.View(); !strings.Contains(view, "Head office (A. Wanjiru)") {
		t.Errorf("expected unit label in view:\n%s", view)
	}
}

// TestModelHelpOverlay verifies ? opens the key reference and blocks tree keys
func TestModelHelpOverlay(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = press(t, m, runeKey("?"))
	if !m.HelpVisible() {
		t.Fatal("expected help overlay after ?")
	}
	view := m.View()
	for _, want := range []string{"Quick Reference", "Navigation", "expand all", "copy id"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in help view:\n%s", want, view)
		}
	}

	// C is ignored while help is open
	m, _ = press(t, m, runeKey("C"))
	if got := modelVisible(m); got != "students,list,enrol,admin,users,home" {
		t.Errorf("tree changed behind help overlay: %s", got)
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.HelpVisible() || cmd != nil {
		t.Error("expected esc to close help without a command")
	}
}

func TestModelHelpCtrlCQuits(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = press(t, m, runeKey("?"))
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command from ctrl+c in help")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
