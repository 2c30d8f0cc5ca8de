package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treetable/pkg/config"
	"github.com/vanderheijden86/treetable/pkg/loader"
	"github.com/vanderheijden86/treetable/pkg/tree"
)

// CopyResultMsg reports the outcome of copying a row id.
type CopyResultMsg struct {
	ID  string
	Err error
}

// Options configures a Model.
type Options struct {
	Title  string
	Indent int
	Start  config.StartMode
	Theme  *Theme
	// Refresh is called for the reload key, usually (*BackgroundWorker).TriggerRefresh
	Refresh func()
	// Copy writes to the clipboard; defaults to clipboard.WriteAll
	Copy func(string) error
}

// Model is the bubbletea program state: a grid over one forest plus the
// header and status line around it.
type Model[T any, ID comparable] struct {
	tree    TreeModel[T, ID]
	keys    Keys
	theme   Theme
	title   string
	project func(*loader.Result) []T
	refresh func()
	copy    func(string) error

	status    string
	statusErr bool
	showHelp  bool
	width     int
	height    int
	ready     bool
}

// NewModel creates a model that renders entities read through acc. project
// turns a load result into the forest to show.
func NewModel[T any, ID comparable](acc tree.Accessor[T, ID], label func(T) string,
	project func(*loader.Result) []T, opts Options) Model[T, ID] {

	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	if opts.Title == "" {
		opts.Title = "treetable"
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	tm := NewTreeModel(acc, label, theme)
	if opts.Indent > 0 {
		tm.SetIndent(opts.Indent)
	}
	tm.SetStartMode(opts.Start)

	return Model[T, ID]{
		tree:    tm,
		keys:    DefaultKeys(),
		theme:   theme,
		title:   opts.Title,
		project: project,
		refresh: opts.Refresh,
		copy:    opts.Copy,
	}
}

// SetResult loads a result as the current forest.
func (m *Model[T, ID]) SetResult(res *loader.Result) {
	if res == nil {
		res = &loader.Result{}
	}
	m.tree.SetForest(m.project(res))
	if res.Skipped > 0 {
		m.setStatus(fmt.Sprintf("%d invalid entries skipped", res.Skipped), true)
	}
}

// Tree exposes the grid.
func (m *Model[T, ID]) Tree() *TreeModel[T, ID] {
	return &m.tree
}

// HelpVisible reports whether the key reference overlay is open.
func (m Model[T, ID]) HelpVisible() bool {
	return m.showHelp
}

// Status returns the current status line text.
func (m Model[T, ID]) Status() string {
	return m.status
}

func (m *Model[T, ID]) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model[T, ID]) Init() tea.Cmd {
	return nil
}

func (m Model[T, ID]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// header + footer
		m.tree.SetSize(msg.Width, msg.Height-2)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case SnapshotReadyMsg:
		if msg.Snapshot != nil {
			m.setStatus("", false)
			m.SetResult(msg.Snapshot.Result)
			if !m.statusErr {
				m.setStatus("reloaded "+m.tree.Summary(), false)
			}
		}

	case SnapshotErrorMsg:
		m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)

	case CopyResultMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("copy failed: %v", msg.Err), true)
		} else {
			m.setStatus("copied "+msg.ID, false)
		}
	}
	return m, nil
}

// handleKeyMsg handles keyboard input for navigation and tree operations
func (m Model[T, ID]) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The help overlay swallows keys until it is closed
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.String() == "esc", key.Matches(msg, m.keys.Quit):
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		m.tree.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.tree.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.tree.JumpToTop()
	case key.Matches(msg, m.keys.End):
		m.tree.JumpToBottom()

	case key.Matches(msg, m.keys.Toggle):
		m.tree.ToggleExpand()
	case key.Matches(msg, m.keys.Right):
		m.tree.ExpandOrMoveToChild()
	case key.Matches(msg, m.keys.Left):
		m.tree.CollapseOrJumpToParent()
	case key.Matches(msg, m.keys.GoToParent):
		m.tree.JumpToParent()
	case key.Matches(msg, m.keys.ExpandAll):
		m.tree.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		m.tree.CollapseAll()

	case key.Matches(msg, m.keys.Copy):
		id, ok := m.tree.SelectedID()
		if !ok {
			return m, nil
		}
		text := fmt.Sprint(id)
		write := m.copy
		return m, func() tea.Msg {
			return CopyResultMsg{ID: text, Err: write(text)}
		}

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Refresh):
		if m.refresh != nil {
			m.refresh()
			m.setStatus("reloading...", false)
		}
	}
	return m, nil
}

func (m Model[T, ID]) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return RenderHelp(m.keys, m.theme, m.width, m.height)
	}

	header := m.theme.Header.Render(m.title) + "  " +
		m.theme.Footer.Render(m.tree.Summary())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.TrimRight(m.tree.View(), "\n"),
		m.renderFooter(),
	)
}

func (m Model[T, ID]) renderFooter() string {
	if m.status != "" {
		style := m.theme.Footer
		if m.statusErr {
			style = m.theme.Renderer.NewStyle().Foreground(m.theme.Error)
		}
		return style.Render(m.status)
	}

	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.theme.Footer.Render(strings.Join(parts, " • "))
}
