// tree.go - Hierarchical grid over a flattened forest
package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/treetable/pkg/config"
	"github.com/vanderheijden86/treetable/pkg/tree"
)

// TreeModel manages the grid: the forest session, the visible rows and the
// cursor over them.
type TreeModel[T any, ID comparable] struct {
	view           *tree.View[T, ID]
	label          func(T) string
	visible        []tree.FlatRow[T, ID] // Rows currently drawn, in order
	cursor         int                   // Index into visible
	theme          Theme
	indent         int              // Spaces per depth level
	start          config.StartMode // Applied each time a new forest arrives
	width          int
	height         int
	viewportOffset int // Index of first drawn row

	built bool
}

// NewTreeModel creates an empty grid reading entities through acc and
// rendering each with label.
func NewTreeModel[T any, ID comparable](acc tree.Accessor[T, ID], label func(T) string, theme Theme) TreeModel[T, ID] {
	return TreeModel[T, ID]{
		view:   tree.NewView(acc),
		label:  label,
		theme:  theme,
		indent: 2,
		start:  config.StartAuto,
	}
}

// SetSize updates the available dimensions for the grid
func (t *TreeModel[T, ID]) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetIndent sets spaces per depth level.
func (t *TreeModel[T, ID]) SetIndent(n int) {
	if n >= 0 {
		t.indent = n
	}
}

// SetStartMode chooses the expansion applied when a new forest is loaded.
func (t *TreeModel[T, ID]) SetStartMode(mode config.StartMode) {
	if mode.IsValid() {
		t.start = mode
	}
}

// SetForest loads forest into the grid. A new forest resets expansion to the
// start mode; the cursor stays on the same id when it is still drawn.
func (t *TreeModel[T, ID]) SetForest(forest []T) {
	selected, hadSelection := t.SelectedID()

	// Step 1: Flatten; auto-expand runs only when the forest changed
	if t.view.SetForest(forest) {
		t.applyStartMode()
	}

	// Step 2: Report anything the flatten had to cut
	report := t.view.Report()
	for _, id := range report.Cycles {
		log.Printf("warning: cycle detected at %v, children not shown", id)
	}
	for _, id := range report.Malformed {
		log.Printf("warning: could not read children of %v", id)
	}

	// Step 3: Rebuild the drawn rows and restore the cursor
	t.rebuildVisible()
	if hadSelection {
		t.restoreSelection(selected)
	}
	t.built = true
}

func (t *TreeModel[T, ID]) applyStartMode() {
	switch t.start {
	case config.StartExpanded:
		t.view.ExpandAll()
	case config.StartCollapsed:
		t.view.CollapseAll()
	}
}

// View renders the drawn rows in the viewport.
func (t *TreeModel[T, ID]) View() string {
	if !t.built || len(t.visible) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		isSelected := i == t.cursor
		line := t.renderRow(t.visible[i])
		if isSelected {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *TreeModel[T, ID]) renderEmptyState() string {
	r := t.theme.Renderer
	mutedStyle := r.NewStyle().Foreground(t.theme.Muted)
	return mutedStyle.Render("Nothing to display.")
}

// renderRow renders a single row: indentation, indicator, label.
func (t *TreeModel[T, ID]) renderRow(row tree.FlatRow[T, ID]) string {
	r := t.theme.Renderer
	state := t.view.State(row)

	var sb strings.Builder
	prefix := strings.Repeat(" ", state.Depth*t.indent)
	sb.WriteString(prefix)

	indicatorStyle := r.NewStyle().Foreground(t.theme.Secondary)
	sb.WriteString(indicatorStyle.Render(expandIndicator(state)))
	sb.WriteString(" ")

	label := t.label(row.Item)
	// Use lipgloss.Width for proper display width (handles ANSI codes + Unicode)
	maxWidth := 80
	if t.width > 0 {
		maxWidth = t.width - lipgloss.Width(prefix) - 2
		if maxWidth < 10 {
			maxWidth = 10
		}
	}
	sb.WriteString(truncateLabel(label, maxWidth))

	return sb.String()
}

// expandIndicator returns the expand/collapse indicator for a row.
func expandIndicator(state tree.RowState) string {
	if !state.HasChildren {
		return "•" // Leaf
	}
	if state.Expanded {
		return "▾"
	}
	return "▸"
}

// truncateLabel cuts s to maxWidth display cells, ending in an ellipsis.
func truncateLabel(s string, maxWidth int) string {
	if maxWidth <= 1 {
		return "…"
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// SelectedRow returns the row under the cursor.
func (t *TreeModel[T, ID]) SelectedRow() (tree.FlatRow[T, ID], bool) {
	if t.cursor >= 0 && t.cursor < len(t.visible) {
		return t.visible[t.cursor], true
	}
	return tree.FlatRow[T, ID]{}, false
}

// SelectedID returns the id under the cursor.
func (t *TreeModel[T, ID]) SelectedID() (ID, bool) {
	row, ok := t.SelectedRow()
	return row.ID, ok
}

// Cursor returns the index of the selected drawn row.
func (t *TreeModel[T, ID]) Cursor() int {
	return t.cursor
}

// MoveDown moves the cursor down.
func (t *TreeModel[T, ID]) MoveDown() {
	if t.cursor < len(t.visible)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor up.
func (t *TreeModel[T, ID]) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop moves cursor to the first row.
func (t *TreeModel[T, ID]) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves cursor to the last row.
func (t *TreeModel[T, ID]) JumpToBottom() {
	if len(t.visible) > 0 {
		t.cursor = len(t.visible) - 1
		t.ensureCursorVisible()
	}
}

// ToggleExpand expands or collapses the selected row.
func (t *TreeModel[T, ID]) ToggleExpand() {
	row, ok := t.SelectedRow()
	if !ok || !row.HasChildren {
		return
	}
	t.view.Toggle(row.ID)
	t.rebuildVisible()
	t.restoreSelection(row.ID)
}

// ExpandAll expands every row with children.
func (t *TreeModel[T, ID]) ExpandAll() {
	selected, ok := t.SelectedID()
	t.view.ExpandAll()
	t.rebuildVisible()
	if ok {
		t.restoreSelection(selected)
	}
}

// CollapseAll collapses everything. The cursor moves to the root of the
// previously selected row.
func (t *TreeModel[T, ID]) CollapseAll() {
	selected, ok := t.SelectedID()
	t.view.CollapseAll()
	t.rebuildVisible()
	if ok {
		t.restoreSelection(selected)
	}
}

// JumpToParent moves cursor to the parent of the selected row. Roots and
// orphans have nowhere to go.
func (t *TreeModel[T, ID]) JumpToParent() {
	id, ok := t.SelectedID()
	if !ok {
		return
	}
	parent, ok := t.view.Parent(id)
	if !ok {
		return
	}
	t.SelectByID(parent.ID)
}

// ExpandOrMoveToChild handles the → / l key:
// - collapsed row with children: expand it
// - expanded row: move to its first child
// - leaf: nothing
func (t *TreeModel[T, ID]) ExpandOrMoveToChild() {
	row, ok := t.SelectedRow()
	if !ok || !row.HasChildren {
		return
	}
	exp := t.view.Expansion()
	if !exp.IsExpanded(row.ID) {
		exp.Set(row.ID, true)
		t.rebuildVisible()
		t.restoreSelection(row.ID)
		return
	}
	// Pre-order: the first child is drawn right after an expanded row
	t.MoveDown()
}

// CollapseOrJumpToParent handles the ← / h key:
// - expanded row: collapse it
// - otherwise: jump to parent
func (t *TreeModel[T, ID]) CollapseOrJumpToParent() {
	row, ok := t.SelectedRow()
	if !ok {
		return
	}
	exp := t.view.Expansion()
	if row.HasChildren && exp.IsExpanded(row.ID) {
		exp.Set(row.ID, false)
		t.rebuildVisible()
		t.restoreSelection(row.ID)
		return
	}
	t.JumpToParent()
}

// PageDown moves cursor down by half a viewport.
func (t *TreeModel[T, ID]) PageDown() {
	pageSize := t.height / 2
	if pageSize < 1 {
		pageSize = 5
	}
	t.cursor += pageSize
	if t.cursor >= len(t.visible) {
		t.cursor = len(t.visible) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageUp moves cursor up by half a viewport.
func (t *TreeModel[T, ID]) PageUp() {
	pageSize := t.height / 2
	if pageSize < 1 {
		pageSize = 5
	}
	t.cursor -= pageSize
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// SelectByID moves cursor to the drawn row with the given id.
// Returns false if the row is not drawn.
func (t *TreeModel[T, ID]) SelectByID(id ID) bool {
	for i, row := range t.visible {
		if row.ID == id {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// restoreSelection selects id, or its nearest drawn ancestor when id is
// now hidden. Unknown ids leave the clamped cursor alone.
func (t *TreeModel[T, ID]) restoreSelection(id ID) {
	for seen := 0; seen <= len(t.view.Rows()); seen++ {
		if t.SelectByID(id) {
			return
		}
		parent, ok := t.view.Parent(id)
		if !ok {
			return
		}
		id = parent.ID
	}
}

// visibleRange returns the [start, end) indices of rows in the viewport.
func (t *TreeModel[T, ID]) visibleRange() (start, end int) {
	if len(t.visible) == 0 {
		return 0, 0
	}

	visibleCount := t.height
	if visibleCount <= 0 {
		visibleCount = len(t.visible)
	}

	start = t.viewportOffset
	end = start + visibleCount
	if end > len(t.visible) {
		end = len(t.visible)
		start = end - visibleCount
	}
	if start < 0 {
		start = 0
	}
	return start, end
}

// ensureCursorVisible scrolls the viewport so the cursor row is drawn.
func (t *TreeModel[T, ID]) ensureCursorVisible() {
	if t.height <= 0 {
		t.viewportOffset = 0
		return
	}
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+t.height {
		t.viewportOffset = t.cursor - t.height + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// rebuildVisible recomputes the drawn rows and clamps the cursor.
func (t *TreeModel[T, ID]) rebuildVisible() {
	t.visible = t.view.Visible()
	if t.cursor >= len(t.visible) {
		t.cursor = len(t.visible) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// VisibleRows returns the rows currently drawn.
func (t *TreeModel[T, ID]) VisibleRows() []tree.FlatRow[T, ID] {
	return t.visible
}

// Session returns the underlying forest session.
func (t *TreeModel[T, ID]) Session() *tree.View[T, ID] {
	return t.view
}

// IsBuilt returns whether a forest has been loaded.
func (t *TreeModel[T, ID]) IsBuilt() bool {
	return t.built
}

// NodeCount returns the number of drawn rows.
func (t *TreeModel[T, ID]) NodeCount() int {
	return len(t.visible)
}

// RowCount returns the number of rows, drawn or hidden.
func (t *TreeModel[T, ID]) RowCount() int {
	return len(t.view.Rows())
}

// Summary describes how much of the forest is drawn, e.g. "3/7 rows".
func (t *TreeModel[T, ID]) Summary() string {
	return fmt.Sprintf("%d/%d rows", t.NodeCount(), t.RowCount())
}
