package tree

// View ties a forest to its flattened rows and expansion state. It is the
// state machine a table view drives: loading a different forest re-runs the
// auto-expand rule, everything else is an explicit user action.
type View[T any, ID comparable] struct {
	acc    Accessor[T, ID]
	forest []T
	rows   []FlatRow[T, ID]
	report Report[ID]
	state  *Expansion[T, ID]
	loaded bool
}

// NewView creates an empty view that reads entities through acc.
func NewView[T any, ID comparable](acc Accessor[T, ID]) *View[T, ID] {
	return &View[T, ID]{
		acc:   acc,
		state: NewExpansion[T, ID](),
	}
}

// SetForest installs forest and recomputes the rows. When forest is a
// different forest from the current one, the expansion state is replaced by
// AutoExpandRoots. Passing the same slice again keeps the user's state,
// minus ids that no longer have children.
// It reports whether auto-expansion ran.
func (v *View[T, ID]) SetForest(forest []T) bool {
	changed := !v.loaded || !sameForest(v.forest, forest)
	v.forest = forest
	v.rows, v.report = FlattenReport(forest, v.acc)
	v.loaded = true
	if changed {
		v.state.AutoExpandRoots(v.rows)
	} else {
		v.state.Prune(v.rows)
	}
	return changed
}

// Reload installs forest as a new load, even if it shares storage with the
// previous one (for example a slice refilled in place by a refetch).
func (v *View[T, ID]) Reload(forest []T) {
	v.loaded = false
	v.SetForest(forest)
}

// SetAccessor swaps the accessor and recomputes rows without touching the
// expansion state.
func (v *View[T, ID]) SetAccessor(acc Accessor[T, ID]) {
	v.acc = acc
	if v.loaded {
		v.rows, v.report = FlattenReport(v.forest, v.acc)
	}
}

// sameForest compares slice identity: same backing array and length.
func sameForest[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}

// Rows returns every flattened row, hidden or not.
func (v *View[T, ID]) Rows() []FlatRow[T, ID] { return v.rows }

// Report returns what the last flatten had to work around.
func (v *View[T, ID]) Report() Report[ID] { return v.report }

// Expansion exposes the underlying state.
func (v *View[T, ID]) Expansion() *Expansion[T, ID] { return v.state }

// Visible returns the rows to draw.
func (v *View[T, ID]) Visible() []FlatRow[T, ID] {
	return VisibleRows(v.rows, v.state)
}

// Toggle flips one row. Ids not among the current rows are ignored so they
// never accumulate in the state.
func (v *View[T, ID]) Toggle(id ID) {
	if IndexOf(v.rows, id) < 0 {
		return
	}
	v.state.Toggle(id)
}

// ExpandAll opens every row with children.
func (v *View[T, ID]) ExpandAll() { v.state.ExpandAll(v.rows) }

// CollapseAll closes everything.
func (v *View[T, ID]) CollapseAll() { v.state.CollapseAll() }

// IsVisible reports whether id is currently drawn.
func (v *View[T, ID]) IsVisible(id ID) bool { return v.state.IsVisible(v.rows, id) }

// State returns the render triple for row.
func (v *View[T, ID]) State(row FlatRow[T, ID]) RowState { return StateOf(row, v.state) }

// Parent returns the parent row of id and true, or false for roots and
// unknown ids.
func (v *View[T, ID]) Parent(id ID) (FlatRow[T, ID], bool) {
	i := IndexOf(v.rows, id)
	if i < 0 {
		return FlatRow[T, ID]{}, false
	}
	p := parentOf(v.rows, i)
	if p < 0 {
		return FlatRow[T, ID]{}, false
	}
	return v.rows[p], true
}
