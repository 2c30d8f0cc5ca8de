package tree

// Expansion is the set of ids whose children are currently shown, bound to
// one table view.
//
// Every operation is total: unknown or stale ids are accepted and simply
// have no visible effect. The zero value is ready to use. Expansion is not
// safe for concurrent mutation; UI events are expected to arrive one at a
// time.
type Expansion[T any, ID comparable] struct {
	expanded map[ID]struct{}
}

// NewExpansion returns an empty expansion state.
func NewExpansion[T any, ID comparable]() *Expansion[T, ID] {
	return &Expansion[T, ID]{expanded: make(map[ID]struct{})}
}

func (e *Expansion[T, ID]) reset(size int) {
	e.expanded = make(map[ID]struct{}, size)
}

// AutoExpandRoots replaces the state with exactly the roots that have
// children. Deeper levels start collapsed. Call it when a new forest is
// loaded, not on every render, or manual collapses of roots get undone.
func (e *Expansion[T, ID]) AutoExpandRoots(rows []FlatRow[T, ID]) {
	e.reset(0)
	for i := range rows {
		if rows[i].Depth == 0 && hasChildren(rows, i) {
			e.expanded[rows[i].ID] = struct{}{}
		}
	}
}

// Toggle flips the expanded state of id. Toggling twice is a no-op.
func (e *Expansion[T, ID]) Toggle(id ID) {
	if _, ok := e.expanded[id]; ok {
		delete(e.expanded, id)
		return
	}
	if e.expanded == nil {
		e.reset(1)
	}
	e.expanded[id] = struct{}{}
}

// Set forces id into the given state.
func (e *Expansion[T, ID]) Set(id ID, expanded bool) {
	if !expanded {
		delete(e.expanded, id)
		return
	}
	if e.expanded == nil {
		e.reset(1)
	}
	e.expanded[id] = struct{}{}
}

// ExpandAll replaces the state with every row that has children, at any
// depth.
func (e *Expansion[T, ID]) ExpandAll(rows []FlatRow[T, ID]) {
	e.reset(len(rows) / 2)
	for i := range rows {
		if hasChildren(rows, i) {
			e.expanded[rows[i].ID] = struct{}{}
		}
	}
}

// CollapseAll empties the state.
func (e *Expansion[T, ID]) CollapseAll() {
	e.reset(0)
}

// IsExpanded reports whether id is in the state.
func (e *Expansion[T, ID]) IsExpanded(id ID) bool {
	_, ok := e.expanded[id]
	return ok
}

// IsVisible reports whether the row with id is shown: roots always are,
// other rows only when every ancestor is expanded. An id absent from rows is
// not visible. A row whose chain cannot be fully resolved is judged on the
// ancestors that were found.
func (e *Expansion[T, ID]) IsVisible(rows []FlatRow[T, ID], id ID) bool {
	i := IndexOf(rows, id)
	if i < 0 {
		return false
	}
	return e.visibleAt(rows, i)
}

func (e *Expansion[T, ID]) visibleAt(rows []FlatRow[T, ID], i int) bool {
	for p := parentOf(rows, i); p >= 0; p = parentOf(rows, p) {
		if !e.IsExpanded(rows[p].ID) {
			return false
		}
	}
	return true
}

// Len returns the number of expanded ids.
func (e *Expansion[T, ID]) Len() int {
	return len(e.expanded)
}

// IDs returns a snapshot of the expanded ids in no particular order.
func (e *Expansion[T, ID]) IDs() []ID {
	ids := make([]ID, 0, len(e.expanded))
	for id := range e.expanded {
		ids = append(ids, id)
	}
	return ids
}

// Prune drops ids that no longer appear among rows with children.
func (e *Expansion[T, ID]) Prune(rows []FlatRow[T, ID]) {
	if len(e.expanded) == 0 {
		return
	}
	live := make(map[ID]bool, len(rows))
	for i := range rows {
		if hasChildren(rows, i) {
			live[rows[i].ID] = true
		}
	}
	for id := range e.expanded {
		if !live[id] {
			delete(e.expanded, id)
		}
	}
}
