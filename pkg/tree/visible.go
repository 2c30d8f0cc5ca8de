package tree

// VisibleRows returns the rows the grid should draw, in their original order.
// It is equivalent to keeping each row for which state.IsVisible holds, but
// runs in a single pass because a parent always precedes its children.
func VisibleRows[T any, ID comparable](rows []FlatRow[T, ID], state *Expansion[T, ID]) []FlatRow[T, ID] {
	if len(rows) == 0 {
		return nil
	}
	if state == nil {
		state = NewExpansion[T, ID]()
	}

	// path holds the indices of the nearest shallower rows, deepest last, so
	// the top after popping is the row ScanParent would find
	open := make([]bool, len(rows))
	path := make([]int, 0, 8)
	out := make([]FlatRow[T, ID], 0, len(rows))
	for i := range rows {
		d := rows[i].Depth
		for len(path) > 0 && rows[path[len(path)-1]].Depth >= d {
			path = path[:len(path)-1]
		}
		path = append(path, i)

		visible := true
		if n := len(path); n > 1 && rows[path[n-2]].Depth == d-1 {
			visible = open[path[n-2]]
		}
		if !visible {
			continue
		}
		open[i] = state.IsExpanded(rows[i].ID)
		out = append(out, rows[i])
	}
	return out
}

// RowState is what a renderer needs to indent a row and draw its toggle.
type RowState struct {
	Depth       int
	HasChildren bool
	Expanded    bool
}

// StateOf returns the render triple for a row under the given state.
func StateOf[T any, ID comparable](row FlatRow[T, ID], state *Expansion[T, ID]) RowState {
	rs := RowState{Depth: row.Depth, HasChildren: row.HasChildren}
	if state != nil && row.HasChildren {
		rs.Expanded = state.IsExpanded(row.ID)
	}
	return rs
}
