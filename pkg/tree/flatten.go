// Package tree turns a forest of nested entities into a flat, depth-annotated
// row list and tracks which rows are expanded.
//
// The package never mutates caller data. Entities are reached only through an
// Accessor, so the same engine renders menus, business units or any other
// nested shape.
package tree

// Accessor tells the engine how to identify an entity and reach its children.
type Accessor[T any, ID comparable] interface {
	ID(item T) ID
	Children(item T) []T
}

// AccessorFuncs adapts a pair of closures to the Accessor interface.
type AccessorFuncs[T any, ID comparable] struct {
	IDFunc       func(T) ID
	ChildrenFunc func(T) []T
}

// ID implements Accessor.
func (a AccessorFuncs[T, ID]) ID(item T) ID {
	return a.IDFunc(item)
}

// Children implements Accessor. A nil ChildrenFunc means every item is a leaf.
func (a AccessorFuncs[T, ID]) Children(item T) []T {
	if a.ChildrenFunc == nil {
		return nil
	}
	return a.ChildrenFunc(item)
}

// FlatRow is one entity placed in display order.
type FlatRow[T any, ID comparable] struct {
	Item        T
	ID          ID
	Depth       int  // Nesting level (0 = root)
	HasChildren bool // Accessor returned at least one child

	// parent is the parent row index plus one; zero means unknown, so rows
	// built by hand fall back to a backward scan.
	parent int
}

// ParentIndex returns the index of the row's parent within the slice it was
// flattened into, or -1 for roots and rows whose parent was not recorded.
func (r FlatRow[T, ID]) ParentIndex() int {
	return r.parent - 1
}

// Report describes what Flatten had to work around.
type Report[ID comparable] struct {
	// Cycles lists ids that were reached again while already on the current
	// path. Each was emitted as a leaf instead of being descended.
	Cycles []ID
	// Malformed lists ids whose children accessor panicked.
	Malformed []ID
}

// Flatten walks forest depth-first in pre-order. Every entity is followed
// immediately by its whole subtree, in the order the accessor returns
// children. Roots sit at depth 0.
func Flatten[T any, ID comparable](forest []T, acc Accessor[T, ID]) []FlatRow[T, ID] {
	rows, _ := FlattenReport(forest, acc)
	return rows
}

// FlattenReport is Flatten plus a description of cycles cut and accessor
// failures absorbed during the walk.
func FlattenReport[T any, ID comparable](forest []T, acc Accessor[T, ID]) ([]FlatRow[T, ID], Report[ID]) {
	f := flattener[T, ID]{
		acc:    acc,
		onPath: make(map[ID]bool),
	}
	if len(forest) > 0 {
		f.rows = make([]FlatRow[T, ID], 0, len(forest))
	}
	for _, item := range forest {
		f.walk(item, 0, -1)
	}
	return f.rows, f.report
}

type flattener[T any, ID comparable] struct {
	acc    Accessor[T, ID]
	rows   []FlatRow[T, ID]
	onPath map[ID]bool
	report Report[ID]
}

func (f *flattener[T, ID]) walk(item T, depth, parent int) {
	id := f.acc.ID(item)
	idx := len(f.rows)
	f.rows = append(f.rows, FlatRow[T, ID]{
		Item:   item,
		ID:     id,
		Depth:  depth,
		parent: parent + 1,
	})

	// Already an ancestor of itself: emit as a leaf to break the loop
	if f.onPath[id] {
		f.report.Cycles = append(f.report.Cycles, id)
		return
	}

	children, ok := f.children(item)
	if !ok {
		f.report.Malformed = append(f.report.Malformed, id)
	}
	if len(children) == 0 {
		return
	}
	f.rows[idx].HasChildren = true

	f.onPath[id] = true
	for _, child := range children {
		f.walk(child, depth+1, idx)
	}
	delete(f.onPath, id)
}

// children calls the accessor, absorbing a panic as "no children" so one bad
// subtree cannot break its siblings.
func (f *flattener[T, ID]) children(item T) (children []T, ok bool) {
	defer func() {
		if recover() != nil {
			children, ok = nil, false
		}
	}()
	return f.acc.Children(item), true
}

// ScanParent resolves the parent of rows[i] by walking backward for the
// nearest row exactly one level shallower. The scan stops at any row
// shallower than that, so a parent is never borrowed from another subtree.
// It returns -1 for roots and for orphaned rows.
func ScanParent[T any, ID comparable](rows []FlatRow[T, ID], i int) int {
	if i <= 0 || i >= len(rows) {
		return -1
	}
	want := rows[i].Depth - 1
	if want < 0 {
		return -1
	}
	for j := i - 1; j >= 0; j-- {
		switch d := rows[j].Depth; {
		case d == want:
			return j
		case d < want:
			return -1
		}
	}
	return -1
}

// Reindex recomputes parent links and HasChildren for rows that were
// assembled or edited by hand. A row has children when the next row is
// deeper. Rows produced by Flatten already carry correct values.
func Reindex[T any, ID comparable](rows []FlatRow[T, ID]) {
	for i := range rows {
		rows[i].parent = ScanParent(rows, i) + 1
		rows[i].HasChildren = deeperNext(rows, i)
	}
}

func deeperNext[T any, ID comparable](rows []FlatRow[T, ID], i int) bool {
	return i+1 < len(rows) && rows[i+1].Depth > rows[i].Depth
}

// hasChildren reports whether rows[i] has at least one child, using the
// flag Flatten records or, for hand-built rows, the row that follows it.
func hasChildren[T any, ID comparable](rows []FlatRow[T, ID], i int) bool {
	return rows[i].HasChildren || deeperNext(rows, i)
}

// parentOf returns the parent index of rows[i]. The recorded link is used
// only when it still names the nearest shallower row, which fails once rows
// are appended to or resliced from another flatten; otherwise it scans.
func parentOf[T any, ID comparable](rows []FlatRow[T, ID], i int) int {
	if rows[i].Depth == 0 {
		return -1
	}
	if p := rows[i].parent - 1; p >= 0 && p < i && rows[p].Depth == rows[i].Depth-1 {
		valid := true
		for j := p + 1; j < i; j++ {
			if rows[j].Depth < rows[i].Depth {
				valid = false
				break
			}
		}
		if valid {
			return p
		}
	}
	return ScanParent(rows, i)
}

// Ancestors returns the indices of the ancestor chain of rows[i], nearest
// parent first. An orphaned row ends its chain early.
func Ancestors[T any, ID comparable](rows []FlatRow[T, ID], i int) []int {
	if i < 0 || i >= len(rows) {
		return nil
	}
	var chain []int
	for p := parentOf(rows, i); p >= 0; p = parentOf(rows, p) {
		chain = append(chain, p)
	}
	return chain
}

// IndexOf returns the index of the first row with the given id, or -1.
func IndexOf[T any, ID comparable](rows []FlatRow[T, ID], id ID) int {
	for i := range rows {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}
