package tree

import (
	"slices"
	"testing"
)

func expandedIDs[T any](e *Expansion[T, string]) []string {
	ids := e.IDs()
	slices.Sort(ids)
	return ids
}

// TestAutoExpandRootsOnlyRoots verifies only roots with children are opened
func TestAutoExpandRootsOnlyRoots(t *testing.T) {
	rows := Flatten(menuForest(), nodeAccessor)
	e := NewExpansion[node, string]()
	e.AutoExpandRoots(rows)

	if got := expandedIDs(e); !slices.Equal(got, []string{"A"}) {
		t.Fatalf("expected {A}, got %v", got)
	}
	if e.IsExpanded("C") {
		t.Error("C has children but is not a root; expected collapsed")
	}
}

// TestAutoExpandRootsReplacesState verifies prior state is discarded, not merged
func TestAutoExpandRootsReplacesState(t *testing.T) {
	rows := Flatten([]node{n("r", n("x")), n("leaf")}, nodeAccessor)
	e := NewExpansion[node, string]()
	e.Toggle("stale")
	e.Toggle("x")

	e.AutoExpandRoots(rows)

	if got := expandedIDs(e); !slices.Equal(got, []string{"r"}) {
		t.Errorf("expected {r}, got %v", got)
	}
}

// TestMenuScenario walks the basic A{B, C{D}} menu from load to toggle
func TestMenuScenario(t *testing.T) {
	rows := Flatten(menuForest(), nodeAccessor)
	e := NewExpansion[node, string]()
	e.AutoExpandRoots(rows)

	if got := rowIDs(VisibleRows(rows, e)); got != "A,B,C" {
		t.Fatalf("after auto-expand expected A,B,C, got %s", got)
	}

	e.Toggle("C")
	if got := rowIDs(VisibleRows(rows, e)); got != "A,B,C,D" {
		t.Fatalf("after toggling C expected A,B,C,D, got %s", got)
	}

	e.CollapseAll()
	if got := rowIDs(VisibleRows(rows, e)); got != "A" {
		t.Fatalf("after CollapseAll expected A, got %s", got)
	}

	e.ExpandAll(rows)
	if got := rowIDs(VisibleRows(rows, e)); got != "A,B,C,D" {
		t.Fatalf("after ExpandAll expected A,B,C,D, got %s", got)
	}
}

// TestToggleInvolution verifies toggling twice restores the state
func TestToggleInvolution(t *testing.T) {
	e := NewExpansion[node, string]()
	e.Toggle("A")
	before := expandedIDs(e)

	for _, id := range []string{"A", "B", "unknown"} {
		e.Toggle(id)
		e.Toggle(id)
		if got := expandedIDs(e); !slices.Equal(got, before) {
			t.Errorf("toggle(%s) twice changed state: %v -> %v", id, before, got)
		}
	}
}

// TestExpandAllIdempotent verifies a second ExpandAll is a no-op
func TestExpandAllIdempotent(t *testing.T) {
	rows := Flatten([]node{n("r", n("a", n("a1")), n("b")), n("s", n("t"))}, nodeAccessor)
	e := NewExpansion[node, string]()

	e.ExpandAll(rows)
	once := expandedIDs(e)
	e.ExpandAll(rows)
	twice := expandedIDs(e)

	if !slices.Equal(once, twice) {
		t.Errorf("ExpandAll not idempotent: %v vs %v", once, twice)
	}
	if !slices.Equal(once, []string{"a", "r", "s"}) {
		t.Errorf("expected {a, r, s}, got %v", once)
	}
}

// TestVisibilityTransitive verifies a collapsed grandparent hides a row even
// when its parent is expanded
func TestVisibilityTransitive(t *testing.T) {
	rows := Flatten([]node{n("r", n("a", n("b", n("c"))))}, nodeAccessor)
	e := NewExpansion[node, string]()
	e.ExpandAll(rows)
	e.Toggle("a")

	if !e.IsVisible(rows, "a") {
		t.Error("a should be visible (r expanded)")
	}
	for _, id := range []string{"b", "c"} {
		if e.IsVisible(rows, id) {
			t.Errorf("%s should be hidden while a is collapsed", id)
		}
	}
	if got := rowIDs(VisibleRows(rows, e)); got != "r,a" {
		t.Errorf("expected r,a, got %s", got)
	}
}

// TestRootsAlwaysVisible verifies roots ignore expansion state
func TestRootsAlwaysVisible(t *testing.T) {
	rows := Flatten([]node{n("r1", n("x")), n("r2")}, nodeAccessor)
	e := NewExpansion[node, string]()
	for _, id := range []string{"r1", "r2"} {
		if !e.IsVisible(rows, id) {
			t.Errorf("root %s should be visible", id)
		}
	}
}

// TestOrphanRowIsVisible verifies a row whose parent cannot be found is shown
func TestOrphanRowIsVisible(t *testing.T) {
	rows := []FlatRow[string, string]{
		{ID: "A", Depth: 0, HasChildren: true},
		{ID: "O", Depth: 2},
		{ID: "B", Depth: 0},
	}
	e := NewExpansion[string, string]()

	if !e.IsVisible(rows, "O") {
		t.Error("orphaned row should be vacuously visible")
	}
	if got := rowIDs(VisibleRows(rows, e)); got != "A,O,B" {
		t.Errorf("expected A,O,B, got %s", got)
	}
}

// TestOrphanChildFollowsOrphanParent verifies rows under an orphan still
// respect the orphan's own expansion
func TestOrphanChildFollowsOrphanParent(t *testing.T) {
	rows := []FlatRow[string, string]{
		{ID: "A", Depth: 0},
		{ID: "O", Depth: 2, HasChildren: true},
		{ID: "P", Depth: 3},
	}
	e := NewExpansion[string, string]()

	if e.IsVisible(rows, "P") {
		t.Error("P should be hidden while O is collapsed")
	}
	e.Toggle("O")
	if !e.IsVisible(rows, "P") {
		t.Error("P should be visible once O is expanded")
	}
}

// TestUnknownIDs verifies queries about unknown ids never fail
func TestUnknownIDs(t *testing.T) {
	rows := Flatten(menuForest(), nodeAccessor)
	e := NewExpansion[node, string]()

	if e.IsExpanded("nope") {
		t.Error("unknown id should not be expanded")
	}
	if e.IsVisible(rows, "nope") {
		t.Error("unknown id should not be visible")
	}
	if e.IsVisible(nil, "A") {
		t.Error("nothing is visible in an empty row set")
	}

	// A stale toggle is inert for rendering
	e.AutoExpandRoots(rows)
	e.Toggle("nope")
	if got := rowIDs(VisibleRows(rows, e)); got != "A,B,C" {
		t.Errorf("stale id changed visible rows: %s", got)
	}
}

// TestZeroValueExpansion verifies the zero value is usable
func TestZeroValueExpansion(t *testing.T) {
	var e Expansion[node, string]
	rows := Flatten(menuForest(), nodeAccessor)

	if e.IsExpanded("A") || e.Len() != 0 {
		t.Fatal("zero value should be empty")
	}
	e.Set("C", false)
	e.Toggle("A")
	if !e.IsExpanded("A") {
		t.Error("expected A expanded after toggle")
	}
	e.CollapseAll()
	e.Set("C", true)
	if got := rowIDs(VisibleRows(rows, &e)); got != "A" {
		t.Errorf("expected only A visible, got %s", got)
	}
}

// TestVisibleRowsNilState verifies a nil state shows only roots
func TestVisibleRowsNilState(t *testing.T) {
	rows := Flatten([]node{n("a", n("b")), n("c")}, nodeAccessor)
	if got := rowIDs(VisibleRows(rows, nil)); got != "a,c" {
		t.Errorf("expected a,c, got %s", got)
	}
	if VisibleRows[node, string](nil, nil) != nil {
		t.Error("expected nil for no rows")
	}
}

// TestPrune verifies ids that no longer have children are dropped
func TestPrune(t *testing.T) {
	rows := Flatten(menuForest(), nodeAccessor)
	e := NewExpansion[node, string]()
	e.Set("A", true)
	e.Set("B", true)
	e.Set("gone", true)

	e.Prune(rows)

	if got := expandedIDs(e); !slices.Equal(got, []string{"A"}) {
		t.Errorf("expected {A} after prune, got %v", got)
	}
}

// TestStateOf verifies the render triple
func TestStateOf(t *testing.T) {
	rows := Flatten(menuForest(), nodeAccessor)
	e := NewExpansion[node, string]()
	e.AutoExpandRoots(rows)

	tests := []struct {
		id   string
		want RowState
	}{
		{"A", RowState{Depth: 0, HasChildren: true, Expanded: true}},
		{"B", RowState{Depth: 1}},
		{"C", RowState{Depth: 1, HasChildren: true}},
		{"D", RowState{Depth: 2}},
	}
	for _, tt := range tests {
		row := rows[IndexOf(rows, tt.id)]
		if got := StateOf(row, e); got != tt.want {
			t.Errorf("StateOf(%s) = %+v, want %+v", tt.id, got, tt.want)
		}
	}

	// A leaf toggled into the set still renders without an affordance
	e.Toggle("B")
	if got := StateOf(rows[1], e); got.Expanded {
		t.Error("leaf should never report expanded")
	}
}

// TestVisibilityOnConcatenatedRows verifies a collapsed parent hides its
// children after two flattened forests are appended together
func TestVisibilityOnConcatenatedRows(t *testing.T) {
	rows := append(
		Flatten([]node{n("A", n("B"))}, nodeAccessor),
		Flatten([]node{n("C", n("D"))}, nodeAccessor)...,
	)
	e := NewExpansion[node, string]()
	e.Toggle("A")

	if e.IsVisible(rows, "D") {
		t.Error("D should be hidden while C is collapsed")
	}
	if got := rowIDs(VisibleRows(rows, e)); got != "A,B,C" {
		t.Errorf("expected A,B,C, got %s", got)
	}

	tail := rows[1:]
	if got := rowIDs(VisibleRows(tail, e)); got != "B,C" {
		t.Errorf("expected B,C on resliced rows, got %s", got)
	}
	if e.IsVisible(tail, "D") {
		t.Error("D should be hidden in resliced rows")
	}
}

// TestExpandHandBuiltRows verifies expand operations work on rows carrying
// only id and depth
func TestExpandHandBuiltRows(t *testing.T) {
	rows := []FlatRow[string, string]{
		{ID: "A", Depth: 0},
		{ID: "B", Depth: 1},
		{ID: "C", Depth: 1},
		{ID: "D", Depth: 2},
	}
	e := NewExpansion[string, string]()

	e.AutoExpandRoots(rows)
	if got := expandedIDs(e); !slices.Equal(got, []string{"A"}) {
		t.Errorf("AutoExpandRoots: expected {A}, got %v", got)
	}
	if got := rowIDs(VisibleRows(rows, e)); got != "A,B,C" {
		t.Errorf("expected A,B,C, got %s", got)
	}

	e.ExpandAll(rows)
	if got := expandedIDs(e); !slices.Equal(got, []string{"A", "C"}) {
		t.Errorf("ExpandAll: expected {A,C}, got %v", got)
	}

	Reindex(rows)
	e.CollapseAll()
	e.ExpandAll(rows)
	if got := rowIDs(VisibleRows(rows, e)); got != "A,B,C,D" {
		t.Errorf("expected every row after Reindex and ExpandAll, got %s", got)
	}
}
