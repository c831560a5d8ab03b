package grid

import (
	"reflect"
	"testing"
)

func TestOccupancy(t *testing.T) {
	occ := NewOccupancy(Grid{Rows: 2, Cols: 3})
	if occ.FreeCount() != 6 {
		t.Fatalf("FreeCount() = %d, want 6", occ.FreeCount())
	}

	occ.Occupy(RectAt(Cell{0, 0}, Span{X: 2, Y: 1}))
	occ.Forbid(RectAt(Cell{1, 2}, Unit))
	if occ.FreeCount() != 3 {
		t.Errorf("FreeCount() = %d, want 3", occ.FreeCount())
	}
	if got := occ.State(Cell{1, 2}); got != Forbidden {
		t.Errorf("State(1,2) = %d, want Forbidden", got)
	}
	if got := occ.State(Cell{5, 5}); got != Forbidden {
		t.Errorf("State outside grid = %d, want Forbidden", got)
	}
	if occ.Fits(RectAt(Cell{0, 1}, Span{X: 2, Y: 1})) {
		t.Error("Fits() over an occupied cell = true")
	}
	if !occ.Fits(RectAt(Cell{1, 0}, Span{X: 2, Y: 1})) {
		t.Error("Fits() over free cells = false")
	}

	// Occupying a forbidden cell leaves it forbidden.
	occ.Occupy(RectAt(Cell{1, 2}, Unit))
	if occ.State(Cell{1, 2}) != Forbidden {
		t.Error("Occupy() overwrote a forbidden cell")
	}

	clone := occ.Clone()
	occ.Release(RectAt(Cell{0, 0}, Span{X: 3, Y: 2}))
	if occ.FreeCount() != 5 {
		t.Errorf("FreeCount() after release = %d, want 5", occ.FreeCount())
	}
	if clone.FreeCount() != 3 || clone.IsFree(Cell{0, 0}) {
		t.Error("Release() changed the clone")
	}

	want := []Cell{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}}
	if got := occ.FreeCells(); !reflect.DeepEqual(got, want) {
		t.Errorf("FreeCells() = %v, want %v", got, want)
	}
}

func TestClaimCells(t *testing.T) {
	g := Grid{Rows: 2, Cols: 4}
	tiles := []Tile{
		{ID: "a", Placed: true, Anchor: Cell{0, 0}, Span: Span{X: 2, Y: 2}},
		{ID: "dup", Placed: true, Anchor: Cell{1, 1}, Span: Unit},
		{ID: "edge", Placed: true, Anchor: Cell{1, 3}, Span: Span{X: 2, Y: 1}},
		{ID: "gone", Placed: true, Anchor: Cell{4, 0}, Span: Unit},
		{ID: "new", Span: Unit},
		{ID: "b", Placed: true, Anchor: Cell{0, 2}, Span: Unit},
	}

	status, occ := ClaimCells(g, tiles)
	want := []Status{StatusPlaced, StatusConflict, StatusVirtual, StatusHidden, StatusHidden, StatusPlaced}
	if !reflect.DeepEqual(status, want) {
		t.Errorf("statuses = %v, want %v", status, want)
	}
	if occ.State(Cell{1, 3}) != Forbidden {
		t.Error("in-bounds cell of a virtual tile is not forbidden")
	}
	if got := occ.FreeCells(); !reflect.DeepEqual(got, []Cell{{0, 3}, {1, 2}}) {
		t.Errorf("FreeCells() = %v, want [(0,3) (1,2)]", got)
	}
}
