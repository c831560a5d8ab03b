package resize

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/relocate"
)

func newBoard(t *testing.T, rows, cols int, tiles ...grid.Tile) *grid.Board {
	t.Helper()
	b, err := grid.NewBoard(grid.Grid{Rows: rows, Cols: cols})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	if err := b.Load(tiles); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return b
}

func placed(id string, row, col, spanX, spanY int) grid.Tile {
	return grid.Tile{
		ID:     id,
		Anchor: grid.Cell{Row: row, Col: col},
		Placed: true,
		Span:   grid.Span{X: spanX, Y: spanY},
	}
}

type recorder struct {
	commits int
	err     error
}

func (r *recorder) Commit(ctx context.Context, b *grid.Board) error {
	r.commits++
	return r.err
}

func TestControllerPreviewAndCommit(t *testing.T) {
	b := newBoard(t, 2, 2, placed("a", 0, 0, 1, 1), placed("b", 0, 1, 1, 1))
	rec := &recorder{}
	c := NewController(b, rec, relocate.Options{})

	if err := c.Begin("a"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if c.State() != Dragging {
		t.Fatalf("State() = %v, want dragging", c.State())
	}

	res, err := c.Tick(grid.Span{X: 2, Y: 1})
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if !res.Applied || res.State != Previewing {
		t.Fatalf("Tick() = %+v, want applied preview", res)
	}
	if tb, _ := b.Tile("b"); tb.Anchor != (grid.Cell{Row: 1, Col: 0}) {
		t.Errorf("b anchor = %v, want (1,0)", tb.Anchor)
	}

	committed, err := c.Release(context.Background())
	if err != nil || !committed {
		t.Fatalf("Release() = %v, %v, want true, nil", committed, err)
	}
	if rec.commits != 1 {
		t.Errorf("commits = %d, want 1", rec.commits)
	}
	if c.State() != Idle || c.TileID() != "" {
		t.Errorf("after Release: State() = %v, TileID() = %q", c.State(), c.TileID())
	}
}

func TestControllerRejectedKeepsBoard(t *testing.T) {
	b := newBoard(t, 1, 2, placed("a", 0, 0, 1, 1), placed("b", 0, 1, 1, 1))
	before := b.Tiles()
	rec := &recorder{}
	c := NewController(b, rec, relocate.Options{})

	if err := c.Begin("a"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	res, err := c.Tick(grid.Span{X: 2, Y: 1})
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if res.Applied || !res.Rejected || c.State() != Rejected {
		t.Fatalf("Tick() = %+v, state %v, want rejected", res, c.State())
	}
	if !reflect.DeepEqual(b.Tiles(), before) {
		t.Error("rejected tick changed the board")
	}

	committed, err := c.Release(context.Background())
	if err != nil || committed {
		t.Errorf("Release() = %v, %v, want false, nil", committed, err)
	}
	if rec.commits != 0 {
		t.Errorf("commits = %d, want 0", rec.commits)
	}
}

func TestControllerRejectAfterPreviewKeepsPreview(t *testing.T) {
	b := newBoard(t, 2, 2, placed("a", 0, 0, 1, 1), placed("b", 0, 1, 1, 1), placed("c", 1, 1, 1, 1))
	c := NewController(b, nil, relocate.Options{})

	if err := c.Begin("a"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if res, _ := c.Tick(grid.Span{X: 1, Y: 2}); !res.Applied {
		t.Fatalf("first Tick() = %+v, want applied", res)
	}
	preview := b.Tiles()

	res, err := c.Tick(grid.Span{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if !res.Rejected {
		t.Fatalf("second Tick() = %+v, want rejected", res)
	}
	if c.State() != Previewing {
		t.Errorf("State() = %v, want previewing", c.State())
	}
	if !reflect.DeepEqual(b.Tiles(), preview) {
		t.Error("rejected tick rolled back the preview")
	}
	if ta, _ := b.Tile("a"); ta.Span != (grid.Span{X: 1, Y: 2}) {
		t.Errorf("a span = %v, want 1x2", ta.Span)
	}
}

func TestControllerNoOpTick(t *testing.T) {
	b := newBoard(t, 2, 2, placed("a", 0, 0, 1, 1))
	c := NewController(b, nil, relocate.Options{})
	if err := c.Begin("a"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	res, err := c.Tick(grid.Unit)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if res.Applied || res.Rejected || c.State() != Dragging {
		t.Errorf("Tick(current span) = %+v, state %v, want no-op", res, c.State())
	}

	// Clamped to the grid, a 3x1 request on the right edge is still 1x1.
	b2 := newBoard(t, 2, 2, placed("z", 0, 1, 1, 1))
	c2 := NewController(b2, nil, relocate.Options{})
	_ = c2.Begin("z")
	if res, _ := c2.Tick(grid.Span{X: 3, Y: 1}); res.Applied {
		t.Error("clamped tick equal to current span was applied")
	}
}

func TestControllerErrors(t *testing.T) {
	b := newBoard(t, 2, 2, placed("a", 0, 0, 1, 1), placed("h", 5, 0, 1, 1))
	c := NewController(b, nil, relocate.Options{})

	tests := []struct {
		name string
		run  func() error
		code errors.Code
	}{
		{"tick while idle", func() error { _, err := c.Tick(grid.Unit); return err }, errors.ErrCodeTransactionState},
		{"release while idle", func() error { _, err := c.Release(context.Background()); return err }, errors.ErrCodeTransactionState},
		{"unknown tile", func() error { return c.Begin("x") }, errors.ErrCodeTileNotFound},
		{"hidden tile", func() error { return c.Begin("h") }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	if err := c.Begin("a"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := c.Begin("a"); !errors.Is(err, errors.ErrCodeTransactionState) {
		t.Errorf("second Begin() = %v, want TRANSACTION_STATE", err)
	}
	if _, err := c.Tick(grid.Span{X: 0, Y: 1}); !errors.Is(err, errors.ErrCodeInvalidSpan) {
		t.Errorf("Tick(0x1) = %v, want INVALID_SPAN", err)
	}
}

func TestControllerCommitError(t *testing.T) {
	b := newBoard(t, 2, 2, placed("a", 0, 0, 1, 1))
	c := NewController(b, CommitterFunc(func(ctx context.Context, b *grid.Board) error {
		return fmt.Errorf("disk full")
	}), relocate.Options{})

	_ = c.Begin("a")
	if res, _ := c.Tick(grid.Span{X: 2, Y: 2}); !res.Applied {
		t.Fatalf("Tick() = %+v, want applied", res)
	}
	committed, err := c.Release(context.Background())
	if err == nil || !committed {
		t.Errorf("Release() = %v, %v, want true and an error", committed, err)
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want idle", c.State())
	}
	if plan, ok := c.LastPlan(); !ok || plan.Span != (grid.Span{X: 2, Y: 2}) {
		t.Errorf("LastPlan() = %+v, %v", plan, ok)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "idle"},
		{Dragging, "dragging"},
		{Previewing, "previewing"},
		{Rejected, "rejected"},
		{Committed, "committed"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestControllerCustomPlanner(t *testing.T) {
	b := newBoard(t, 2, 2, placed("a", 0, 0, 1, 1), placed("b", 0, 1, 1, 1))
	c := NewController(b, nil, relocate.Options{})

	calls := 0
	c.SetPlanner(func(req relocate.Request, tiles []grid.Tile, rows, cols int) (relocate.Plan, bool) {
		calls++
		return relocate.Plan{}, false
	})
	_ = c.Begin("a")
	res, err := c.Tick(grid.Span{X: 2, Y: 1})
	if err != nil || !res.Rejected {
		t.Fatalf("Tick() = %+v, %v, want rejected", res, err)
	}
	if calls != 1 {
		t.Errorf("planner calls = %d, want 1", calls)
	}

	c.SetPlanner(nil)
	if res, _ := c.Tick(grid.Span{X: 2, Y: 1}); !res.Applied {
		t.Errorf("Tick() with default planner = %+v, want applied", res)
	}
	if committed, _ := c.Release(context.Background()); !committed {
		t.Error("Release() = false, want true")
	}
}
