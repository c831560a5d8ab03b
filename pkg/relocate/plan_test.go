package relocate

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layout"
	"github.com/matzehuels/tilegrid/pkg/slot"
)

func placed(id string, row, col, spanX, spanY int) grid.Tile {
	return grid.Tile{
		ID:     id,
		Anchor: grid.Cell{Row: row, Col: col},
		Placed: true,
		Span:   grid.Span{X: spanX, Y: spanY},
	}
}

var printerCaps = grid.Caps{MaxSpan: grid.Span{X: 4, Y: 3}, MayGrowGrid: true, MaxGrowRows: 4}

func TestPlanResize(t *testing.T) {
	tests := []struct {
		name       string
		tiles      []grid.Tile
		rows, cols int
		req        Request
		wantOK     bool
		wantSpan   grid.Span
		wantRows   int
		wantReps   []grid.Reposition
	}{
		{
			name:     "grow downward into free cell",
			tiles:    []grid.Tile{placed("a", 0, 0, 1, 1), placed("b", 0, 1, 1, 1)},
			rows:     4,
			cols:     4,
			req:      Request{TileID: "a", Span: grid.Span{X: 1, Y: 2}},
			wantOK:   true,
			wantSpan: grid.Span{X: 1, Y: 2},
		},
		{
			name:   "no free cell for displaced tile",
			tiles:  []grid.Tile{placed("a", 0, 0, 1, 1), placed("b", 0, 1, 1, 1)},
			rows:   1,
			cols:   2,
			req:    Request{TileID: "a", Span: grid.Span{X: 2, Y: 1}},
			wantOK: false,
		},
		{
			name:     "displaced tile moves to first free slot",
			tiles:    []grid.Tile{placed("a", 0, 0, 1, 1), placed("b", 0, 1, 1, 1)},
			rows:     2,
			cols:     2,
			req:      Request{TileID: "a", Span: grid.Span{X: 2, Y: 1}},
			wantOK:   true,
			wantSpan: grid.Span{X: 2, Y: 1},
			wantReps: []grid.Reposition{{TileID: "b", Row: 1, Col: 0}},
		},
		{
			name: "displaced tiles see earlier relocations",
			tiles: []grid.Tile{
				placed("a", 0, 0, 1, 1),
				placed("b", 0, 1, 1, 1),
				placed("c", 1, 0, 1, 1),
			},
			rows:     2,
			cols:     3,
			req:      Request{TileID: "a", Span: grid.Span{X: 2, Y: 2}},
			wantOK:   true,
			wantSpan: grid.Span{X: 2, Y: 2},
			wantReps: []grid.Reposition{{TileID: "b", Row: 0, Col: 2}, {TileID: "c", Row: 1, Col: 2}},
		},
		{
			name:     "span clamped to grid",
			tiles:    []grid.Tile{placed("a", 0, 3, 1, 1)},
			rows:     4,
			cols:     4,
			req:      Request{TileID: "a", Span: grid.Span{X: 3, Y: 1}},
			wantOK:   true,
			wantSpan: grid.Span{X: 1, Y: 1},
		},
		{
			name: "span clamped to caps",
			tiles: []grid.Tile{{
				ID: "a", Placed: true, Span: grid.Unit,
				Caps: grid.Caps{MaxSpan: grid.Span{X: 2, Y: 2}},
			}},
			rows:     4,
			cols:     4,
			req:      Request{TileID: "a", Span: grid.Span{X: 4, Y: 4}},
			wantOK:   true,
			wantSpan: grid.Span{X: 2, Y: 2},
		},
		{
			name:     "shrink",
			tiles:    []grid.Tile{placed("a", 0, 0, 3, 2)},
			rows:     4,
			cols:     4,
			req:      Request{TileID: "a", Span: grid.Span{X: 1, Y: 1}},
			wantOK:   true,
			wantSpan: grid.Span{X: 1, Y: 1},
		},
		{
			name:   "footprint over forbidden cell",
			tiles:  []grid.Tile{placed("a", 0, 2, 1, 1), placed("v", 1, 3, 1, 2)},
			rows:   2,
			cols:   4,
			req:    Request{TileID: "a", Span: grid.Span{X: 2, Y: 2}},
			wantOK: false,
		},
		{
			name:   "unknown tile",
			tiles:  []grid.Tile{placed("a", 0, 0, 1, 1)},
			rows:   2,
			cols:   2,
			req:    Request{TileID: "x", Span: grid.Unit},
			wantOK: false,
		},
		{
			name:   "hidden tile",
			tiles:  []grid.Tile{placed("a", 3, 0, 1, 1)},
			rows:   2,
			cols:   2,
			req:    Request{TileID: "a", Span: grid.Unit},
			wantOK: false,
		},
		{
			name:   "invalid span",
			tiles:  []grid.Tile{placed("a", 0, 0, 1, 1)},
			rows:   2,
			cols:   2,
			req:    Request{TileID: "a", Span: grid.Span{X: 0, Y: 2}},
			wantOK: false,
		},
		{
			name: "printer grows the grid",
			tiles: []grid.Tile{{
				ID: "p", Kind: grid.KindPrinter, Placed: true, Span: grid.Unit, Caps: printerCaps,
			}},
			rows:     2,
			cols:     4,
			req:      Request{TileID: "p", Span: grid.Span{X: 1, Y: 3}},
			wantOK:   true,
			wantSpan: grid.Span{X: 1, Y: 3},
			wantRows: 3,
		},
		{
			name: "request taller than max span does not grow",
			tiles: []grid.Tile{{
				ID: "p", Kind: grid.KindPrinter, Placed: true, Span: grid.Unit, Caps: printerCaps,
			}},
			rows:     2,
			cols:     4,
			req:      Request{TileID: "p", Span: grid.Span{X: 1, Y: 4}},
			wantOK:   true,
			wantSpan: grid.Span{X: 1, Y: 2},
		},
		{
			name: "growth blocked by revealed tile falls back to current rows",
			tiles: []grid.Tile{
				{ID: "p", Kind: grid.KindPrinter, Placed: true, Span: grid.Unit, Caps: printerCaps},
				placed("h", 2, 0, 1, 1),
			},
			rows:     2,
			cols:     4,
			req:      Request{TileID: "p", Span: grid.Span{X: 1, Y: 3}},
			wantOK:   true,
			wantSpan: grid.Span{X: 1, Y: 2},
		},
		{
			name: "growth beyond limit clamps instead",
			tiles: []grid.Tile{
				{ID: "p", Kind: grid.KindPrinter, Anchor: grid.Cell{Row: 2, Col: 0}, Placed: true, Span: grid.Unit, Caps: printerCaps},
			},
			rows:     4,
			cols:     4,
			req:      Request{TileID: "p", Span: grid.Span{X: 1, Y: 3}},
			wantOK:   true,
			wantSpan: grid.Span{X: 1, Y: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := cloneTiles(tt.tiles)
			plan, ok := PlanResize(tt.req, tt.tiles, tt.rows, tt.cols, Options{})
			if !reflect.DeepEqual(tt.tiles, before) {
				t.Fatal("PlanResize() modified its input")
			}
			if ok != tt.wantOK {
				t.Fatalf("PlanResize() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if plan.Span != tt.wantSpan {
				t.Errorf("Span = %v, want %v", plan.Span, tt.wantSpan)
			}
			if plan.Rows != tt.wantRows {
				t.Errorf("Rows = %d, want %d", plan.Rows, tt.wantRows)
			}
			if !reflect.DeepEqual(plan.Repositions, tt.wantReps) {
				t.Errorf("Repositions = %v, want %v", plan.Repositions, tt.wantReps)
			}
			if plan.Strategy != StrategyGreedy {
				t.Errorf("Strategy = %q, want %q", plan.Strategy, StrategyGreedy)
			}
		})
	}
}

// orderSensitive is a board where greedy relocation fails but another
// assignment exists: greedy puts "d1" at (0,2), which blocks the tall
// "d2".
func orderSensitive() []grid.Tile {
	return []grid.Tile{
		placed("r", 0, 0, 1, 1),
		placed("d1", 1, 0, 1, 1),
		placed("d2", 0, 1, 1, 2),
		placed("s", 1, 3, 1, 1),
	}
}

func TestPlanResizeStrategies(t *testing.T) {
	req := Request{TileID: "r", Span: grid.Span{X: 2, Y: 2}}
	wantReps := []grid.Reposition{{TileID: "d1", Row: 0, Col: 3}, {TileID: "d2", Row: 0, Col: 2}}

	tests := []struct {
		name          string
		rel           Relocator
		wantOK        bool
		wantExhausted bool
		wantReps      []grid.Reposition
	}{
		{name: "greedy", rel: Greedy{}, wantOK: false},
		{name: "exhaustive", rel: Exhaustive{}, wantOK: true, wantReps: wantReps},
		{name: "auto", rel: Auto{}, wantOK: true, wantReps: wantReps},
		{name: "auto above threshold", rel: Auto{MaxCells: 4}, wantOK: false},
		{name: "exhaustive out of budget", rel: Exhaustive{Budget: 1}, wantOK: false, wantExhausted: true},
		{name: "auto out of budget, greedy fails", rel: Auto{Budget: 1}, wantOK: false, wantExhausted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := PlanResize(req, orderSensitive(), 2, 4, Options{Relocator: tt.rel})
			if ok != tt.wantOK {
				t.Fatalf("PlanResize() ok = %v, want %v", ok, tt.wantOK)
			}
			if plan.Exhausted != tt.wantExhausted {
				t.Errorf("Exhausted = %v, want %v", plan.Exhausted, tt.wantExhausted)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(plan.Repositions, tt.wantReps) {
				t.Errorf("Repositions = %v, want %v", plan.Repositions, tt.wantReps)
			}
			if !reflect.DeepEqual(plan.Displaced, []string{"d1", "d2"}) {
				t.Errorf("Displaced = %v, want [d1 d2]", plan.Displaced)
			}
		})
	}
}

func TestExhaustiveMatchesGreedyWhenGreedySucceeds(t *testing.T) {
	tiles := []grid.Tile{
		placed("a", 0, 0, 1, 1),
		placed("b", 0, 1, 1, 1),
		placed("c", 1, 0, 1, 1),
		placed("d", 1, 1, 1, 1),
	}
	req := Request{TileID: "a", Span: grid.Span{X: 2, Y: 2}}

	greedy, ok := PlanResize(req, tiles, 3, 3, Options{Relocator: Greedy{}})
	if !ok {
		t.Fatal("greedy plan failed")
	}
	exhaustive, ok := PlanResize(req, tiles, 3, 3, Options{Relocator: Exhaustive{}})
	if !ok {
		t.Fatal("exhaustive plan failed")
	}
	if !reflect.DeepEqual(greedy.Repositions, exhaustive.Repositions) {
		t.Errorf("exhaustive = %v, greedy = %v", exhaustive.Repositions, greedy.Repositions)
	}
}

func TestRelocatorKey(t *testing.T) {
	tests := []struct {
		rel  Relocator
		want string
	}{
		{Greedy{}, "greedy"},
		{Exhaustive{}, "exhaustive:budget=200000"},
		{Exhaustive{Budget: 1}, "exhaustive:budget=1"},
		{Auto{}, "auto:cells=48:budget=200000"},
		{Auto{MaxCells: 16, Budget: 500}, "auto:cells=16:budget=500"},
	}
	for _, tt := range tests {
		if got := tt.rel.Key(); got != tt.want {
			t.Errorf("%T.Key() = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", StrategyGreedy, false},
		{"greedy", StrategyGreedy, false},
		{"Exhaustive", StrategyExhaustive, false},
		{" auto ", StrategyAuto, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		rel, err := ParseStrategy(tt.name, 0, 0)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && rel.Name() != tt.want {
			t.Errorf("ParseStrategy(%q).Name() = %q, want %q", tt.name, rel.Name(), tt.want)
		}
	}
}

// TestPlanResizeRandomSequences applies random resize sequences to a board
// and checks that every committed plan keeps the layout valid and that the
// resized tile ends up at the planned span.
func TestPlanResizeRandomSequences(t *testing.T) {
	strategies := []Relocator{Greedy{}, Exhaustive{}, Auto{}}
	for _, rel := range strategies {
		t.Run(rel.Name(), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, 11))
			for round := 0; round < 20; round++ {
				b, err := grid.NewBoard(grid.Grid{Rows: 4, Cols: 4})
				if err != nil {
					t.Fatalf("NewBoard() error = %v", err)
				}
				for i := 0; i < 6; i++ {
					span := grid.Span{X: 1 + rng.IntN(2), Y: 1 + rng.IntN(2)}
					c, ok := slot.FindFirstEmpty(b.Tiles(), 4, 4, span)
					if !ok {
						continue
					}
					id := string(rune('a' + i))
					if err := b.Put(grid.Tile{ID: id, Anchor: c, Placed: true, Span: span}); err != nil {
						t.Fatalf("Put() error = %v", err)
					}
				}

				for step := 0; step < 10 && b.Len() > 0; step++ {
					tiles := b.Tiles()
					target := tiles[rng.IntN(len(tiles))]
					req := Request{TileID: target.ID, Span: grid.Span{X: 1 + rng.IntN(4), Y: 1 + rng.IntN(4)}}

					plan, ok := PlanResize(req, tiles, b.Grid().Rows, b.Grid().Cols, Options{Relocator: rel})
					if !ok {
						if !reflect.DeepEqual(b.Tiles(), tiles) {
							t.Fatal("failed plan changed the board")
						}
						continue
					}
					b.Apply(plan.Update())

					res := layout.Calculate(b.Tiles(), b.Grid().Rows, b.Grid().Cols)
					if err := res.Validate(); err != nil {
						t.Fatalf("round %d step %d: invalid layout after %+v: %v", round, step, plan, err)
					}
					p, ok := res.Placement(target.ID)
					if !ok {
						t.Fatalf("round %d step %d: resized tile %q not placed", round, step, target.ID)
					}
					if got := (grid.Span{X: p.SpanX, Y: p.SpanY}); got != plan.Span {
						t.Errorf("resized tile span = %v, want %v", got, plan.Span)
					}
					for _, id := range plan.Displaced {
						if _, ok := res.Placement(id); !ok {
							t.Errorf("displaced tile %q not placed", id)
						}
					}
				}
			}
		})
	}
}

func cloneTiles(tiles []grid.Tile) []grid.Tile {
	out := make([]grid.Tile, len(tiles))
	for i, t := range tiles {
		out[i] = t.Clone()
	}
	return out
}
