package relocate

import (
	"github.com/matzehuels/tilegrid/pkg/grid"
)

// Request asks for tile TileID to take span Span. The anchor stays fixed.
type Request struct {
	TileID string    `json:"tile_id"`
	Span   grid.Span `json:"span"`
}

// Plan is a feasible resize.
type Plan struct {
	TileID string    `json:"tile_id"`
	Anchor grid.Cell `json:"anchor"`
	// Span is the clamped span the tile will take.
	Span grid.Span `json:"span"`
	// Rows is the grown row count, or zero when the grid keeps its size.
	Rows int `json:"rows,omitempty"`
	// Displaced lists the ids of moved tiles in configuration order.
	Displaced   []string          `json:"displaced,omitempty"`
	Repositions []grid.Reposition `json:"repositions,omitempty"`
	Strategy    string            `json:"strategy"`
	// Exhausted is set on a failed plan when the relocator gave up before
	// it could tell whether a configuration exists. Such a failure depends
	// on the search budget, not only on the board.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Grew reports whether the plan increases the grid's row count.
func (p Plan) Grew() bool { return p.Rows > 0 }

// Footprint returns the resized tile's new footprint.
func (p Plan) Footprint() grid.Rect { return grid.RectAt(p.Anchor, p.Span) }

// Update converts the plan into the atomic board update that commits it.
func (p Plan) Update() grid.Update {
	return grid.Update{
		TileID:      p.TileID,
		Span:        p.Span,
		Rows:        p.Rows,
		Repositions: append([]grid.Reposition(nil), p.Repositions...),
	}
}

// Options configure PlanResize.
type Options struct {
	// Relocator finds new anchors for displaced tiles. Nil means Greedy.
	Relocator Relocator
}

func (o Options) relocator() Relocator {
	if o.Relocator == nil {
		return Greedy{}
	}
	return o.Relocator
}

// PlanResize plans req against tiles on a rows x cols grid. The boolean is
// false when the tile is unknown or not fully visible, when the span is
// invalid, or when no valid configuration was found.
func PlanResize(req Request, tiles []grid.Tile, rows, cols int, opts Options) (Plan, bool) {
	g := grid.Grid{Rows: rows, Cols: cols}
	idx := indexOf(tiles, req.TileID)
	if idx < 0 || !g.Valid() || !req.Span.Valid() {
		return Plan{}, false
	}
	t := tiles[idx]
	if t.VisibilityIn(g) != grid.Visible {
		return Plan{}, false
	}
	span := t.Caps.ClampSpan(req.Span)
	rel := opts.relocator()

	// Growth is only considered for requests within the kind's max span;
	// a taller request is clamped and planned on the current rows.
	grow := t.Caps.MayGrowGrid && (t.Caps.MaxSpan.Y <= 0 || req.Span.Y <= t.Caps.MaxSpan.Y)
	if bottom := t.Anchor.Row + span.Y; grow && bottom > rows && bottom <= t.Caps.MaxGrowRows {
		grown := grid.Grid{Rows: bottom, Cols: cols}
		fp := grid.RectAt(t.Anchor, grown.ClampSpan(t.Anchor, span))
		_, occ := grid.ClaimCells(grown, without(tiles, idx, nil))
		if occ.Fits(fp) {
			return Plan{
				TileID:   t.ID,
				Anchor:   t.Anchor,
				Span:     fp.Span,
				Rows:     bottom,
				Strategy: rel.Name(),
			}, true
		}
	}

	fp := grid.RectAt(t.Anchor, g.ClampSpan(t.Anchor, span))
	displaced := displacedBy(g, tiles, idx, fp)

	skip := make(map[int]bool, len(displaced))
	for _, d := range displaced {
		skip[d] = true
	}
	_, occ := grid.ClaimCells(g, without(tiles, idx, skip))
	if !occ.Fits(fp) {
		return Plan{}, false
	}
	occ.Occupy(fp)

	moving := make([]grid.Tile, len(displaced))
	ids := make([]string, len(displaced))
	for i, d := range displaced {
		moving[i] = tiles[d]
		ids[i] = tiles[d].ID
	}
	var reps []grid.Reposition
	ok := false
	if b, isBounded := rel.(bounded); isBounded {
		var res outcome
		reps, res = b.search(occ, moving)
		if res == exhausted {
			return Plan{TileID: t.ID, Anchor: t.Anchor, Span: fp.Span, Strategy: rel.Name(), Exhausted: true}, false
		}
		ok = res == found
	} else {
		reps, ok = rel.Relocate(occ, moving)
	}
	if !ok {
		return Plan{}, false
	}

	plan := Plan{
		TileID:    t.ID,
		Anchor:    t.Anchor,
		Span:      fp.Span,
		Strategy:  rel.Name(),
		Displaced: ids,
	}
	if len(reps) > 0 {
		plan.Repositions = reps
	}
	if len(ids) == 0 {
		plan.Displaced = nil
	}
	return plan, true
}

// displacedBy returns the indexes of the tiles, other than tiles[self],
// that own cells inside fp on g.
func displacedBy(g grid.Grid, tiles []grid.Tile, self int, fp grid.Rect) []int {
	status, _ := grid.ClaimCells(g, tiles)
	var out []int
	for i, t := range tiles {
		if i == self || status[i] != grid.StatusPlaced {
			continue
		}
		if t.Footprint().Intersects(fp) {
			out = append(out, i)
		}
	}
	return out
}

func without(tiles []grid.Tile, self int, skip map[int]bool) []grid.Tile {
	out := make([]grid.Tile, 0, len(tiles))
	for i, t := range tiles {
		if i != self && !skip[i] {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(tiles []grid.Tile, id string) int {
	for i, t := range tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}
