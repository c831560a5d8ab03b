package layout

import (
	"fmt"

	"github.com/matzehuels/tilegrid/pkg/grid"
)

// Placement is the authoritative, render-ready position of one visible
// tile, or of a one-cell placeholder when Placeholder is set.
type Placement struct {
	TileID      string    `json:"tile_id,omitempty"`
	Kind        grid.Kind `json:"kind,omitempty"`
	Row         int       `json:"row"`
	Col         int       `json:"col"`
	SpanX       int       `json:"span_x"`
	SpanY       int       `json:"span_y"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// Rect returns the footprint of the placement.
func (p Placement) Rect() grid.Rect {
	return grid.Rect{Row: p.Row, Col: p.Col, Span: grid.Span{X: p.SpanX, Y: p.SpanY}}
}

// Anchor returns the top-left cell of the placement.
func (p Placement) Anchor() grid.Cell { return grid.Cell{Row: p.Row, Col: p.Col} }

// Slot returns the reading-order index of the anchor on a grid with cols
// columns.
func (p Placement) Slot(cols int) int { return p.Row*cols + p.Col }

// Result is the output of [Calculate].
type Result struct {
	Grid grid.Grid `json:"grid"`

	// Placements lists configured tiles in input order, followed by
	// placeholders in reading order.
	Placements []Placement `json:"placements"`

	// Forbidden lists the in-bounds cells of virtual tiles in reading
	// order. No placement and no placeholder ever covers them.
	Forbidden []grid.Cell `json:"forbidden,omitempty"`

	// Virtual, Hidden and Conflicts list tile ids, in input order, of tiles
	// that produced no placement.
	Virtual   []string `json:"virtual,omitempty"`
	Hidden    []string `json:"hidden,omitempty"`
	Conflicts []string `json:"conflicts,omitempty"`

	occ *grid.Occupancy
}

// Calculate lays out tiles on a rows x cols grid. Tiles are processed in
// the given order; see the package documentation for the rules.
func Calculate(tiles []grid.Tile, rows, cols int) Result {
	g := grid.Grid{Rows: rows, Cols: cols}
	res := Result{Grid: g}
	if !g.Valid() {
		res.occ = grid.NewOccupancy(grid.Grid{})
		for _, t := range tiles {
			res.Hidden = append(res.Hidden, t.ID)
		}
		return res
	}

	status, occ := grid.ClaimCells(g, tiles)
	res.occ = occ
	res.Placements = make([]Placement, 0, len(tiles)+occ.FreeCount())

	for i, t := range tiles {
		switch status[i] {
		case grid.StatusPlaced:
			res.Placements = append(res.Placements, Placement{
				TileID: t.ID,
				Kind:   t.Kind,
				Row:    t.Anchor.Row,
				Col:    t.Anchor.Col,
				SpanX:  t.Span.X,
				SpanY:  t.Span.Y,
			})
		case grid.StatusVirtual:
			res.Virtual = append(res.Virtual, t.ID)
		case grid.StatusConflict:
			res.Conflicts = append(res.Conflicts, t.ID)
		default:
			res.Hidden = append(res.Hidden, t.ID)
		}
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := grid.Cell{Row: row, Col: col}
			switch occ.State(c) {
			case grid.Free:
				res.Placements = append(res.Placements, Placement{
					Row: row, Col: col, SpanX: 1, SpanY: 1, Placeholder: true,
				})
			case grid.Forbidden:
				res.Forbidden = append(res.Forbidden, c)
			}
		}
	}
	return res
}

// Occupancy returns a fresh working view of the result: configured
// placements occupied, forbidden cells forbidden, placeholders free.
func (r Result) Occupancy() *grid.Occupancy {
	if r.occ != nil {
		return r.occ.Clone()
	}
	occ := grid.NewOccupancy(r.Grid)
	for _, p := range r.Placements {
		if !p.Placeholder {
			occ.Occupy(p.Rect())
		}
	}
	for _, c := range r.Forbidden {
		occ.Forbid(grid.RectAt(c, grid.Unit))
	}
	return occ
}

// Configured returns the placements of configured tiles, in input order.
func (r Result) Configured() []Placement {
	var out []Placement
	for _, p := range r.Placements {
		if !p.Placeholder {
			out = append(out, p)
		}
	}
	return out
}

// Placeholders returns the placeholder placements in reading order.
func (r Result) Placeholders() []Placement {
	var out []Placement
	for _, p := range r.Placements {
		if p.Placeholder {
			out = append(out, p)
		}
	}
	return out
}

// Placement returns the placement of the tile with the given id.
func (r Result) Placement(id string) (Placement, bool) {
	for _, p := range r.Placements {
		if !p.Placeholder && p.TileID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// IsForbidden reports whether c is a forbidden cell.
func (r Result) IsForbidden(c grid.Cell) bool {
	for _, f := range r.Forbidden {
		if f == c {
			return true
		}
	}
	return false
}

// At returns the placement covering c, if any.
func (r Result) At(c grid.Cell) (Placement, bool) {
	for _, p := range r.Placements {
		if p.Rect().Contains(c) {
			return p, true
		}
	}
	return Placement{}, false
}

// Validate checks the layout invariants: every placement lies inside the
// grid with a valid span, placeholders are single cells, no two placements
// share a cell, no placement covers a forbidden cell, and every in-bounds
// cell is accounted for exactly once.
func (r Result) Validate() error {
	g := r.Grid
	owner := make(map[grid.Cell]int, g.Area())
	for _, c := range r.Forbidden {
		if !g.Contains(c) {
			return fmt.Errorf("forbidden cell %s outside grid %s", c, g)
		}
		if _, dup := owner[c]; dup {
			return fmt.Errorf("forbidden cell %s listed twice", c)
		}
		owner[c] = -1
	}
	for i, p := range r.Placements {
		rect := p.Rect()
		if !g.Fits(rect) {
			return fmt.Errorf("placement %d (%s) at %s outside grid %s", i, label(p), rect, g)
		}
		if p.Placeholder && rect.Span != grid.Unit {
			return fmt.Errorf("placeholder at %s spans %s", rect.Anchor(), rect.Span)
		}
		for _, c := range rect.Cells() {
			prev, taken := owner[c]
			switch {
			case taken && prev < 0:
				return fmt.Errorf("placement %d (%s) covers forbidden cell %s", i, label(p), c)
			case taken:
				return fmt.Errorf("placements %d (%s) and %d (%s) overlap at %s",
					prev, label(r.Placements[prev]), i, label(p), c)
			}
			owner[c] = i
		}
	}
	if len(owner) != g.Area() {
		return fmt.Errorf("layout covers %d of %d cells", len(owner), g.Area())
	}
	return nil
}

func label(p Placement) string {
	if p.Placeholder {
		return "placeholder"
	}
	return p.TileID
}
