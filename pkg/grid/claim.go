package grid

// Status is the outcome of claiming cells for one tile.
type Status int

const (
	// StatusHidden tiles are unplaced or anchored outside the grid.
	StatusHidden Status = iota
	// StatusPlaced tiles own every cell of their footprint.
	StatusPlaced
	// StatusVirtual tiles cross the grid edge; their unclaimed in-bounds
	// cells are forbidden.
	StatusVirtual
	// StatusConflict tiles fit the grid but collide with a cell claimed
	// by an earlier tile. Only corrupt configurations produce them.
	StatusConflict
)

// String returns a lowercase name for s.
func (s Status) String() string {
	switch s {
	case StatusPlaced:
		return "placed"
	case StatusVirtual:
		return "virtual"
	case StatusConflict:
		return "conflict"
	default:
		return "hidden"
	}
}

// ClaimCells walks tiles in order and lets each one claim its cells on g.
// The first claim on a cell wins, which keeps the result non-overlapping
// whatever the input. The returned statuses are parallel to tiles; the
// occupancy holds placed footprints as Occupied and the in-bounds cells of
// virtual tiles as Forbidden.
func ClaimCells(g Grid, tiles []Tile) ([]Status, *Occupancy) {
	occ := NewOccupancy(g)
	status := make([]Status, len(tiles))
	for i, t := range tiles {
		switch t.VisibilityIn(g) {
		case Visible:
			if !occ.Fits(t.Footprint()) {
				status[i] = StatusConflict
				continue
			}
			occ.Occupy(t.Footprint())
			status[i] = StatusPlaced
		case Partial:
			clip, _ := g.Clip(t.Footprint())
			for _, c := range clip.Cells() {
				if occ.IsFree(c) {
					occ.Forbid(RectAt(c, Unit))
				}
			}
			status[i] = StatusVirtual
		default:
			status[i] = StatusHidden
		}
	}
	return status, occ
}
