// Package slot finds free positions for a footprint on a dashboard grid.
//
// Positions are scanned in reading order (row-major, top-left first), so
// the first result is always the upper-most, left-most free anchor. A
// position qualifies only when the whole footprint lies inside the grid
// and every covered cell is free: neither occupied by a configured tile
// nor forbidden.
//
// Running out of space is a normal outcome, reported as ok == false, not
// as an error.
package slot

import (
	"iter"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layout"
)

// FindFirst returns the first anchor in reading order at which a footprint
// of span s fits into occ.
func FindFirst(occ *grid.Occupancy, s grid.Span) (grid.Cell, bool) {
	for c := range Candidates(occ, s) {
		return c, true
	}
	return grid.Cell{}, false
}

// Candidates yields every anchor in reading order at which a footprint of
// span s fits into occ. Invalid spans yield nothing.
func Candidates(occ *grid.Occupancy, s grid.Span) iter.Seq[grid.Cell] {
	return func(yield func(grid.Cell) bool) {
		if !s.Valid() || occ.FreeCount() < s.Area() {
			return
		}
		g := occ.Grid()
		for row := 0; row+s.Y <= g.Rows; row++ {
			for col := 0; col+s.X <= g.Cols; col++ {
				c := grid.Cell{Row: row, Col: col}
				if !occ.IsFree(c) || !occ.Fits(grid.RectAt(c, s)) {
					continue
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}

// FindFirstEmpty lays out tiles on a rows x cols grid and returns the
// first free anchor for span s.
func FindFirstEmpty(tiles []grid.Tile, rows, cols int, s grid.Span) (grid.Cell, bool) {
	res := layout.Calculate(tiles, rows, cols)
	return FindFirst(res.Occupancy(), s)
}

// Count returns the number of anchors at which span s fits into occ.
func Count(occ *grid.Occupancy, s grid.Span) int {
	n := 0
	for range Candidates(occ, s) {
		n++
	}
	return n
}
