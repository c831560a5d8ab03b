package grid

import "fmt"

// Cell is a single grid coordinate. Row 0 is the top row, Col 0 the left
// column.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String returns the cell as "(row,col)".
func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Before reports whether c comes before o in reading order (row-major).
func (c Cell) Before(o Cell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Span is a footprint size in cells. X is the width (columns), Y the
// height (rows).
type Span struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Unit is the one-cell span used by placeholders.
var Unit = Span{X: 1, Y: 1}

// Valid reports whether both dimensions are at least one cell.
func (s Span) Valid() bool { return s.X >= 1 && s.Y >= 1 }

// Area returns the number of cells covered by the span.
func (s Span) Area() int { return s.X * s.Y }

// String returns the span as "WxH".
func (s Span) String() string { return fmt.Sprintf("%dx%d", s.X, s.Y) }

// Rect is a footprint: an anchor cell plus a span.
type Rect struct {
	Row, Col int
	Span     Span
}

// RectAt builds the footprint anchored at c.
func RectAt(c Cell, s Span) Rect { return Rect{Row: c.Row, Col: c.Col, Span: s} }

// Anchor returns the top-left cell of the rectangle.
func (r Rect) Anchor() Cell { return Cell{Row: r.Row, Col: r.Col} }

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Row + r.Span.Y }

// Right returns the first column right of the rectangle.
func (r Rect) Right() int { return r.Col + r.Span.X }

// Contains reports whether c lies inside the rectangle.
func (r Rect) Contains(c Cell) bool {
	return c.Row >= r.Row && c.Row < r.Bottom() && c.Col >= r.Col && c.Col < r.Right()
}

// Intersects reports whether r and o share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	if !r.Span.Valid() || !o.Span.Valid() {
		return false
	}
	return r.Row < o.Bottom() && o.Row < r.Bottom() && r.Col < o.Right() && o.Col < r.Right()
}

// Cells returns every cell of the rectangle in reading order.
func (r Rect) Cells() []Cell {
	if !r.Span.Valid() {
		return nil
	}
	out := make([]Cell, 0, r.Span.Area())
	for row := r.Row; row < r.Bottom(); row++ {
		for col := r.Col; col < r.Right(); col++ {
			out = append(out, Cell{Row: row, Col: col})
		}
	}
	return out
}

// String returns the rectangle as "(row,col)+WxH".
func (r Rect) String() string { return r.Anchor().String() + "+" + r.Span.String() }

// Grid is the dashboard size in cells.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Valid reports whether the grid has at least one row and one column.
func (g Grid) Valid() bool { return g.Rows >= 1 && g.Cols >= 1 }

// Area returns the number of cells in the grid.
func (g Grid) Area() int {
	if !g.Valid() {
		return 0
	}
	return g.Rows * g.Cols
}

// Contains reports whether c lies inside the grid.
func (g Grid) Contains(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// Fits reports whether the whole footprint lies inside the grid.
func (g Grid) Fits(r Rect) bool {
	return r.Span.Valid() && g.Contains(r.Anchor()) && r.Bottom() <= g.Rows && r.Right() <= g.Cols
}

// Clip returns the in-bounds part of r. The boolean is false when r and
// the grid do not overlap at all.
func (g Grid) Clip(r Rect) (Rect, bool) {
	top, left := max(r.Row, 0), max(r.Col, 0)
	bottom, right := min(r.Bottom(), g.Rows), min(r.Right(), g.Cols)
	if top >= bottom || left >= right {
		return Rect{}, false
	}
	return Rect{Row: top, Col: left, Span: Span{X: right - left, Y: bottom - top}}, true
}

// ClampSpan shrinks s so that a footprint anchored at c stays inside the
// grid. Each dimension is kept at one cell or more.
func (g Grid) ClampSpan(c Cell, s Span) Span {
	return Span{
		X: max(1, min(s.X, g.Cols-c.Col)),
		Y: max(1, min(s.Y, g.Rows-c.Row)),
	}
}

// String returns the grid as "RxC".
func (g Grid) String() string { return fmt.Sprintf("%dx%d", g.Rows, g.Cols) }
