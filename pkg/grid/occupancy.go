package grid

// CellState is the state of one cell in an [Occupancy].
type CellState uint8

const (
	Free CellState = iota
	Occupied
	Forbidden
)

// Occupancy tracks which cells of a grid are free. The zero value is an
// empty 0x0 grid; use NewOccupancy.
type Occupancy struct {
	grid  Grid
	cells []CellState
	free  int
}

// NewOccupancy returns an occupancy with every cell of g free.
func NewOccupancy(g Grid) *Occupancy {
	n := g.Area()
	return &Occupancy{grid: g, cells: make([]CellState, n), free: n}
}

// Grid returns the grid the occupancy covers.
func (o *Occupancy) Grid() Grid { return o.grid }

// FreeCount returns the number of free cells.
func (o *Occupancy) FreeCount() int { return o.free }

// State returns the state of c. Cells outside the grid report Forbidden.
func (o *Occupancy) State(c Cell) CellState {
	if !o.grid.Contains(c) {
		return Forbidden
	}
	return o.cells[o.index(c)]
}

// IsFree reports whether c is inside the grid and free.
func (o *Occupancy) IsFree(c Cell) bool { return o.State(c) == Free }

// Fits reports whether r lies inside the grid and every cell of it is
// free.
func (o *Occupancy) Fits(r Rect) bool {
	if !o.grid.Fits(r) {
		return false
	}
	for row := r.Row; row < r.Bottom(); row++ {
		base := row * o.grid.Cols
		for col := r.Col; col < r.Right(); col++ {
			if o.cells[base+col] != Free {
				return false
			}
		}
	}
	return true
}

// Occupy marks the in-bounds cells of r as occupied. Forbidden cells stay
// forbidden.
func (o *Occupancy) Occupy(r Rect) { o.mark(r, Occupied) }

// Forbid marks the in-bounds cells of r as forbidden.
func (o *Occupancy) Forbid(r Rect) { o.mark(r, Forbidden) }

// Release frees the occupied in-bounds cells of r. Forbidden cells are
// left untouched.
func (o *Occupancy) Release(r Rect) {
	clip, ok := o.grid.Clip(r)
	if !ok {
		return
	}
	for _, c := range clip.Cells() {
		i := o.index(c)
		if o.cells[i] == Occupied {
			o.cells[i] = Free
			o.free++
		}
	}
}

// Clone returns an independent copy of o.
func (o *Occupancy) Clone() *Occupancy {
	cp := *o
	cp.cells = append([]CellState(nil), o.cells...)
	return &cp
}

// FreeCells returns the free cells in reading order.
func (o *Occupancy) FreeCells() []Cell {
	out := make([]Cell, 0, o.free)
	for i, s := range o.cells {
		if s == Free {
			out = append(out, Cell{Row: i / o.grid.Cols, Col: i % o.grid.Cols})
		}
	}
	return out
}

func (o *Occupancy) mark(r Rect, s CellState) {
	clip, ok := o.grid.Clip(r)
	if !ok {
		return
	}
	for _, c := range clip.Cells() {
		i := o.index(c)
		if o.cells[i] == Forbidden {
			continue
		}
		if o.cells[i] == Free {
			o.free--
		}
		o.cells[i] = s
	}
}

func (o *Occupancy) index(c Cell) int { return c.Row*o.grid.Cols + c.Col }
