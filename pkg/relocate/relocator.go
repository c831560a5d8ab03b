package relocate

import (
	"fmt"
	"strings"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/slot"
)

// Strategy names accepted by ParseStrategy.
const (
	StrategyGreedy     = "greedy"
	StrategyExhaustive = "exhaustive"
	StrategyAuto       = "auto"
)

const (
	// DefaultMaxCells is the largest grid Auto searches exhaustively.
	DefaultMaxCells = 48
	// DefaultBudget bounds the number of placements the exhaustive search
	// tries before giving up.
	DefaultBudget = 200_000
)

// Relocator finds new anchors for displaced tiles.
//
// occ is the working occupancy: every tile that stays put, every forbidden
// cell and the resized footprint. Implementations must not modify it.
// Repositions are returned in the order of displaced.
//
// Key identifies the relocator together with its tuning, so that two
// relocators with equal keys always return the same result.
type Relocator interface {
	Name() string
	Key() string
	Relocate(occ *grid.Occupancy, displaced []grid.Tile) ([]grid.Reposition, bool)
}

// Greedy places displaced tiles one by one, in order, at the first free
// slot in reading order. Earlier placements are visible to later ones.
type Greedy struct{}

// Name returns "greedy".
func (Greedy) Name() string { return StrategyGreedy }

// Key returns "greedy". Greedy has no tuning.
func (Greedy) Key() string { return StrategyGreedy }

// Relocate implements Relocator.
func (Greedy) Relocate(occ *grid.Occupancy, displaced []grid.Tile) ([]grid.Reposition, bool) {
	work := occ.Clone()
	reps := make([]grid.Reposition, 0, len(displaced))
	for _, t := range displaced {
		c, ok := slot.FindFirst(work, t.Span)
		if !ok {
			return nil, false
		}
		work.Occupy(grid.RectAt(c, t.Span))
		reps = append(reps, grid.Reposition{TileID: t.ID, Row: c.Row, Col: c.Col})
	}
	return reps, true
}

// Exhaustive backtracks over every candidate slot of every displaced tile.
type Exhaustive struct {
	// Budget bounds the number of tentative placements. Zero means
	// DefaultBudget. A search that runs out of budget reports failure.
	Budget int
}

// Name returns "exhaustive".
func (Exhaustive) Name() string { return StrategyExhaustive }

// Key returns the name and the effective budget.
func (e Exhaustive) Key() string {
	return fmt.Sprintf("%s:budget=%d", StrategyExhaustive, e.budget())
}

func (e Exhaustive) budget() int {
	if e.Budget <= 0 {
		return DefaultBudget
	}
	return e.Budget
}

// Relocate implements Relocator.
func (e Exhaustive) Relocate(occ *grid.Occupancy, displaced []grid.Tile) ([]grid.Reposition, bool) {
	reps, res := e.search(occ, displaced)
	return reps, res == found
}

// bounded is implemented by relocators whose search can run out of budget
// before it knows the answer.
type bounded interface {
	search(occ *grid.Occupancy, displaced []grid.Tile) ([]grid.Reposition, outcome)
}

type outcome int

const (
	notFound outcome = iota
	found
	exhausted
)

func (e Exhaustive) search(occ *grid.Occupancy, displaced []grid.Tile) ([]grid.Reposition, outcome) {
	budget := e.budget()
	s := &searcher{
		occ:       occ.Clone(),
		displaced: displaced,
		reps:      make([]grid.Reposition, len(displaced)),
		remaining: make([]int, len(displaced)+1),
		budget:    budget,
	}
	for i := len(displaced) - 1; i >= 0; i-- {
		s.remaining[i] = s.remaining[i+1] + displaced[i].Span.Area()
	}
	switch {
	case s.place(0):
		return s.reps, found
	case s.budget < 0:
		return nil, exhausted
	default:
		return nil, notFound
	}
}

type searcher struct {
	occ       *grid.Occupancy
	displaced []grid.Tile
	reps      []grid.Reposition
	// remaining[i] is the total area of displaced[i:].
	remaining []int
	budget    int
}

func (s *searcher) place(i int) bool {
	if i == len(s.displaced) {
		return true
	}
	if s.remaining[i] > s.occ.FreeCount() {
		return false
	}
	t := s.displaced[i]
	for _, c := range collect(s.occ, t.Span) {
		if s.budget--; s.budget < 0 {
			return false
		}
		r := grid.RectAt(c, t.Span)
		s.occ.Occupy(r)
		s.reps[i] = grid.Reposition{TileID: t.ID, Row: c.Row, Col: c.Col}
		if s.place(i + 1) {
			return true
		}
		s.occ.Release(r)
		if s.budget < 0 {
			return false
		}
	}
	return false
}

// collect snapshots the candidates so the occupancy can change while the
// caller iterates.
func collect(occ *grid.Occupancy, span grid.Span) []grid.Cell {
	var out []grid.Cell
	for c := range slot.Candidates(occ, span) {
		out = append(out, c)
	}
	return out
}

// Auto searches exhaustively on small grids and greedily otherwise.
type Auto struct {
	// MaxCells is the largest grid area searched exhaustively. Zero means
	// DefaultMaxCells.
	MaxCells int
	// Budget is passed on to the exhaustive search.
	Budget int
}

// Name returns "auto".
func (Auto) Name() string { return StrategyAuto }

// Key returns the name, the effective threshold and the budget.
func (a Auto) Key() string {
	return fmt.Sprintf("%s:cells=%d:budget=%d", StrategyAuto, a.maxCells(), Exhaustive{Budget: a.Budget}.budget())
}

func (a Auto) maxCells() int {
	if a.MaxCells <= 0 {
		return DefaultMaxCells
	}
	return a.MaxCells
}

// Relocate implements Relocator.
func (a Auto) Relocate(occ *grid.Occupancy, displaced []grid.Tile) ([]grid.Reposition, bool) {
	reps, res := a.search(occ, displaced)
	return reps, res == found
}

// search falls back to greedy when the exhaustive search runs out of
// budget. A greedy failure after that is still reported as exhausted.
func (a Auto) search(occ *grid.Occupancy, displaced []grid.Tile) ([]grid.Reposition, outcome) {
	res := notFound
	if occ.Grid().Area() <= a.maxCells() {
		var reps []grid.Reposition
		if reps, res = (Exhaustive{Budget: a.Budget}).search(occ, displaced); res != exhausted {
			return reps, res
		}
	}
	if reps, ok := (Greedy{}).Relocate(occ, displaced); ok {
		return reps, found
	}
	return nil, res
}

// ParseStrategy returns the relocator for a strategy name. maxCells and
// budget tune the exhaustive search; zero selects the defaults.
func ParseStrategy(name string, maxCells, budget int) (Relocator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyGreedy:
		return Greedy{}, nil
	case StrategyExhaustive:
		return Exhaustive{Budget: budget}, nil
	case StrategyAuto:
		return Auto{MaxCells: maxCells, Budget: budget}, nil
	default:
		return nil, fmt.Errorf("unknown relocation strategy %q (want %s, %s or %s)",
			name, StrategyGreedy, StrategyExhaustive, StrategyAuto)
	}
}

var (
	_ Relocator = Greedy{}
	_ Relocator = Exhaustive{}
	_ Relocator = Auto{}
	_ bounded   = Exhaustive{}
	_ bounded   = Auto{}
)
