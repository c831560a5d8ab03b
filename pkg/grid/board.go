package grid

import (
	"fmt"

	"github.com/matzehuels/tilegrid/pkg/errors"
)

// Limits bound the grid size reachable through [Board.SetGrid]. Zero
// fields are unbounded.
type Limits struct {
	MinRows int `json:"min_rows" toml:"min_rows"`
	MaxRows int `json:"max_rows" toml:"max_rows"`
	MinCols int `json:"min_cols" toml:"min_cols"`
	MaxCols int `json:"max_cols" toml:"max_cols"`
}

// DefaultLimits match the window sizes the dashboard snaps to: two to six
// rows and four to eight columns.
var DefaultLimits = Limits{MinRows: 2, MaxRows: 6, MinCols: 4, MaxCols: 8}

// Check returns an INVALID_GRID error when g is outside the limits.
func (l Limits) Check(g Grid) error {
	return errors.ValidateGridSize(g.Rows, g.Cols, l.MinRows, l.MaxRows, l.MinCols, l.MaxCols)
}

// Reposition moves one tile's anchor as part of an [Update].
type Reposition struct {
	TileID string `json:"tile_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// Anchor returns the new anchor.
func (r Reposition) Anchor() Cell { return Cell{Row: r.Row, Col: r.Col} }

// Update is a committed resize: the resized tile's new span, the grid's
// new row count (zero keeps the current one), and every displaced tile's
// new anchor. It is applied as one atomic change by [Board.Apply].
type Update struct {
	TileID      string
	Span        Span
	Rows        int
	Repositions []Reposition
}

// Option configures a Board.
type Option func(*Board)

// WithLimits sets the grid size limits.
func WithLimits(l Limits) Option {
	return func(b *Board) { b.limits = l }
}

// WithProfiles sets the kind profile table used to derive tile caps.
func WithProfiles(p Profiles) Option {
	return func(b *Board) {
		if p != nil {
			b.profiles = p
		}
	}
}

// Board owns the configured tiles of one dashboard and its grid size.
// Tiles keep their configuration order, which is the order the layout
// calculator and the relocation planner iterate in.
type Board struct {
	grid     Grid
	limits   Limits
	profiles Profiles
	tiles    []Tile
	index    map[string]int
}

// NewBoard returns an empty board of size g. Limits are only enforced by
// SetGrid, so a stored board that grew past them still loads.
func NewBoard(g Grid, opts ...Option) (*Board, error) {
	if !g.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidGrid, "grid %s must have at least one row and one column", g)
	}
	b := &Board{
		grid:     g,
		limits:   DefaultLimits,
		profiles: DefaultProfiles(),
		index:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Grid returns the current grid size.
func (b *Board) Grid() Grid { return b.grid }

// Limits returns the grid size limits.
func (b *Board) Limits() Limits { return b.limits }

// Profiles returns the kind profile table.
func (b *Board) Profiles() Profiles { return b.profiles }

// Len returns the number of configured tiles.
func (b *Board) Len() int { return len(b.tiles) }

// Tiles returns copies of the configured tiles in configuration order.
func (b *Board) Tiles() []Tile {
	out := make([]Tile, len(b.tiles))
	for i, t := range b.tiles {
		out[i] = t.Clone()
	}
	return out
}

// Tile returns a copy of the tile with the given id.
func (b *Board) Tile(id string) (Tile, bool) {
	i, ok := b.index[id]
	if !ok {
		return Tile{}, false
	}
	return b.tiles[i].Clone(), true
}

// Load replaces every tile on the board. Tiles without explicit caps get
// the caps of their kind's profile.
func (b *Board) Load(tiles []Tile) error {
	next := make([]Tile, 0, len(tiles))
	index := make(map[string]int, len(tiles))
	for _, t := range tiles {
		t, err := b.prepare(t)
		if err != nil {
			return err
		}
		if _, dup := index[t.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateTile, "duplicate tile id %q", t.ID)
		}
		index[t.ID] = len(next)
		next = append(next, t)
	}
	b.tiles, b.index = next, index
	return nil
}

// Put inserts t at the end of the configuration order, or replaces the
// tile with the same id in place. Put does not check for overlaps; callers
// find positions through the empty-slot finder first.
func (b *Board) Put(t Tile) error {
	t, err := b.prepare(t)
	if err != nil {
		return err
	}
	if i, ok := b.index[t.ID]; ok {
		b.tiles[i] = t
		return nil
	}
	b.index[t.ID] = len(b.tiles)
	b.tiles = append(b.tiles, t)
	return nil
}

// Remove deletes the tile with the given id. Its cells revert to
// placeholders on the next layout.
func (b *Board) Remove(id string) bool {
	i, ok := b.index[id]
	if !ok {
		return false
	}
	b.tiles = append(b.tiles[:i], b.tiles[i+1:]...)
	delete(b.index, id)
	for j := i; j < len(b.tiles); j++ {
		b.index[b.tiles[j].ID] = j
	}
	return true
}

// SetGrid resizes the grid within the board's limits. Tiles are never
// dropped: tiles that fall outside become hidden or partial and come back
// when the grid grows again.
func (b *Board) SetGrid(g Grid) error {
	if err := b.limits.Check(g); err != nil {
		return err
	}
	b.grid = g
	return nil
}

// Apply commits a resize update atomically.
//
// Updates come from the relocation planner, which guarantees the result is
// non-overlapping and in bounds. An update that would break that invariant
// means a caller bypassed the planner; Apply panics instead of leaving the
// board corrupted.
func (b *Board) Apply(u Update) {
	i, ok := b.index[u.TileID]
	if !ok {
		panic(fmt.Sprintf("grid: apply update for unknown tile %q", u.TileID))
	}

	g := b.grid
	if u.Rows > 0 {
		g.Rows = u.Rows
	}
	next := b.Tiles()
	next[i].Span = u.Span

	affected := map[string]bool{u.TileID: true}
	for _, r := range u.Repositions {
		j, ok := b.index[r.TileID]
		if !ok {
			panic(fmt.Sprintf("grid: reposition of unknown tile %q", r.TileID))
		}
		next[j].Anchor = r.Anchor()
		next[j].Placed = true
		affected[r.TileID] = true
	}
	if err := checkAffected(g, next, affected); err != nil {
		panic(fmt.Sprintf("grid: update for %q breaks board invariant: %v", u.TileID, err))
	}

	b.grid = g
	b.tiles = next
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cp := &Board{
		grid:     b.grid,
		limits:   b.limits,
		profiles: b.profiles,
		tiles:    b.Tiles(),
		index:    make(map[string]int, len(b.index)),
	}
	for id, i := range b.index {
		cp.index[id] = i
	}
	return cp
}

func (b *Board) prepare(t Tile) (Tile, error) {
	if err := errors.ValidateTileID(t.ID); err != nil {
		return Tile{}, err
	}
	if t.Span == (Span{}) {
		t.Span = Unit
	}
	if !t.Span.Valid() {
		return Tile{}, errors.New(errors.ErrCodeInvalidSpan, "tile %q has invalid span %s", t.ID, t.Span)
	}
	if t.Caps == (Caps{}) {
		t.Caps = b.profiles.Caps(t.Kind)
	}
	return t.Clone(), nil
}

// checkAffected lets every unaffected tile claim its cells first, then
// requires each affected tile to fit the remaining free cells.
func checkAffected(g Grid, tiles []Tile, affected map[string]bool) error {
	rest := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		if !affected[t.ID] {
			rest = append(rest, t)
		}
	}
	_, occ := ClaimCells(g, rest)
	for _, t := range tiles {
		if !affected[t.ID] {
			continue
		}
		fp := t.Footprint()
		if !g.Fits(fp) {
			return fmt.Errorf("tile %q at %s is outside grid %s", t.ID, fp, g)
		}
		if !occ.Fits(fp) {
			return fmt.Errorf("tile %q at %s overlaps a claimed cell", t.ID, fp)
		}
		occ.Occupy(fp)
	}
	return nil
}
