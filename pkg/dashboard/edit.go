package dashboard

import (
	"maps"

	"github.com/google/uuid"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layout"
	"github.com/matzehuels/tilegrid/pkg/slot"
)

// =============================================================================
// Board edits
// =============================================================================
//
// The functions in this section mutate a *grid.Board in place and are not
// safe for concurrent use. Service runs them on its worker against a
// clone of the live board and only swaps the clone in after it persisted.

// NewTileID returns a fresh tile id.
func NewTileID() string { return uuid.NewString() }

// AddTile appends a tile of the given kind and span at the first empty slot
// in reading order. The span is clamped to the kind's caps. It returns a
// NO_ROOM error when no slot fits.
func AddTile(b *grid.Board, kind grid.Kind, span grid.Span, meta map[string]any) (grid.Tile, error) {
	if err := errors.ValidateKind(string(kind)); err != nil {
		return grid.Tile{}, err
	}
	if err := errors.ValidateSpan(span.X, span.Y); err != nil {
		return grid.Tile{}, err
	}
	span = b.Profiles().Caps(kind).ClampSpan(span)
	return place(b, grid.Tile{ID: NewTileID(), Kind: kind, Span: span, Meta: maps.Clone(meta)})
}

// DuplicateTile copies the kind, span and metadata of tile id to the first
// empty slot that fits the span.
func DuplicateTile(b *grid.Board, id string) (grid.Tile, error) {
	src, ok := b.Tile(id)
	if !ok {
		return grid.Tile{}, errors.New(errors.ErrCodeTileNotFound, "tile %q not found", id)
	}
	return place(b, grid.Tile{ID: NewTileID(), Kind: src.Kind, Span: src.Span, Caps: src.Caps, Meta: src.Meta})
}

func place(b *grid.Board, t grid.Tile) (grid.Tile, error) {
	g := b.Grid()
	at, ok := slot.FindFirstEmpty(b.Tiles(), g.Rows, g.Cols, t.Span)
	if !ok {
		return grid.Tile{}, errors.New(errors.ErrCodeNoRoom, "no room for a %s tile on a %s grid", t.Span, g)
	}
	t.Anchor = at
	t.Placed = true
	if err := b.Put(t); err != nil {
		return grid.Tile{}, err
	}
	added, _ := b.Tile(t.ID)
	return added, nil
}

// ClearTile removes tile id. Its cells revert to placeholders.
func ClearTile(b *grid.Board, id string) error {
	if !b.Remove(id) {
		return errors.New(errors.ErrCodeTileNotFound, "tile %q not found", id)
	}
	return nil
}

// MoveTile moves tile id so that it is anchored at to.
//
// The target footprint must lie inside the grid and must not cover a
// forbidden cell. When another visible tile is anchored at to, the two
// tiles swap anchors, provided both still fit afterwards. Otherwise the
// target footprint must be free of other tiles. MoveTile returns the id of
// the swapped tile, or "" when nothing was swapped.
func MoveTile(b *grid.Board, id string, to grid.Cell) (string, error) {
	t, ok := b.Tile(id)
	if !ok {
		return "", errors.New(errors.ErrCodeTileNotFound, "tile %q not found", id)
	}
	g := b.Grid()
	target := grid.RectAt(to, t.Span)
	if !g.Fits(target) {
		return "", errors.New(errors.ErrCodeInvalidMove, "tile %q at %s would leave grid %s", id, target, g)
	}
	if t.Placed && t.Anchor == to {
		return "", nil
	}

	tiles := b.Tiles()
	res := layout.Calculate(tiles, g.Rows, g.Cols)
	for _, c := range target.Cells() {
		if res.IsForbidden(c) {
			return "", errors.New(errors.ErrCodeInvalidMove, "tile %q at %s would cover forbidden cell %s", id, target, c)
		}
	}

	moved := t
	moved.Anchor, moved.Placed = to, true

	if other, ok := res.At(to); ok && !other.Placeholder && other.TileID != id && other.Anchor() == to {
		if t.VisibilityIn(g) != grid.Visible {
			return "", errors.New(errors.ErrCodeInvalidMove, "tile %q is not on the grid and cannot swap with %q", id, other.TileID)
		}
		peer, _ := b.Tile(other.TileID)
		peer.Anchor = t.Anchor
		if err := fitsAmong(g, tiles, moved, peer); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidMove, err, "swap %q with %q", id, peer.ID)
		}
		if err := b.Put(moved); err != nil {
			return "", err
		}
		if err := b.Put(peer); err != nil {
			return "", err
		}
		return peer.ID, nil
	}

	if err := fitsAmong(g, tiles, moved); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidMove, err, "move %q", id)
	}
	return "", b.Put(moved)
}

// fitsAmong checks that the changed tiles fit on g once every other tile
// has claimed its cells.
func fitsAmong(g grid.Grid, tiles []grid.Tile, changed ...grid.Tile) error {
	skip := make(map[string]bool, len(changed))
	for _, t := range changed {
		skip[t.ID] = true
	}
	rest := make([]grid.Tile, 0, len(tiles))
	for _, t := range tiles {
		if !skip[t.ID] {
			rest = append(rest, t)
		}
	}
	_, occ := grid.ClaimCells(g, rest)
	for _, t := range changed {
		fp := t.Footprint()
		if !g.Fits(fp) {
			return errors.New(errors.ErrCodeInvalidMove, "%q at %s is outside grid %s", t.ID, fp, g)
		}
		if !occ.Fits(fp) {
			return errors.New(errors.ErrCodeInvalidMove, "%q at %s overlaps another tile", t.ID, fp)
		}
		occ.Occupy(fp)
	}
	return nil
}

// SetGrid resizes the grid within the board's limits. No tile is dropped.
func SetGrid(b *grid.Board, rows, cols int) error {
	return b.SetGrid(grid.Grid{Rows: rows, Cols: cols})
}

// PlaceUnplaced gives every tile without a stored anchor the first empty
// slot for its span, in configuration order. Tiles that do not fit stay
// unplaced. It returns the ids of the tiles it placed.
func PlaceUnplaced(b *grid.Board) ([]string, error) {
	g := b.Grid()
	var placed []string
	for _, t := range b.Tiles() {
		if t.Placed {
			continue
		}
		at, ok := slot.FindFirstEmpty(b.Tiles(), g.Rows, g.Cols, t.Span)
		if !ok {
			continue
		}
		t.Anchor, t.Placed = at, true
		if err := b.Put(t); err != nil {
			return placed, err
		}
		placed = append(placed, t.ID)
	}
	return placed, nil
}
