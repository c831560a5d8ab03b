package grid

import "maps"

// Kind is a tile content kind ("switch", "camera", "3d_printer", ...).
// Kinds only matter for rendering and for looking up [Caps].
type Kind string

// KindPrinter is the content kind that may grow the grid downward when
// resized past the bottom edge.
const KindPrinter Kind = "3d_printer"

// Caps are the resize capabilities of a tile.
type Caps struct {
	// MaxSpan bounds the span a resize may request. Zero dimensions are
	// unbounded.
	MaxSpan Span `json:"max_span" toml:"max_span"`

	// MayGrowGrid allows a resize to increase the grid's row count instead
	// of relocating other tiles.
	MayGrowGrid bool `json:"may_grow_grid,omitempty" toml:"may_grow_grid"`

	// MaxGrowRows is the hard upper bound on the row count reachable
	// through MayGrowGrid.
	MaxGrowRows int `json:"max_grow_rows,omitempty" toml:"max_grow_rows"`
}

// ClampSpan bounds s by MaxSpan and to at least one cell per dimension.
func (c Caps) ClampSpan(s Span) Span {
	if c.MaxSpan.X > 0 {
		s.X = min(s.X, c.MaxSpan.X)
	}
	if c.MaxSpan.Y > 0 {
		s.Y = min(s.Y, c.MaxSpan.Y)
	}
	return Span{X: max(s.X, 1), Y: max(s.Y, 1)}
}

// DefaultCaps apply to every kind without a profile.
var DefaultCaps = Caps{MaxSpan: Span{X: 4, Y: 4}}

// Profiles maps kinds to their capabilities.
type Profiles map[Kind]Caps

// DefaultProfiles returns the built-in profile table. The printer kind may
// grow the grid to four rows and be at most three cells tall.
func DefaultProfiles() Profiles {
	return Profiles{
		KindPrinter: {MaxSpan: Span{X: 4, Y: 3}, MayGrowGrid: true, MaxGrowRows: 4},
	}
}

// Caps returns the capabilities for k, falling back to DefaultCaps.
func (p Profiles) Caps(k Kind) Caps {
	if c, ok := p[k]; ok {
		return c
	}
	return DefaultCaps
}

// Tile is one configured dashboard slot.
//
// Placeholders ("add here" cells) are never materialized as Tile values:
// they are the complement of the cells covered by configured tiles and
// forbidden cells, computed on demand by the layout calculator.
type Tile struct {
	ID     string
	Kind   Kind
	Anchor Cell
	// Placed is false for tiles that have no stored position yet. Their
	// Anchor is meaningless until they are placed.
	Placed bool
	Span   Span
	Caps   Caps
	// Meta carries opaque content configuration (entity ids, labels).
	// The engine never reads it.
	Meta map[string]any
}

// Footprint returns the rectangle covered by the tile.
func (t Tile) Footprint() Rect { return RectAt(t.Anchor, t.Span) }

// Clone returns a copy of t that shares no mutable state with it.
func (t Tile) Clone() Tile {
	t.Meta = maps.Clone(t.Meta)
	return t
}

// Visibility classifies a tile against a grid.
type Visibility int

const (
	// Hidden tiles are unplaced or anchored outside the grid.
	Hidden Visibility = iota
	// Partial tiles are anchored inside the grid but their footprint
	// crosses the right or bottom edge. They are not rendered and their
	// in-bounds cells are forbidden.
	Partial
	// Visible tiles lie completely inside the grid.
	Visible
)

// String returns a lowercase name for v.
func (v Visibility) String() string {
	switch v {
	case Partial:
		return "partial"
	case Visible:
		return "visible"
	default:
		return "hidden"
	}
}

// VisibilityIn classifies t against g.
func (t Tile) VisibilityIn(g Grid) Visibility {
	if !t.Placed || !g.Contains(t.Anchor) {
		return Hidden
	}
	if g.Fits(t.Footprint()) {
		return Visible
	}
	return Partial
}
