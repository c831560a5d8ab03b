package io

import (
	"fmt"
	"maps"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
)

// Board is the persisted form of a dashboard.
type Board struct {
	Rows  int    `json:"rows" toml:"rows" bson:"rows"`
	Cols  int    `json:"cols" toml:"cols" bson:"cols"`
	Tiles []Tile `json:"tiles" toml:"tiles" bson:"tiles"`
}

// Tile is the persisted form of one configured tile.
type Tile struct {
	ID    string         `json:"id" toml:"id" bson:"id"`
	Kind  string         `json:"kind,omitempty" toml:"kind,omitempty" bson:"kind,omitempty"`
	Row   *int           `json:"row,omitempty" toml:"row" bson:"row"`
	Col   *int           `json:"col,omitempty" toml:"col" bson:"col"`
	SpanX int            `json:"span_x,omitempty" toml:"span_x,omitempty" bson:"span_x,omitempty"`
	SpanY int            `json:"span_y,omitempty" toml:"span_y,omitempty" bson:"span_y,omitempty"`
	Meta  map[string]any `json:"meta,omitempty" toml:"meta,omitempty" bson:"meta,omitempty"`
}

// Placed reports whether the record has a usable anchor.
func (t Tile) Placed() bool {
	return t.Row != nil && t.Col != nil && *t.Row >= 0 && *t.Col >= 0
}

// FromGrid converts a live board into its document form.
func FromGrid(b *grid.Board) *Board {
	g := b.Grid()
	doc := &Board{Rows: g.Rows, Cols: g.Cols, Tiles: make([]Tile, 0, b.Len())}
	for _, t := range b.Tiles() {
		rec := Tile{
			ID:    t.ID,
			Kind:  string(t.Kind),
			SpanX: t.Span.X,
			SpanY: t.Span.Y,
			Meta:  t.Meta,
		}
		if t.Placed {
			row, col := t.Anchor.Row, t.Anchor.Col
			rec.Row, rec.Col = &row, &col
		}
		doc.Tiles = append(doc.Tiles, rec)
	}
	return doc
}

// ToGrid builds a live board from the document. Tile capabilities come
// from the board's profile table (see grid.WithProfiles).
func (d *Board) ToGrid(opts ...grid.Option) (*grid.Board, error) {
	b, err := grid.NewBoard(grid.Grid{Rows: d.Rows, Cols: d.Cols}, opts...)
	if err != nil {
		return nil, err
	}
	tiles := make([]grid.Tile, 0, len(d.Tiles))
	for i, rec := range d.Tiles {
		if rec.Kind != "" {
			if err := errors.ValidateKind(rec.Kind); err != nil {
				return nil, fmt.Errorf("tile %d (%s): %w", i, rec.ID, err)
			}
		}
		if rec.SpanX < 0 || rec.SpanY < 0 {
			return nil, errors.New(errors.ErrCodeInvalidSpan, "tile %d (%s): negative span %dx%d", i, rec.ID, rec.SpanX, rec.SpanY)
		}
		t := grid.Tile{
			ID:   rec.ID,
			Kind: grid.Kind(rec.Kind),
			Span: grid.Span{X: max(rec.SpanX, 1), Y: max(rec.SpanY, 1)},
			Meta: rec.Meta,
		}
		if rec.Placed() {
			t.Anchor = grid.Cell{Row: *rec.Row, Col: *rec.Col}
			t.Placed = true
		}
		tiles = append(tiles, t)
	}
	if err := b.Load(tiles); err != nil {
		return nil, err
	}
	return b, nil
}

// Clone returns a deep copy of the document. Meta maps are copied one
// level deep.
func (d *Board) Clone() *Board {
	cp := &Board{Rows: d.Rows, Cols: d.Cols, Tiles: make([]Tile, len(d.Tiles))}
	for i, t := range d.Tiles {
		if t.Row != nil {
			row := *t.Row
			t.Row = &row
		}
		if t.Col != nil {
			col := *t.Col
			t.Col = &col
		}
		t.Meta = maps.Clone(t.Meta)
		cp.Tiles[i] = t
	}
	return cp
}
