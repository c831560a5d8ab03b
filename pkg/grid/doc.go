// Package grid is the occupancy model of the tile dashboard.
//
// A dashboard is a fixed-size row/column [Grid] holding variable-footprint
// [Tile] values. Every tile is anchored at its top-left [Cell] and covers a
// rectangle of [Span] cells (its footprint, see [Rect]). All coordinates are
// grid cells; there is no notion of pixels anywhere in this module.
//
// # Ownership
//
// [Board] owns the authoritative anchor and span of every configured tile,
// in configuration order. Layout computation ([layout.Calculate]) only reads
// tiles; the only mutation paths are the primitive operations on Board
// (load, put, remove, grid resize) and [Board.Apply], which commits a
// resize plan produced by the relocation planner as one atomic update.
//
// Tiles whose anchor falls outside the grid after the grid shrinks are not
// deleted. They stay on the board and reappear at the same anchor when the
// grid grows again.
//
// # Occupancy
//
// [Occupancy] is a flat cell-state set (free, occupied, forbidden) used as
// the working view by the empty-slot finder and the relocation planner.
// It is cheap to clone so planners can speculate without touching the
// Board.
//
// # Capabilities
//
// Resize limits and dynamic grid growth are expressed as [Caps] on the
// tile itself, derived from a per-kind [Profiles] table when tiles are
// loaded. Layout and planning code never inspects a tile's kind.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent use. Hosts that serve
// several goroutines must serialize every call on one goroutine (see
// package dashboard).
//
// [layout.Calculate]: github.com/matzehuels/tilegrid/pkg/layout.Calculate
package grid
