// Package layout computes the render-ready placement of every tile on a
// dashboard grid.
//
// # Overview
//
// [Calculate] takes the configured tiles of a board, in configuration
// order, plus the current grid size, and produces a [Result]:
//
//   - Placements for every configured tile whose full footprint lies inside
//     the grid, with its full span honored
//   - Forbidden cells: the in-bounds cells of tiles whose anchor is inside
//     the grid but whose footprint crosses the right or bottom edge
//     ("virtual" tiles, typically left behind when the grid shrank)
//   - One-cell placeholder placements filling every remaining free cell,
//     in reading order
//
// Tiles that are unplaced or anchored outside the grid have no visible
// effect and are listed in [Result.Hidden].
//
// # Determinism
//
// Calculate is a pure function. Identical inputs produce identical
// results: configured placements follow the input order, placeholders and
// forbidden cells follow reading order. Renderers and tests rely on this
// to diff layouts between recomputations.
//
// # Invariants
//
// Placements are pairwise non-overlapping and never cover a forbidden
// cell. When the input itself is corrupt (two visible tiles overlapping),
// the earlier tile wins and the later one is reported in
// [Result.Conflicts] instead of being placed. [Result.Validate] re-checks
// the invariants and is used as an assertion by tests and debug builds.
package layout
