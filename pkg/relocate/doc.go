// Package relocate plans tile resizes that may push other tiles out of the
// way.
//
// # Overview
//
// A resize request names a tile and the span it should grow (or shrink)
// to. [PlanResize] answers with either a complete [Plan] or a definitive
// "infeasible". A plan lists the clamped span, every tile that had to move
// ("displaced" tiles) with its new anchor, and, for tiles that may grow
// the grid, the new row count. The caller applies the whole plan at once
// through grid.Board.Apply; the planner itself never mutates its inputs,
// so an infeasible request leaves the board exactly as it was.
//
// # Algorithm
//
//  1. Grid growth: if the tile's capabilities allow it and the requested
//     bottom edge lies below the grid but within the tile's growth limit,
//     the grown grid is tried first. It is accepted only when the new
//     footprint displaces nobody there.
//  2. The span is clamped to the tile's maximum span and to the grid,
//     relative to the fixed anchor. Each dimension stays at least one cell.
//  3. Displaced tiles are the other visible tiles whose footprint
//     intersects the new footprint. Placeholders are never displaced.
//  4. A working occupancy is built from every other tile and forbidden
//     cell plus the new footprint. A footprint touching a forbidden cell
//     makes the request infeasible.
//  5. A [Relocator] finds new anchors for the displaced tiles. Any tile
//     left without a slot makes the whole request infeasible.
//
// # Relocation Strategies
//
// [Greedy] (the default) processes displaced tiles in configuration order
// and gives each the first free slot in reading order. It is fast but
// order-dependent: a different processing order can turn a solvable case
// into an unsolvable one.
//
// [Exhaustive] backtracks over every candidate slot of every displaced
// tile and finds a solution whenever one exists, within a node budget.
// Because candidates are tried in reading order, its first solution is the
// greedy one whenever greedy succeeds.
//
// [Auto] runs the exhaustive search on grids of at most MaxCells cells
// and falls back to greedy above that size or when the budget runs out.
package relocate
