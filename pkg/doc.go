// Package pkg provides the core libraries for tilegrid dashboard layouts.
//
// # Overview
//
// A tilegrid board is a fixed-size grid of cells. Configured tiles cover
// rectangular footprints; every free cell is shown as a one-cell "add here"
// placeholder. When a tile is resized into cells owned by other tiles,
// those tiles are relocated to free space instead of being pushed around.
// The pkg directory is organized into three areas:
//
//  1. Engine - pure layout logic ([grid], [layout], [slot], [relocate])
//  2. Editing - stateful edits and resize transactions ([resize], [dashboard])
//  3. Infrastructure - persistence, caching and output ([io], [store],
//     [cache], [render], [observability], [errors])
//
// # Architecture
//
// The typical data flow through tilegrid:
//
//	Board document (JSON/TOML, file/Redis/Mongo store)
//	         ↓
//	    [io] package (document <-> grid.Board)
//	         ↓
//	    [layout] package (claim cells, emit placements + placeholders)
//	         ↓
//	    [relocate] package (plan resizes, relocate displaced tiles)
//	         ↓
//	    [render] package (text, DOT, SVG, PNG)
//
// # Quick Start
//
// Lay out a board and plan a resize:
//
//	b, _ := grid.NewBoard(grid.Grid{Rows: 2, Cols: 4})
//	a, _ := dashboard.AddTile(b, "switch", grid.Unit, nil)
//	dashboard.AddTile(b, "camera", grid.Unit, nil)
//
//	res := layout.Calculate(b.Tiles(), 2, 4)
//	fmt.Println(render.Text(res, render.TextOptions{}))
//
//	plan, ok := relocate.PlanResize(relocate.Request{TileID: a.ID, Span: grid.Span{X: 2, Y: 2}},
//	    b.Tiles(), 2, 4, relocate.Options{})
//	if ok {
//	    b.Apply(plan.Update())
//	}
//
// # Package Organization
//
// ## Engine
//
// [grid] - Geometry (cells, spans, rectangles), occupancy maps, tiles with
// their kind capabilities, and the Board that owns a dashboard's tiles.
//
// [layout] - The layout calculator. Tiles claim cells in configuration
// order; the result lists placements, placeholders, and tiles that are
// virtual, hidden or conflicting.
//
// [slot] - The empty-slot finder: the first anchor in reading order where
// a footprint fits.
//
// [relocate] - The resize planner and its relocation strategies (greedy,
// exhaustive, auto).
//
// ## Editing
//
// [resize] - The drag-resize controller: begin, tick and release with
// preview semantics and a single commit on release.
//
// [dashboard] - Tile edits (add, duplicate, clear, move, set grid) and the
// Service that serializes all operations on a board.
//
// ## Infrastructure
//
// [io] - The board document format and its JSON and TOML codecs.
//
// [store] - Board persistence: file, memory, Redis and MongoDB backends.
//
// [cache] - Plan cache for non-greedy strategies: file, Redis and null
// backends.
//
// [render] - Text grids, Graphviz DOT, and SVG/PNG through go-graphviz.
//
// [observability] - Hooks for engine, store, cache and HTTP events.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/relocate/...           # Specific package
//	go test -run Example ./pkg/layout    # Examples only
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/grid
// [layout]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/layout
// [slot]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/slot
// [relocate]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/relocate
// [resize]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/resize
// [dashboard]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/dashboard
// [io]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/errors
package pkg
