// Package io provides JSON and TOML import and export for dashboard boards.
//
// # Overview
//
// A board document is the persisted configuration of one dashboard: the
// grid size plus one record per configured tile. The same document type is
// used by the file, Redis and MongoDB stores, by the CLI's import/export
// flags and by the HTTP API, so it carries json, toml and bson tags.
//
// # JSON Format
//
//	{
//	  "rows": 4,
//	  "cols": 4,
//	  "tiles": [
//	    {"id": "lights", "kind": "switch", "row": 0, "col": 0, "span_x": 2, "span_y": 1},
//	    {"id": "printer", "kind": "3d_printer", "row": 1, "col": 0, "span_x": 1, "span_y": 2},
//	    {"id": "new", "kind": "camera"}
//	  ]
//	}
//
// # Tile Fields
//
// Required:
//   - id: Unique string identifier, stable across relayouts
//
// Optional:
//   - kind: Content kind, used to look up resize capabilities
//   - row, col: Anchor cell. Missing or negative means unplaced; unplaced
//     tiles get the first free slot when the board is opened
//   - span_x, span_y: Footprint width and height (default 1)
//   - meta: Freeform object for content configuration (entity ids, labels)
//
// Placeholders are never stored: they are derived from the free cells.
//
// # TOML Format
//
// The TOML form mirrors the JSON one with tiles as an array of tables:
//
//	rows = 4
//	cols = 4
//
//	[[tiles]]
//	id = "lights"
//	kind = "switch"
//	row = 0
//	col = 0
//	span_x = 2
//	span_y = 1
//
// # Import and Export
//
// [Import] and [Export] pick the format from the file extension (.json or
// .toml). [ReadJSON], [WriteJSON], [ReadTOML] and [WriteTOML] work on any
// reader or writer. [FromGrid] and [Board.ToGrid] convert between
// documents and live grid.Board values.
package io
