// Package render draws computed board layouts.
//
// # Overview
//
// Renderers consume a [layout.Result] and never look at the board itself,
// so what they draw is exactly what the layout calculator decided: full
// spans for visible tiles, hatched forbidden cells and one-cell
// placeholders.
//
// Two outputs are provided:
//
//   - [Text]: a fixed-width box drawing for terminals, logs and golden
//     tests
//   - [ToDOT] with [RenderSVG] and [RenderPNG]: a Graphviz HTML table in
//     which every placement becomes one cell with ROWSPAN and COLSPAN set
//     to its span
//
// # Usage
//
//	res := layout.Calculate(board.Tiles(), rows, cols)
//	fmt.Print(render.Text(res, render.TextOptions{}))
//
//	dot := render.ToDOT(res, render.DOTOptions{Title: "Living room"})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Dependencies
//
// SVG and PNG output use [github.com/goccy/go-graphviz], which embeds
// Graphviz and needs no external tools.
//
// [layout.Result]: github.com/matzehuels/tilegrid/pkg/layout.Result
package render
