package render

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"html"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layout"
)

// DOTOptions configures board diagram generation.
type DOTOptions struct {
	// Title is drawn above the board when set.
	Title string
	// CellSize is the edge length of one cell in points. Zero means 72.
	CellSize int
	// HidePlaceholders leaves placeholder cells blank instead of showing
	// an "add" marker.
	HidePlaceholders bool
}

const cellSpacing = 4

var kindPalette = []string{
	"#8ecae6", "#ffb703", "#90be6d", "#f4a261", "#cdb4db", "#a8dadc", "#e9c46a", "#f28482",
}

// ToDOT converts a layout to Graphviz DOT source. The board is a single
// plaintext node holding an HTML table; every placement is one table cell
// with ROWSPAN and COLSPAN equal to its span, and every forbidden cell is a
// grey one-cell entry.
//
// Each table row starts with an invisible spacer cell, so rows fully
// covered by taller cells above them still contain a cell.
func ToDOT(res layout.Result, opts DOTOptions) string {
	size := opts.CellSize
	if size <= 0 {
		size = 72
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plaintext, fontname=\"Helvetica\"];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", opts.Title)
	}
	buf.WriteString("\n")
	buf.WriteString("  board [label=<\n")
	fmt.Fprintf(&buf, "    <TABLE BORDER=\"0\" CELLBORDER=\"1\" CELLSPACING=\"%d\" CELLPADDING=\"0\">\n", cellSpacing)

	g := res.Grid
	for row := 0; row < g.Rows; row++ {
		buf.WriteString("      <TR>")
		fmt.Fprintf(&buf, "<TD BORDER=\"0\" WIDTH=\"1\" HEIGHT=\"%d\" FIXEDSIZE=\"TRUE\"></TD>", size)
		for col := 0; col < g.Cols; col++ {
			if p, ok := anchoredAt(res, row, col); ok {
				buf.WriteString(placementTD(p, size, opts))
				continue
			}
			if res.IsForbidden(grid.Cell{Row: row, Col: col}) {
				fmt.Fprintf(&buf, "<TD WIDTH=\"%d\" HEIGHT=\"%d\" FIXEDSIZE=\"TRUE\" BGCOLOR=\"#d9d9d9\" COLOR=\"#bbbbbb\"> </TD>", size, size)
			}
		}
		buf.WriteString("</TR>\n")
	}

	buf.WriteString("    </TABLE>\n")
	buf.WriteString("  >];\n")
	buf.WriteString("}\n")
	return buf.String()
}

func placementTD(p layout.Placement, size int, opts DOTOptions) string {
	w := p.SpanX*size + (p.SpanX-1)*(cellSpacing+2)
	h := p.SpanY*size + (p.SpanY-1)*(cellSpacing+2)
	span := fmt.Sprintf("ROWSPAN=\"%d\" COLSPAN=\"%d\" WIDTH=\"%d\" HEIGHT=\"%d\" FIXEDSIZE=\"TRUE\"", p.SpanY, p.SpanX, w, h)

	if p.Placeholder {
		text := "+"
		if opts.HidePlaceholders {
			text = " "
		}
		return fmt.Sprintf("<TD %s COLOR=\"#bbbbbb\"><FONT COLOR=\"#999999\">%s</FONT></TD>", span, text)
	}

	label := "<B>" + html.EscapeString(p.TileID) + "</B>"
	if p.Kind != "" {
		label += "<BR/><FONT POINT-SIZE=\"10\">" + html.EscapeString(string(p.Kind)) + "</FONT>"
	}
	return fmt.Sprintf("<TD %s BGCOLOR=\"%s\">%s</TD>", span, kindColor(string(p.Kind)), label)
}

func anchoredAt(res layout.Result, row, col int) (layout.Placement, bool) {
	for _, p := range res.Placements {
		if p.Row == row && p.Col == col {
			return p, true
		}
	}
	return layout.Placement{}, false
}

func kindColor(kind string) string {
	if kind == "" {
		return "#ffffff"
	}
	h := fnv.New32a()
	h.Write([]byte(kind))
	return kindPalette[h.Sum32()%uint32(len(kindPalette))]
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
