package render

import (
	"strings"

	"github.com/matzehuels/tilegrid/pkg/layout"
)

// TextOptions configures [Text].
type TextOptions struct {
	// CellWidth is the number of characters inside one cell. Zero means 8.
	CellWidth int
	// ShowKind appends the tile kind to labels that still fit.
	ShowKind bool
}

// Owner table markers for cells without a placement.
const (
	forbiddenCell = -1
	outside       = -2
)

// Text draws res as a box grid. Tiles spanning several cells are drawn as
// one box with the label on their top row; placeholders show "+" and
// forbidden cells are filled with "/".
//
//	+--------+--------+
//	| lights |   +    |
//	+--------+--------+
func Text(res layout.Result, opts TextOptions) string {
	w := opts.CellWidth
	if w <= 0 {
		w = 8
	}
	g := res.Grid
	if !g.Valid() {
		return ""
	}

	owner := make([][]int, g.Rows)
	for r := range owner {
		owner[r] = make([]int, g.Cols)
		for c := range owner[r] {
			owner[r][c] = forbiddenCell
		}
	}
	for i, p := range res.Placements {
		for _, c := range p.Rect().Cells() {
			if g.Contains(c) {
				owner[c.Row][c.Col] = i
			}
		}
	}
	at := func(row, col int) int {
		if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
			return outside
		}
		return owner[row][col]
	}
	same := func(a, b int) bool { return a == b && a >= 0 }

	var b strings.Builder
	for row := 0; row <= g.Rows; row++ {
		for col := 0; col <= g.Cols; col++ {
			nw, ne := at(row-1, col-1), at(row-1, col)
			sw, se := at(row, col-1), at(row, col)
			if same(nw, ne) && same(ne, sw) && same(sw, se) {
				b.WriteByte(' ')
			} else {
				b.WriteByte('+')
			}
			if col == g.Cols {
				break
			}
			if same(ne, se) {
				b.WriteString(strings.Repeat(" ", w))
			} else {
				b.WriteString(strings.Repeat("-", w))
			}
		}
		b.WriteByte('\n')
		if row == g.Rows {
			break
		}

		for col := 0; col < g.Cols; {
			b.WriteByte('|')
			idx := at(row, col)
			if idx < 0 {
				b.WriteString(strings.Repeat("/", w))
				col++
				continue
			}
			p := res.Placements[idx]
			span := max(1, min(p.SpanX, g.Cols-col))
			width := span*w + span - 1
			if row == p.Row {
				b.WriteString(center(label(p, width, opts), width))
			} else {
				b.WriteString(strings.Repeat(" ", width))
			}
			col += span
		}
		b.WriteString("|\n")
	}
	return b.String()
}

func label(p layout.Placement, width int, opts TextOptions) string {
	if p.Placeholder {
		return "+"
	}
	s := p.TileID
	if opts.ShowKind && p.Kind != "" && len(s)+len(p.Kind)+3 <= width-2 {
		s += " (" + string(p.Kind) + ")"
	}
	return s
}

// center pads s to w characters, truncating with "~" when it does not fit
// with one space on each side.
func center(s string, w int) string {
	if w > 3 && len(s) > w-2 {
		s = s[:w-3] + "~"
	}
	if len(s) >= w {
		return s[:w]
	}
	left := (w - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-len(s)-left)
}
