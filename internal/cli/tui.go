package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/dashboard"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layout"
	"github.com/matzehuels/tilegrid/pkg/render"
	"github.com/matzehuels/tilegrid/pkg/resize"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listDragStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// editCommand opens the interactive board editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Resize tiles interactively",
		Long: `Open an interactive editor for a board. Select a tile, press enter to
grab it, grow or shrink it with the arrow keys and press enter again to
drop it. Other tiles make room while you drag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				m := NewEditModel(cmd.Context(), svc, c.cfg.Board)
				final, err := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
				if err != nil {
					return err
				}
				if em, ok := final.(EditModel); ok && em.Err != nil {
					return em.Err
				}
				return nil
			})
		},
	}
}

// =============================================================================
// EditModel - Interactive drag-resize
// =============================================================================

// EditModel is the bubbletea model for the board editor. Every key that
// changes the board is turned into a command that calls the dashboard
// service, so the model itself never touches the board.
type EditModel struct {
	ctx   context.Context
	svc   *dashboard.Service
	board string

	Layout   layout.Result
	Tiles    []string
	Cursor   int
	Dragging bool
	Span     grid.Span
	Status   string
	Err      error

	quitting bool
}

type layoutMsg struct {
	res layout.Result
	err error
}

type beginMsg struct {
	span grid.Span
	err  error
}

type tickMsg struct {
	res resize.TickResult
	err error
}

type releaseMsg struct {
	committed bool
	err       error
}

// NewEditModel creates an editor for board id.
func NewEditModel(ctx context.Context, svc *dashboard.Service, board string) EditModel {
	return EditModel{ctx: ctx, svc: svc, board: board}
}

func (m EditModel) Init() tea.Cmd {
	return m.loadLayout()
}

func (m EditModel) loadLayout() tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Layout(m.ctx, m.board)
		return layoutMsg{res: res, err: err}
	}
}

func (m EditModel) begin(id string, span grid.Span) tea.Cmd {
	return func() tea.Msg {
		return beginMsg{span: span, err: m.svc.BeginResize(m.ctx, m.board, id)}
	}
}

func (m EditModel) tick(span grid.Span) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Tick(m.ctx, m.board, span)
		return tickMsg{res: res, err: err}
	}
}

func (m EditModel) release() tea.Cmd {
	return func() tea.Msg {
		committed, err := m.svc.Release(m.ctx, m.board)
		return releaseMsg{committed: committed, err: err}
	}
}

// selected returns the placement under the cursor.
func (m EditModel) selected() (layout.Placement, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Tiles) {
		return layout.Placement{}, false
	}
	return m.Layout.Placement(m.Tiles[m.Cursor])
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case layoutMsg:
		if msg.err != nil {
			m.Err = msg.err
			return m, tea.Quit
		}
		m.Layout = msg.res
		m.Tiles = m.Tiles[:0]
		for _, p := range msg.res.Configured() {
			m.Tiles = append(m.Tiles, p.TileID)
		}
		if m.Cursor >= len(m.Tiles) {
			m.Cursor = max(len(m.Tiles)-1, 0)
		}
		// Keys adjust the span the tile actually has, so clamped or
		// rejected ticks do not accumulate.
		if p, ok := m.selected(); ok && m.Dragging {
			m.Span = grid.Span{X: p.SpanX, Y: p.SpanY}
		}
		return m, nil

	case beginMsg:
		if msg.err != nil {
			m.Status = msg.err.Error()
			return m, nil
		}
		m.Dragging = true
		m.Span = msg.span
		m.Status = ""
		return m, nil

	case tickMsg:
		if msg.err != nil {
			m.Status = msg.err.Error()
			return m, m.loadLayout()
		}
		switch {
		case msg.res.Rejected:
			m.Status = fmt.Sprintf("no room for %s", m.Span)
		case msg.res.Plan != nil && len(msg.res.Plan.Displaced) > 0:
			m.Status = fmt.Sprintf("moved %s", strings.Join(msg.res.Plan.Displaced, ", "))
		default:
			m.Status = ""
		}
		return m, m.loadLayout()

	case releaseMsg:
		m.Dragging = false
		switch {
		case msg.err != nil:
			m.Status = msg.err.Error()
		case msg.committed:
			m.Status = "saved"
		default:
			m.Status = "unchanged"
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, m.loadLayout()

	case tea.KeyMsg:
		if m.Dragging {
			return m.updateDrag(msg)
		}
		return m.updateSelect(msg)
	}
	return m, nil
}

func (m EditModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k", "shift+tab":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j", "tab":
		if m.Cursor < len(m.Tiles)-1 {
			m.Cursor++
		}
	case "enter", " ":
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.begin(p.TileID, grid.Span{X: p.SpanX, Y: p.SpanY})
	}
	return m, nil
}

func (m EditModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	span := m.Span
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, m.release()
	case "enter", " ", "esc":
		return m, m.release()
	case "right", "l":
		span.X++
	case "left", "h":
		span.X--
	case "down", "j":
		span.Y++
	case "up", "k":
		span.Y--
	default:
		return m, nil
	}
	if !span.Valid() {
		return m, nil
	}
	m.Span = span
	return m, m.tick(span)
}

func (m EditModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Board " + m.board))
	b.WriteString("\n")
	if m.Dragging {
		b.WriteString(listDimStyle.Render("←/→ width  ↑/↓ height  ⏎ drop  q quit"))
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ select  ⏎ grab  q quit"))
	}
	b.WriteString("\n\n")
	b.WriteString(render.Text(m.Layout, render.TextOptions{ShowKind: true}))
	b.WriteString("\n")

	for i, id := range m.Tiles {
		p, _ := m.Layout.Placement(id)
		line := fmt.Sprintf("%-20s %s at %s", id, grid.Span{X: p.SpanX, Y: p.SpanY}, p.Anchor())
		switch {
		case i == m.Cursor && m.Dragging:
			b.WriteString(listDragStyle.Render("▸ " + line))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		default:
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if len(m.Tiles) == 0 {
		b.WriteString(listDimStyle.Render("  no tiles; add some with 'tilegrid add'"))
		b.WriteString("\n")
	}

	if m.Status != "" {
		b.WriteString("\n")
		if m.Status == "saved" {
			b.WriteString(StyleSuccess.Render(m.Status))
		} else {
			b.WriteString(StyleWarning.Render(m.Status))
		}
		b.WriteString("\n")
	}
	return b.String()
}
