// Package resize drives interactive drag-resize transactions.
//
// A [Controller] turns a stream of pointer ticks into board updates. Each
// tick asks the relocation planner for a plan; feasible plans are applied
// to the board at once so renderers can show a live preview, infeasible
// ones are ignored and the board keeps its last valid state. Releasing the
// pointer persists the result through a [Committer].
//
//	Idle --Begin--> Dragging --Tick ok--> Previewing --Release--> Committed --> Idle
//	                    |                     ^
//	                    +--Tick rejected--> Rejected
//
// There is no rollback: once a tick has been applied, later rejected
// ticks leave the preview in place, and Release persists it.
//
// A Controller is not safe for concurrent use; hosts serialize access to
// it together with the board it drives.
package resize

import (
	"context"
	"fmt"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/relocate"
)

// State is the transaction state of a Controller.
type State int

const (
	Idle State = iota
	Dragging
	Previewing
	Rejected
	Committed
)

// String returns a lowercase name for s.
func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Previewing:
		return "previewing"
	case Rejected:
		return "rejected"
	case Committed:
		return "committed"
	default:
		return "idle"
	}
}

// Active reports whether a transaction is in progress.
func (s State) Active() bool { return s == Dragging || s == Previewing || s == Rejected }

// Committer persists a board after a transaction.
type Committer interface {
	Commit(ctx context.Context, b *grid.Board) error
}

// CommitterFunc adapts a function to Committer.
type CommitterFunc func(ctx context.Context, b *grid.Board) error

// Commit calls f.
func (f CommitterFunc) Commit(ctx context.Context, b *grid.Board) error { return f(ctx, b) }

// PlanFunc plans a resize request. The default is [relocate.PlanResize]
// with the controller's options; hosts install a caching planner through
// [Controller.SetPlanner].
type PlanFunc func(req relocate.Request, tiles []grid.Tile, rows, cols int) (relocate.Plan, bool)

// TickResult reports the outcome of one tick.
type TickResult struct {
	// Applied is true when the tick changed the board.
	Applied bool `json:"applied"`
	// Rejected is true when the planner found no valid configuration.
	Rejected bool           `json:"rejected,omitempty"`
	Plan     *relocate.Plan `json:"plan,omitempty"`
	State    State          `json:"-"`
}

// Controller runs one resize transaction at a time against a board.
type Controller struct {
	board  *grid.Board
	commit Committer
	opts   relocate.Options
	plan   PlanFunc

	state   State
	tileID  string
	applied int
	last    *relocate.Plan
}

// NewController returns an idle controller for b. commit may be nil, in
// which case Release only ends the transaction.
func NewController(b *grid.Board, commit Committer, opts relocate.Options) *Controller {
	return &Controller{board: b, commit: commit, opts: opts}
}

// SetPlanner replaces the planner used by Tick. Nil restores the default.
func (c *Controller) SetPlanner(p PlanFunc) { c.plan = p }

func (c *Controller) planner() PlanFunc {
	if c.plan != nil {
		return c.plan
	}
	return func(req relocate.Request, tiles []grid.Tile, rows, cols int) (relocate.Plan, bool) {
		return relocate.PlanResize(req, tiles, rows, cols, c.opts)
	}
}

// State returns the current transaction state.
func (c *Controller) State() State { return c.state }

// TileID returns the tile being resized, or "" when idle.
func (c *Controller) TileID() string { return c.tileID }

// Applied returns the number of ticks applied in the current transaction.
func (c *Controller) Applied() int { return c.applied }

// LastPlan returns the most recently applied plan, if any.
func (c *Controller) LastPlan() (relocate.Plan, bool) {
	if c.last == nil {
		return relocate.Plan{}, false
	}
	return *c.last, true
}

// Begin starts a transaction for tileID.
func (c *Controller) Begin(tileID string) error {
	if c.state.Active() {
		return errors.New(errors.ErrCodeTransactionState,
			"resize of %q already in progress", c.tileID)
	}
	t, ok := c.board.Tile(tileID)
	if !ok {
		return errors.New(errors.ErrCodeTileNotFound, "tile %q not found", tileID)
	}
	if v := t.VisibilityIn(c.board.Grid()); v != grid.Visible {
		return errors.New(errors.ErrCodeInvalidInput, "tile %q is %s and cannot be resized", tileID, v)
	}
	c.state = Dragging
	c.tileID = tileID
	c.applied = 0
	c.last = nil
	return nil
}

// Tick plans a resize of the active tile to span and applies it when
// feasible. Ticks that would not change the board are no-ops.
func (c *Controller) Tick(span grid.Span) (TickResult, error) {
	if !c.state.Active() {
		return TickResult{State: c.state}, errors.New(errors.ErrCodeTransactionState, "no resize in progress")
	}
	if err := errors.ValidateSpan(span.X, span.Y); err != nil {
		return TickResult{State: c.state}, err
	}
	t, ok := c.board.Tile(c.tileID)
	if !ok {
		return TickResult{State: c.state}, fmt.Errorf("tile %q vanished during resize", c.tileID)
	}
	if t.Span == span {
		return TickResult{State: c.state}, nil
	}

	g := c.board.Grid()
	plan, ok := c.planner()(relocate.Request{TileID: c.tileID, Span: span}, c.board.Tiles(), g.Rows, g.Cols)
	if !ok {
		if c.applied == 0 {
			c.state = Rejected
		}
		return TickResult{Rejected: true, State: c.state}, nil
	}
	if plan.Span == t.Span && !plan.Grew() && len(plan.Repositions) == 0 {
		return TickResult{Plan: &plan, State: c.state}, nil
	}

	c.board.Apply(plan.Update())
	c.applied++
	c.last = &plan
	c.state = Previewing
	return TickResult{Applied: true, Plan: &plan, State: c.state}, nil
}

// Release ends the transaction. When at least one tick was applied the
// board is persisted through the committer and Release reports true.
// The controller is idle afterwards even when persisting fails.
func (c *Controller) Release(ctx context.Context) (bool, error) {
	if !c.state.Active() {
		return false, errors.New(errors.ErrCodeTransactionState, "no resize in progress")
	}
	changed := c.applied > 0
	tileID := c.tileID
	defer c.reset()

	if !changed {
		return false, nil
	}
	c.state = Committed
	if c.commit != nil {
		if err := c.commit.Commit(ctx, c.board); err != nil {
			return true, fmt.Errorf("commit resize of %q: %w", tileID, err)
		}
	}
	return true, nil
}

func (c *Controller) reset() {
	c.state = Idle
	c.tileID = ""
	c.applied = 0
}
