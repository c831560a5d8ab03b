package dashboard

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilegrid/pkg/cache"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/io"
	"github.com/matzehuels/tilegrid/pkg/layout"
	"github.com/matzehuels/tilegrid/pkg/observability"
	"github.com/matzehuels/tilegrid/pkg/relocate"
	"github.com/matzehuels/tilegrid/pkg/resize"
	"github.com/matzehuels/tilegrid/pkg/slot"
	"github.com/matzehuels/tilegrid/pkg/store"
)

// DefaultGrid is the size of boards created on first use.
var DefaultGrid = grid.Grid{Rows: 4, Cols: 4}

// Options configure a Service.
type Options struct {
	// Store persists boards. Required.
	Store store.Store

	// Cache keeps plans of non-greedy strategies. Nil disables caching.
	Cache cache.Cache

	// PlanTTL bounds cached plans. Zero uses cache.DefaultPlanTTL.
	PlanTTL time.Duration

	// Relocator is the relocation strategy. Nil means greedy.
	Relocator relocate.Relocator

	// Grid is the size of new boards. Zero uses DefaultGrid.
	Grid grid.Grid

	// Limits bound SetGrid. Zero uses grid.DefaultLimits.
	Limits grid.Limits

	// Profiles override the kind profile table.
	Profiles grid.Profiles

	Logger *log.Logger
}

// Service owns the boards of one process and serializes every engine call
// on a single worker goroutine. All methods are safe for concurrent use.
type Service struct {
	store    store.Store
	cache    cache.Cache
	ttl      time.Duration
	reloc    relocate.Relocator
	grid     grid.Grid
	limits   grid.Limits
	profiles grid.Profiles
	logger   *log.Logger

	// boards is only touched by the worker.
	boards map[string]*entry

	jobs    chan job
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// entry is a loaded board and its resize controller.
type entry struct {
	board *grid.Board
	ctrl  *resize.Controller
}

type job struct {
	fn   func()
	done chan struct{}
}

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New(errors.ErrCodeUnsupported, "dashboard service is closed")

// New starts a service.
func New(opts Options) *Service {
	s := &Service{
		store:    opts.Store,
		cache:    opts.Cache,
		ttl:      opts.PlanTTL,
		reloc:    opts.Relocator,
		grid:     opts.Grid,
		limits:   opts.Limits,
		profiles: opts.Profiles,
		logger:   opts.Logger,
		boards:   make(map[string]*entry),
		jobs:     make(chan job),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.ttl == 0 {
		s.ttl = cache.DefaultPlanTTL
	}
	if s.reloc == nil {
		s.reloc = relocate.Greedy{}
	}
	if !s.grid.Valid() {
		s.grid = DefaultGrid
	}
	if s.limits == (grid.Limits{}) {
		s.limits = grid.DefaultLimits
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	go s.run()
	return s
}

func (s *Service) run() {
	defer close(s.stopped)
	for {
		select {
		case j := <-s.jobs:
			j.fn()
			close(j.done)
		case <-s.quit:
			return
		}
	}
}

// Do runs fn on the worker goroutine and waits for it. fn must not call
// back into the service.
func (s *Service) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	j := job{fn: func() { err = fn() }, done: make(chan struct{})}
	select {
	case s.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrClosed
	}
	<-j.done
	return err
}

// Close stops the worker. Active resize transactions are dropped without
// committing. The store and cache are owned by the caller.
func (s *Service) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped
}

// Strategy returns the name of the relocation strategy.
func (s *Service) Strategy() string { return s.reloc.Name() }

// =============================================================================
// Board access (worker only)
// =============================================================================

func (s *Service) options() []grid.Option {
	opts := []grid.Option{grid.WithLimits(s.limits)}
	if s.profiles != nil {
		opts = append(opts, grid.WithProfiles(s.profiles))
	}
	return opts
}

// load returns the live board, reading it from the store on first use.
// A board missing from the store starts out empty.
func (s *Service) load(ctx context.Context, id string) (*entry, error) {
	if e, ok := s.boards[id]; ok {
		return e, nil
	}
	if err := errors.ValidateBoardID(id); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := s.store.Load(ctx, id)
	observability.Store().OnLoad(ctx, s.store.Name(), id, time.Since(start), err)

	var b *grid.Board
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		s.logger.Debug("new board", "board", id, "grid", s.grid)
		b, err = grid.NewBoard(s.grid, s.options()...)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load board %s", id)
	default:
		b, err = doc.ToGrid(s.options()...)
	}
	if err != nil {
		return nil, err
	}
	e := &entry{board: b}
	s.boards[id] = e
	return e, nil
}

// save persists b under id.
func (s *Service) save(ctx context.Context, id string, b *grid.Board) error {
	start := time.Now()
	err := s.store.Save(ctx, id, io.FromGrid(b))
	observability.Store().OnSave(ctx, s.store.Name(), id, time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save board %s", id)
	}
	return nil
}

// mutate runs edit against a clone of board id and swaps the clone in
// once it has been saved, so a failed edit or save leaves the board as
// it was. Edits are refused while a resize transaction is active.
func (s *Service) mutate(ctx context.Context, id, op string, edit func(b *grid.Board) error) error {
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if e.ctrl != nil && e.ctrl.State().Active() {
		return errors.New(errors.ErrCodeTransactionState, "board %s: resize of %q in progress", id, e.ctrl.TileID())
	}
	next := e.board.Clone()
	if err := edit(next); err != nil {
		return err
	}
	err = s.save(ctx, id, next)
	observability.Engine().OnCommit(ctx, id, op, err)
	if err != nil {
		return err
	}
	e.board = next
	e.ctrl = nil
	return nil
}

// =============================================================================
// Queries
// =============================================================================

// Layout calculates the current layout of board id.
func (s *Service) Layout(ctx context.Context, id string) (layout.Result, error) {
	var res layout.Result
	err := s.Do(ctx, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		g := e.board.Grid()
		start := time.Now()
		res = layout.Calculate(e.board.Tiles(), g.Rows, g.Cols)
		observability.Engine().OnLayout(ctx, id, len(res.Placements), len(res.Forbidden), time.Since(start))
		return nil
	})
	return res, err
}

// Board returns a snapshot of board id in document form.
func (s *Service) Board(ctx context.Context, id string) (*io.Board, error) {
	var doc *io.Board
	err := s.Do(ctx, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		doc = io.FromGrid(e.board).Clone()
		return nil
	})
	return doc, err
}

// Boards lists the ids of stored boards.
func (s *Service) Boards(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.Do(ctx, func() error {
		var err error
		ids, err = s.store.List(ctx)
		return err
	})
	return ids, err
}

// FirstEmpty returns the first anchor in reading order where a tile of
// span fits on board id. It returns a NO_ROOM error when none does.
func (s *Service) FirstEmpty(ctx context.Context, id string, span grid.Span) (grid.Cell, error) {
	var at grid.Cell
	err := s.Do(ctx, func() error {
		if err := errors.ValidateSpan(span.X, span.Y); err != nil {
			return err
		}
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		g := e.board.Grid()
		c, ok := slot.FindFirstEmpty(e.board.Tiles(), g.Rows, g.Cols, span)
		if !ok {
			return errors.New(errors.ErrCodeNoRoom, "no room for a %s tile on a %s grid", span, g)
		}
		at = c
		return nil
	})
	return at, err
}

// PlanResize plans a resize of tileID to span without applying it.
func (s *Service) PlanResize(ctx context.Context, id, tileID string, span grid.Span) (relocate.Plan, error) {
	var plan relocate.Plan
	err := s.Do(ctx, func() error {
		if err := errors.ValidateSpan(span.X, span.Y); err != nil {
			return err
		}
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if _, ok := e.board.Tile(tileID); !ok {
			return errors.New(errors.ErrCodeTileNotFound, "tile %q not found", tileID)
		}
		g := e.board.Grid()
		p, ok := s.plan(ctx, id)(relocate.Request{TileID: tileID, Span: span}, e.board.Tiles(), g.Rows, g.Cols)
		if !ok {
			return errors.New(errors.ErrCodeResizeInfeasible, "no valid layout for %q at %s", tileID, span)
		}
		plan = p
		return nil
	})
	return plan, err
}

// cachedPlan is the cache entry for one planning call. Infeasible
// requests are cached too, unless the search gave up on its budget.
type cachedPlan struct {
	OK   bool          `json:"ok"`
	Plan relocate.Plan `json:"plan"`
}

// plan returns the planner used for board id. Greedy plans are computed
// directly; other strategies go through the plan cache.
func (s *Service) plan(ctx context.Context, board string) resize.PlanFunc {
	opts := relocate.Options{Relocator: s.reloc}
	strategy := s.reloc.Name()
	return func(req relocate.Request, tiles []grid.Tile, rows, cols int) (relocate.Plan, bool) {
		start := time.Now()
		if strategy == relocate.StrategyGreedy {
			p, ok := relocate.PlanResize(req, tiles, rows, cols, opts)
			observability.Engine().OnPlan(ctx, board, req.TileID, strategy, ok, len(p.Displaced), time.Since(start))
			return p, ok
		}

		key := cache.PlanKey(tiles, rows, cols, req, s.reloc.Key())
		if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			var cp cachedPlan
			if json.Unmarshal(data, &cp) == nil {
				observability.Cache().OnCacheHit(ctx, "plan")
				return cp.Plan, cp.OK
			}
		} else if err != nil {
			s.logger.Warn("plan cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "plan")

		p, ok := relocate.PlanResize(req, tiles, rows, cols, opts)
		observability.Engine().OnPlan(ctx, board, req.TileID, strategy, ok, len(p.Displaced), time.Since(start))
		if p.Exhausted {
			s.logger.Debug("plan search ran out of budget, not caching", "board", board, "tile", req.TileID, "strategy", s.reloc.Key())
			return p, ok
		}
		if data, err := json.Marshal(cachedPlan{OK: ok, Plan: p}); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				s.logger.Warn("plan cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "plan", len(data))
			}
		}
		return p, ok
	}
}

// =============================================================================
// Edits
// =============================================================================

// Add places a new tile of kind and span at the first empty slot.
func (s *Service) Add(ctx context.Context, id string, kind grid.Kind, span grid.Span, meta map[string]any) (grid.Tile, error) {
	var t grid.Tile
	err := s.Do(ctx, func() error {
		return s.mutate(ctx, id, "add", func(b *grid.Board) error {
			var err error
			t, err = AddTile(b, kind, span, meta)
			return err
		})
	})
	if err == nil {
		s.logger.Debug("tile added", "board", id, "tile", t.ID, "kind", t.Kind, "at", t.Anchor)
	}
	return t, err
}

// Duplicate copies tileID to the first empty slot for its span.
func (s *Service) Duplicate(ctx context.Context, id, tileID string) (grid.Tile, error) {
	var t grid.Tile
	err := s.Do(ctx, func() error {
		return s.mutate(ctx, id, "duplicate", func(b *grid.Board) error {
			var err error
			t, err = DuplicateTile(b, tileID)
			return err
		})
	})
	return t, err
}

// Clear removes tileID from board id.
func (s *Service) Clear(ctx context.Context, id, tileID string) error {
	return s.Do(ctx, func() error {
		return s.mutate(ctx, id, "clear", func(b *grid.Board) error {
			return ClearTile(b, tileID)
		})
	})
}

// Move anchors tileID at to, swapping with the tile anchored there if any.
// It returns the id of the swapped tile.
func (s *Service) Move(ctx context.Context, id, tileID string, to grid.Cell) (string, error) {
	var swapped string
	err := s.Do(ctx, func() error {
		return s.mutate(ctx, id, "move", func(b *grid.Board) error {
			var err error
			swapped, err = MoveTile(b, tileID, to)
			return err
		})
	})
	return swapped, err
}

// SetGrid resizes the grid of board id.
func (s *Service) SetGrid(ctx context.Context, id string, rows, cols int) error {
	return s.Do(ctx, func() error {
		return s.mutate(ctx, id, "grid", func(b *grid.Board) error {
			return SetGrid(b, rows, cols)
		})
	})
}

// PlaceUnplaced anchors every tile loaded without a position.
func (s *Service) PlaceUnplaced(ctx context.Context, id string) ([]string, error) {
	var placed []string
	err := s.Do(ctx, func() error {
		return s.mutate(ctx, id, "place", func(b *grid.Board) error {
			var err error
			placed, err = PlaceUnplaced(b)
			return err
		})
	})
	return placed, err
}

// Replace validates doc and stores it as board id, discarding the board's
// current tiles. Unplaced tiles in doc stay unplaced.
func (s *Service) Replace(ctx context.Context, id string, doc *io.Board) error {
	return s.Do(ctx, func() error {
		return s.mutate(ctx, id, "replace", func(b *grid.Board) error {
			next, err := doc.ToGrid(s.options()...)
			if err != nil {
				return err
			}
			*b = *next
			return nil
		})
	})
}

// =============================================================================
// Resize transactions
// =============================================================================

// controller returns the board's resize controller, creating it when the
// board has none.
func (s *Service) controller(ctx context.Context, id string, e *entry) *resize.Controller {
	if e.ctrl == nil {
		commit := resize.CommitterFunc(func(ctx context.Context, b *grid.Board) error {
			err := s.save(ctx, id, b)
			observability.Engine().OnCommit(ctx, id, "resize", err)
			return err
		})
		e.ctrl = resize.NewController(e.board, commit, relocate.Options{Relocator: s.reloc})
	}
	e.ctrl.SetPlanner(s.plan(ctx, id))
	return e.ctrl
}

// BeginResize starts a resize transaction for tileID on board id. One
// transaction may be active per board.
func (s *Service) BeginResize(ctx context.Context, id, tileID string) error {
	return s.Do(ctx, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		return s.controller(ctx, id, e).Begin(tileID)
	})
}

// Tick feeds the current drag span into the active transaction.
func (s *Service) Tick(ctx context.Context, id string, span grid.Span) (resize.TickResult, error) {
	var res resize.TickResult
	err := s.Do(ctx, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		c := s.controller(ctx, id, e)
		res, err = c.Tick(span)
		if err == nil {
			observability.Engine().OnTick(ctx, id, c.TileID(), res.State.String(), res.Applied)
		}
		return err
	})
	return res, err
}

// Release ends the active transaction and persists the board when any
// tick was applied.
func (s *Service) Release(ctx context.Context, id string) (bool, error) {
	var committed bool
	err := s.Do(ctx, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		committed, err = s.controller(ctx, id, e).Release(ctx)
		return err
	})
	return committed, err
}

// Resize runs a complete transaction with a single tick. It returns a
// RESIZE_INFEASIBLE error, leaving the board unchanged, when no valid
// layout exists.
func (s *Service) Resize(ctx context.Context, id, tileID string, span grid.Span) (relocate.Plan, error) {
	var plan relocate.Plan
	err := s.Do(ctx, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		c := s.controller(ctx, id, e)
		if err := c.Begin(tileID); err != nil {
			return err
		}
		res, err := c.Tick(span)
		if err != nil {
			_, _ = c.Release(ctx)
			return err
		}
		if res.Rejected {
			_, _ = c.Release(ctx)
			return errors.New(errors.ErrCodeResizeInfeasible, "no valid layout for %q at %s", tileID, span)
		}
		if res.Plan != nil {
			plan = *res.Plan
		} else {
			t, _ := e.board.Tile(tileID)
			plan = relocate.Plan{TileID: t.ID, Anchor: t.Anchor, Span: t.Span, Strategy: s.reloc.Name()}
		}
		_, err = c.Release(ctx)
		return err
	})
	return plan, err
}
