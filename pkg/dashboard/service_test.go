package dashboard

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/tilegrid/pkg/cache"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/io"
	"github.com/matzehuels/tilegrid/pkg/relocate"
	"github.com/matzehuels/tilegrid/pkg/resize"
	"github.com/matzehuels/tilegrid/pkg/store"
)

func intp(v int) *int { return &v }

func seed(t *testing.T, s store.Store, id string, doc *io.Board) {
	t.Helper()
	if err := s.Save(context.Background(), id, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	svc := New(opts)
	t.Cleanup(svc.Close)
	return svc
}

// mapCache is an in-memory cache that counts lookups.
type mapCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	hits   int
	misses int
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = data
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error { return nil }
func (c *mapCache) Close() error                                 { return nil }

// failingStore fails every save.
type failingStore struct{ store.Store }

func (failingStore) Save(context.Context, string, *io.Board) error {
	return fmt.Errorf("disk full")
}

func TestServiceNewBoard(t *testing.T) {
	svc := newService(t, Options{})
	res, err := svc.Layout(context.Background(), "home")
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if res.Grid != DefaultGrid {
		t.Errorf("Layout().Grid = %v, want %v", res.Grid, DefaultGrid)
	}
	if n := len(res.Placeholders()); n != 16 {
		t.Errorf("placeholders = %d, want 16", n)
	}

	if _, err := svc.Layout(context.Background(), "../etc"); !errors.Is(err, errors.ErrCodeInvalidBoardID) {
		t.Errorf("Layout(../etc) error = %v, want INVALID_BOARD_ID", err)
	}
}

func TestServiceEditsPersist(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newService(t, Options{Store: st})

	a, err := svc.Add(ctx, "home", "switch", grid.Span{X: 2, Y: 2}, nil)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	b, err := svc.Duplicate(ctx, "home", a.ID)
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}
	if b.Anchor != (grid.Cell{Row: 0, Col: 2}) {
		t.Errorf("Duplicate() anchor = %v, want (0,2)", b.Anchor)
	}
	if _, err := svc.Move(ctx, "home", a.ID, grid.Cell{Row: 2, Col: 0}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if err := svc.Clear(ctx, "home", b.ID); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	doc, err := st.Load(ctx, "home")
	if err != nil {
		t.Fatalf("store Load() error = %v", err)
	}
	if len(doc.Tiles) != 1 || doc.Tiles[0].ID != a.ID || *doc.Tiles[0].Row != 2 {
		t.Errorf("stored board = %+v", doc)
	}

	at, err := svc.FirstEmpty(ctx, "home", grid.Span{X: 4, Y: 2})
	if err != nil || at != (grid.Cell{Row: 0, Col: 0}) {
		t.Errorf("FirstEmpty(4x2) = %v, %v, want (0,0)", at, err)
	}
	if _, err := svc.FirstEmpty(ctx, "home", grid.Span{X: 4, Y: 4}); !errors.Is(err, errors.ErrCodeNoRoom) {
		t.Errorf("FirstEmpty(4x4) error = %v, want NO_ROOM", err)
	}
}

func TestServiceResize(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, "home", &io.Board{Rows: 4, Cols: 4, Tiles: []io.Tile{
		{ID: "a", Kind: "switch", Row: intp(0), Col: intp(0), SpanX: 1, SpanY: 1},
		{ID: "b", Kind: "switch", Row: intp(0), Col: intp(1), SpanX: 1, SpanY: 1},
	}})
	svc := newService(t, Options{Store: st})

	plan, err := svc.Resize(ctx, "home", "a", grid.Span{X: 2, Y: 1})
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if len(plan.Repositions) != 1 || plan.Repositions[0].TileID != "b" {
		t.Errorf("Resize() repositions = %+v, want b moved", plan.Repositions)
	}

	doc, _ := st.Load(ctx, "home")
	if doc.Tiles[0].SpanX != 2 {
		t.Errorf("stored span_x = %d, want 2", doc.Tiles[0].SpanX)
	}
	res, _ := svc.Layout(ctx, "home")
	if err := res.Validate(); err != nil {
		t.Errorf("Layout() invalid after resize: %v", err)
	}
}

func TestServiceResizeInfeasible(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, "tiny", &io.Board{Rows: 1, Cols: 2, Tiles: []io.Tile{
		{ID: "a", Kind: "switch", Row: intp(0), Col: intp(0)},
		{ID: "b", Kind: "switch", Row: intp(0), Col: intp(1)},
	}})
	svc := newService(t, Options{Store: st})

	if _, err := svc.PlanResize(ctx, "tiny", "a", grid.Span{X: 2, Y: 1}); !errors.Is(err, errors.ErrCodeResizeInfeasible) {
		t.Errorf("PlanResize() error = %v, want RESIZE_INFEASIBLE", err)
	}
	if _, err := svc.Resize(ctx, "tiny", "a", grid.Span{X: 2, Y: 1}); !errors.Is(err, errors.ErrCodeResizeInfeasible) {
		t.Fatalf("Resize() error = %v, want RESIZE_INFEASIBLE", err)
	}
	doc, _ := svc.Board(ctx, "tiny")
	if doc.Tiles[0].SpanX != 1 || *doc.Tiles[1].Col != 1 {
		t.Errorf("board changed after infeasible resize: %+v", doc.Tiles)
	}

	// The failed resize must not leave a transaction behind.
	if _, err := svc.Resize(ctx, "tiny", "a", grid.Span{X: 1, Y: 1}); err != nil {
		t.Errorf("Resize(no-op) error = %v", err)
	}
}

func TestServiceTransaction(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, "home", &io.Board{Rows: 2, Cols: 4, Tiles: []io.Tile{
		{ID: "a", Kind: "switch", Row: intp(0), Col: intp(0)},
		{ID: "b", Kind: "switch", Row: intp(0), Col: intp(1)},
	}})
	svc := newService(t, Options{Store: st})

	if err := svc.BeginResize(ctx, "home", "a"); err != nil {
		t.Fatalf("BeginResize() error = %v", err)
	}
	if err := svc.BeginResize(ctx, "home", "b"); !errors.Is(err, errors.ErrCodeTransactionState) {
		t.Errorf("second BeginResize() error = %v, want TRANSACTION_STATE", err)
	}
	if _, err := svc.Add(ctx, "home", "switch", grid.Unit, nil); !errors.Is(err, errors.ErrCodeTransactionState) {
		t.Errorf("Add() during resize error = %v, want TRANSACTION_STATE", err)
	}

	for _, span := range []grid.Span{{X: 2, Y: 1}, {X: 2, Y: 2}} {
		res, err := svc.Tick(ctx, "home", span)
		if err != nil {
			t.Fatalf("Tick(%v) error = %v", span, err)
		}
		if !res.Applied || res.State != resize.Previewing {
			t.Errorf("Tick(%v) = %+v, want applied preview", span, res)
		}
	}

	// Nothing is stored before release.
	if doc, _ := st.Load(ctx, "home"); doc.Tiles[0].SpanX > 1 {
		t.Errorf("stored span_x = %d before release", doc.Tiles[0].SpanX)
	}

	committed, err := svc.Release(ctx, "home")
	if err != nil || !committed {
		t.Fatalf("Release() = %v, %v, want true, nil", committed, err)
	}
	doc, _ := st.Load(ctx, "home")
	if doc.Tiles[0].SpanX != 2 || doc.Tiles[0].SpanY != 2 {
		t.Errorf("stored span = %dx%d, want 2x2", doc.Tiles[0].SpanX, doc.Tiles[0].SpanY)
	}
	if _, err := svc.Tick(ctx, "home", grid.Unit); !errors.Is(err, errors.ErrCodeTransactionState) {
		t.Errorf("Tick() after release error = %v, want TRANSACTION_STATE", err)
	}
}

func TestServicePlanCache(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, "home", &io.Board{Rows: 2, Cols: 4, Tiles: []io.Tile{
		{ID: "a", Kind: "switch", Row: intp(0), Col: intp(0)},
		{ID: "b", Kind: "switch", Row: intp(0), Col: intp(1)},
	}})
	c := &mapCache{}
	svc := newService(t, Options{Store: st, Cache: c, Relocator: relocate.Exhaustive{}})

	first, err := svc.PlanResize(ctx, "home", "a", grid.Span{X: 2, Y: 1})
	if err != nil {
		t.Fatalf("PlanResize() error = %v", err)
	}
	second, err := svc.PlanResize(ctx, "home", "a", grid.Span{X: 2, Y: 1})
	if err != nil {
		t.Fatalf("PlanResize() error = %v", err)
	}
	if c.misses != 1 || c.hits != 1 {
		t.Errorf("cache misses/hits = %d/%d, want 1/1", c.misses, c.hits)
	}
	if first.Strategy != relocate.StrategyExhaustive || second.Repositions[0] != first.Repositions[0] {
		t.Errorf("cached plan = %+v, want %+v", second, first)
	}
}

// A search that ran out of budget says nothing about the board, so it
// must not be cached for a later run with a larger budget.
func TestServicePlanCacheBudget(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	row := &io.Board{Rows: 4, Cols: 4, Tiles: []io.Tile{
		{ID: "a", Kind: "switch", Row: intp(0), Col: intp(0)},
		{ID: "b", Kind: "switch", Row: intp(0), Col: intp(1)},
		{ID: "c", Kind: "switch", Row: intp(0), Col: intp(2)},
	}}
	span := grid.Span{X: 3, Y: 1}

	open := func(rel relocate.Relocator) *Service {
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			t.Fatalf("NewFileCache() error = %v", err)
		}
		st := store.NewMemoryStore()
		seed(t, st, "home", row)
		return newService(t, Options{Store: st, Cache: fc, Relocator: rel})
	}

	small := open(relocate.Exhaustive{Budget: 1})
	if _, err := small.PlanResize(ctx, "home", "a", span); !errors.Is(err, errors.ErrCodeResizeInfeasible) {
		t.Fatalf("PlanResize(budget 1) error = %v, want RESIZE_INFEASIBLE", err)
	}
	if entries, _ := filepath.Glob(filepath.Join(dir, "*", "*.json")); len(entries) != 0 {
		t.Errorf("out-of-budget plan cached: %v", entries)
	}

	full := open(relocate.Exhaustive{})
	plan, err := full.PlanResize(ctx, "home", "a", span)
	if err != nil {
		t.Fatalf("PlanResize(default budget) error = %v", err)
	}
	want := []grid.Reposition{{TileID: "b", Row: 0, Col: 3}, {TileID: "c", Row: 1, Col: 0}}
	if !reflect.DeepEqual(plan.Repositions, want) {
		t.Errorf("Repositions = %v, want %v", plan.Repositions, want)
	}

	// The feasible plan is cached under the default budget only.
	if _, err := small.PlanResize(ctx, "home", "a", span); !errors.Is(err, errors.ErrCodeResizeInfeasible) {
		t.Errorf("PlanResize(budget 1) after cached plan error = %v, want RESIZE_INFEASIBLE", err)
	}
}

func TestServiceGreedySkipsCache(t *testing.T) {
	ctx := context.Background()
	c := &mapCache{}
	svc := newService(t, Options{Cache: c})

	if _, err := svc.Add(ctx, "home", "switch", grid.Unit, nil); err != nil {
		t.Fatal(err)
	}
	doc, _ := svc.Board(ctx, "home")
	if _, err := svc.PlanResize(ctx, "home", doc.Tiles[0].ID, grid.Span{X: 2, Y: 1}); err != nil {
		t.Fatalf("PlanResize() error = %v", err)
	}
	if c.hits+c.misses != 0 || len(c.data) != 0 {
		t.Error("greedy planning used the cache")
	}
}

func TestServiceSaveFailureKeepsBoard(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, Options{Store: failingStore{store.NewMemoryStore()}})

	if _, err := svc.Add(ctx, "home", "switch", grid.Unit, nil); !errors.Is(err, errors.ErrCodeStore) {
		t.Fatalf("Add() error = %v, want STORE_ERROR", err)
	}
	doc, err := svc.Board(ctx, "home")
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if len(doc.Tiles) != 0 {
		t.Errorf("board has %d tiles after failed save, want 0", len(doc.Tiles))
	}
}

func TestServiceSetGrid(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, Options{})

	if err := svc.SetGrid(ctx, "home", 3, 6); err != nil {
		t.Fatalf("SetGrid() error = %v", err)
	}
	res, _ := svc.Layout(ctx, "home")
	if res.Grid != (grid.Grid{Rows: 3, Cols: 6}) {
		t.Errorf("Grid = %v, want 3x6", res.Grid)
	}
	if err := svc.SetGrid(ctx, "home", 7, 6); !errors.Is(err, errors.ErrCodeInvalidGrid) {
		t.Errorf("SetGrid(7x6) error = %v, want INVALID_GRID", err)
	}
}

func TestServicePlaceUnplaced(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, "home", &io.Board{Rows: 2, Cols: 4, Tiles: []io.Tile{
		{ID: "a", Kind: "switch", Row: intp(0), Col: intp(0)},
		{ID: "new", Kind: "camera", SpanX: 2},
	}})
	svc := newService(t, Options{Store: st})

	placed, err := svc.PlaceUnplaced(ctx, "home")
	if err != nil {
		t.Fatalf("PlaceUnplaced() error = %v", err)
	}
	if len(placed) != 1 || placed[0] != "new" {
		t.Errorf("PlaceUnplaced() = %v, want [new]", placed)
	}
	doc, _ := st.Load(ctx, "home")
	if !doc.Tiles[1].Placed() || *doc.Tiles[1].Col != 1 {
		t.Errorf("stored tile = %+v, want placed at col 1", doc.Tiles[1])
	}
}

func TestServiceConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, Options{})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, "home", "switch", grid.Unit, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, full int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errors.ErrCodeNoRoom):
			full++
		default:
			t.Errorf("Add() error = %v", err)
		}
	}
	if ok != 16 || full != 4 {
		t.Errorf("adds ok/full = %d/%d, want 16/4", ok, full)
	}
	res, _ := svc.Layout(ctx, "home")
	if err := res.Validate(); err != nil {
		t.Errorf("Layout() invalid: %v", err)
	}
}

func TestServiceClose(t *testing.T) {
	svc := New(Options{})
	svc.Close()
	svc.Close()
	if _, err := svc.Layout(context.Background(), "home"); err != ErrClosed {
		t.Errorf("Layout() after Close error = %v, want ErrClosed", err)
	}
}

func TestServiceDoContext(t *testing.T) {
	svc := newService(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Do(ctx, func() error { return nil }); err != context.Canceled {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestServiceReplace(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newService(t, Options{Store: st})

	if _, err := svc.Add(ctx, "home", "switch", grid.Unit, nil); err != nil {
		t.Fatal(err)
	}
	doc := &io.Board{Rows: 3, Cols: 5, Tiles: []io.Tile{
		{ID: "cam", Kind: "camera", Row: intp(1), Col: intp(1), SpanX: 2, SpanY: 2},
		{ID: "later", Kind: "switch"},
	}}
	if err := svc.Replace(ctx, "home", doc); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, _ := st.Load(ctx, "home")
	if got.Rows != 3 || got.Cols != 5 || len(got.Tiles) != 2 || got.Tiles[0].ID != "cam" {
		t.Errorf("stored board = %+v", got)
	}
	if got.Tiles[1].Placed() {
		t.Errorf("unplaced tile was placed: %+v", got.Tiles[1])
	}

	bad := &io.Board{Rows: 0, Cols: 4}
	if err := svc.Replace(ctx, "home", bad); !errors.Is(err, errors.ErrCodeInvalidGrid) {
		t.Errorf("Replace(0x4) error = %v, want INVALID_GRID", err)
	}
	res, _ := svc.Layout(ctx, "home")
	if res.Grid != (grid.Grid{Rows: 3, Cols: 5}) {
		t.Errorf("failed Replace changed the grid to %v", res.Grid)
	}
}
