package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/io"
	"github.com/matzehuels/tilegrid/pkg/resize"
)

// =============================================================================
// Wire types
// =============================================================================

// tileResponse is the JSON form of a configured tile.
type tileResponse struct {
	ID     string         `json:"id"`
	Kind   grid.Kind      `json:"kind"`
	Placed bool           `json:"placed"`
	Row    int            `json:"row"`
	Col    int            `json:"col"`
	SpanX  int            `json:"span_x"`
	SpanY  int            `json:"span_y"`
	Meta   map[string]any `json:"meta,omitempty"`
}

func toTileResponse(t grid.Tile) tileResponse {
	return tileResponse{
		ID:     t.ID,
		Kind:   t.Kind,
		Placed: t.Placed,
		Row:    t.Anchor.Row,
		Col:    t.Anchor.Col,
		SpanX:  t.Span.X,
		SpanY:  t.Span.Y,
		Meta:   t.Meta,
	}
}

type spanRequest struct {
	SpanX int `json:"span_x"`
	SpanY int `json:"span_y"`
}

func (r spanRequest) span() grid.Span { return grid.Span{X: r.SpanX, Y: r.SpanY} }

type addTileRequest struct {
	Kind  string         `json:"kind"`
	SpanX int            `json:"span_x"`
	SpanY int            `json:"span_y"`
	Meta  map[string]any `json:"meta"`
}

type moveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type gridRequest struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type resizeRequest struct {
	TileID string `json:"tile_id"`
	SpanX  int    `json:"span_x"`
	SpanY  int    `json:"span_y"`
	// DryRun plans without applying.
	DryRun bool `json:"dry_run"`
}

type beginRequest struct {
	TileID string `json:"tile_id"`
}

type tickResponse struct {
	resize.TickResult
	State string `json:"state"`
}

// =============================================================================
// Handlers
// =============================================================================

func boardID(r *http.Request) string { return chi.URLParam(r, "id") }

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Boards(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"boards": ids})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Board(r.Context(), boardID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleReplaceBoard(w http.ResponseWriter, r *http.Request) {
	var doc io.Board
	if err := decode(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Replace(r.Context(), boardID(r), &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleLayout(w, r)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Layout(r.Context(), boardID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSetGrid(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.SetGrid(r.Context(), boardID(r), req.Rows, req.Cols); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleLayout(w, r)
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	span, err := spanQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	at, err := s.svc.FirstEmpty(r.Context(), boardID(r), span)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, at)
}

// spanQuery reads span_x and span_y from the query string. Missing values
// default to one cell.
func spanQuery(r *http.Request) (grid.Span, error) {
	span := grid.Unit
	for key, dst := range map[string]*int{"span_x": &span.X, "span_y": &span.Y} {
		v := r.URL.Query().Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return span, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", key, v)
		}
		*dst = n
	}
	return span, nil
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	placed, err := s.svc.PlaceUnplaced(r.Context(), boardID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if placed == nil {
		placed = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"placed": placed})
}

func (s *Server) handleAddTile(w http.ResponseWriter, r *http.Request) {
	var req addTileRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	span := grid.Span{X: req.SpanX, Y: req.SpanY}
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	t, err := s.svc.Add(r.Context(), boardID(r), grid.Kind(req.Kind), span, req.Meta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTileResponse(t))
}

func (s *Server) handleDuplicateTile(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Duplicate(r.Context(), boardID(r), chi.URLParam(r, "tile"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTileResponse(t))
}

func (s *Server) handleClearTile(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Clear(r.Context(), boardID(r), chi.URLParam(r, "tile")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveTile(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	swapped, err := s.svc.Move(r.Context(), boardID(r), chi.URLParam(r, "tile"), grid.Cell{Row: req.Row, Col: req.Col})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"swapped": swapped})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	span := grid.Span{X: req.SpanX, Y: req.SpanY}
	plan := s.svc.Resize
	if req.DryRun {
		plan = s.svc.PlanResize
	}
	p, err := plan(r.Context(), boardID(r), req.TileID, span)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleBeginResize(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.BeginResize(r.Context(), boardID(r), req.TileID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": resize.Dragging.String(), "tile_id": req.TileID})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req spanRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Tick(r.Context(), boardID(r), req.span())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tickResponse{TickResult: res, State: res.State.String()})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	committed, err := s.svc.Release(r.Context(), boardID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"committed": committed})
}
