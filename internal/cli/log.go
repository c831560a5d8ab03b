package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilegrid/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered board (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports engine, store and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.EngineHooks = logHooks{}
	_ observability.StoreHooks  = logHooks{}
	_ observability.CacheHooks  = logHooks{}
	_ observability.HTTPHooks   = logHooks{}
)

func (h logHooks) OnLayout(_ context.Context, board string, placements, forbidden int, d time.Duration) {
	h.logger.Debug("layout", "board", board, "placements", placements, "forbidden", forbidden, "duration", d)
}

func (h logHooks) OnPlan(_ context.Context, board, tileID, strategy string, ok bool, displaced int, d time.Duration) {
	h.logger.Debug("plan", "board", board, "tile", tileID, "strategy", strategy, "ok", ok, "displaced", displaced, "duration", d)
}

func (h logHooks) OnTick(_ context.Context, board, tileID, state string, applied bool) {
	h.logger.Debug("tick", "board", board, "tile", tileID, "state", state, "applied", applied)
}

func (h logHooks) OnCommit(_ context.Context, board, op string, err error) {
	if err != nil {
		h.logger.Debug("commit failed", "board", board, "op", op, "error", err)
		return
	}
	h.logger.Debug("commit", "board", board, "op", op)
}

func (h logHooks) OnLoad(_ context.Context, backend, board string, d time.Duration, err error) {
	h.logger.Debug("store load", "backend", backend, "board", board, "duration", d, "error", err)
}

func (h logHooks) OnSave(_ context.Context, backend, board string, d time.Duration, err error) {
	h.logger.Debug("store save", "backend", backend, "board", board, "duration", d, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}
