package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("board saved") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("plan", "tile", "lamp") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("plan", "tile", "lamp") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("plan cache unavailable") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("board saved")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("log line %q does not start with HH:MM:SS.ms", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.start = prog.start.Add(-42 * time.Millisecond)

	prog.done("Planned with greedy")

	out := buf.String()
	if !strings.Contains(out, "Planned with greedy (") || !strings.Contains(out, "ms)") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing", context.Background(), log.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnPlan(ctx, "home", "lamp", "greedy", true, 2, time.Millisecond)
	h.OnCommit(ctx, "home", "add", nil)
	h.OnCacheMiss(ctx, "plan")

	out := buf.String()
	for _, want := range []string{"plan", "board=home", "tile=lamp", "commit", "op=add", "cache miss"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := logHooks{newLogger(&buf, log.InfoLevel)}
	quiet.OnLayout(ctx, "home", 3, 0, time.Millisecond)
	if buf.Len() != 0 {
		t.Errorf("hooks logged above debug level: %s", buf.String())
	}
}

// Commands run with a debug logger report their store writes through the
// hooks installed by the root command.
func TestCommandLogsCommits(t *testing.T) {
	setupEnv(t)

	var logs bytes.Buffer
	c := New(&logs, LogDebug)
	root := c.RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"add", "switch", "-b", "porch"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("add: %v", err)
	}

	out := logs.String()
	for _, want := range []string{"commit", "board=porch", "op=add", "store save"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %q:\n%s", want, out)
		}
	}
}
