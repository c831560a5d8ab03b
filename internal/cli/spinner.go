package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerDelay is how long an operation runs before the spinner appears.
// Most plans finish well below it and print nothing.
var spinnerDelay = 150 * time.Millisecond

// Spinner shows a progress indicator on stderr while a slow operation
// (exhaustive planning, graphviz layout) runs.
type Spinner struct {
	w       io.Writer
	delay   time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string

	mu      sync.Mutex
	message string
	drawn   int
	once    sync.Once
}

// newSpinnerWithContext creates a spinner that stops when ctx is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       os.Stderr,
		delay:   spinnerDelay,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the animation after the spinner delay.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)

		wait := time.NewTimer(s.delay)
		defer wait.Stop()
		select {
		case <-s.ctx.Done():
			return
		case <-s.done:
			return
		case <-wait.C:
		}

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.draw(s.frames[i%len(s.frames)])
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop stops the spinner and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
	})
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := fmt.Sprintf("%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
	fmt.Fprintf(s.w, "\r%s", line)
	s.drawn = max(s.drawn, len(s.message)+2)
}

// clearLine blanks whatever the spinner drew. Nothing is written when the
// spinner never appeared.
func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn+2))
	s.drawn = 0
}

// Cancelled reports whether the spinner's context was cancelled from
// outside, as opposed to stopped with Stop.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}

// withSpinner runs fn while a spinner shows message. show=false runs fn
// without one.
func withSpinner[T any](ctx context.Context, show bool, message string, fn func() (T, error)) (T, error) {
	if !show {
		return fn()
	}
	s := newSpinnerWithContext(ctx, message)
	s.Start()
	defer s.Stop()
	return fn()
}
