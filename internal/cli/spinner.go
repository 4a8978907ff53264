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

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner is a single-line progress indicator. It stops on its own when the
// context it was created with is cancelled.
type Spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	message string
	width   int // widest message shown, for clearing the line

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stopped   chan struct{}
}

// newSpinner creates a spinner writing to stderr.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a stderr spinner bound to ctx.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		message: message,
		width:   len(message),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Calling it again has no effect.
func (s *Spinner) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		go s.run()
	})
}

func (s *Spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if len(message) > s.width {
		s.width = len(message)
	}
}

// Progress reports download progress in the shape of bundle.Options.Progress
// and starts the spinner on the first call.
func (s *Spinner) Progress(index, total int, pkg string) {
	s.SetMessage(fmt.Sprintf("Downloading %s (%d/%d)", pkg, index+1, total))
	s.Start()
}

// Stop stops the spinner and clears the line. It is safe to call more than
// once and on a spinner that was never started.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// Cancelled reports whether the context the spinner was created with has
// ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
