package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	spinnerFrames   = "⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏"
	spinnerInterval = 80 * time.Millisecond
)

// Spinner animates a message on stderr while a fetch or render runs. Frames
// are only drawn when stderr is a terminal; the final status line always
// goes to out.
type Spinner struct {
	w       io.Writer
	out     io.Writer
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	exited  chan struct{}
	once    sync.Once
	mu      sync.Mutex
	message string
	started bool
	stopped bool
}

func newSpinner(ctx context.Context, out io.Writer, message string) *Spinner {
	var w io.Writer = io.Discard
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = os.Stderr
	}
	inner, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		out:     out,
		parent:  ctx,
		ctx:     inner,
		cancel:  cancel,
		exited:  make(chan struct{}),
		message: message,
	}
}

// Start draws frames until Stop is called or the context ends.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.exited)
		tick := time.NewTicker(spinnerInterval)
		defer tick.Stop()
		frames := []rune(spinnerFrames)
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-tick.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(string(frames[i%len(frames)])), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Update swaps the message, padding it so no tail of the old one is left
// on screen.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.message) - len(message); n > 0 {
		message += strings.Repeat(" ", n)
	}
	s.message = message
}

// Stop ends the animation and clears its line. Extra calls do nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		started := s.started
		s.mu.Unlock()

		s.cancel()
		if started {
			<-s.exited
		}
	})
}

// StopWithSuccess stops and prints a success line to out.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	printSuccess(s.out, format, args...)
}

// StopWithError stops and prints an error line to out.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.Stop()
	printError(s.out, format, args...)
}

// Cancelled reports whether the caller's context ended while the spinner
// was still running.
func (s *Spinner) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && s.parent.Err() != nil
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
