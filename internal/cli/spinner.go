package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames are the animation frames shown while a call is in flight.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// callSpinner animates one in-flight probed call on stderr. The frame
// line shows the method, the target, and a ticking elapsed clock; Done
// replaces it with the call's outcome line.
type callSpinner struct {
	method string
	target string
	start  time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// newCallSpinner creates a spinner for one call against target.
// The animation stops on its own when ctx is cancelled.
func newCallSpinner(ctx context.Context, method, target string) *callSpinner {
	spinCtx, cancel := context.WithCancel(ctx)
	return &callSpinner{
		method:  method,
		target:  target,
		ctx:     spinCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation and the elapsed clock.
func (s *callSpinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.render(spinnerFrames[i%len(spinnerFrames)])
				i++
			}
		}
	}()
}

// Done stops the animation and prints the outcome line: a green check
// when the call succeeded, a red cross when it failed, either way with
// the call's elapsed time. It returns that elapsed time. Calling Done
// again is a no-op beyond returning the current elapsed time.
func (s *callSpinner) Done(err error) time.Duration {
	elapsed := time.Since(s.start)
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()

		line := s.outcome(elapsed)
		if err != nil {
			printError("%s", line)
		} else {
			printSuccess("%s", line)
		}
	})
	return elapsed
}

// outcome renders "GET https://api.test/v1 (241ms)".
func (s *callSpinner) outcome(elapsed time.Duration) string {
	return fmt.Sprintf("%s %s (%s)", s.method, s.target, elapsed.Round(time.Millisecond))
}

func (s *callSpinner) render(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.outcome(time.Since(s.start).Round(100 * time.Millisecond))
	fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
}

func (s *callSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	width := len(s.method) + len(s.target) + 16
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", width))
}
