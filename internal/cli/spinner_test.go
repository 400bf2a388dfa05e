package cli

import (
	"context"
	"testing"
	"time"

	"github.com/traceloom/traceloom/pkg/errors"
)

func TestCallSpinnerDoneReportsElapsed(t *testing.T) {
	s := newCallSpinner(context.Background(), "GET", "https://api.test/v1")
	s.Start()
	time.Sleep(50 * time.Millisecond)

	if got := s.Done(nil); got < 50*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 50ms", got)
	}
}

func TestCallSpinnerDoneTwice(t *testing.T) {
	s := newCallSpinner(context.Background(), "GET", "https://api.test/v1")
	s.Start()
	s.Done(nil)
	// Second call must not panic or block, only report elapsed time.
	if got := s.Done(errors.New(errors.ErrCodeTimeout, "late")); got <= 0 {
		t.Errorf("elapsed = %v, want > 0", got)
	}
}

func TestCallSpinnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newCallSpinner(ctx, "GET", "https://api.test/v1")
	s.Start()
	cancel()

	// Done must still return promptly after the animation goroutine
	// exited on its own.
	done := make(chan struct{})
	go func() {
		s.Done(context.Canceled)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Done blocked after context cancellation")
	}
}
