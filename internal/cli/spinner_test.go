package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Annealing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	// Stop must return cleanly while the animation goroutine is running.
	s.Stop()
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Annealing...")
	s.Start()

	cancel()

	// Give the animation goroutine time to observe the cancellation.
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after its context is cancelled")
	}
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Rendering...")
	s.Start()

	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after its context times out")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Annealing...")
	s.Start()

	// Repeated stops must not panic or deadlock.
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Annealing...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Placed 4 macros")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Annealing...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("placement failed")
}
