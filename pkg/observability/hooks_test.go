package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPlaceHooks struct {
	starts, steps, completes int
}

func (r *recordingPlaceHooks) OnRunStart(context.Context, string, int)               { r.starts++ }
func (r *recordingPlaceHooks) OnStep(context.Context, string, int, float64, float64) { r.steps++ }
func (r *recordingPlaceHooks) OnRunComplete(context.Context, string, float64, time.Duration, error) {
	r.completes++
}

func TestSetPlaceHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingPlaceHooks{}
	SetPlaceHooks(rec)

	ctx := context.Background()
	Place().OnRunStart(ctx, "run-1", 4)
	Place().OnStep(ctx, "run-1", 1, 10.0, 2.5)
	Place().OnRunComplete(ctx, "run-1", 1.2, time.Second, nil)

	if rec.starts != 1 || rec.steps != 1 || rec.completes != 1 {
		t.Errorf("hooks not invoked: starts=%d steps=%d completes=%d", rec.starts, rec.steps, rec.completes)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingPlaceHooks{}
	SetPlaceHooks(rec)
	SetPlaceHooks(nil)

	Place().OnRunStart(context.Background(), "run-1", 1)
	if rec.starts != 1 {
		t.Error("nil registration replaced existing hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingPlaceHooks{}
	SetPlaceHooks(rec)
	Reset()

	if _, ok := Place().(NoopPlaceHooks); !ok {
		t.Error("Reset did not restore the no-op hooks")
	}
}
