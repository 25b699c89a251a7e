package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glrs/lighthouse/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	s := tasks.NewScheduler(zap.NewNop(), time.Second)

	var runs atomic.Int32
	s.Add(tasks.Job{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if runs.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", runs.Load())
	}

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Error("job ran after Stop")
	}

	// Stop is idempotent.
	s.Stop()
}

func TestScheduler_RunOnce_ErrorDoesNotPanic(t *testing.T) {
	s := tasks.NewScheduler(zap.NewNop(), time.Second)

	called := false
	s.RunOnce(tasks.Job{
		Name: "failing",
		Run: func(ctx context.Context) error {
			called = true
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected a deadline on the job context")
			}
			return errors.New("boom")
		},
	})
	if !called {
		t.Error("expected job to run")
	}
}
