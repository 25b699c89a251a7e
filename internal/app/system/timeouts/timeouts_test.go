package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Short: 42 * time.Second})

	if got := timeouts.Short(); got != 42*time.Second {
		t.Errorf("Short: got %v, want 42s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", got, timeouts.DefaultMedium)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Batch: time.Hour})
	timeouts.Reset()
	if got := timeouts.Batch(); got != timeouts.DefaultBatch {
		t.Errorf("Batch after Reset: got %v, want %v", got, timeouts.DefaultBatch)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", ctx.Err())
	}
}
