package runner_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/tribunal/internal/runner"
)

func TestPool(t *testing.T) {
	var count atomic.Int32
	jobs := make([]runner.Job, 10)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) error {
			count.Add(1)
			return nil
		}
	}
	errs := runner.RunPool(context.Background(), 3, jobs)
	assert.Len(t, errs, 10)
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(10), count.Load())
}

func TestPoolWithErrors(t *testing.T) {
	jobs := []runner.Job{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return fmt.Errorf("fail") },
		func(ctx context.Context) error { return nil },
	}
	errs := runner.RunPool(context.Background(), 2, jobs)
	assert.NoError(t, errs[0])
	assert.EqualError(t, errs[1], "fail")
	assert.NoError(t, errs[2])
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	jobs := make([]runner.Job, 8)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		}
	}
	runner.RunPool(context.Background(), 2, jobs)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoolCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Int32
	jobs := []runner.Job{
		func(ctx context.Context) error { ran.Add(1); return nil },
		func(ctx context.Context) error { ran.Add(1); return nil },
	}
	errs := runner.RunPool(ctx, 1, jobs)
	assert.ErrorIs(t, errs[0], context.Canceled)
	assert.ErrorIs(t, errs[1], context.Canceled)
	assert.Zero(t, ran.Load())
}
