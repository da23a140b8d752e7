package async_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/richxcame/gear-rental/pkg/async"
	"github.com/richxcame/gear-rental/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureContext(t *testing.T) {
	ctx := logger.ContextWithCorrelationID(context.Background(), "test-correlation-123")

	tc := async.CaptureContext(ctx, "test-task")

	assert.Equal(t, "test-correlation-123", tc.CorrelationID)
	assert.Equal(t, "test-task", tc.TaskName)
	assert.False(t, tc.StartTime.IsZero())
}

func TestGoWithTimeout_PropagatesContext(t *testing.T) {
	ctx := logger.ContextWithCorrelationID(context.Background(), "test-go-correlation")

	var capturedID string
	var hasDeadline bool
	var wg sync.WaitGroup
	wg.Add(1)

	async.GoWithTimeout(ctx, "test-task", time.Second, func(ctx context.Context) {
		defer wg.Done()
		capturedID = logger.CorrelationIDFromContext(ctx)
		_, hasDeadline = ctx.Deadline()
	})

	wg.Wait()
	assert.Equal(t, "test-go-correlation", capturedID)
	assert.True(t, hasDeadline)
}

func TestGoWithTimeout_RecoversPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	async.GoWithTimeout(context.Background(), "panic-task", time.Second, func(ctx context.Context) {
		defer wg.Done()
		panic("test panic")
	})

	wg.Wait()
}

func TestGather_PreservesTaskOrder(t *testing.T) {
	results, err := async.Gather[string](context.Background(), "ordered",
		func(ctx context.Context) (string, error) {
			time.Sleep(30 * time.Millisecond)
			return "first", nil
		},
		func(ctx context.Context) (string, error) {
			return "second", nil
		},
		func(ctx context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "third", nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, results)
}

func TestGather_RunsConcurrently(t *testing.T) {
	var running, peak int32
	task := func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return 1, nil
	}

	_, err := async.Gather[int](context.Background(), "concurrent", task, task, task)
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
}

func TestGather_ReturnsLowestIndexError(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	_, err := async.Gather[int](context.Background(), "errors",
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) {
			time.Sleep(20 * time.Millisecond)
			return 0, errA
		},
		func(ctx context.Context) (int, error) { return 0, errB },
	)

	assert.ErrorIs(t, err, errA)
}

func TestGather_ConvertsPanic(t *testing.T) {
	_, err := async.Gather[int](context.Background(), "panics",
		func(ctx context.Context) (int, error) { panic("boom") },
	)

	var panicErr *async.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, 0, panicErr.Index)
	assert.Equal(t, "boom", panicErr.Value)
}

func TestGather_SharesCallerContext(t *testing.T) {
	ctx := logger.ContextWithCorrelationID(context.Background(), "gather-id")

	results, err := async.Gather[string](ctx, "ctx",
		func(ctx context.Context) (string, error) { return logger.CorrelationIDFromContext(ctx), nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"gather-id"}, results)
}

func TestGather_NoTasks(t *testing.T) {
	results, err := async.Gather[int](context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, results)
}
