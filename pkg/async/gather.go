package async

import (
	"context"
	"fmt"
	"time"

	"github.com/richxcame/gear-rental/pkg/logger"
	"go.uber.org/zap"
)

// Task is one independent computation fanned out by Gather
type Task[T any] func(ctx context.Context) (T, error)

// PanicError is returned in place of a result when a task panics
type PanicError struct {
	Task  string
	Index int
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %s[%d] panicked: %v", e.Task, e.Index, e.Value)
}

// Gather runs every task concurrently under the caller's context and waits
// for all of them. Results are returned in task order regardless of
// completion order. If any task fails, the error of the lowest-index failing
// task is returned along with the (partial) results.
//
// Usage:
//
//	results, err := async.Gather(ctx, "fraud-analyzers",
//	    func(ctx context.Context) ([]Signal, error) { return behavior(ctx) },
//	    func(ctx context.Context) ([]Signal, error) { return device(ctx) },
//	)
func Gather[T any](ctx context.Context, taskName string, tasks ...Task[T]) ([]T, error) {
	start := time.Now()
	results := make([]T, len(tasks))
	errs := make([]error, len(tasks))

	done := make(chan struct{}, len(tasks))
	for i, task := range tasks {
		go func(idx int, fn Task[T]) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "async task panicked",
						zap.String("task", taskName),
						zap.Int("index", idx),
						zap.Any("panic", r),
					)
					errs[idx] = &PanicError{Task: taskName, Index: idx, Value: r}
				}
				done <- struct{}{}
			}()
			results[idx], errs[idx] = fn(ctx)
		}(i, task)
	}

	for range tasks {
		<-done
	}

	logger.DebugContext(ctx, "all async tasks completed",
		zap.String("task", taskName),
		zap.Int("count", len(tasks)),
		zap.Duration("duration", time.Since(start)),
	)

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
