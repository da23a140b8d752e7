package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/richxcame/gear-rental/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTripsAndReturnsOpenError(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-breaker",
		Timeout:          50 * time.Millisecond,
		Interval:         50 * time.Millisecond,
		FailureThreshold: 2,
		SuccessThreshold: 1,
	})

	ctx := context.Background()
	failingOp := func(context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	}

	for i := 0; i < 2; i++ {
		_, err := breaker.Execute(ctx, failingOp)
		require.Error(t, err, "iteration %d", i)
	}

	assert.False(t, breaker.Allow(), "breaker should be open after consecutive failures")

	_, err := breaker.Execute(ctx, func(context.Context) (interface{}, error) {
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerPassesThroughOnSuccess(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "success-breaker",
		Timeout:          time.Second,
		Interval:         time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 1,
	})

	result, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
		return "response", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "response", result)
}

func TestCircuitBreakerNilOperation(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{Name: "nil-op"})
	_, err := breaker.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig("reputation", config.BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		TimeoutSeconds:   10,
		IntervalSeconds:  20,
	})

	assert.Equal(t, "reputation", s.Name)
	assert.Equal(t, uint32(3), s.FailureThreshold)
	assert.Equal(t, uint32(2), s.SuccessThreshold)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, 20*time.Second, s.Interval)
}
