package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitTracer_Disabled(t *testing.T) {
	tp, err := InitTracer(Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestSampler_EnvironmentDefaults(t *testing.T) {
	assert.Contains(t, Sampler(Config{Environment: "production"}).Description(), "0.1")
	assert.Contains(t, Sampler(Config{Environment: "staging"}).Description(), "0.5")
	assert.Contains(t, Sampler(Config{SampleRate: 0.25, Environment: "production"}).Description(), "0.25")
}

func TestTraceDBQuery_ReturnsCallbackError(t *testing.T) {
	boom := errors.New("boom")
	err := TraceDBQuery(context.Background(), "test", "select", "SELECT 1", func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestTraceExternalAPI_PassesContext(t *testing.T) {
	called := false
	err := TraceExternalAPI(context.Background(), "test", "reputation", "lookup", func(ctx context.Context) error {
		called = ctx != nil
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestAssessmentAttributes(t *testing.T) {
	assert.Len(t, AssessmentAttributes("", ""), 0)
	attrs := AssessmentAttributes("u1", "send_message")
	require.Len(t, attrs, 2)
	assert.Equal(t, UserIDKey, attrs[0].Key)
	assert.Equal(t, "send_message", attrs[1].Value.AsString())
}
