package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Database span attributes
const (
	DBSystemKey    = attribute.Key("db.system")
	DBStatementKey = attribute.Key("db.statement")
	DBOperationKey = attribute.Key("db.operation")
)

// Fraud engine span attributes
const (
	UserIDKey       = attribute.Key("user.id")
	ActionTypeKey   = attribute.Key("fraud.action_type")
	RiskScoreKey    = attribute.Key("fraud.risk_score")
	RiskLevelKey    = attribute.Key("fraud.risk_level")
	SignalsCountKey = attribute.Key("fraud.signals_count")
	CacheHitKey     = attribute.Key("cache.hit")
)

// TraceDBQuery wraps a database query with a client span
func TraceDBQuery(ctx context.Context, tracerName, operation, query string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("db.%s", operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			DBSystemKey.String("postgresql"),
			DBOperationKey.String(operation),
			DBStatementKey.String(query),
		),
	)
	err := fn(ctx)
	EndSpan(span, err)
	return err
}

// TraceExternalAPI wraps a call to an outside provider with a client span
func TraceExternalAPI(ctx context.Context, tracerName, serviceName, operation string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("%s.%s", serviceName, operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("external.service", serviceName),
			attribute.String("external.operation", operation),
		),
	)
	err := fn(ctx)
	EndSpan(span, err)
	return err
}

// AssessmentAttributes describes the action an assessment span covers
func AssessmentAttributes(userID, actionType string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if userID != "" {
		attrs = append(attrs, UserIDKey.String(userID))
	}
	if actionType != "" {
		attrs = append(attrs, ActionTypeKey.String(actionType))
	}
	return attrs
}
