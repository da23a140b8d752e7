package errors

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/richxcame/gear-rental/pkg/config"
	"github.com/richxcame/gear-rental/pkg/logger"
	"github.com/richxcame/gear-rental/pkg/tracing"
)

// ErrNotConfigured is returned by InitSentry when no DSN is set
var ErrNotConfigured = fmt.Errorf("sentry DSN is not configured")

// sensitiveHeaders never leave the process in breadcrumbs
var sensitiveHeaders = []string{"Authorization", "Cookie", "X-API-Key", "X-Internal-API-Key"}

// InitSentry initializes the Sentry SDK. Without a DSN it returns
// ErrNotConfigured and capture calls stay no-ops.
func InitSentry(cfg config.ErrorTrackingConfig, environment, release, serverName string) error {
	if cfg.SentryDSN == "" {
		return ErrNotConfigured
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      environment,
		Release:          release,
		ServerName:       serverName,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
		BeforeSend:       dropLowSeverity,
		BeforeBreadcrumb: scrubBreadcrumb,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return nil
}

// Flush waits up to timeout for buffered events to be sent
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureError reports err tagged with the request's correlation and trace
// ids. A nil error is ignored.
func CaptureError(ctx context.Context, err error, tags map[string]string) *sentry.EventID {
	if err == nil {
		return nil
	}
	hub := requestHub(ctx, tags)
	return hub.CaptureException(err)
}

// CapturePanic reports a recovered panic value
func CapturePanic(ctx context.Context, recovered interface{}, tags map[string]string) *sentry.EventID {
	hub := requestHub(ctx, tags)
	return hub.RecoverWithContext(ctx, recovered)
}

func requestHub(ctx context.Context, tags map[string]string) *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	scope := hub.Scope()
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		scope.SetTag("correlation_id", id)
	}
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		scope.SetTag("trace_id", traceID)
	}
	for k, v := range tags {
		scope.SetTag(k, v)
	}
	return hub
}

func dropLowSeverity(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
		return nil
	}
	return event
}

func scrubBreadcrumb(breadcrumb *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) *sentry.Breadcrumb {
	if breadcrumb.Category == "http" && breadcrumb.Data != nil {
		for _, h := range sensitiveHeaders {
			delete(breadcrumb.Data, h)
		}
	}
	return breadcrumb
}
