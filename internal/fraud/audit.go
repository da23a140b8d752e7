package fraud

import (
	"context"
	"time"

	"github.com/richxcame/gear-rental/pkg/async"
	"github.com/richxcame/gear-rental/pkg/eventbus"
	"github.com/richxcame/gear-rental/pkg/logger"
	"go.uber.org/zap"
)

const (
	eventSource    = "fraud-service"
	publishTimeout = 5 * time.Second
)

// AssessmentWriter appends assessments to durable storage. *Repository
// satisfies it.
type AssessmentWriter interface {
	InsertAssessment(ctx context.Context, a *Assessment) error
}

// AuditLog is the default AuditSink. It stores the assessment, logs it and
// announces blocked actions on the event bus.
type AuditLog struct {
	store     AssessmentWriter
	publisher eventbus.Publisher
}

// NewAuditLog creates an audit sink. Either argument may be nil.
func NewAuditLog(store AssessmentWriter, publisher eventbus.Publisher) *AuditLog {
	return &AuditLog{store: store, publisher: publisher}
}

// Record implements AuditSink. Only a storage failure is returned.
func (l *AuditLog) Record(ctx context.Context, a *Assessment) error {
	if l.store != nil {
		if err := l.store.InsertAssessment(ctx, a); err != nil {
			return transient("failed to store assessment", err)
		}
	}

	log := logger.WithContext(ctx)
	log.Info("fraud assessment completed",
		zap.String("userId", a.UserID.String()),
		zap.String("actionType", string(a.ActionType)),
		zap.Float64("riskScore", a.RiskScore),
		zap.String("riskLevel", string(a.RiskLevel)),
		zap.Int("signalsCount", len(a.Signals)),
		zap.Bool("allowTransaction", a.AllowTransaction),
	)

	if a.AllowTransaction {
		return nil
	}

	log.Warn("transaction blocked by fraud assessment",
		zap.String("userId", a.UserID.String()),
		zap.String("actionType", string(a.ActionType)),
		zap.Float64("riskScore", a.RiskScore),
		zap.String("riskLevel", string(a.RiskLevel)),
	)
	l.publishDetected(ctx, a)
	return nil
}

func (l *AuditLog) publishDetected(ctx context.Context, a *Assessment) {
	if l.publisher == nil {
		return
	}

	types := make([]string, 0, len(a.Signals))
	seen := make(map[SignalType]bool, len(a.Signals))
	for _, s := range a.Signals {
		if !seen[s.Type] {
			seen[s.Type] = true
			types = append(types, string(s.Type))
		}
	}

	event, err := eventbus.NewEvent(eventbus.SubjectFraudDetected, eventSource, eventbus.FraudDetectedData{
		UserID:       a.UserID,
		ActionType:   string(a.ActionType),
		RiskScore:    a.RiskScore,
		RiskLevel:    string(a.RiskLevel),
		SignalTypes:  types,
		SignalsCount: len(a.Signals),
		DetectedAt:   a.AssessedAt,
	})
	if err != nil {
		logger.WithContext(ctx).Warn("failed to build fraud.detected event", zap.Error(err))
		return
	}

	async.GoWithTimeout(ctx, "publish-fraud-detected", publishTimeout, func(ctx context.Context) {
		if err := l.publisher.Publish(ctx, eventbus.SubjectFraudDetected, event); err != nil {
			logger.WithContext(ctx).Warn("failed to publish fraud.detected event",
				zap.String("userId", a.UserID.String()),
				zap.Error(err),
			)
		}
	})
}
