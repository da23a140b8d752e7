package fraud

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/gear-rental/pkg/async"
	"github.com/richxcame/gear-rental/pkg/cache"
	"github.com/richxcame/gear-rental/pkg/logger"
	"github.com/richxcame/gear-rental/pkg/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ServiceInterface is what the HTTP layer depends on
type ServiceInterface interface {
	AssessRisk(ctx context.Context, userID uuid.UUID, action ActionType, actx ActionContext) (*Assessment, error)
	CheckFraudRisk(ctx context.Context, userID uuid.UUID, action ActionType, actx ActionContext) (bool, error)
	CheckDeviceTrustLevel(ctx context.Context, ip, userAgent, fingerprint string) (*DeviceTrustResult, error)
	MonitorUserActivity(ctx context.Context, userID uuid.UUID) ([]Signal, error)
	GetUserRiskProfile(ctx context.Context, userID uuid.UUID) (*UserRiskSummary, error)
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

var _ ServiceInterface = (*Service)(nil)

// Dependencies are the collaborators of a Service. Only Repository is
// required; everything else falls back to a no-op or default.
type Dependencies struct {
	Repository    RepositoryInterface
	Cache         Cache
	Audit         AuditSink
	Reputation    ReputationProvider
	Fingerprints  FingerprintAnalyzer
	Communication CommunicationProfiler
	Devices       DeviceHistory
	Now           func() time.Time
	// Timeout bounds a whole AssessRisk call. Zero means no bound.
	Timeout    time.Duration
	ProfileTTL time.Duration
	MonitorTTL time.Duration
}

// Service assesses the fraud risk of marketplace actions
type Service struct {
	profiles   *ProfileBuilder
	device     *DeviceAnalyzer
	listing    *ListingAnalyzer
	cache      Cache
	audit      AuditSink
	now        func() time.Time
	timeout    time.Duration
	monitorTTL time.Duration
}

// NewService creates a fraud assessment service
func NewService(deps Dependencies) *Service {
	if deps.Cache == nil {
		deps.Cache = noCache{}
	}
	if deps.Audit == nil {
		deps.Audit = discardAudit{}
	}
	if deps.Reputation == nil {
		deps.Reputation = noopReputation{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MonitorTTL <= 0 {
		deps.MonitorTTL = cache.TTL.Long()
	}

	return &Service{
		profiles:   NewProfileBuilder(deps.Repository, deps.Cache, deps.Communication, deps.Devices, deps.Now, deps.ProfileTTL),
		device:     &DeviceAnalyzer{reputation: deps.Reputation, fingerprints: deps.Fingerprints},
		listing:    &ListingAnalyzer{repo: deps.Repository},
		cache:      deps.Cache,
		audit:      deps.Audit,
		now:        deps.Now,
		timeout:    deps.Timeout,
		monitorTTL: deps.MonitorTTL,
	}
}

// AssessRisk evaluates one user action and records the verdict. A blocked
// action is a successful return with AllowTransaction false; an error means
// no verdict could be reached.
func (s *Service) AssessRisk(ctx context.Context, userID uuid.UUID, action ActionType, actx ActionContext) (_ *Assessment, err error) {
	if !action.Valid() {
		return nil, ErrInvalidActionType
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "fraud.assess_risk",
		trace.WithAttributes(tracing.AssessmentAttributes(userID.String(), string(action))...),
	)
	defer func() { tracing.EndSpan(span, err) }()

	profile, err := s.profiles.Build(ctx, userID)
	if err != nil {
		return nil, deadlineError(ctx, err)
	}

	results, err := async.Gather[[]Signal](ctx, "fraud-analyzers", s.analyzersFor(profile, action, actx)...)
	if err != nil {
		return nil, deadlineError(ctx, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, deadlineError(ctx, ctxErr)
	}

	signals := flatten(results)
	assessment := newAssessment(userID, action, actx, Score(profile, signals), signals, s.now())

	if err := s.audit.Record(ctx, assessment); err != nil {
		return nil, deadlineError(ctx, transient("failed to record assessment", err))
	}

	recordAssessment(assessment, time.Since(start).Seconds())
	span.SetAttributes(
		tracing.RiskScoreKey.Float64(assessment.RiskScore),
		tracing.RiskLevelKey.String(string(assessment.RiskLevel)),
		tracing.SignalsCountKey.Int(len(assessment.Signals)),
	)
	return assessment, nil
}

// analyzersFor returns the analyzers that apply to the action, in
// invocation order. Signal order in the assessment follows this order.
func (s *Service) analyzersFor(p *UserBehaviorProfile, action ActionType, actx ActionContext) []async.Task[[]Signal] {
	tasks := []async.Task[[]Signal]{
		func(context.Context) ([]Signal, error) {
			return analyzeBehavior(p, action), nil
		},
	}

	if actx.hasDeviceInfo() {
		tasks = append(tasks, func(ctx context.Context) ([]Signal, error) {
			return s.device.Analyze(ctx, actx.IPAddress, actx.UserAgent, actx.DeviceFingerprint), nil
		})
	}
	if action == ActionCreateListing && actx.GearID != nil {
		gearID := *actx.GearID
		tasks = append(tasks, func(ctx context.Context) ([]Signal, error) {
			return s.listing.Analyze(ctx, gearID)
		})
	}
	if action == ActionSendMessage && actx.Message != "" {
		tasks = append(tasks, func(context.Context) ([]Signal, error) {
			return analyzeCommunication(actx.Message, p), nil
		})
	}
	if action == ActionProcessPayment && actx.Amount != nil {
		amount := *actx.Amount
		tasks = append(tasks, func(context.Context) ([]Signal, error) {
			return analyzePayment(amount, p), nil
		})
	}

	return tasks
}

// CheckFraudRisk reports whether the action may proceed
func (s *Service) CheckFraudRisk(ctx context.Context, userID uuid.UUID, action ActionType, actx ActionContext) (bool, error) {
	assessment, err := s.AssessRisk(ctx, userID, action, actx)
	if err != nil {
		return false, err
	}
	if !assessment.AllowTransaction {
		logger.WithContext(ctx).Warn("fraud check rejected action",
			zap.String("user_id", userID.String()),
			zap.String("action_type", string(action)),
			zap.Float64("risk_score", assessment.RiskScore),
		)
	}
	return assessment.AllowTransaction, nil
}

// CheckDeviceTrustLevel rates a device from its address, user agent and
// fingerprint alone.
func (s *Service) CheckDeviceTrustLevel(ctx context.Context, ip, userAgent, fingerprint string) (*DeviceTrustResult, error) {
	signals := s.device.Analyze(ctx, ip, userAgent, fingerprint)
	if err := ctx.Err(); err != nil {
		return nil, deadlineError(ctx, err)
	}
	if signals == nil {
		signals = []Signal{}
	}
	return &DeviceTrustResult{
		TrustLevel: classifyDeviceTrust(signals),
		Signals:    signals,
	}, nil
}

// MonitorUserActivity runs the passive velocity and behaviour sweep for a
// user. Results are cached under fraud_monitor:{id}.
func (s *Service) MonitorUserActivity(ctx context.Context, userID uuid.UUID) ([]Signal, error) {
	key := cache.Keys.FraudMonitor(userID.String())

	var cached []Signal
	switch err := s.cache.Get(ctx, key, &cached); {
	case err == nil:
		if cached == nil {
			cached = []Signal{}
		}
		return cached, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		return nil, transient("failed to read monitoring cache", err)
	}

	profile, err := s.profiles.Build(ctx, userID)
	if err != nil {
		return nil, deadlineError(ctx, err)
	}

	results, err := async.Gather[[]Signal](ctx, "fraud-monitor",
		func(context.Context) ([]Signal, error) { return analyzeVelocity(userID, profile), nil },
		func(context.Context) ([]Signal, error) { return analyzeBehavior(profile, ""), nil },
	)
	if err != nil {
		return nil, deadlineError(ctx, err)
	}
	signals := flatten(results)

	if err := s.cache.Set(ctx, key, signals, s.monitorTTL); err != nil {
		logger.WithContext(ctx).Warn("failed to cache monitoring signals",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return signals, nil
}

// GetUserRiskProfile summarises the monitoring sweep into a trust score
func (s *Service) GetUserRiskProfile(ctx context.Context, userID uuid.UUID) (*UserRiskSummary, error) {
	signals, err := s.MonitorUserActivity(ctx, userID)
	if err != nil {
		return nil, err
	}

	weighted := weightedSignalSum(signals)
	level := RiskLevelLow
	switch {
	case weighted >= thresholdHigh:
		level = RiskLevelHigh
	case weighted >= thresholdMedium:
		level = RiskLevelMedium
	}

	return &UserRiskSummary{
		UserID:     userID,
		RiskLevel:  level,
		Signals:    signals,
		TrustScore: math.Max(0, 100-weighted),
	}, nil
}

// InvalidateUser drops every cached entry for the user
func (s *Service) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.profiles.Invalidate(ctx, userID); err != nil {
		return err
	}
	logger.WithContext(ctx).Info("fraud cache invalidated", zap.String("user_id", userID.String()))
	return nil
}

func flatten(groups [][]Signal) []Signal {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]Signal, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
