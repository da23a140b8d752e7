package fraud

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/gear-rental/pkg/cache"
	"github.com/richxcame/gear-rental/pkg/logger"
	"github.com/richxcame/gear-rental/pkg/tracing"
	"go.uber.org/zap"
)

const tracerName = "fraud"

// ProfileBuilder turns a user's stored history into a UserBehaviorProfile and
// caches it under user_profile:{id}.
type ProfileBuilder struct {
	repo    RepositoryInterface
	cache   Cache
	comms   CommunicationProfiler
	devices DeviceHistory
	now     func() time.Time
	ttl     time.Duration
}

// NewProfileBuilder creates a profile builder. A zero ttl means one hour.
func NewProfileBuilder(repo RepositoryInterface, c Cache, comms CommunicationProfiler, devices DeviceHistory, now func() time.Time, ttl time.Duration) *ProfileBuilder {
	if c == nil {
		c = noCache{}
	}
	if comms == nil {
		comms = defaultCommunicationProfiler{}
	}
	if devices == nil {
		devices = emptyDeviceHistory{}
	}
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = cache.TTL.Long()
	}
	return &ProfileBuilder{repo: repo, cache: c, comms: comms, devices: devices, now: now, ttl: ttl}
}

// Build returns the cached profile or rebuilds it from the repository
func (b *ProfileBuilder) Build(ctx context.Context, userID uuid.UUID) (_ *UserBehaviorProfile, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "fraud.build_profile")
	defer func() { tracing.EndSpan(span, err) }()
	span.SetAttributes(tracing.UserIDKey.String(userID.String()))

	key := cache.Keys.UserProfile(userID.String())

	var cached UserBehaviorProfile
	switch cerr := b.cache.Get(ctx, key, &cached); {
	case cerr == nil:
		span.SetAttributes(tracing.CacheHitKey.Bool(true))
		return &cached, nil
	case !errors.Is(cerr, cache.ErrCacheMiss):
		return nil, transient("failed to read profile cache", cerr)
	}
	span.SetAttributes(tracing.CacheHitKey.Bool(false))

	profile, err := b.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := b.cache.Set(ctx, key, profile, b.ttl); err != nil {
		logger.WithContext(ctx).Warn("failed to cache user profile",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return profile, nil
}

// Invalidate drops the user's cached profile and monitoring sweep
func (b *ProfileBuilder) Invalidate(ctx context.Context, userID uuid.UUID) error {
	id := userID.String()
	if err := b.cache.Delete(ctx, cache.Keys.UserProfile(id), cache.Keys.FraudMonitor(id)); err != nil {
		return transient("failed to invalidate fraud cache", err)
	}
	return nil
}

func (b *ProfileBuilder) compute(ctx context.Context, userID uuid.UUID) (*UserBehaviorProfile, error) {
	user, err := b.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, transient("failed to load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := b.now()
	profile := &UserBehaviorProfile{
		UserID:             userID,
		AccountAgeDays:     wholeDaysBetween(user.CreatedAt, now),
		DeviceFingerprints: []DeviceFingerprint{},
		LocationHistory:    []LocationData{},
		TimePatterns:       []TimePattern{},
		RiskFactors:        []string{},
		BuiltAt:            now,
	}
	if profile.AccountAgeDays < 7 {
		profile.RiskFactors = append(profile.RiskFactors, RiskFactorNewAccount)
	}

	rentals, err := b.repo.FindTransactionsForUser(ctx, userID)
	if err != nil {
		return nil, transient("failed to load rentals", err)
	}

	var hours [24]int
	var total float64
	dayAgo := now.Add(-24 * time.Hour)
	for _, r := range rentals {
		profile.TotalTransactions++
		if r.Succeeded() {
			profile.SuccessfulTransactions++
		}
		total += r.Value()
		hours[r.CreatedAt.UTC().Hour()]++
		if r.CreatedAt.After(dayAgo) {
			profile.RecentTransactions++
		}
	}
	if profile.TotalTransactions > 0 {
		profile.AverageTransactionValue = total / float64(profile.TotalTransactions)
		if float64(profile.SuccessfulTransactions)/float64(profile.TotalTransactions) < 0.5 {
			profile.RiskFactors = append(profile.RiskFactors, RiskFactorLowSuccessRate)
		}
	} else {
		profile.RiskFactors = append(profile.RiskFactors, RiskFactorNoTransactionHistory)
	}
	for h, n := range hours {
		if n > 0 {
			profile.TimePatterns = append(profile.TimePatterns, TimePattern{Hour: h, Count: n})
		}
	}

	listings, err := b.repo.FindListingsByOwner(ctx, userID)
	if err != nil {
		return nil, transient("failed to load listings", err)
	}
	sort.SliceStable(listings, func(i, j int) bool { return listings[i].CreatedAt.Before(listings[j].CreatedAt) })
	for _, l := range listings {
		profile.LocationHistory = append(profile.LocationHistory, LocationData{
			City:      l.City,
			State:     l.State,
			Country:   l.Country,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Source:    "listing",
		})
	}

	comms, err := b.comms.Profile(ctx, userID)
	if err != nil {
		return nil, transient("failed to load communication patterns", err)
	}
	profile.CommunicationPatterns = comms

	devices, err := b.devices.Devices(ctx, userID)
	if err != nil {
		return nil, transient("failed to load device history", err)
	}
	if devices != nil {
		profile.DeviceFingerprints = devices
	}

	return profile, nil
}

func wholeDaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
