package fraud

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/gear-rental/pkg/cache"
	"github.com/richxcame/gear-rental/pkg/models"
)

// RepositoryInterface is the read-only view of accounts, rentals and listings
// the engine needs. Absent users and listings are reported as
// ErrUserNotFound and ErrListingNotFound.
type RepositoryInterface interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindTransactionsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Rental, error)
	FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindListingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Listing, error)
}

// Cache is the TTL key/value store for profiles and monitoring sweeps.
// Get returns cache.ErrCacheMiss when the key is absent. *cache.Manager
// satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, result interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AuditSink persists every completed assessment. Records are append-only.
type AuditSink interface {
	Record(ctx context.Context, a *Assessment) error
}

// ReputationProvider reports whether an address belongs to a VPN, proxy or
// hosting range.
type ReputationProvider interface {
	IsAnonymizing(ctx context.Context, ip string) (bool, error)
}

// FingerprintAnalyzer inspects a device fingerprint and returns any signals
// it warrants.
type FingerprintAnalyzer interface {
	Analyze(ctx context.Context, fingerprint string) ([]Signal, error)
}

// CommunicationProfiler summarises a user's messaging behaviour
type CommunicationProfiler interface {
	Profile(ctx context.Context, userID uuid.UUID) (CommunicationPatterns, error)
}

// DeviceHistory lists devices a user has been seen on
type DeviceHistory interface {
	Devices(ctx context.Context, userID uuid.UUID) ([]DeviceFingerprint, error)
}

// DefaultCommunicationPatterns is used until a real profiler is plugged in
var DefaultCommunicationPatterns = CommunicationPatterns{
	ResponseTimeHours: 2,
	MessageLength:     100,
	PolitenessScore:   0.8,
}

type noopReputation struct{}

func (noopReputation) IsAnonymizing(context.Context, string) (bool, error) { return false, nil }

type defaultCommunicationProfiler struct{}

func (defaultCommunicationProfiler) Profile(context.Context, uuid.UUID) (CommunicationPatterns, error) {
	return DefaultCommunicationPatterns, nil
}

type emptyDeviceHistory struct{}

func (emptyDeviceHistory) Devices(context.Context, uuid.UUID) ([]DeviceFingerprint, error) {
	return []DeviceFingerprint{}, nil
}

type discardAudit struct{}

func (discardAudit) Record(context.Context, *Assessment) error { return nil }

// noCache never hits and never stores
type noCache struct{}

func (noCache) Get(context.Context, string, interface{}) error {
	return cache.ErrCacheMiss
}
func (noCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (noCache) Delete(context.Context, ...string) error                      { return nil }
