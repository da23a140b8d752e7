package fraud

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SignalType groups signals by the evidence that produced them
type SignalType string

const (
	SignalUserBehavior      SignalType = "user_behavior"
	SignalListingQuality    SignalType = "listing_quality"
	SignalPayment           SignalType = "payment"
	SignalCommunication     SignalType = "communication"
	SignalDeviceFingerprint SignalType = "device_fingerprint"
)

// Valid reports whether t is a known signal type
func (t SignalType) Valid() bool {
	switch t {
	case SignalUserBehavior, SignalListingQuality, SignalPayment, SignalCommunication, SignalDeviceFingerprint:
		return true
	}
	return false
}

// Severity is the ordinal weight of a signal
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from 1 (low) to 4 (critical). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Points is the score weight of one fully confident signal of this severity
func (s Severity) Points() int {
	switch s {
	case SeverityLow:
		return 5
	case SeverityMedium:
		return 15
	case SeverityHigh:
		return 30
	case SeverityCritical:
		return 50
	}
	return 0
}

// Signal is one detected risk indicator
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    Severity               `json:"severity"`
	Confidence  float64                `json:"confidence"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks the signal against its value constraints
func (s Signal) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("unknown signal type %q", s.Type)
	}
	if s.Severity.Rank() == 0 {
		return fmt.Errorf("unknown severity %q", s.Severity)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("confidence %.2f outside [0,1]", s.Confidence)
	}
	return nil
}

// RiskLevel is the tier an assessment's score falls into
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// ActionType is the user action being admitted
type ActionType string

const (
	ActionCreateListing  ActionType = "create_listing"
	ActionCreateBooking  ActionType = "create_booking"
	ActionProcessPayment ActionType = "process_payment"
	ActionSendMessage    ActionType = "send_message"
)

// Valid reports whether a is one of the gated actions
func (a ActionType) Valid() bool {
	switch a {
	case ActionCreateListing, ActionCreateBooking, ActionProcessPayment, ActionSendMessage:
		return true
	}
	return false
}

// ActionContext carries the optional details of the action under assessment
type ActionContext struct {
	GearID            *uuid.UUID `json:"gear_id,omitempty"`
	RentalID          *uuid.UUID `json:"rental_id,omitempty"`
	Amount            *float64   `json:"amount,omitempty"`
	DeviceFingerprint string     `json:"device_fingerprint,omitempty"`
	IPAddress         string     `json:"ip_address,omitempty"`
	UserAgent         string     `json:"user_agent,omitempty"`
	Message           string     `json:"message,omitempty"`
}

func (c ActionContext) hasDeviceInfo() bool {
	return c.IPAddress != "" || c.UserAgent != "" || c.DeviceFingerprint != ""
}

// Assessment is the verdict for one evaluated action
type Assessment struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	ActionType       ActionType    `json:"action_type"`
	RiskScore        float64       `json:"risk_score"`
	RiskLevel        RiskLevel     `json:"risk_level"`
	Signals          []Signal      `json:"signals"`
	Recommendations  []string      `json:"recommendations"`
	ActionRequired   bool          `json:"action_required"`
	AllowTransaction bool          `json:"allow_transaction"`
	Context          ActionContext `json:"context"`
	AssessedAt       time.Time     `json:"assessed_at"`
}

// newAssessment derives the level, both booleans and the recommendations
// from the score and signals.
func newAssessment(userID uuid.UUID, action ActionType, actx ActionContext, score float64, signals []Signal, now time.Time) *Assessment {
	if signals == nil {
		signals = []Signal{}
	}
	a := &Assessment{
		ID:         uuid.New(),
		UserID:     userID,
		ActionType: action,
		RiskScore:  score,
		Signals:    signals,
		Context:    actx,
		AssessedAt: now,
	}
	a.Reclassify()
	a.Recommendations = Recommend(a.RiskLevel, signals)
	return a
}

// Reclassify recomputes the level and both booleans from RiskScore
func (a *Assessment) Reclassify() {
	a.RiskLevel = Classify(a.RiskScore)
	a.AllowTransaction = AllowsTransaction(a.RiskScore)
	a.ActionRequired = RequiresAction(a.RiskScore)
}

// CommunicationPatterns summarises how a user writes and responds
type CommunicationPatterns struct {
	ResponseTimeHours float64 `json:"response_time_hours"`
	MessageLength     float64 `json:"message_length"`
	PolitenessScore   float64 `json:"politeness_score"`
}

// DeviceFingerprint is one device a user has been seen on
type DeviceFingerprint struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// LocationData is one place associated with a user
type LocationData struct {
	City      string   `json:"city"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Source    string   `json:"source"`
}

func (l LocationData) key() string {
	return l.City + "|" + l.State + "|" + l.Country
}

// TimePattern is one hour-of-day bucket (UTC) of rental creation times
type TimePattern struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Risk factor labels accumulated while building a profile
const (
	RiskFactorNewAccount           = "new_account"
	RiskFactorNoTransactionHistory = "no_transaction_history"
	RiskFactorLowSuccessRate       = "low_success_rate"
)

// UserBehaviorProfile is the cached summary of one user's history. It is
// replaced on refresh, never mutated.
type UserBehaviorProfile struct {
	UserID                  uuid.UUID             `json:"user_id"`
	AccountAgeDays          int                   `json:"account_age_days"`
	TotalTransactions       int                   `json:"total_transactions"`
	SuccessfulTransactions  int                   `json:"successful_transactions"`
	AverageTransactionValue float64               `json:"average_transaction_value"`
	CommunicationPatterns   CommunicationPatterns `json:"communication_patterns"`
	DeviceFingerprints      []DeviceFingerprint   `json:"device_fingerprints"`
	LocationHistory         []LocationData        `json:"location_history"`
	TimePatterns            []TimePattern         `json:"time_patterns"`
	RecentTransactions      int                   `json:"recent_transactions"`
	RiskFactors             []string              `json:"risk_factors"`
	BuiltAt                 time.Time             `json:"built_at"`
}

// NightTransactions counts rentals created between 02:00 and 05:59 UTC
func (p *UserBehaviorProfile) NightTransactions() int {
	n := 0
	for _, tp := range p.TimePatterns {
		if tp.Hour >= 2 && tp.Hour <= 5 {
			n += tp.Count
		}
	}
	return n
}

// DistinctLocations counts unique city/state/country triples
func (p *UserBehaviorProfile) DistinctLocations() int {
	seen := make(map[string]struct{}, len(p.LocationHistory))
	for _, l := range p.LocationHistory {
		seen[l.key()] = struct{}{}
	}
	return len(seen)
}

// DeviceTrustLevel is the verdict of a device-only check
type DeviceTrustLevel string

const (
	DeviceTrusted    DeviceTrustLevel = "trusted"
	DeviceNeutral    DeviceTrustLevel = "neutral"
	DeviceSuspicious DeviceTrustLevel = "suspicious"
	DeviceBlocked    DeviceTrustLevel = "blocked"
)

// DeviceTrustResult is returned by CheckDeviceTrustLevel
type DeviceTrustResult struct {
	TrustLevel DeviceTrustLevel `json:"trust_level"`
	Signals    []Signal         `json:"signals"`
}

// UserRiskSummary condenses the passive monitoring sweep for one user
type UserRiskSummary struct {
	UserID     uuid.UUID `json:"user_id"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Signals    []Signal  `json:"signals"`
	TrustScore float64   `json:"trust_score"`
}
