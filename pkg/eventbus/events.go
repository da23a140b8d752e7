package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// FraudDetectedData is emitted when an assessment blocks a user action.
type FraudDetectedData struct {
	UserID       uuid.UUID `json:"user_id"`
	ActionType   string    `json:"action_type"`
	RiskScore    float64   `json:"risk_score"`
	RiskLevel    string    `json:"risk_level"`
	SignalTypes  []string  `json:"signal_types"`
	SignalsCount int       `json:"signals_count"`
	DetectedAt   time.Time `json:"detected_at"`
}
