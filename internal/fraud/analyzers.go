package fraud

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/richxcame/gear-rental/pkg/models"
)

// Analyzers in this file are pure functions of the profile and the action
// context. The listing analyzer is the only one that reads the repository.

func analyzeBehavior(p *UserBehaviorProfile, action ActionType) []Signal {
	var signals []Signal

	switch {
	case p.AccountAgeDays < 1:
		signals = append(signals, Signal{
			Type:        SignalUserBehavior,
			Severity:    SeverityHigh,
			Confidence:  0.9,
			Description: "Account created less than 24 hours ago",
			Metadata:    map[string]interface{}{"account_age_days": p.AccountAgeDays},
		})
	case p.AccountAgeDays < 7:
		signals = append(signals, Signal{
			Type:        SignalUserBehavior,
			Severity:    SeverityMedium,
			Confidence:  0.7,
			Description: "Account created less than a week ago",
			Metadata:    map[string]interface{}{"account_age_days": p.AccountAgeDays},
		})
	}

	if p.TotalTransactions == 0 && action == ActionCreateBooking {
		signals = append(signals, Signal{
			Type:        SignalUserBehavior,
			Severity:    SeverityMedium,
			Confidence:  0.6,
			Description: "First booking with no transaction history",
		})
	}

	if p.TotalTransactions > 0 {
		ratio := float64(p.SuccessfulTransactions) / float64(p.TotalTransactions)
		if ratio < 0.5 {
			signals = append(signals, Signal{
				Type:        SignalUserBehavior,
				Severity:    SeverityHigh,
				Confidence:  0.8,
				Description: "Less than half of past rentals completed successfully",
				Metadata: map[string]interface{}{
					"success_ratio": ratio,
					"total":         p.TotalTransactions,
					"successful":    p.SuccessfulTransactions,
				},
			})
		}
	}

	if p.CommunicationPatterns.ResponseTimeHours > 48 {
		signals = append(signals, Signal{
			Type:        SignalCommunication,
			Severity:    SeverityLow,
			Confidence:  0.5,
			Description: "Slow average response time",
			Metadata:    map[string]interface{}{"response_time_hours": p.CommunicationPatterns.ResponseTimeHours},
		})
	}

	if p.CommunicationPatterns.PolitenessScore < 0.3 {
		signals = append(signals, Signal{
			Type:        SignalCommunication,
			Severity:    SeverityMedium,
			Confidence:  0.7,
			Description: "Consistently impolite communication",
			Metadata:    map[string]interface{}{"politeness_score": p.CommunicationPatterns.PolitenessScore},
		})
	}

	return signals
}

func analyzePayment(amount float64, p *UserBehaviorProfile) []Signal {
	var signals []Signal

	if p.TotalTransactions > 0 && amount > 5*p.AverageTransactionValue {
		signals = append(signals, Signal{
			Type:        SignalPayment,
			Severity:    SeverityHigh,
			Confidence:  0.8,
			Description: "Payment far above the user's average transaction value",
			Metadata: map[string]interface{}{
				"amount":  amount,
				"average": p.AverageTransactionValue,
			},
		})
	}

	if amount > 500 && p.AccountAgeDays < 7 {
		signals = append(signals, Signal{
			Type:        SignalPayment,
			Severity:    SeverityHigh,
			Confidence:  0.9,
			Description: "High-value transaction from very new account",
			Metadata: map[string]interface{}{
				"amount":           amount,
				"account_age_days": p.AccountAgeDays,
			},
		})
	}

	return signals
}

func analyzeVelocity(userID uuid.UUID, p *UserBehaviorProfile) []Signal {
	var signals []Signal

	if p.RecentTransactions > 10 {
		signals = append(signals, Signal{
			Type:        SignalUserBehavior,
			Severity:    SeverityHigh,
			Confidence:  0.8,
			Description: "Unusually many rentals in the last 24 hours",
			Metadata: map[string]interface{}{
				"user_id": userID.String(),
				"count":   p.RecentTransactions,
			},
		})
	}

	if night := p.NightTransactions(); night > 5 {
		signals = append(signals, Signal{
			Type:        SignalUserBehavior,
			Severity:    SeverityMedium,
			Confidence:  0.6,
			Description: "Repeated rental activity between 2 and 5 AM",
			Metadata:    map[string]interface{}{"count": night},
		})
	}

	if locations := p.DistinctLocations(); locations > 5 && p.AccountAgeDays < 30 {
		signals = append(signals, Signal{
			Type:        SignalUserBehavior,
			Severity:    SeverityMedium,
			Confidence:  0.7,
			Description: "Many distinct locations on a young account",
			Metadata: map[string]interface{}{
				"locations":        locations,
				"account_age_days": p.AccountAgeDays,
			},
		})
	}

	return signals
}

var (
	spamPattern = regexp.MustCompile(`(?i)click here|call now|limited time|act fast|guaranteed|\$\$\$|urgent`)

	contactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}?[\s.-]?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`),
		regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		regexp.MustCompile(`(?i)whatsapp|telegram|text me|call me`),
	}
)

func analyzeCommunication(message string, _ *UserBehaviorProfile) []Signal {
	var signals []Signal
	length := utf8.RuneCountInString(message)

	if length < 20 {
		signals = append(signals, Signal{
			Type:        SignalCommunication,
			Severity:    SeverityLow,
			Confidence:  0.4,
			Description: "Very short message",
			Metadata:    map[string]interface{}{"length": length},
		})
	}

	if spamPattern.MatchString(message) {
		signals = append(signals, Signal{
			Type:        SignalCommunication,
			Severity:    SeverityHigh,
			Confidence:  0.8,
			Description: "Message matches spam patterns",
		})
	}

	if length > 0 {
		upper := 0
		for _, r := range message {
			if unicode.IsUpper(r) {
				upper++
			}
		}
		if ratio := float64(upper) / float64(length); ratio > 0.3 {
			signals = append(signals, Signal{
				Type:        SignalCommunication,
				Severity:    SeverityMedium,
				Confidence:  0.6,
				Description: "Excessive use of capital letters",
				Metadata:    map[string]interface{}{"uppercase_ratio": ratio},
			})
		}
	}

	for _, re := range contactPatterns {
		if re.MatchString(message) {
			signals = append(signals, Signal{
				Type:        SignalCommunication,
				Severity:    SeverityMedium,
				Confidence:  0.7,
				Description: "Attempt to move the conversation off-platform",
			})
			break
		}
	}

	return signals
}

var scamKeywords = []string{"urgent", "must sell", "no questions", "cash only", "final sale"}

// expectedDailyRates is the typical daily rate per gear category
var expectedDailyRates = map[models.GearCategory]float64{
	models.CategoryCamera:      50,
	models.CategoryCamping:     30,
	models.CategoryCycling:     35,
	models.CategoryWaterSports: 45,
	models.CategoryWinter:      40,
	models.CategoryClimbing:    25,
	models.CategoryTools:       20,
	models.CategoryAudio:       40,
	models.CategoryDrone:       60,
	models.CategoryOther:       30,
}

const defaultExpectedDailyRate = 30.0

func expectedDailyRate(c models.GearCategory) float64 {
	if rate, ok := expectedDailyRates[c]; ok {
		return rate
	}
	return defaultExpectedDailyRate
}

// ListingAnalyzer scores a listing's content and pricing
type ListingAnalyzer struct {
	repo RepositoryInterface
}

// Analyze loads the listing and inspects it. An absent listing is
// ErrListingNotFound.
func (a *ListingAnalyzer) Analyze(ctx context.Context, gearID uuid.UUID) ([]Signal, error) {
	listing, err := a.repo.FindListingByID(ctx, gearID)
	if err != nil {
		return nil, transient("failed to load listing", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return inspectListing(listing), nil
}

func inspectListing(l *models.Listing) []Signal {
	var signals []Signal

	if n := utf8.RuneCountInString(l.Description); n < 50 {
		signals = append(signals, Signal{
			Type:        SignalListingQuality,
			Severity:    SeverityMedium,
			Confidence:  0.6,
			Description: "Listing description is too short",
			Metadata:    map[string]interface{}{"length": n},
		})
	}

	text := strings.ToLower(l.Title + " " + l.Description)
	for _, kw := range scamKeywords {
		if strings.Contains(text, kw) {
			signals = append(signals, Signal{
				Type:        SignalListingQuality,
				Severity:    SeverityHigh,
				Confidence:  0.8,
				Description: "Listing contains scam-associated wording",
				Metadata:    map[string]interface{}{"keyword": kw},
			})
			break
		}
	}

	expected := expectedDailyRate(l.Category)
	ratio := l.DailyRate / expected
	switch {
	case ratio > 3:
		signals = append(signals, Signal{
			Type:        SignalListingQuality,
			Severity:    SeverityHigh,
			Confidence:  0.7,
			Description: "Daily rate far above the category norm",
			Metadata:    map[string]interface{}{"daily_rate": l.DailyRate, "expected": expected, "ratio": ratio},
		})
	case ratio < 0.2:
		signals = append(signals, Signal{
			Type:        SignalListingQuality,
			Severity:    SeverityHigh,
			Confidence:  0.8,
			Description: "Daily rate suspiciously below the category norm",
			Metadata:    map[string]interface{}{"daily_rate": l.DailyRate, "expected": expected, "ratio": ratio},
		})
	}

	switch len(l.Images) {
	case 0:
		signals = append(signals, Signal{
			Type:        SignalListingQuality,
			Severity:    SeverityHigh,
			Confidence:  0.9,
			Description: "Listing has no images",
		})
	case 1:
		signals = append(signals, Signal{
			Type:        SignalListingQuality,
			Severity:    SeverityMedium,
			Confidence:  0.6,
			Description: "Listing has only one image",
		})
	}

	return signals
}
