package fraud

import "math"

// Scores are accumulated in hundredths of a point so that summing signal
// contributions is exact and independent of order.
const scoreScale = 100

const (
	maxScore = 100 * scoreScale

	thresholdCritical = 80
	thresholdHigh     = 70
	thresholdMedium   = 40
)

func hundredths(points float64) int {
	return int(math.Round(points * scoreScale))
}

// signalHundredths is points(severity) x confidence in hundredths
func signalHundredths(s Signal) int {
	return hundredths(float64(s.Severity.Points()) * s.Confidence)
}

func baseHundredths(p *UserBehaviorProfile) int {
	total := 0

	switch {
	case p.AccountAgeDays < 1:
		total += 20
	case p.AccountAgeDays < 7:
		total += 10
	case p.AccountAgeDays < 30:
		total += 5
	}

	switch {
	case p.TotalTransactions == 0:
		total += 15
	case p.TotalTransactions < 3:
		total += 10
	}

	if p.AccountAgeDays > 365 {
		total -= 10
	}
	if p.SuccessfulTransactions > 10 {
		total -= 10
	}
	if p.CommunicationPatterns.PolitenessScore > 0.8 {
		total -= 5
	}

	return total * scoreScale
}

// Score combines the profile adjustments with every signal's contribution
// and clamps the result to [0,100].
func Score(p *UserBehaviorProfile, signals []Signal) float64 {
	total := baseHundredths(p)
	for _, s := range signals {
		total += signalHundredths(s)
	}
	if total < 0 {
		total = 0
	}
	if total > maxScore {
		total = maxScore
	}
	return float64(total) / scoreScale
}

// weightedSignalSum is the sum of signal contributions with no base or clamp
func weightedSignalSum(signals []Signal) float64 {
	total := 0
	for _, s := range signals {
		total += signalHundredths(s)
	}
	return float64(total) / scoreScale
}

// Classify maps a score to its risk level
func Classify(score float64) RiskLevel {
	switch {
	case score >= thresholdCritical:
		return RiskLevelCritical
	case score >= thresholdHigh:
		return RiskLevelHigh
	case score >= thresholdMedium:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// AllowsTransaction reports whether an action with this score may proceed
func AllowsTransaction(score float64) bool {
	return score < thresholdHigh
}

// RequiresAction reports whether this score calls for follow-up
func RequiresAction(score float64) bool {
	return score >= thresholdMedium
}

var baseRecommendations = map[RiskLevel][]string{
	RiskLevelCritical: {
		"Block transaction immediately",
		"Flag account for manual review",
		"Consider permanent account suspension",
	},
	RiskLevelHigh: {
		"Require additional verification",
		"Limit transaction amounts",
		"Enable enhanced monitoring",
	},
	RiskLevelMedium: {
		"Request additional documentation",
		"Monitor subsequent activities closely",
		"Consider temporary restrictions",
	},
	RiskLevelLow: {
		"Proceed with standard verification",
		"Continue routine monitoring",
	},
}

// typeRecommendations are appended once per signal type, in this order
var typeRecommendations = []struct {
	signalType SignalType
	text       string
}{
	{SignalCommunication, "Review all user communications"},
	{SignalDeviceFingerprint, "Require device verification"},
	{SignalListingQuality, "Review listing quality and pricing"},
}

// Recommend returns the advisory actions for a level and its signals
func Recommend(level RiskLevel, signals []Signal) []string {
	base := baseRecommendations[level]
	out := make([]string, 0, len(base)+len(typeRecommendations))
	out = append(out, base...)

	present := make(map[SignalType]bool, len(signals))
	for _, s := range signals {
		present[s.Type] = true
	}
	for _, r := range typeRecommendations {
		if present[r.signalType] {
			out = append(out, r.text)
		}
	}
	return out
}
