package fraud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_assessments_total",
		Help: "Completed fraud assessments by action type and risk level",
	}, []string{"action_type", "risk_level"})

	assessmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fraud_assessment_duration_seconds",
		Help:    "Time spent assessing one action",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"action_type"})

	signalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_signals_total",
		Help: "Signals surfaced in completed assessments",
	}, []string{"type", "severity"})

	enrichmentFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_enrichment_failures_total",
		Help: "Best-effort lookups that failed and were skipped",
	}, []string{"source"})
)

const (
	enrichmentReputation  = "reputation"
	enrichmentFingerprint = "fingerprint"
)

func recordAssessment(a *Assessment, seconds float64) {
	assessmentsTotal.WithLabelValues(string(a.ActionType), string(a.RiskLevel)).Inc()
	assessmentDuration.WithLabelValues(string(a.ActionType)).Observe(seconds)
	for _, s := range a.Signals {
		signalsTotal.WithLabelValues(string(s.Type), string(s.Severity)).Inc()
	}
}
