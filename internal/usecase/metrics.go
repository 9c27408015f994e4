package usecase

import "time"

const (
	OutcomeComputed     = "computed"
	OutcomeNotScoreable = "not_scoreable"
	OutcomeFailed       = "failed"
)

// ScoringMetrics receives scoring run telemetry. Implementations must be safe for concurrent use.
type ScoringMetrics interface {
	ObserveWeekComputation(outcome string, elapsed time.Duration)
	AddSkippedPicks(count int)
	AddScoresWritten(count int)
}

type nopScoringMetrics struct{}

func (nopScoringMetrics) ObserveWeekComputation(string, time.Duration) {}
func (nopScoringMetrics) AddSkippedPicks(int)                          {}
func (nopScoringMetrics) AddScoresWritten(int)                         {}

// NopScoringMetrics discards everything.
func NopScoringMetrics() ScoringMetrics {
	return nopScoringMetrics{}
}
