package wizard

import (
	"github.com/avlasiuk/campaignwiz/internal/audience"
	"github.com/avlasiuk/campaignwiz/internal/lever"
	"github.com/avlasiuk/campaignwiz/internal/seed"
)

// AudienceMetrics are the cosmetic per-audience display values. They are
// derived from the record id so they stay constant for the life of the
// record, regardless of how often the list is re-rendered.
type AudienceMetrics struct {
	LiftRate    int     `json:"lift_rate"`
	CohortScore float64 `json:"cohort_score"`
}

// AudienceStableMetrics computes display metrics for one audience: a lift
// percentage in [5,24], and the cohort score as a 0..1 fraction (seeded into
// [0.70,0.99] when the record carries no score).
func AudienceStableMetrics(a audience.Audience) AudienceMetrics {
	m := AudienceMetrics{
		LiftRate: seed.InRange(a.ID, 5, 20),
	}
	if a.CohortScore > 0 {
		m.CohortScore = float64(a.CohortScore)
	} else {
		m.CohortScore = float64(seed.InRange(a.ID, 70, 30)) / 100
	}
	return m
}

// LeverMetrics are the cosmetic per-lever display values, seeded only where
// the generator left a score unset.
type LeverMetrics struct {
	Impact     int `json:"impact"`
	Difficulty int `json:"difficulty"`
	Priority   int `json:"priority"`
}

// LeverStableMetrics fills unset lever scores with seeded defaults:
// impact [70,99], difficulty [30,69], priority [75,99].
func LeverStableMetrics(l lever.GrowthLever) LeverMetrics {
	m := LeverMetrics{
		Impact:     l.EstimatedImpact,
		Difficulty: l.ImplementationDifficulty,
		Priority:   l.PriorityScore,
	}
	if m.Impact == 0 {
		m.Impact = seed.InRange(l.ID, 70, 30)
	}
	if m.Difficulty == 0 {
		m.Difficulty = seed.InRange(l.ID, 30, 40)
	}
	if m.Priority == 0 {
		m.Priority = seed.InRange(l.ID, 75, 25)
	}
	return m
}
