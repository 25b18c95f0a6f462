package wizard

import (
	"testing"

	"github.com/avlasiuk/campaignwiz/internal/audience"
	"github.com/avlasiuk/campaignwiz/internal/lever"
)

func TestAudienceMetricsDeterministic(t *testing.T) {
	a := audience.Audience{ID: "sample-1"}

	first := AudienceStableMetrics(a)
	second := AudienceStableMetrics(a)

	if first != second {
		t.Fatalf("metrics differ across calls: %+v vs %+v", first, second)
	}
	if first.LiftRate < 5 || first.LiftRate > 24 {
		t.Errorf("lift rate %d out of [5,24]", first.LiftRate)
	}
	if first.CohortScore < 0.70 || first.CohortScore > 0.99 {
		t.Errorf("seeded cohort score %v out of [0.70,0.99]", first.CohortScore)
	}
}

func TestAudienceMetricsUseKnownScore(t *testing.T) {
	a := audience.Audience{ID: "sample-1", CohortScore: 92}

	m := AudienceStableMetrics(a)
	if m.CohortScore != 92 {
		t.Errorf("cohort score = %v, want the record's own score passed through", m.CohortScore)
	}
}

func TestLeverMetricsPassThrough(t *testing.T) {
	l := lever.GrowthLever{ID: "l1", EstimatedImpact: 85, ImplementationDifficulty: 30, PriorityScore: 90}

	m := LeverStableMetrics(l)
	if m != (LeverMetrics{Impact: 85, Difficulty: 30, Priority: 90}) {
		t.Errorf("metrics = %+v", m)
	}
}

func TestLeverMetricsSeedUnsetScores(t *testing.T) {
	l := lever.GrowthLever{ID: "l1"}

	first := LeverStableMetrics(l)
	second := LeverStableMetrics(l)

	if first != second {
		t.Fatalf("metrics differ across calls: %+v vs %+v", first, second)
	}
	if first.Impact < 70 || first.Impact > 99 {
		t.Errorf("impact %d out of [70,99]", first.Impact)
	}
	if first.Difficulty < 30 || first.Difficulty > 69 {
		t.Errorf("difficulty %d out of [30,69]", first.Difficulty)
	}
	if first.Priority < 75 || first.Priority > 99 {
		t.Errorf("priority %d out of [75,99]", first.Priority)
	}
}

func TestAgentContexts(t *testing.T) {
	for _, id := range []string{"retain-iq", "recommend-iq", "user-iq", "income-assessment-iq"} {
		if !KnownAgent(id) {
			t.Errorf("agent %q not known", id)
		}
		if AgentContext(id) == "" {
			t.Errorf("agent %q has no context", id)
		}
	}
	if KnownAgent("marketing-iq") {
		t.Error("unknown agent reported as known")
	}
	if AgentContext("") != "" {
		t.Error("empty agent id should have no context")
	}
}
