package lever

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/avlasiuk/campaignwiz/internal/audience"
)

// Historical defaults substituted for sparse audience records so the
// arithmetic below behaves the same on partially-filled data.
const (
	defaultConversionRate = 0.08
	defaultCohortScore    = 80
	defaultAudienceSize   = 1576
)

// GenerateForAudiences deterministically expands the fixed strategy
// templates for each finalized audience: exactly three levers per audience,
// customized by cohort quality, audience size, and name-keyword category.
// This is the degraded-mode substitute for the backend generation endpoint.
func GenerateForAudiences(selected []audience.Audience) []GrowthLever {
	levers := make([]GrowthLever, 0, len(selected)*len(leverTemplates))
	for audienceIndex, aud := range selected {
		for templateIndex, tpl := range leverTemplates {
			levers = append(levers, buildLever(aud, audienceIndex, tpl, templateIndex))
		}
	}
	return levers
}

func buildLever(aud audience.Audience, audienceIndex int, tpl template, templateIndex int) GrowthLever {
	c := customize(aud, tpl)

	size := "target"
	if aud.EstimatedSize != nil {
		size = formatThousands(*aud.EstimatedSize)
	}

	return GrowthLever{
		// Composed id guarantees uniqueness across the flat result list.
		ID:                       fmt.Sprintf("audience-%d-%s-lever-%d", audienceIndex, aud.ID, templateIndex),
		Name:                     fmt.Sprintf("%s for %s", c.name, aud.Name),
		Description:              c.description,
		LeverType:                tpl.leverType,
		TargetAudienceID:         aud.ID,
		TargetAudienceName:       aud.Name,
		EstimatedImpact:          c.impact,
		ImplementationDifficulty: c.difficulty,
		TimeToImplement:          tpl.timeToImplement,
		CostEstimate:             c.cost,
		SuccessMetrics:           c.metrics,
		ImplementationSteps: []string{
			fmt.Sprintf("Phase 1: Deep analysis of %s behavioral patterns and preferences", aud.Name),
			fmt.Sprintf("Phase 2: Design %s strategy specifically for %s", tpl.leverType, aud.Name),
			fmt.Sprintf("Phase 3: Implement targeting system for %s users in %s", size, aud.Name),
			fmt.Sprintf("Phase 4: Launch pilot campaign targeting %s segment", aud.Name),
			fmt.Sprintf("Phase 5: Scale and optimize based on %s specific response patterns", aud.Name),
		},
		Rationale:     c.rationale,
		PriorityScore: c.priority,
	}
}

// customization carries the template fields that vary per audience.
type customization struct {
	name        string
	description string
	impact      int
	difficulty  int
	priority    int
	cost        string
	rationale   string
	metrics     []string
}

// customize runs the per-(audience, template) pipeline: quality scaling,
// size-based cost scaling, keyword-category copy rewrites, then the
// conversion-rate descriptor appended to the rationale.
func customize(aud audience.Audience, tpl template) customization {
	conversionRate := aud.EstimatedConversionRate
	if conversionRate == 0 {
		conversionRate = defaultConversionRate
	}
	cohortScore := aud.CohortScore
	if cohortScore == 0 {
		cohortScore = defaultCohortScore
	}
	audienceSize := defaultAudienceSize
	if aud.EstimatedSize != nil {
		audienceSize = *aud.EstimatedSize
	}
	loweredName := strings.ToLower(aud.Name)

	c := customization{
		name:        tpl.name,
		description: tpl.description,
		impact:      tpl.baseImpact,
		difficulty:  tpl.baseDifficulty,
		priority:    tpl.basePriority,
		cost:        costRange(tpl.baseCostLow, tpl.baseCostHigh, 1),
		rationale:   tpl.rationale,
		metrics:     upliftMetrics(tpl.successMetrics),
	}

	// Quality scaling against the historical baseline score of 80.
	qualityMultiplier := float64(cohortScore) / 80
	c.impact = int(math.Round(float64(c.impact) * qualityMultiplier))
	c.priority = int(math.Round(float64(c.priority) * qualityMultiplier))

	// Cost scales with reach: big audiences cost more to address, small
	// ones less.
	switch {
	case audienceSize > 20000:
		c.cost = costRange(tpl.baseCostLow, tpl.baseCostHigh, 1.4)
	case audienceSize < 5000:
		c.cost = costRange(tpl.baseCostLow, tpl.baseCostHigh, 0.7)
	}

	// Category rewrites. Each matching category overwrites name prefix,
	// description, rationale, and metrics; last match wins on overlap.
	for _, cat := range audienceCategories {
		if !matchesAny(loweredName, cat.keywords) {
			continue
		}
		c.name = cat.namePrefix + " " + tpl.name
		c.description = cat.describe(strings.ToLower(tpl.description))
		c.rationale = tpl.rationale + " " + cat.rationaleSuffix
		if m, ok := cat.metrics[tpl.leverType]; ok {
			c.metrics = append([]string(nil), m...)
		}
		if cat.adjustDifficulty != nil {
			c.difficulty = cat.adjustDifficulty(tpl.leverType, tpl.baseDifficulty)
		}
	}

	descriptor := "developing"
	if conversionRate > 0.1 {
		descriptor = "high-converting"
	} else if conversionRate > 0.05 {
		descriptor = "moderately-converting"
	}
	c.rationale += fmt.Sprintf(
		" This %s audience segment (%d%% conversion rate) with a cohort score of %d represents %s potential customers.",
		descriptor, int(math.Round(conversionRate*100)), cohortScore, formatThousands(audienceSize))

	return c
}

func matchesAny(name string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func upliftMetrics(base []string) []string {
	out := make([]string, len(base))
	for i, m := range base {
		out[i] = m + " +25%"
	}
	return out
}

func costRange(low, high int, scale float64) string {
	l := int(math.Round(float64(low) * scale))
	h := int(math.Round(float64(high) * scale))
	return fmt.Sprintf("$%s-$%s", formatThousands(l), formatThousands(h))
}

// formatThousands renders n with comma grouping ("15000" -> "15,000").
func formatThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
