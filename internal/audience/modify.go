package audience

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/avlasiuk/campaignwiz/internal/seed"
)

// Replacement titles offered when a modification prompt asks for a rename.
// The pick is seeded by the audience id so repeated requests for the same
// segment suggest the same title.
var replacementTitles = []string{
	"Premium Engagement Specialists",
	"High-Intent Purchase Decision Makers",
	"Digital-First Professional Adopters",
	"Value-Driven Quality Seekers",
	"Innovation-Ready Market Leaders",
	"Strategic Growth Partners",
	"Premium Experience Enthusiasts",
}

// Keyword groups recognized by the local modifier. Groups are not mutually
// exclusive; a prompt can trigger several of them in one pass.
var (
	renameKeywords  = []string{"new title", "rename", "change name", "title"}
	refineKeywords  = []string{"more specific", "targeted", "narrow", "refine"}
	expandKeywords  = []string{"expand", "broader", "include more", "similar"}
	convertKeywords = []string{"conversion", "optimize", "performance"}
)

// ModifyLocally rewrites target according to the free-text prompt using
// keyword heuristics. It is the degraded-mode substitute for the backend
// modification endpoint: the result is always usable and the applied changes
// are logged into the rationale fields with a timestamp.
func ModifyLocally(target Audience, prompt string, now time.Time) Audience {
	modified := target
	lower := strings.ToLower(prompt)
	var changes []string

	if containsAny(lower, renameKeywords) {
		title := replacementTitles[seed.Pick(target.ID, len(replacementTitles))]
		modified.Name = title
		changes = append(changes, fmt.Sprintf("Changed title to %q", title))
	}

	if containsAny(lower, refineKeywords) {
		if target.EstimatedSize != nil {
			modified.EstimatedSize = sizePtr(int(math.Round(float64(*target.EstimatedSize) * 0.7)))
		}
		modified.EstimatedConversionRate = math.Min(target.EstimatedConversionRate*1.3, 1)
		modified.CohortScore = min(scoreOrDefault(target)+15, 100)
		changes = append(changes,
			"Made targeting more specific and refined",
			"Reduced audience size but increased conversion potential")
	}

	if containsAny(lower, expandKeywords) {
		if target.EstimatedSize != nil {
			modified.EstimatedSize = sizePtr(int(math.Round(float64(*target.EstimatedSize) * 1.4)))
		}
		modified.EstimatedConversionRate = math.Max(target.EstimatedConversionRate*0.9, 0.01)
		changes = append(changes,
			"Expanded audience to include similar user groups",
			"Increased reach while maintaining quality")
	}

	if containsAny(lower, convertKeywords) {
		modified.EstimatedConversionRate = math.Min(target.EstimatedConversionRate*1.25, 1)
		modified.CohortScore = min(scoreOrDefault(target)+12, 100)
		changes = append(changes,
			"Optimized for higher conversion rates",
			"Enhanced performance metrics")
	}

	// No keyword matched: apply a small uniform enhancement and record the
	// verbatim request as the change.
	if len(changes) == 0 {
		modified.EstimatedConversionRate = math.Min(target.EstimatedConversionRate*1.1, 1)
		modified.CohortScore = min(scoreOrDefault(target)+5, 100)
		changes = append(changes, fmt.Sprintf("Applied custom modification: %q", prompt))
	}

	modified.Rationale = fmt.Sprintf("%s\n\n[AI Modification - %s]: %s",
		target.Rationale, now.Format("15:04:05"), prompt)
	modified.CohortRationale = fmt.Sprintf("%s\n\n[User Request]: %s\n[Changes Applied]: %s",
		target.CohortRationale, prompt, strings.Join(changes, ", "))

	if !strings.Contains(modified.Name, "(AI Modified)") {
		modified.Name += " (AI Modified)"
	}
	return modified
}

// scoreOrDefault substitutes the historical default of 80 for unsent scores
// so the additive boosts behave the same on sparse records.
func scoreOrDefault(a Audience) int {
	if a.CohortScore == 0 {
		return 80
	}
	return a.CohortScore
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
