// Package lever generates and manages growth levers: concrete marketing
// strategies tied to a single finalized audience.
package lever

import "github.com/avlasiuk/campaignwiz/internal/audience"

// GrowthLever is one marketing strategy targeting one audience. The
// target_audience_id reference is established at generation time and never
// re-validated; deleting the audience afterwards leaves the lever orphaned.
type GrowthLever struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Description              string   `json:"description"`
	LeverType                string   `json:"lever_type"`
	TargetAudienceID         string   `json:"target_audience_id"`
	TargetAudienceName       string   `json:"target_audience_name"`
	EstimatedImpact          int      `json:"estimated_impact"`
	ImplementationDifficulty int      `json:"implementation_difficulty"`
	TimeToImplement          string   `json:"time_to_implement"`
	CostEstimate             string   `json:"cost_estimate"`
	SuccessMetrics           []string `json:"success_metrics"`
	ImplementationSteps      []string `json:"implementation_steps"`
	Rationale                string   `json:"rationale"`
	PriorityScore            int      `json:"priority_score"`
}

// GenerateRequest is the wire body for POST /growth-levers/generate.
type GenerateRequest struct {
	UserPrompt          string              `json:"user_prompt"`
	CurrentGrowthLevers []GrowthLever       `json:"current_growth_levers"`
	SelectedAudiences   []audience.Audience `json:"selected_audiences"`
}

// FinalizeRequest is the wire body for the finalize persist call.
type FinalizeRequest struct {
	UserID              string        `json:"user_id"`
	CurrentGrowthLevers []GrowthLever `json:"current_growth_levers"`
	ActionFinalize      string        `json:"action_finalize"`
}
