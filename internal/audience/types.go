package audience

// Condition is a single targeting predicate inside a Rule.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Rule combines conditions with a boolean operator ("AND"/"OR").
type Rule struct {
	Operator   string      `json:"operator"`
	Conditions []Condition `json:"conditions"`
}

// Audience is a customer segment suggested by the generation backend (or a
// local fallback). EstimatedSize is nil when the backend did not provide one.
type Audience struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Rule                    Rule     `json:"rule"`
	EstimatedSize           *int     `json:"estimated_size"`
	EstimatedConversionRate float64  `json:"estimated_conversion_rate"`
	Rationale               string   `json:"rationale"`
	TopFeatures             []string `json:"top_features"`
	CohortScore             int      `json:"cohort_score"`
	CohortRationale         string   `json:"cohort_rationale"`
}

// GenerateRequest is the wire body for POST /audiences/generate.
type GenerateRequest struct {
	UserPrompt       string     `json:"user_prompt"`
	CurrentAudiences []Audience `json:"current_audiences"`
}

// ModifyRequest is the wire body for PUT /audiences/modify.
type ModifyRequest struct {
	AudienceID       string     `json:"audience_id"`
	UserPrompt       string     `json:"user_prompt"`
	CurrentAudience  Audience   `json:"current_audience"`
	CurrentAudiences []Audience `json:"current_audiences"`
}

// FinalizeRequest is the wire body for the finalize persist call.
type FinalizeRequest struct {
	UserID           string     `json:"user_id"`
	CurrentAudiences []Audience `json:"current_audiences"`
	ActionFinalize   string     `json:"action_finalize"`
}

// sizePtr is a convenience for building audiences with a known size.
func sizePtr(n int) *int {
	return &n
}
