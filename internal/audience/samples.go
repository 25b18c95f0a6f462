package audience

// SampleAudiences returns the built-in sample set used whenever the
// generation backend is unreachable or returns an unusable payload. The
// content is fixed so demos and tests behave identically offline.
func SampleAudiences() []Audience {
	return []Audience{
		{
			ID:   "sample-1",
			Name: "Style-Conscious Young Professionals",
			Rule: Rule{
				Operator: "AND",
				Conditions: []Condition{
					{Field: "age", Operator: "between", Value: []any{25.0, 35.0}},
					{Field: "income", Operator: ">=", Value: 50000.0},
					{Field: "interests", Operator: "contains", Value: []any{"fashion", "style"}},
				},
			},
			EstimatedSize:           sizePtr(15000),
			EstimatedConversionRate: 0.08,
			Rationale: "This group includes style-conscious young professionals who value quality fashion " +
				"and are willing to invest in their appearance. They have disposable income and are active " +
				"on social media.",
			TopFeatures: []string{"fashion-forward", "social-media-active", "brand-conscious"},
			CohortScore: 75,
			CohortRationale: "High conversion potential due to strong purchasing power and brand affinity. " +
				"Active engagement on digital platforms makes them ideal for targeted campaigns.",
		},
		{
			ID:   "sample-2",
			Name: "Eco-Conscious Millennials",
			Rule: Rule{
				Operator: "AND",
				Conditions: []Condition{
					{Field: "age", Operator: "between", Value: []any{28.0, 40.0}},
					{Field: "interests", Operator: "contains", Value: []any{"sustainability", "environment"}},
					{Field: "purchase_behavior", Operator: "=", Value: "eco-friendly"},
				},
			},
			EstimatedSize:           sizePtr(22000),
			EstimatedConversionRate: 0.12,
			Rationale: "Environmentally conscious millennials who prioritize sustainable products and ethical " +
				"brands. They research purchases thoroughly and are willing to pay premium for eco-friendly " +
				"options.",
			TopFeatures: []string{"sustainability-focused", "research-driven", "premium-willing"},
			CohortScore: 85,
			CohortRationale: "Excellent conversion potential with high lifetime value. Strong brand loyalty " +
				"once trust is established. Ideal for sustainable product lines.",
		},
		{
			ID:   "sample-3",
			Name: "Tech-Savvy Early Adopters",
			Rule: Rule{
				Operator: "AND",
				Conditions: []Condition{
					{Field: "age", Operator: "between", Value: []any{22.0, 45.0}},
					{Field: "tech_engagement", Operator: ">=", Value: 8.0},
					{Field: "early_adopter_score", Operator: ">=", Value: 7.0},
				},
			},
			EstimatedSize:           sizePtr(8500),
			EstimatedConversionRate: 0.15,
			Rationale: "Technology enthusiasts who are among the first to try new products and services. " +
				"They influence others through reviews and social sharing, making them valuable for product " +
				"launches.",
			TopFeatures: []string{"tech-enthusiast", "influencer", "early-adopter"},
			CohortScore: 90,
			CohortRationale: "Highest conversion rate segment with strong influence potential. Perfect for " +
				"beta testing and product launches. High engagement across all digital channels.",
		},
	}
}
