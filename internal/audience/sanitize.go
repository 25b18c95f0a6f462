package audience

import (
	"encoding/json"
	"fmt"
	"time"
)

// timeNow is swapped in tests to make synthetic IDs deterministic.
var timeNow = time.Now

// Sanitize coerces a loosely-shaped backend record into a well-formed
// Audience. Missing or mistyped fields get safe defaults: empty name becomes
// "Unnamed Audience", the rule operator defaults to "AND", slices are never
// nil, the conversion rate is clamped to [0,1], and a record without an id
// gets a time-based synthetic one.
func Sanitize(raw map[string]any) Audience {
	a := Audience{
		ID:   coerceString(raw["id"]),
		Name: coerceString(raw["name"]),
	}
	if a.ID == "" {
		a.ID = fmt.Sprintf("audience-%d", timeNow().UnixMilli())
	}
	if a.Name == "" {
		a.Name = "Unnamed Audience"
	}

	a.Rule = sanitizeRule(raw["rule"])

	if size, ok := coerceInt(raw["estimated_size"]); ok {
		a.EstimatedSize = sizePtr(size)
	}
	a.EstimatedConversionRate = clampRate(coerceFloat(raw["estimated_conversion_rate"]))
	a.Rationale = coerceString(raw["rationale"])
	a.TopFeatures = coerceStringSlice(raw["top_features"])
	score, _ := coerceInt(raw["cohort_score"])
	a.CohortScore = score
	a.CohortRationale = coerceString(raw["cohort_rationale"])
	return a
}

// SanitizeList applies Sanitize to every record in raws.
func SanitizeList(raws []map[string]any) []Audience {
	out := make([]Audience, len(raws))
	for i, r := range raws {
		out[i] = Sanitize(r)
	}
	return out
}

func sanitizeRule(v any) Rule {
	r := Rule{Operator: "AND", Conditions: []Condition{}}
	m, ok := v.(map[string]any)
	if !ok {
		return r
	}
	if op := coerceString(m["operator"]); op != "" {
		r.Operator = op
	}
	conds, ok := m["conditions"].([]any)
	if !ok {
		return r
	}
	for _, c := range conds {
		cm, ok := c.(map[string]any)
		if !ok {
			continue
		}
		r.Conditions = append(r.Conditions, Condition{
			Field:    coerceString(cm["field"]),
			Operator: coerceString(cm["operator"]),
			Value:    cm["value"],
		})
	}
	return r
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

func coerceString(v any) string {
	s, _ := v.(string)
	return s
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func coerceStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
