package audience

import "encoding/json"

// The generation backend has returned its audience list in several envelope
// variants over time. extractList probes the known locations in priority
// order and returns the first match:
//
//  1. top-level "data" that is itself the array
//  2. "data.suggested_audiences"
//  3. top-level "suggested_audiences"
//  4. the response body being a bare array
func extractList(raw json.RawMessage) []map[string]any {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	switch v := payload.(type) {
	case map[string]any:
		if data, ok := v["data"]; ok {
			if list := recordList(data); list != nil {
				return list
			}
			if inner, ok := data.(map[string]any); ok {
				if list := recordList(inner["suggested_audiences"]); list != nil {
					return list
				}
			}
		}
		if list := recordList(v["suggested_audiences"]); list != nil {
			return list
		}
	case []any:
		return recordList(v)
	}
	return nil
}

// extractModified probes the known locations for a single modified record:
// modified_audience, audience, data.modified_audience, data.audience, the
// first element of suggested_audiences, or the first element of a bare array.
func extractModified(raw json.RawMessage) (map[string]any, bool) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}

	switch v := payload.(type) {
	case map[string]any:
		for _, key := range []string{"modified_audience", "audience"} {
			if rec, ok := v[key].(map[string]any); ok {
				return rec, true
			}
		}
		if data, ok := v["data"].(map[string]any); ok {
			for _, key := range []string{"modified_audience", "audience"} {
				if rec, ok := data[key].(map[string]any); ok {
					return rec, true
				}
			}
		}
		if list := recordList(v["suggested_audiences"]); len(list) > 0 {
			return list[0], true
		}
	case []any:
		if list := recordList(v); len(list) > 0 {
			return list[0], true
		}
	}
	return nil, false
}

// recordList converts a decoded JSON array into a slice of object records.
// Non-object elements are skipped. Returns nil when v is not an array.
func recordList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
