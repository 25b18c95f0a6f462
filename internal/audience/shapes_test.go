package audience

import (
	"encoding/json"
	"testing"
)

func TestExtractListShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ids  []string
	}{
		{"data array", `{"data":[{"id":"a"},{"id":"b"}]}`, []string{"a", "b"}},
		{"data.suggested_audiences", `{"data":{"suggested_audiences":[{"id":"a"}]}}`, []string{"a"}},
		{"top-level suggested_audiences", `{"suggested_audiences":[{"id":"a"}]}`, []string{"a"}},
		{"bare array", `[{"id":"a"}]`, []string{"a"}},
		{"no match", `{"result":"ok"}`, nil},
		{"not json", `hello`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractList(json.RawMessage(tc.raw))
			if len(got) != len(tc.ids) {
				t.Fatalf("got %d records, want %d", len(got), len(tc.ids))
			}
			for i, id := range tc.ids {
				if got[i]["id"] != id {
					t.Errorf("record %d id = %v, want %q", i, got[i]["id"], id)
				}
			}
		})
	}
}

func TestExtractListPriority(t *testing.T) {
	// A usable "data" array wins over a sibling suggested_audiences key.
	raw := `{"data":[{"id":"from-data"}],"suggested_audiences":[{"id":"from-suggested"}]}`
	got := extractList(json.RawMessage(raw))
	if len(got) != 1 || got[0]["id"] != "from-data" {
		t.Fatalf("got %v, want the data array", got)
	}
}

func TestExtractModifiedShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		id   string
		ok   bool
	}{
		{"modified_audience", `{"modified_audience":{"id":"m"}}`, "m", true},
		{"audience", `{"audience":{"id":"m"}}`, "m", true},
		{"data.modified_audience", `{"data":{"modified_audience":{"id":"m"}}}`, "m", true},
		{"data.audience", `{"data":{"audience":{"id":"m"}}}`, "m", true},
		{"suggested_audiences first", `{"suggested_audiences":[{"id":"first"},{"id":"second"}]}`, "first", true},
		{"bare array first", `[{"id":"first"}]`, "first", true},
		{"empty object", `{}`, "", false},
		{"empty array", `[]`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, ok := extractModified(json.RawMessage(tc.raw))
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && rec["id"] != tc.id {
				t.Errorf("id = %v, want %q", rec["id"], tc.id)
			}
		})
	}
}

func TestExtractModifiedPriority(t *testing.T) {
	raw := `{"modified_audience":{"id":"direct"},"audience":{"id":"alias"},"data":{"modified_audience":{"id":"nested"}}}`
	rec, ok := extractModified(json.RawMessage(raw))
	if !ok || rec["id"] != "direct" {
		t.Fatalf("got %v, want modified_audience to win", rec)
	}
}
