package seed

import "testing"

func TestFoldDeterministic(t *testing.T) {
	a := Fold("audience-1")
	b := Fold("audience-1")
	if a != b {
		t.Fatalf("Fold not stable: %d != %d", a, b)
	}
	if a < 0 {
		t.Errorf("Fold = %d, want non-negative", a)
	}
}

func TestFoldSingleChar(t *testing.T) {
	// One character folds to its code point.
	if got := Fold("a"); got != 97 {
		t.Errorf("Fold(%q) = %d, want 97", "a", got)
	}
}

func TestFoldWraparound(t *testing.T) {
	// Long ids overflow int32; the result must still be non-negative and
	// stable.
	id := "audience-with-a-very-long-identifier-that-overflows-int32-arithmetic"
	v := Fold(id)
	if v < 0 {
		t.Fatalf("Fold(%q) = %d, want non-negative", id, v)
	}
	if v != Fold(id) {
		t.Errorf("Fold(%q) not stable", id)
	}
}

func TestPickInBounds(t *testing.T) {
	ids := []string{"sample-1", "sample-2", "sample-3", "x", ""}
	for _, id := range ids {
		got := Pick(id, 7)
		if got < 0 || got >= 7 {
			t.Errorf("Pick(%q, 7) = %d, out of range", id, got)
		}
	}
}

func TestInRange(t *testing.T) {
	for _, id := range []string{"sample-1", "audience-123", "z"} {
		got := InRange(id, 5, 20)
		if got < 5 || got >= 25 {
			t.Errorf("InRange(%q, 5, 20) = %d, out of range", id, got)
		}
	}
}
