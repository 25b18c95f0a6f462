// Package seed derives stable pseudo-random values from record IDs.
//
// The wizard shows derived metrics (lift percentages, fallback scores,
// suggested titles) that must stay constant across re-renders for the same
// record. A polynomial rolling hash over the ID folded into a signed 32-bit
// integer gives a cheap deterministic seed with no cryptographic
// requirements.
package seed

// Fold hashes id into a non-negative int. The hash is h(n) = h(n-1)*31 + c
// with 32-bit signed wraparound.
func Fold(id string) int {
	var h int32
	for _, c := range id {
		h = h*31 + int32(c)
	}
	v := int(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Pick returns a deterministic index into a collection of length n.
// Returns 0 when n <= 0 is mishandled by the caller; n must be positive.
func Pick(id string, n int) int {
	return Fold(id) % n
}

// InRange maps id onto [lo, lo+span).
func InRange(id string, lo, span int) int {
	return lo + Fold(id)%span
}
