package core

// Overlaps reports whether two solutions touch any order in common.
//
// Two winners must never touch the same order, or the settlement layer would
// attempt to fill it twice, so this check permits no false negatives. The
// touched-order sets are built once per solution by NewSolution; each pairwise
// check costs O(min(|a|, |b|)) map lookups.
func Overlaps(a, b *Solution) bool {
	small, large := a.touched, b.touched
	if len(large) < len(small) {
		small, large = large, small
	}
	for id := range small {
		if _, ok := large[id]; ok {
			return true
		}
	}
	return false
}
