package cloze

import "strings"

// Grade compares submitted answers against expected targets. It passes only if
// both lists have equal length and every pair matches exactly after trimming
// leading and trailing whitespace from the submission. Expected targets are
// compared as stored. No case folding, no inner-whitespace normalization.
// Which blank failed is deliberately not reported.
func Grade(submitted, expected []string) bool {
	if len(submitted) != len(expected) {
		return false
	}
	for i, s := range submitted {
		if strings.TrimSpace(s) != expected[i] {
			return false
		}
	}
	return true
}

// PenalizedXP reduces an XP award by 10% per wrong attempt supplied by the
// caller, floored at half the base award. Penalties never flip a pass into a
// fail.
func PenalizedXP(base, penalties int) int {
	if penalties <= 0 {
		return base
	}
	reduced := base - base*penalties/10
	if floor := base / 2; reduced < floor {
		return floor
	}
	return reduced
}
