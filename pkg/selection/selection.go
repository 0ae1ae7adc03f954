// Package selection parses the numbered-selection grammar used to pick
// assets from a catalog listing: whitespace-separated tokens where each
// token is a single index or an inclusive "a-b" range.
package selection

import (
	"strconv"
	"strings"
)

// Parse expands input into catalog indices bounded by [1, max]. Malformed
// tokens, reversed ranges, and out-of-range indices are dropped silently
// so a user can overshoot without aborting the whole selection. Duplicates
// collapse to the first occurrence; order is first-occurrence order.
//
// Ranges are ascending only: "2-1" contributes nothing.
func Parse(input string, max int) []int {
	var picked []int
	seen := make(map[int]bool)

	add := func(i int) {
		if i < 1 || i > max || seen[i] {
			return
		}
		seen[i] = true
		picked = append(picked, i)
	}

	for _, tok := range strings.Fields(input) {
		if lo, hi, ok := strings.Cut(tok, "-"); ok {
			a, errA := strconv.Atoi(lo)
			b, errB := strconv.Atoi(hi)
			if errA != nil || errB != nil {
				continue
			}
			// Clamp to the catalog bounds before iterating so an
			// overshooting bound is dropped rather than walked.
			if a < 1 {
				a = 1
			}
			if b > max {
				b = max
			}
			for i := a; i <= b; i++ {
				add(i)
			}
			continue
		}

		i, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		add(i)
	}

	return picked
}

// All returns the full selection 1..max.
func All(max int) []int {
	all := make([]int, max)
	for i := range all {
		all[i] = i + 1
	}
	return all
}
