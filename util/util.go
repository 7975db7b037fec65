package util

import (
	"sort"

	"golang.org/x/exp/maps"
)

// CountSpans tallies how many edges share each backward span, given
// (source, destination) index pairs.
func CountSpans(pairs [][2]int) map[int]int {
	counts := make(map[int]int)
	for _, p := range pairs {
		counts[p[0]-p[1]]++
	}
	return counts
}

// RankByCount returns the keys of a count map ordered by descending count,
// ties broken by smaller key.
func RankByCount(counts map[int]int) []int {
	keys := maps.Keys(counts)
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
