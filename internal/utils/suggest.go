package utils

import (
	"slices"

	"github.com/lithammer/fuzzysearch/fuzzy"
	subseq "github.com/sahilm/fuzzy"
)

// ClosestMatches returns up to limit candidates that resemble word, best first.
// Subsequence matches rank ahead of near misses by edit distance, so both
// "trcd" and "tarced" find "traced".
func ClosestMatches(word string, candidates []string, limit int) []string {
	if word == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	var result []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] && s != word && len(result) < limit {
			seen[s] = true
			result = append(result, s)
		}
	}

	for _, m := range subseq.Find(word, candidates) {
		add(m.Str)
	}

	type near struct {
		name     string
		distance int
	}
	threshold := max(1, len(word)/3)
	var nearMisses []near
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(word, c); d <= threshold {
			nearMisses = append(nearMisses, near{name: c, distance: d})
		}
	}
	slices.SortStableFunc(nearMisses, func(a, b near) int {
		return a.distance - b.distance
	})
	for _, n := range nearMisses {
		add(n.name)
	}

	return result
}
