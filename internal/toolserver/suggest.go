package toolserver

import (
	"sort"
	"strings"

	"langcore/internal/index"
)

// nameSuggestions returns the limit qualified names in snap closest to name
// by edit distance, ascending. Ties break by shorter name first, then
// lexically, so repeated queries against an unchanged snapshot are
// deterministic.
func nameSuggestions(snap *index.Snapshot, name string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	target := strings.ToLower(name)
	all := snap.All()
	candidates := make([]scored, 0, len(all))
	for _, e := range all {
		candidates = append(candidates, scored{e.QualifiedName, levenshtein(target, strings.ToLower(e.QualifiedName))})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		if len(candidates[i].name) != len(candidates[j].name) {
			return len(candidates[i].name) < len(candidates[j].name)
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

// levenshtein computes the classic single-row edit distance between a and b.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
