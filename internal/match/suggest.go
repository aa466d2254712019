package match

import "sort"

// DefaultThreshold is the minimum Similarity for a name to be suggested.
const DefaultThreshold = 0.6

type candidate struct {
	name  string
	score float64
}

// Suggest returns up to limit names from known that resemble input, best
// first. Ties keep the order of known.
func Suggest(input string, known []string, limit int) []string {
	var ranked []candidate

	for _, k := range known {
		if k == input {
			continue
		}

		if s := Similarity(input, k); s >= DefaultThreshold {
			ranked = append(ranked, candidate{name: k, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.name
	}

	return out
}
