package memory

import "sort"

// mergeCandidates combines channel outputs with priority vector > graph >
// text, deduplicates on the approximate merge key (first occurrence wins),
// then orders scored entries by similarity descending followed by unscored
// entries by recency descending. Output is capped at limit.
func mergeCandidates(vector, graph, text []Candidate, limit int) []Candidate {
	seen := make(map[string]bool, len(vector)+len(graph)+len(text))
	merged := make([]Candidate, 0, len(vector)+len(graph)+len(text))
	for _, group := range [][]Candidate{vector, graph, text} {
		for _, c := range group {
			key := c.mergeKey()
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}

	scored := make([]Candidate, 0, len(merged))
	unscored := make([]Candidate, 0, len(merged))
	for _, c := range merged {
		if c.Scored {
			scored = append(scored, c)
		} else {
			unscored = append(unscored, c)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	sort.SliceStable(unscored, func(i, j int) bool {
		return unscored[i].createdAt().After(unscored[j].createdAt())
	})

	out := append(scored, unscored...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
