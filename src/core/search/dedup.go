package search

import (
	"sort"
	"strings"
)

// MergeResults collapses chunk-level results into logical documents by
// canonical id. Singleton groups pass through unchanged. Larger groups merge
// their content in ascending chunk order with a blank-line separator, keep
// the metadata of the highest-scoring member, and score as the group
// maximum. The merged set is re-sorted descending by score.
func MergeResults(results []SearchResult) []SearchResult {
	if len(results) <= 1 {
		return results
	}

	groups := make(map[string][]SearchResult)
	order := make([]string, 0, len(results))
	for _, r := range results {
		if _, seen := groups[r.ID]; !seen {
			order = append(order, r.ID)
		}
		groups[r.ID] = append(groups[r.ID], r)
	}

	merged := make([]SearchResult, 0, len(order))
	for _, id := range order {
		merged = append(merged, mergeGroup(groups[id]))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score.Value > merged[j].Score.Value
	})

	return merged
}

func mergeGroup(group []SearchResult) SearchResult {
	if len(group) == 1 {
		return group[0]
	}

	// Metadata comes from the best-scoring chunk; the first one wins a tie.
	best := group[0]
	for _, r := range group[1:] {
		if r.Score.Value > best.Score.Value {
			best = r
		}
	}

	// Content is concatenated in chunk-sequence order so the merged text
	// reads in original document order.
	ordered := make([]SearchResult, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return chunkLess(ordered[i].RawID, ordered[j].RawID)
	})

	parts := make([]string, 0, len(ordered))
	for _, r := range ordered {
		if r.Content != "" {
			parts = append(parts, r.Content)
		}
	}

	best.Content = strings.Join(parts, "\n\n")
	return best
}

func chunkLess(a, b string) bool {
	ai, aok := chunkIndex(a)
	bi, bok := chunkIndex(b)
	if aok && bok {
		return ai < bi
	}
	return a < b
}
