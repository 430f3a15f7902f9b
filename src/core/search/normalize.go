package search

import "math"

// scoreScale flattens the sigmoid so that raw backend scores map to useful
// relevance: 5 -> 0.73, 10 -> 0.88, 20 -> 0.98.
const scoreScale = 5.0

// NormalizeScore maps an unbounded backend relevance score into [0,1).
// Non-positive scores normalize to exactly 0 so that "no match" hits never
// contribute positive relevance, even though the sigmoid curve itself would
// place 0 at 0.5.
func NormalizeScore(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	return 1.0 / (1.0 + math.Exp(-raw/scoreScale))
}
