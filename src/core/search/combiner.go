package search

// ScoreCombiner folds the separate text and vector contributions of a hit
// into one relevance value. Combiners are pluggable per search type.
type ScoreCombiner func(textScore, vectorScore float64) float64

// SumCombiner adds both contributions. It is the default for lexical-first
// search types whose vector contribution is usually zero.
func SumCombiner(textScore, vectorScore float64) float64 {
	return textScore + vectorScore
}

// WeightedCombiner weights the two contributions. Content search uses
// 0.3/0.7: text matches are less reliable for free-text queries than
// semantic similarity.
func WeightedCombiner(textWeight, vectorWeight float64) ScoreCombiner {
	return func(textScore, vectorScore float64) float64 {
		return textScore*textWeight + vectorScore*vectorWeight
	}
}

// DefaultCombiners returns the per-search-type combination policy used when
// the service is constructed without an override.
func DefaultCombiners() map[SearchType]ScoreCombiner {
	return map[SearchType]ScoreCombiner{
		SearchTypeKeyword: SumCombiner,
		SearchTypeTitle:   SumCombiner,
		SearchTypePath:    SumCombiner,
		SearchTypeContent: WeightedCombiner(0.3, 0.7),
	}
}
