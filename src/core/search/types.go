package search

// ScoreKind describes how a result score was produced.
type ScoreKind string

const (
	// ScoreKindSimilarity marks scores dominated by semantic similarity.
	ScoreKindSimilarity ScoreKind = "similarity"
	// ScoreKindCombined marks scores produced by summing text and vector
	// contributions.
	ScoreKindCombined ScoreKind = "combined"
)

// Score is a combined relevance score. Value is non-negative but not bounded
// by 1 since combiners may sum two normalized contributions.
type Score struct {
	Value float64   `json:"value"`
	Kind  ScoreKind `json:"kind"`
}

// SearchResult is the final retrieval unit returned to callers. ID is the
// canonical document id with any chunk suffix stripped; RawID keeps the
// pre-strip chunk id so merged content can preserve chunk order.
type SearchResult struct {
	ID              string   `json:"id"`
	RawID           string   `json:"-"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Path            string   `json:"path"`
	SpaceKey        string   `json:"spaceKey"`
	KnowledgeBaseID int64    `json:"knowledgeBaseId"`
	Keywords        []string `json:"keywords"`
	Score           Score    `json:"score"`
	Type            string   `json:"type"`
	WebURL          string   `json:"webUrl"`
	DownloadURL     string   `json:"downloadUrl"`
}
