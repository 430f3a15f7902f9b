package search

import (
	"sort"
	"strconv"
	"strings"

	"okchat/src/log"
)

// chunkMarker suffixes ids of documents that were split for indexing, e.g.
// "12345_chunk_2".
const chunkMarker = "_chunk_"

// ExtractPageID strips the chunk suffix from a raw document id so that
// chunks of the same logical document collapse to one id. Stripping an id
// without a suffix is a no-op.
func ExtractPageID(rawID string) string {
	if idx := strings.LastIndex(rawID, chunkMarker); idx >= 0 {
		return rawID[:idx]
	}
	return rawID
}

// chunkIndex returns the numeric chunk sequence of a raw id, or false when
// the id carries no parsable chunk suffix.
func chunkIndex(rawID string) (int, bool) {
	idx := strings.LastIndex(rawID, chunkMarker)
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rawID[idx+len(chunkMarker):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseResponse converts raw hits into scored SearchResults using the given
// combiner. Hits whose document map lacks a usable id are dropped; a single
// malformed hit never fails the whole response. Results are sorted
// descending by combined score, ties keeping arrival order.
func ParseResponse(resp *HybridSearchResponse, searchType SearchType, combiner ScoreCombiner) []SearchResult {
	if resp == nil {
		return []SearchResult{}
	}

	kind := ScoreKindCombined
	if searchType == SearchTypeContent {
		kind = ScoreKindSimilarity
	}

	results := make([]SearchResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		rawID := documentString(hit.Document, "id")
		if rawID == "" {
			log.Debug("dropping hit without document id", "searchType", string(searchType))
			continue
		}

		results = append(results, SearchResult{
			ID:              ExtractPageID(rawID),
			RawID:           rawID,
			Title:           documentString(hit.Document, "title"),
			Content:         documentString(hit.Document, "content"),
			Path:            documentString(hit.Document, "path"),
			SpaceKey:        documentString(hit.Document, "spaceKey"),
			KnowledgeBaseID: documentInt64(hit.Document, "knowledgeBaseId"),
			Keywords:        documentStringSlice(hit.Document, "keywords"),
			Score: Score{
				Value: combiner(hit.TextScore, hit.VectorScore),
				Kind:  kind,
			},
			Type:        documentString(hit.Document, "type"),
			WebURL:      documentString(hit.Document, "webUrl"),
			DownloadURL: documentString(hit.Document, "downloadUrl"),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score.Value > results[j].Score.Value
	})

	return results
}

func documentString(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func documentInt64(doc map[string]interface{}, key string) int64 {
	switch v := doc[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func documentStringSlice(doc map[string]interface{}, key string) []string {
	switch v := doc[key].(type) {
	case []string:
		copied := make([]string, len(v))
		copy(copied, v)
		return copied
	case []interface{}:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return values
	}
	return nil
}
