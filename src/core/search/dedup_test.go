package search_test

import (
	"reflect"
	"strings"
	"testing"

	"okchat/src/core/search"
)

func chunkResult(rawID string, score float64, content string) search.SearchResult {
	return search.SearchResult{
		ID:      search.ExtractPageID(rawID),
		RawID:   rawID,
		Title:   "title " + search.ExtractPageID(rawID),
		Content: content,
		Score:   search.Score{Value: score, Kind: search.ScoreKindCombined},
	}
}

func TestMergeResultsSingletonUnchanged(t *testing.T) {
	in := []search.SearchResult{chunkResult("7", 0.8, "whole document")}
	out := search.MergeResults(in)

	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if !reflect.DeepEqual(out[0], in[0]) {
		t.Errorf("singleton group was modified: got %+v", out[0])
	}
}

func TestMergeResultsChunkGroup(t *testing.T) {
	in := []search.SearchResult{
		chunkResult("7_chunk_2", 0.9, "third part"),
		chunkResult("7_chunk_0", 0.4, "first part"),
		chunkResult("7_chunk_1", 0.6, "second part"),
	}

	out := search.MergeResults(in)
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1 merged document", len(out))
	}

	merged := out[0]
	if merged.ID != "7" {
		t.Errorf("merged ID = %q, want %q", merged.ID, "7")
	}
	if merged.Score.Value != 0.9 {
		t.Errorf("merged score = %v, want max 0.9", merged.Score.Value)
	}

	// Content is in chunk order, not score order.
	want := "first part\n\nsecond part\n\nthird part"
	if merged.Content != want {
		t.Errorf("merged content = %q, want %q", merged.Content, want)
	}
	for _, part := range []string{"first part", "second part", "third part"} {
		if !strings.Contains(merged.Content, part) {
			t.Errorf("merged content missing %q", part)
		}
	}
}

func TestMergeResultsNumericChunkOrder(t *testing.T) {
	// Chunk 10 must come after chunk 2 even though "10" < "2" as strings.
	in := []search.SearchResult{
		chunkResult("7_chunk_10", 0.5, "late part"),
		chunkResult("7_chunk_2", 0.5, "early part"),
	}

	out := search.MergeResults(in)
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if out[0].Content != "early part\n\nlate part" {
		t.Errorf("merged content = %q, want chunk-sequence order", out[0].Content)
	}
}

func TestMergeResultsMetadataFromBestChunk(t *testing.T) {
	a := chunkResult("7_chunk_0", 0.3, "weak chunk")
	b := chunkResult("7_chunk_1", 0.8, "strong chunk")
	b.Path = "Team > Project > Doc"
	b.WebURL = "https://wiki.local/7"

	out := search.MergeResults([]search.SearchResult{a, b})
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if out[0].Path != "Team > Project > Doc" || out[0].WebURL != "https://wiki.local/7" {
		t.Errorf("merged metadata not taken from best-scoring chunk: %+v", out[0])
	}
}

func TestMergeResultsResortsAcrossDocuments(t *testing.T) {
	in := []search.SearchResult{
		chunkResult("a", 0.5, "doc a"),
		chunkResult("b_chunk_0", 0.2, "doc b start"),
		chunkResult("b_chunk_1", 0.9, "doc b end"),
		chunkResult("c", 0.7, "doc c"),
	}

	out := search.MergeResults(in)
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}

	wantOrder := []string{"b", "c", "a"}
	for i, want := range wantOrder {
		if out[i].ID != want {
			t.Errorf("out[%d].ID = %q, want %q", i, out[i].ID, want)
		}
	}
}
