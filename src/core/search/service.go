package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"okchat/src/log"
)

const (
	// DefaultTopK bounds the merged result set when callers pass no limit.
	DefaultTopK = 10

	// DefaultEmbeddingModel is the model used for content-query embeddings.
	DefaultEmbeddingModel = "nomic-embed-text"
)

// Embedder generates embedding vectors for content-type criteria.
type Embedder interface {
	GetEmbedding(ctx context.Context, model string, input string) ([]float32, error)
}

// fieldProfile declares which indexed fields a search type queries and how
// they are weighted against each other. textWeight is the lexical share of
// the fused backend score; only content search cedes weight to the vector
// side.
type fieldProfile struct {
	queryBy    []string
	weights    []int
	textWeight float64
}

var fieldProfiles = map[SearchType]fieldProfile{
	SearchTypeKeyword: {
		queryBy:    []string{"keywords", "title", "content"},
		weights:    []int{3, 2, 1},
		textWeight: 1.0,
	},
	SearchTypeTitle: {
		queryBy:    []string{"title", "content"},
		weights:    []int{3, 1},
		textWeight: 1.0,
	},
	SearchTypeContent: {
		queryBy:    []string{"content", "title"},
		weights:    []int{2, 1},
		textWeight: 0.3,
	},
	SearchTypePath: {
		queryBy:    []string{"path"},
		weights:    []int{1},
		textWeight: 1.0,
	},
}

// Service batches typed criteria into one backend round trip and produces a
// ranked, deduplicated result set. It holds no mutable state and is safe for
// unlimited parallel invocation.
type Service struct {
	client         SearchClient
	embedder       Embedder
	combiners      map[SearchType]ScoreCombiner
	embeddingModel string
	snowflake      *snowflake.Node
}

// NewService creates a multi-search service. A nil combiners map falls back
// to DefaultCombiners; an empty model name falls back to
// DefaultEmbeddingModel.
func NewService(client SearchClient, embedder Embedder, combiners map[SearchType]ScoreCombiner, embeddingModel string) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("search client is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if combiners == nil {
		combiners = DefaultCombiners()
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &Service{
		client:         client,
		embedder:       embedder,
		combiners:      combiners,
		embeddingModel: embeddingModel,
		snowflake:      node,
	}, nil
}

// MultiSearch issues one hybrid request per criterion in a single batched
// backend call, combines per-chunk scores with the per-type policy, merges
// chunks into logical documents and returns the top topK of the merged set.
// An empty criteria list returns immediately without a backend call. An
// embedding failure degrades that criterion to lexical-only instead of
// aborting the batch.
func (s *Service) MultiSearch(ctx context.Context, criteria []SearchCriteria, topK int) ([]SearchResult, error) {
	if len(criteria) == 0 {
		return []SearchResult{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryID := s.snowflake.Generate().String()
	started := time.Now()

	requests := make([]HybridSearchRequest, len(criteria))
	var wg sync.WaitGroup
	for i, criterion := range criteria {
		profile, ok := fieldProfiles[criterion.Type()]
		if !ok {
			return nil, fmt.Errorf("unsupported search type: %s", criterion.Type())
		}

		requests[i] = HybridSearchRequest{
			Query:          criterion.Query(),
			QueryBy:        profile.queryBy,
			QueryByWeights: profile.weights,
			Limit:          topK,
			TextWeight:     profile.textWeight,
		}

		// Embeddings are computed concurrently while the remaining lexical
		// requests are built. Only content criteria carry a vector.
		if criterion.Type() == SearchTypeContent {
			wg.Add(1)
			go func(i int, query string) {
				defer wg.Done()
				vector, err := s.embedder.GetEmbedding(ctx, s.embeddingModel, query)
				if err != nil {
					log.Error(err, "embedding failed, degrading to lexical-only",
						"queryId", queryID, "query", query)
					return
				}
				requests[i].Vector = vector
			}(i, criterion.Query())
		}
	}
	wg.Wait()

	responses, err := s.client.MultiHybridSearch(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("multi hybrid search failed: %w", err)
	}
	if len(responses) != len(requests) {
		return nil, fmt.Errorf("%w: got %d responses for %d requests",
			ErrSearchUnavailable, len(responses), len(requests))
	}

	var combined []SearchResult
	for i := range responses {
		combiner, ok := s.combiners[criteria[i].Type()]
		if !ok {
			combiner = SumCombiner
		}
		combined = append(combined, ParseResponse(&responses[i], criteria[i].Type(), combiner)...)
	}

	merged := MergeResults(combined)
	if len(merged) > topK {
		merged = merged[:topK]
	}

	log.Debug("multi search completed",
		"queryId", queryID,
		"criteria", len(criteria),
		"results", len(merged),
		"durationMs", time.Since(started).Milliseconds())

	return merged, nil
}

// QueryID mints a correlation id in the same sequence MultiSearch uses for
// its logs. The HTTP layer tags audit events with it.
func (s *Service) QueryID() string {
	return s.snowflake.Generate().String()
}
