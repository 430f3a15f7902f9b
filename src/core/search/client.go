package search

import (
	"context"
	"errors"
)

// ErrSearchUnavailable is returned when the search backend cannot serve a
// request. Callers decide on retries; the client performs none.
var ErrSearchUnavailable = errors.New("search backend unavailable")

// HybridSearchRequest is a backend-agnostic hybrid query. QueryByWeights is
// positional with QueryBy. TextWeight is the lexical share in [0,1]; the
// vector share is its complement. An empty Vector degrades the request to
// pure lexical scoring.
type HybridSearchRequest struct {
	Query          string
	QueryBy        []string
	QueryByWeights []int
	Vector         []float32
	Filters        map[string]interface{}
	Limit          int
	TextWeight     float64
}

// SearchHit is a raw backend hit. TextScore and VectorScore are normalized
// to [0,1] and kept separate so per-type combiners can weight them.
type SearchHit struct {
	Document    map[string]interface{}
	TextScore   float64
	VectorScore float64
}

// HybridSearchResponse carries the hits for one request.
type HybridSearchResponse struct {
	Hits []SearchHit
}

// SearchClient translates hybrid requests into backend calls. Implementations
// must keep MultiHybridSearch order-preserving and 1:1 with its input, and
// must report text and vector score contributions separately: a backend that
// returns a single fused score splits it by the request's TextWeight.
type SearchClient interface {
	HybridSearch(ctx context.Context, req HybridSearchRequest) (*HybridSearchResponse, error)
	MultiHybridSearch(ctx context.Context, reqs []HybridSearchRequest) ([]HybridSearchResponse, error)
}
