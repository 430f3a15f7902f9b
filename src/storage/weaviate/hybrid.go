package weaviate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/weaviate/weaviate/entities/models"

	"okchat/src/core/search"
)

// HybridSearch executes a single hybrid query. It is a one-element batch.
func (w *SDK) HybridSearch(ctx context.Context, req search.HybridSearchRequest) (*search.HybridSearchResponse, error) {
	responses, err := w.MultiHybridSearch(ctx, []search.HybridSearchRequest{req})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// MultiHybridSearch executes the whole batch as one GraphQL document using
// field aliases, so N requests cost a single network round trip. Responses
// are order-preserving and 1:1 with the input. Weaviate returns one fused
// hybrid score per hit; it is normalized and split into text and vector
// contributions by the request's TextWeight, never discarded.
func (w *SDK) MultiHybridSearch(ctx context.Context, reqs []search.HybridSearchRequest) ([]search.HybridSearchResponse, error) {
	if len(reqs) == 0 {
		return []search.HybridSearchResponse{}, nil
	}

	query := buildMultiHybridQuery(w.className, reqs)
	result, err := w.client.GraphQL().Raw().WithQuery(query).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrSearchUnavailable, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", search.ErrSearchUnavailable, result.Errors[0].Message)
	}

	return parseMultiHybridResponse(result.Data, reqs)
}

// buildMultiHybridQuery renders one aliased Get query per request. The alias
// q<i> ties each sub-query back to its input position.
func buildMultiHybridQuery(className string, reqs []search.HybridSearchRequest) string {
	var b strings.Builder
	b.WriteString("{ Get {")
	for i, req := range reqs {
		limit := req.Limit
		if limit <= 0 {
			limit = search.DefaultTopK
		}

		// Alpha is the vector share of Weaviate's hybrid fusion. A request
		// without a vector runs as pure BM25.
		alpha := 1.0 - req.TextWeight
		if len(req.Vector) == 0 {
			alpha = 0
		}

		fmt.Fprintf(&b, " q%d: %s(", i, className)
		fmt.Fprintf(&b, "hybrid: {query: %s, alpha: %s, properties: [%s]",
			strconv.Quote(req.Query),
			strconv.FormatFloat(alpha, 'f', -1, 64),
			weightedProperties(req.QueryBy, req.QueryByWeights))
		if len(req.Vector) > 0 {
			b.WriteString(", vector: ")
			b.WriteString(vectorLiteral(req.Vector))
		}
		b.WriteString("}")
		if clause := whereClause(req.Filters); clause != "" {
			b.WriteString(", where: ")
			b.WriteString(clause)
		}
		fmt.Fprintf(&b, ", limit: %d)", limit)
		b.WriteString(" { docId title content path spaceKey knowledgeBaseId keywords type webUrl downloadUrl _additional { score } }")
	}
	b.WriteString(" } }")
	return b.String()
}

// weightedProperties renders QueryBy fields in Weaviate's boosted-property
// syntax, e.g. "keywords^3".
func weightedProperties(queryBy []string, weights []int) string {
	parts := make([]string, 0, len(queryBy))
	for i, field := range queryBy {
		if i < len(weights) && weights[i] > 1 {
			parts = append(parts, strconv.Quote(fmt.Sprintf("%s^%d", field, weights[i])))
		} else {
			parts = append(parts, strconv.Quote(field))
		}
	}
	return strings.Join(parts, ", ")
}

func vectorLiteral(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// whereClause renders equality filters, combined with And when there is more
// than one. Keys are sorted so generated queries are deterministic.
func whereClause(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	operands := make([]string, 0, len(keys))
	for _, k := range keys {
		var valueField, literal string
		switch v := filters[k].(type) {
		case string:
			valueField, literal = "valueText", strconv.Quote(v)
		case bool:
			valueField, literal = "valueBoolean", strconv.FormatBool(v)
		case int:
			valueField, literal = "valueInt", strconv.Itoa(v)
		case int64:
			valueField, literal = "valueInt", strconv.FormatInt(v, 10)
		case float64:
			valueField, literal = "valueNumber", strconv.FormatFloat(v, 'f', -1, 64)
		default:
			continue
		}
		operands = append(operands,
			fmt.Sprintf("{path: [%s], operator: Equal, %s: %s}", strconv.Quote(k), valueField, literal))
	}

	if len(operands) == 0 {
		return ""
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return fmt.Sprintf("{operator: And, operands: [%s]}", strings.Join(operands, ", "))
}

// parseMultiHybridResponse maps the aliased GraphQL payload back onto the
// request order. A missing alias yields an empty response, and a malformed
// object is skipped rather than failing the batch.
func parseMultiHybridResponse(data map[string]models.JSONObject, reqs []search.HybridSearchRequest) ([]search.HybridSearchResponse, error) {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: malformed response, missing Get payload", search.ErrSearchUnavailable)
	}

	responses := make([]search.HybridSearchResponse, len(reqs))
	for i, req := range reqs {
		objects, ok := get[fmt.Sprintf("q%d", i)].([]interface{})
		if !ok {
			responses[i] = search.HybridSearchResponse{Hits: []search.SearchHit{}}
			continue
		}

		// A lexical-only request carries the full fused score on the text
		// side; there is no vector contribution to credit.
		textWeight := req.TextWeight
		if len(req.Vector) == 0 {
			textWeight = 1.0
		}

		hits := make([]search.SearchHit, 0, len(objects))
		for _, obj := range objects {
			objMap, ok := obj.(map[string]interface{})
			if !ok {
				continue
			}

			raw := rawScore(objMap)
			normalized := search.NormalizeScore(raw)

			document := make(map[string]interface{}, len(objMap))
			for k, v := range objMap {
				if k == "_additional" {
					continue
				}
				if k == "docId" {
					document["id"] = v
					continue
				}
				document[k] = v
			}

			hits = append(hits, search.SearchHit{
				Document:    document,
				TextScore:   normalized * textWeight,
				VectorScore: normalized * (1 - textWeight),
			})
		}
		responses[i] = search.HybridSearchResponse{Hits: hits}
	}

	return responses, nil
}

// rawScore reads the hybrid score out of _additional. Weaviate serializes it
// as a JSON string; older versions used a number.
func rawScore(objMap map[string]interface{}) float64 {
	additional, ok := objMap["_additional"].(map[string]interface{})
	if !ok {
		return 0
	}
	switch v := additional["score"].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
