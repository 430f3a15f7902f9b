package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"

	"okchat/src/core/search"
	"okchat/src/infrastructure/integrations/ollama"
	"okchat/src/storage/weaviate"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate retrieval quality against a golden query set",
	Long: `The evaluate command runs a batch of queries from a JSON file against the
live search backend and reports hit@k and mean reciprocal rank.`,
	RunE: RunEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("input", "i", "", "Input JSON file path")
	evaluateCmd.MarkFlagRequired("input")
	evaluateCmd.Flags().IntP("top-k", "k", 5, "Result cut-off per query")
}

type evaluationCase struct {
	Query       string   `json:"query"`
	Keywords    []string `json:"keywords,omitempty"`
	ExpectedIDs []string `json:"expected_ids"`
}

func RunEvaluate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	inputPath, _ := cmd.Flags().GetString("input")
	topK, _ := cmd.Flags().GetInt("top-k")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var cases []evaluationCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("input file contains no evaluation cases")
	}

	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 30 * time.Second,
	})
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	wsdk := weaviate.NewSDK(wc, viper.GetString("search.class_name"))

	searchService, err := search.NewService(wsdk, oc, nil, viper.GetString("search.embedding_model"))
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}

	bar := progressbar.Default(int64(len(cases)), "evaluating")

	var hits int
	var reciprocalRankSum float64
	for _, tc := range cases {
		var criteria []search.SearchCriteria
		if len(tc.Keywords) > 0 {
			criteria = append(criteria, search.NewKeywordCriteria(tc.Keywords...))
		}
		criteria = append(criteria, search.NewContentCriteria(tc.Query))

		results, err := searchService.MultiSearch(ctx, criteria, topK)
		if err != nil {
			return fmt.Errorf("search failed for query %q: %w", tc.Query, err)
		}

		if rank := firstRelevantRank(results, tc.ExpectedIDs); rank > 0 {
			hits++
			reciprocalRankSum += 1.0 / float64(rank)
		}
		bar.Add(1)
	}

	fmt.Printf("\nqueries: %d\n", len(cases))
	fmt.Printf("hit@%d:  %.3f\n", topK, float64(hits)/float64(len(cases)))
	fmt.Printf("mrr:    %.3f\n", reciprocalRankSum/float64(len(cases)))
	return nil
}

// firstRelevantRank returns the 1-based rank of the first expected document
// in the result list, or 0 when none is present.
func firstRelevantRank(results []search.SearchResult, expectedIDs []string) int {
	for i, result := range results {
		for _, id := range expectedIDs {
			if result.ID == id {
				return i + 1
			}
		}
	}
	return 0
}
