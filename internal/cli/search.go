package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"ragstore/internal/domain"
)

var (
	searchQuery      string
	searchCollection string
	searchTopK       int
	searchThreshold  float64
	searchMode       string
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a collection",
	Long: `Search one collection for documents relevant to a query.

Modes: semantic (embedding similarity), keyword (BM25), hybrid (both).

Examples:
  ragstore search -c faq -q "refund policy"
  ragstore search -c faq -q "refund policy" --mode hybrid --top-k 10 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "", "collection name (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum score, in [-1, 1] (default from config)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "search mode: semantic, keyword, hybrid (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
	searchCmd.MarkFlagRequired("collection")
}

// searchParams resolves flag values against config defaults.
func searchParams(cmd *cobra.Command) (topK int, threshold float64, mode domain.SearchMode) {
	cfg := GetConfig()

	topK = cfg.Search.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}
	threshold = cfg.Search.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold = searchThreshold
	}
	mode = domain.SearchMode(cfg.Search.Mode)
	if searchMode != "" {
		mode = domain.SearchMode(searchMode)
	}
	return topK, threshold, mode
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	topK, threshold, mode := searchParams(cmd)

	results, err := eng.Search(searchQuery, searchCollection, topK, threshold, mode)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), searchQuery)
	for i, r := range results {
		fmt.Printf("--- [%d] doc %d (score: %.3f) ---\n", i+1, r.DocumentID, r.Score)
		text := r.Content
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}
	return nil
}
