package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var enrichJSON bool

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Assemble retrieved context for a prompt",
	Long: `Search a collection and format the hits as a context block ready to
prepend to a prompt.

Examples:
  ragstore enrich -c faq -q "how do refunds work"
  ragstore enrich -c faq -q "how do refunds work" --json`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "question to enrich (required)")
	enrichCmd.Flags().StringVarP(&searchCollection, "collection", "c", "", "collection name (required)")
	enrichCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of sources (default from config)")
	enrichCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum score, in [-1, 1] (default from config)")
	enrichCmd.Flags().StringVar(&searchMode, "mode", "", "search mode: semantic, keyword, hybrid (default from config)")
	enrichCmd.Flags().BoolVar(&enrichJSON, "json", false, "output as JSON")
	enrichCmd.MarkFlagRequired("query")
	enrichCmd.MarkFlagRequired("collection")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	topK, threshold, mode := searchParams(cmd)

	result, err := eng.Enrich(searchQuery, searchCollection, topK, threshold, mode)
	if err != nil {
		return fmt.Errorf("enrich failed: %w", err)
	}

	if enrichJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if result.Context == "" {
		fmt.Println("No sources found.")
		return nil
	}
	fmt.Println(result.Context)
	return nil
}
