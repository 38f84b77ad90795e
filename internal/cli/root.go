package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"ragstore"
	"ragstore/config"
)

var (
	cfgFile      string
	cfg          *config.Config
	dbPath       string
	providerName string
	modelName    string
)

var rootCmd = &cobra.Command{
	Use:   "ragstore",
	Short: "Local RAG engine - store, search and enrich with embedded documents",
	Long: `ragstore keeps collections of embedded documents in a single local
database file, searches them by meaning, keywords or both, and assembles
retrieved context for prompt enrichment.

Example usage:
  ragstore collection create faq          # Create a collection
  ragstore document add -c faq "text"     # Store a document
  ragstore search -c faq -q "refunds"     # Search it
  ragstore enrich -c faq -q "refunds"     # Build prompt context`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Flags override the file.
		if dbPath != "" {
			cfg.Store.DBPath = dbPath
		}
		if providerName != "" {
			cfg.Embedding.Provider = providerName
		}
		if modelName != "" {
			cfg.Embedding.Model = modelName
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragstore.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default from config)")
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "embedding provider: local, openai, mock (default from config)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "embedding model (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}

// openEngine opens the engine with the effective configuration. Callers
// must Close it.
func openEngine() (*ragstore.Engine, error) {
	eng, err := ragstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return eng, nil
}
