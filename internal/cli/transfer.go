package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	importCollection    string
	importContentColumn string
	importMetaColumns   []string
	exportCollection    string
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-pattern>",
	Short: "Import documents from CSV files",
	Long: `Import documents from CSV files with a header row. The argument may
be a single file or a doublestar glob pattern; each file is imported
all-or-nothing.

Examples:
  ragstore import -c faq data/faq.csv
  ragstore import -c faq "data/**/*.csv" --content-column answer --meta-column topic`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a collection to a CSV file",
	Long: `Export all documents of a collection to a CSV file with columns
id, collection, content, metadata, created_at.

Examples:
  ragstore export -c faq faq-backup.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().StringVarP(&importCollection, "collection", "c", "", "target collection (required)")
	importCmd.Flags().StringVar(&importContentColumn, "content-column", "content", "CSV column holding document text")
	importCmd.Flags().StringArrayVar(&importMetaColumns, "meta-column", nil, "CSV column copied into metadata (repeatable)")
	importCmd.MarkFlagRequired("collection")

	exportCmd.Flags().StringVarP(&exportCollection, "collection", "c", "", "source collection (required)")
	exportCmd.MarkFlagRequired("collection")
}

func runImport(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	var bar *progressbar.ProgressBar
	var barPath string

	progress := func(path string, done, total int) {
		if bar == nil || path != barPath {
			barPath = path
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription(fmt.Sprintf("[cyan]Importing[reset] %s", path)),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	count, err := eng.ImportGlob(args[0], importCollection, importContentColumn, importMetaColumns, progress)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d documents into %q\n", count, importCollection)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	count, err := eng.ExportCSV(args[0], exportCollection)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Exported %d documents to %s\n", count, args[0])
	return nil
}
