package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	docCollection string
	docMeta       []string
	docLimit      int
	docOffset     int
	docJSON       bool
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents",
}

var documentAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a document to a collection",
	Long: `Embed and store one document. The collection must exist.

Examples:
  ragstore document add -c faq "Refunds are processed within 5 days."
  ragstore document add -c faq --meta source=handbook --meta page=12 "..."`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAdd,
}

var documentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a collection's documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentListCmd)

	documentAddCmd.Flags().StringVarP(&docCollection, "collection", "c", "", "collection name (required)")
	documentAddCmd.Flags().StringArrayVar(&docMeta, "meta", nil, "metadata entry as key=value (repeatable)")
	documentAddCmd.MarkFlagRequired("collection")

	documentGetCmd.Flags().BoolVar(&docJSON, "json", false, "output as JSON")

	documentListCmd.Flags().StringVarP(&docCollection, "collection", "c", "", "collection name (required)")
	documentListCmd.Flags().IntVar(&docLimit, "limit", 20, "maximum documents to list")
	documentListCmd.Flags().IntVar(&docOffset, "offset", 0, "documents to skip")
	documentListCmd.Flags().BoolVar(&docJSON, "json", false, "output as JSON")
	documentListCmd.MarkFlagRequired("collection")
}

func parseMeta(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q, expected key=value", entry)
		}
		meta[key] = value
	}
	return meta, nil
}

func parseDocID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return id, nil
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	meta, err := parseMeta(docMeta)
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	id, err := eng.AddDocument(args[0], docCollection, meta)
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	fmt.Printf("Added document %d to %q\n", id, docCollection)
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	doc, err := eng.GetDocument(id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if docJSON {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("ID:         %d\n", doc.ID)
	fmt.Printf("Collection: %s\n", doc.CollectionName)
	fmt.Printf("Created:    %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	for key, value := range doc.Metadata {
		fmt.Printf("Meta:       %s=%s\n", key, value)
	}
	fmt.Println()
	fmt.Println(doc.Content)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	fmt.Printf("Deleted document %d\n", id)
	return nil
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	docs, err := eng.ListDocuments(docCollection, docLimit, docOffset)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docJSON {
		output, _ := json.MarshalIndent(docs, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}
	for _, doc := range docs {
		content := doc.Content
		if len(content) > 80 {
			content = content[:80] + "..."
		}
		content = strings.ReplaceAll(content, "\n", " ")
		fmt.Printf("%8d  %s\n", doc.ID, content)
	}
	return nil
}
