package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	collectionDescription string
	collectionJSON        bool
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Long: `Create a named collection for documents.

Examples:
  ragstore collection create faq
  ragstore collection create faq --description "Customer FAQ answers"`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionCreate,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionList,
}

var collectionShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionShow,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection and all its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionDelete,
}

func init() {
	rootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionShowCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)

	collectionCreateCmd.Flags().StringVar(&collectionDescription, "description", "", "collection description")
	collectionListCmd.Flags().BoolVar(&collectionJSON, "json", false, "output as JSON")
	collectionShowCmd.Flags().BoolVar(&collectionJSON, "json", false, "output as JSON")
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	coll, err := eng.CreateCollection(args[0], collectionDescription)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	fmt.Printf("Created collection %q (id: %s)\n", coll.Name, coll.ID)
	return nil
}

func runCollectionList(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	colls, err := eng.ListCollections()
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if collectionJSON {
		output, _ := json.MarshalIndent(colls, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(colls) == 0 {
		fmt.Println("No collections.")
		return nil
	}
	for _, coll := range colls {
		fmt.Printf("%-24s %6d docs", coll.Name, coll.DocCount)
		if coll.Description != "" {
			fmt.Printf("  %s", coll.Description)
		}
		fmt.Println()
	}
	return nil
}

func runCollectionShow(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	coll, err := eng.GetCollection(args[0])
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	if collectionJSON {
		output, _ := json.MarshalIndent(coll, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Name:        %s\n", coll.Name)
	fmt.Printf("ID:          %s\n", coll.ID)
	fmt.Printf("Documents:   %d\n", coll.DocCount)
	if coll.Description != "" {
		fmt.Printf("Description: %s\n", coll.Description)
	}
	fmt.Printf("Created:     %s\n", coll.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.DeleteCollection(args[0]); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	fmt.Printf("Deleted collection %q\n", args[0])
	return nil
}
