package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclom/search/internal/core/domain"
)

var (
	itemsLimit   int
	itemsJSON    bool
	itemsSources []string
	itemsTypes   []string
)

var itemsCmd = &cobra.Command{
	Use:   "items [query]",
	Short: "Search imported content items only",
	Args:  cobra.ExactArgs(1),
	RunE:  runItems,
}

func init() {
	itemsCmd.Flags().IntVarP(&itemsLimit, "limit", "n", 0, "page size (0 uses the configured default)")
	itemsCmd.Flags().BoolVar(&itemsJSON, "json", false, "output items as JSON")
	itemsCmd.Flags().StringSliceVar(&itemsSources, "source", nil, "restrict to source types")
	itemsCmd.Flags().StringSliceVar(&itemsTypes, "type", nil, "restrict to content types")
	rootCmd.AddCommand(itemsCmd)
}

func runItems(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured
	}

	req := domain.SearchRequest{
		Query:          args[0],
		OrganizationID: flagOrg,
		Limit:          itemsLimit,
	}
	for _, s := range itemsSources {
		req.Sources = append(req.Sources, domain.SourceType(s))
	}
	for _, t := range itemsTypes {
		req.ContentTypes = append(req.ContentTypes, domain.ContentItemType(t))
	}

	items, err := searchService.SearchContentItems(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("content search failed: %w", err)
	}

	if itemsJSON {
		return printJSON(cmd, items)
	}
	if len(items) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i := range items {
		item := &items[i]
		title := item.Item.Title
		if title == "" {
			title = item.Item.ID
		}
		cmd.Printf("  [%d] %s\n", i+1, title)
		cmd.Printf("      %s · %s · %s\n", item.Item.SourceType, item.Source.Name,
			item.Item.CreatedAt.Format("2006-01-02"))
	}
	return nil
}
