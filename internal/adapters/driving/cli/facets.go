package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclom/search/internal/core/domain"
)

var facetsJSON bool

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "Show facet aggregations for the organization's corpus",
	Args:  cobra.NoArgs,
	RunE:  runFacets,
}

func init() {
	facetsCmd.Flags().BoolVar(&facetsJSON, "json", false, "output facets as JSON")
	rootCmd.AddCommand(facetsCmd)
}

func runFacets(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured
	}

	facets, err := searchService.Facets(cmd.Context(), flagOrg, "")
	if err != nil {
		return fmt.Errorf("facet aggregation failed: %w", err)
	}

	if facetsJSON {
		return printJSON(cmd, facets)
	}
	printFacets(cmd, facets)
	return nil
}

func printFacets(cmd *cobra.Command, facets *domain.SearchFacets) {
	if len(facets.Sources) > 0 {
		cmd.Println("Sources:")
		for _, f := range facets.Sources {
			cmd.Printf("  %-12s %d\n", f.Source, f.Count)
		}
	}
	if len(facets.ContentTypes) > 0 {
		cmd.Println("Content types:")
		for _, f := range facets.ContentTypes {
			cmd.Printf("  %-12s %d\n", f.Type, f.Count)
		}
	}
	if len(facets.Participants) > 0 {
		cmd.Println("Participants:")
		for _, f := range facets.Participants {
			cmd.Printf("  %-20s %d\n", f.Name, f.Count)
		}
	}
	if len(facets.Topics) > 0 {
		cmd.Println("Topics:")
		for _, f := range facets.Topics {
			cmd.Printf("  %-20s %d\n", f.Name, f.Count)
		}
	}
	if len(facets.DateHistogram) > 0 {
		cmd.Println("Activity by week:")
		for _, b := range facets.DateHistogram {
			cmd.Printf("  %s  %d\n", b.Date, b.Count)
		}
	}
}
