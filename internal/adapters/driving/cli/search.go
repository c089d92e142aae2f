package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nuclom/search/internal/core/domain"
)

var (
	searchLimit      int
	searchOffset     int
	searchJSON       bool
	searchMode       string
	searchSources    []string
	searchTypes      []string
	searchWeight     float64
	searchThreshold  float64
	searchFacets     bool
	searchHighlights bool
	searchNoVideos   bool
	searchNoItems    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search videos and imported content",
	Long: `Performs hybrid search across the whole corpus. Keyword substring
matching and semantic embedding similarity run together; scores fuse by
configurable weights, with a bounded boost for recent items.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "page size (0 uses the configured default)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "ranked results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "retrieval mode: keyword, semantic, or hybrid")
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "restrict to source types (slack, github, ...)")
	searchCmd.Flags().StringSliceVar(&searchTypes, "type", nil, "restrict to content types (message, issue, ...)")
	searchCmd.Flags().Float64Var(&searchWeight, "semantic-weight", 0, "semantic fusion weight in [0,1]")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum cosine similarity in [0,1]")
	searchCmd.Flags().BoolVar(&searchFacets, "facets", false, "include facet aggregations")
	searchCmd.Flags().BoolVar(&searchHighlights, "highlights", true, "include marked-up excerpts")
	searchCmd.Flags().BoolVar(&searchNoVideos, "no-videos", false, "skip the video family")
	searchCmd.Flags().BoolVar(&searchNoItems, "no-items", false, "skip the content-item family")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured
	}

	req := domain.SearchRequest{
		Query:             args[0],
		OrganizationID:    flagOrg,
		Mode:              domain.SearchMode(searchMode),
		Limit:             searchLimit,
		Offset:            searchOffset,
		IncludeFacets:     searchFacets,
		IncludeHighlights: searchHighlights,
	}
	for _, s := range searchSources {
		req.Sources = append(req.Sources, domain.SourceType(s))
	}
	for _, t := range searchTypes {
		req.ContentTypes = append(req.ContentTypes, domain.ContentItemType(t))
	}
	if cmd.Flags().Changed("semantic-weight") {
		w := searchWeight
		req.SemanticWeight = &w
	}
	if cmd.Flags().Changed("threshold") {
		t := searchThreshold
		req.SemanticThreshold = &t
	}
	if searchNoVideos {
		f := false
		req.IncludeVideos = &f
	}
	if searchNoItems {
		f := false
		req.IncludeContentItems = &f
	}

	resp, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, resp)
	}
	return printSearchResponse(cmd, resp)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printSearchResponse(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%d", resp.TotalCount)
	if resp.HasMore {
		cmd.Print("+")
	}
	cmd.Printf(" matches, %dms):\n\n", resp.SearchTimeMs)

	for i := range resp.Results {
		item := &resp.Results[i]
		cmd.Printf("  [%d] %s (%.3f)\n", searchOffset+i+1, resultTitle(item), item.Score)
		cmd.Printf("      %s\n", resultOrigin(item))
		if item.Highlights != nil && item.Highlights.Content != "" {
			cmd.Printf("      %s\n", item.Highlights.Content)
		}
		cmd.Println()
	}

	if resp.Facets != nil {
		printFacets(cmd, resp.Facets)
	}
	return nil
}

// resultTitle picks the display title for either payload family.
func resultTitle(item *domain.SearchResultItem) string {
	switch item.Type {
	case domain.ItemTypeVideo:
		return item.Video.Video.Title
	case domain.ItemTypeContentItem:
		if title := item.ContentItem.Item.Title; title != "" {
			return title
		}
		return item.ContentItem.Item.ID
	}
	return ""
}

// resultOrigin describes where the result came from.
func resultOrigin(item *domain.SearchResultItem) string {
	var parts []string
	switch item.Type {
	case domain.ItemTypeVideo:
		parts = append(parts, "video")
		if author := item.Video.AuthorName; author != "" {
			parts = append(parts, "by "+author)
		}
	case domain.ItemTypeContentItem:
		parts = append(parts, string(item.ContentItem.Item.SourceType))
		if name := item.ContentItem.Source.Name; name != "" {
			parts = append(parts, name)
		}
		if author := item.ContentItem.Item.AuthorName; author != "" {
			parts = append(parts, "by "+author)
		}
	}
	if topic := item.Context.TopicCluster; topic != nil {
		parts = append(parts, "topic: "+topic.Name)
	}
	parts = append(parts, item.CreatedAt().Format("2006-01-02"))
	return strings.Join(parts, " · ")
}
