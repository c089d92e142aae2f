package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	suggestLimit int
	suggestJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "Suggest title completions for a query prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 10, "maximum suggestions")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured
	}

	suggestions, err := searchService.Suggestions(cmd.Context(), flagOrg, args[0], suggestLimit)
	if err != nil {
		return fmt.Errorf("suggestions failed: %w", err)
	}

	if suggestJSON {
		return printJSON(cmd, suggestions)
	}
	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, s := range suggestions {
		cmd.Println(s.Text)
	}
	return nil
}
