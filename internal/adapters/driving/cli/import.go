package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nuclom/search/internal/adapters/driven/importer/github"
)

var importToken string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import content from external sources",
}

var importGitHubCmd = &cobra.Command{
	Use:   "github [owner/repo]",
	Short: "Import issues, pull requests, and comments from a GitHub repository",
	Long: `Imports a repository's issues, pull requests, and their comments as
searchable content items. Each item is embedded when an embedding
provider is configured, enabling semantic retrieval alongside keyword
matching.

The access token is read from --token, the GITHUB_TOKEN environment
variable, or an interactive prompt, in that order.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportGitHub,
}

func init() {
	importGitHubCmd.Flags().StringVar(&importToken, "token", "", "GitHub access token")
	importCmd.AddCommand(importGitHubCmd)
	rootCmd.AddCommand(importCmd)
}

func runImportGitHub(cmd *cobra.Command, args []string) error {
	owner, repo, ok := strings.Cut(args[0], "/")
	if !ok || owner == "" || repo == "" {
		return fmt.Errorf("repository must be given as owner/repo, got %q", args[0])
	}

	if err := ensureServices(); err != nil {
		return err
	}
	if contentStore == nil {
		return errNotConfigured
	}

	token := resolveGitHubToken(cmd)
	if token == "" {
		return fmt.Errorf("a GitHub access token is required")
	}

	ctx := cmd.Context()
	client := github.NewClient(ctx, token)
	login, err := client.ValidateToken(ctx)
	if err != nil {
		return fmt.Errorf("GitHub token rejected: %w", err)
	}
	cmd.Printf("Authenticated as %s\n", login)

	imp := github.NewImporter(client, contentStore, embedder)
	stats, err := imp.ImportRepository(ctx, flagOrg, owner, repo)
	if err != nil {
		return fmt.Errorf("import %s/%s: %w", owner, repo, err)
	}

	cmd.Printf("Imported %s/%s: %d issues, %d pull requests, %d comments (%d embedded)\n",
		owner, repo, stats.Issues, stats.PullRequests, stats.Comments, stats.Embedded)
	return nil
}

func resolveGitHubToken(cmd *cobra.Command) string {
	if importToken != "" {
		return importToken
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	cmd.Print("GitHub token: ")
	token := readSecret()
	cmd.Println()
	return token
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
