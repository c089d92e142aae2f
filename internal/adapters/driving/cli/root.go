// Package cli implements the command-line interface. Commands wire the
// driven adapters into the core search service on first use and share
// that wiring through package-level service handles.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/nuclom/search/internal/adapters/driven/config/file"
	"github.com/nuclom/search/internal/adapters/driven/embedding/ollama"
	"github.com/nuclom/search/internal/adapters/driven/embedding/openai"
	"github.com/nuclom/search/internal/adapters/driven/embedding/texthash"
	"github.com/nuclom/search/internal/adapters/driven/storage/memory"
	"github.com/nuclom/search/internal/adapters/driven/storage/sqlite"
	"github.com/nuclom/search/internal/core/ports/driven"
	"github.com/nuclom/search/internal/core/ports/driving"
	"github.com/nuclom/search/internal/core/services"
	"github.com/nuclom/search/internal/logger"
)

// version is set by Execute from the build's main package.
var version = "dev"

// Persistent flags.
var (
	flagVerbose bool
	flagDataDir string
	flagOrg     string
	flagMemory  bool
)

// contentBackend is what commands need from a storage adapter.
type contentBackend interface {
	driven.ContentStore
	driven.ContentWriter
}

// Shared service handles, populated by ensureServices (or by tests).
// coreService is the concrete service behind searchService; the config
// watch needs its UpdateConfig, which is not part of the driving port.
var (
	searchService driving.SearchService
	coreService   *services.SearchService
	contentStore  contentBackend
	configStore   driven.ConfigStore
	embedder      driven.EmbeddingService
)

var rootCmd = &cobra.Command{
	Use:   "nuclomsearch",
	Short: "Unified search across videos and connected workspace tools",
	Long: `Search one corpus spanning recorded videos and imported workspace
content (Slack, Notion, GitHub, and more). Keyword and semantic
retrieval run together; results fuse into a single ranked list with
recency-aware scoring, highlights, and facet aggregations.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.nuclom)")
	rootCmd.PersistentFlags().StringVar(&flagOrg, "org", "default", "organization scope for all operations")
	rootCmd.PersistentFlags().BoolVar(&flagMemory, "memory", false, "use an in-memory store (demo mode, nothing persists)")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	defer closeServices()
	return rootCmd.Execute()
}

// ensureServices builds the store, embedder, and search service on
// first use. Tests inject their own handles instead.
func ensureServices() error {
	if searchService != nil {
		return nil
	}

	cfgStore, err := configfile.NewConfigStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfgStore

	if flagMemory {
		contentStore = memory.NewContentStore()
		logger.Debug("using in-memory store")
	} else {
		store, err := sqlite.NewStore(flagDataDir)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		contentStore = store
		logger.Debug("store open at %s", store.Path())
	}

	embedder, err = buildEmbedder(configStore)
	if err != nil {
		return err
	}
	logger.Debug("embedding model: %s (%d dims)", embedder.ModelName(), embedder.Dimensions())

	cfg, err := services.ConfigFromStore(configStore)
	if err != nil {
		return err
	}

	svc, err := services.NewSearchService(contentStore, embedder, cfg)
	if err != nil {
		return err
	}
	coreService = svc
	searchService = svc
	return nil
}

// configWatcher is satisfied by config stores that can report file
// changes. The file-backed store implements it; the in-memory one
// does not.
type configWatcher interface {
	Watch(ctx context.Context, onReload func()) error
}

// startConfigWatch reloads the search tuning when the config file
// changes. Long-running commands call this; one-shot commands read the
// config once and exit.
func startConfigWatch(ctx context.Context) {
	watcher, ok := configStore.(configWatcher)
	if !ok {
		return
	}
	go func() {
		if err := watcher.Watch(ctx, applyConfigReload); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watch stopped: %v", err)
		}
	}()
}

// applyConfigReload rebuilds the search tuning from the freshly loaded
// config store. A config that fails validation leaves the previous
// tuning active.
func applyConfigReload() {
	if configStore == nil || coreService == nil {
		return
	}
	cfg, err := services.ConfigFromStore(configStore)
	if err != nil {
		logger.Warn("config reload rejected: %v", err)
		return
	}
	if err := coreService.UpdateConfig(cfg); err != nil {
		logger.Warn("config reload rejected: %v", err)
		return
	}
	logger.Info("config reloaded from %s", configStore.Path())
}

// buildEmbedder selects the embedding provider from configuration.
// Supported providers: ollama (default), openai, texthash.
func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	if provider == "" && flagMemory {
		// Demo mode works without an external embedding provider.
		provider = "texthash"
	}
	switch provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		}), nil

	case "openai":
		apiKey := cfg.GetString("embedding.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})

	case "texthash":
		return texthash.NewEmbeddingService(cfg.GetInt("embedding.dimensions")), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

func closeServices() {
	if closer, ok := contentStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
	}
	contentStore = nil
	if embedder != nil {
		_ = embedder.Close()
		embedder = nil
	}
	searchService = nil
	coreService = nil
}

// errNotConfigured reports a command run before wiring succeeded.
var errNotConfigured = errors.New("search service not configured")
