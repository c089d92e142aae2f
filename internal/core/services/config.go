package services

import (
	"fmt"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
)

// Default configuration values.
const (
	DefaultSemanticWeight    = 0.5
	DefaultSemanticThreshold = 0.6
	DefaultLimit             = 20
	DefaultMaxLimit          = 100
	DefaultOversample        = 2
)

// Config holds the engine-wide search defaults. Per-request values
// override the weights and threshold; limits are always bounded here.
// Invalid values are rejected at construction, never clamped.
type Config struct {
	// SemanticWeight is the default fusion weight for semantic scores,
	// in [0,1]. The keyword weight is always 1 - SemanticWeight.
	SemanticWeight float64

	// SemanticThreshold is the default minimum cosine similarity for a
	// semantic hit, in [0,1].
	SemanticThreshold float64

	// DefaultLimit is the page size applied when a request omits one.
	DefaultLimit int

	// MaxLimit caps the page size a request may ask for.
	MaxLimit int

	// Oversample is the per-family candidate multiplier: each family
	// fetches up to limit*Oversample hits so the cross-family merge and
	// pagination do not starve either family.
	Oversample int

	// DropFacetsOnError keeps ranked results when the facet aggregation
	// fails, omitting facets from the response. When false, a facet
	// failure fails the whole search.
	DropFacetsOnError bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		SemanticWeight:    DefaultSemanticWeight,
		SemanticThreshold: DefaultSemanticThreshold,
		DefaultLimit:      DefaultLimit,
		MaxLimit:          DefaultMaxLimit,
		Oversample:        DefaultOversample,
		DropFacetsOnError: true,
	}
}

// Validate checks all fields are within their documented ranges.
func (c Config) Validate() error {
	if c.SemanticWeight < 0 || c.SemanticWeight > 1 {
		return fmt.Errorf("%w: semantic weight %v outside [0,1]", domain.ErrInvalidInput, c.SemanticWeight)
	}
	if c.SemanticThreshold < 0 || c.SemanticThreshold > 1 {
		return fmt.Errorf("%w: semantic threshold %v outside [0,1]", domain.ErrInvalidInput, c.SemanticThreshold)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("%w: default limit must be positive", domain.ErrInvalidInput)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("%w: max limit %d below default limit %d", domain.ErrInvalidInput, c.MaxLimit, c.DefaultLimit)
	}
	if c.Oversample < 1 {
		return fmt.Errorf("%w: oversample factor must be at least 1", domain.ErrInvalidInput)
	}
	return nil
}

// ConfigFromStore builds a Config from the configuration store, falling
// back to defaults for missing keys. The result is validated.
func ConfigFromStore(store driven.ConfigStore) (Config, error) {
	cfg := DefaultConfig()
	if store == nil {
		return cfg, nil
	}

	if _, ok := store.Get("search.semantic_weight"); ok {
		cfg.SemanticWeight = store.GetFloat("search.semantic_weight")
	}
	if _, ok := store.Get("search.semantic_threshold"); ok {
		cfg.SemanticThreshold = store.GetFloat("search.semantic_threshold")
	}
	if _, ok := store.Get("search.default_limit"); ok {
		cfg.DefaultLimit = store.GetInt("search.default_limit")
	}
	if _, ok := store.Get("search.max_limit"); ok {
		cfg.MaxLimit = store.GetInt("search.max_limit")
	}
	if _, ok := store.Get("search.oversample"); ok {
		cfg.Oversample = store.GetInt("search.oversample")
	}
	if _, ok := store.Get("search.drop_facets_on_error"); ok {
		cfg.DropFacetsOnError = store.GetBool("search.drop_facets_on_error")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("search config: %w", err)
	}
	return cfg, nil
}
