// Package texthash provides a deterministic, model-free embedding
// service. Each token hashes into a fixed-size bag-of-words vector,
// which is then L2-normalized. Texts sharing vocabulary land close in
// cosine space, which is enough for demos and offline tests; it is not
// a substitute for a real embedding model.
package texthash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/nuclom/search/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size used when none is configured.
const DefaultDimensions = 256

// EmbeddingService produces hashed bag-of-words embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder with the given vector
// size. Non-positive sizes fall back to DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed hashes the text's tokens into a normalized vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]{}")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token)) //nolint:errcheck // fnv never fails
		vec[h.Sum32()%uint32(s.dimensions)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

// EmbedBatch embeds each text independently.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName identifies the hashing scheme.
func (s *EmbeddingService) ModelName() string {
	return "texthash-fnv32a"
}

// Ping always succeeds; there is no remote service.
func (s *EmbeddingService) Ping(context.Context) error { return nil }

// Close releases nothing.
func (s *EmbeddingService) Close() error { return nil }
