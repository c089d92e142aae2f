package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCmd_Use(t *testing.T) {
	assert.Equal(t, "seed", seedCmd.Use)
}

func TestSeedCmd_PopulatesLocalStore(t *testing.T) {
	oldService := searchService
	oldStore := contentStore
	oldEmbedder := embedder
	searchService = nil
	contentStore = nil
	embedder = nil
	defer func() {
		closeServices()
		searchService = oldService
		contentStore = oldStore
		embedder = oldEmbedder
	}()

	oldDataDir := flagDataDir
	flagDataDir = t.TempDir()
	defer func() { flagDataDir = oldDataDir }()

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 videos and 4 content items")

	// The demo corpus is immediately searchable. The unreachable local
	// embedder degrades the query to keyword-only, which still matches.
	out, err = execute(t, "search", "launch")
	require.NoError(t, err)
	assert.Contains(t, out, "Q3 launch planning")
	assert.Contains(t, out, "Weekly sync notes")
}
