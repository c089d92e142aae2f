package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newTestContentStore(t *testing.T) *ContentStore {
	t.Helper()
	store := NewContentStore()
	store.SetClock(func() time.Time { return testNow })
	return store
}

func seedVideo(t *testing.T, store *ContentStore, id, title, transcript string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, store.SaveVideo(context.Background(), &domain.Video{
		ID:             id,
		OrganizationID: "org-1",
		Title:          title,
		Transcript:     transcript,
		AuthorName:     "Dana",
		CreatedAt:      createdAt,
	}))
}

func seedItem(t *testing.T, store *ContentStore, item domain.ContentItem) {
	t.Helper()
	if item.OrganizationID == "" {
		item.OrganizationID = "org-1"
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = testNow.Add(-time.Hour)
	}
	require.NoError(t, store.SaveContentItem(context.Background(), &item))
}

func TestSearchVideosKeyword(t *testing.T) {
	store := newTestContentStore(t)
	ctx := context.Background()

	seedVideo(t, store, "v-old", "Launch plan", "", testNow.Add(-48*time.Hour))
	seedVideo(t, store, "v-new", "Standup", "launch slipped", testNow.Add(-time.Hour))
	seedVideo(t, store, "v-miss", "Retro", "", testNow.Add(-time.Hour))

	hits, err := store.SearchVideosKeyword(ctx, "LAUNCH", driven.RetrievalFilter{
		OrganizationID: "org-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "v-new", hits[0].Video.Video.ID)
	assert.Equal(t, "v-old", hits[1].Video.Video.ID)
}

func TestSearchVideosSemantic_BestChunk(t *testing.T) {
	store := newTestContentStore(t)
	ctx := context.Background()

	seedVideo(t, store, "v-1", "first", "", testNow.Add(-time.Hour))
	require.NoError(t, store.SaveTranscriptChunks(ctx, []domain.TranscriptChunk{
		{ID: "c-1", VideoID: "v-1", Position: 0, Embedding: []float32{0.6, 0.8}},
		{ID: "c-2", VideoID: "v-1", Position: 1, Embedding: []float32{1, 0}},
	}))

	hits, err := store.SearchVideosSemantic(ctx, []float32{1, 0}, 0.5, driven.RetrievalFilter{
		OrganizationID: "org-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
}

func TestSearchContentKeyword_FiltersAndTopic(t *testing.T) {
	store := newTestContentStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSource(ctx, domain.Source{
		ID: "src-gh", OrganizationID: "org-1", Type: domain.SourceTypeGitHub, Name: "Repo",
	}))
	seedItem(t, store, domain.ContentItem{
		ID: "i-1", SourceID: "src-gh", SourceType: domain.SourceTypeGitHub,
		ContentType: domain.ContentTypeIssue, Title: "Launch checklist",
	})
	seedItem(t, store, domain.ContentItem{
		ID: "i-2", SourceID: "src-gh", SourceType: domain.SourceTypeGitHub,
		ContentType: domain.ContentTypeComment, Body: "launch note",
	})
	require.NoError(t, store.SaveTopicCluster(ctx, domain.TopicCluster{
		ID: "t-1", OrganizationID: "org-1", Name: "Launch",
	}))
	require.NoError(t, store.AssignTopic(ctx, "i-1", "t-1"))

	hits, err := store.SearchContentKeyword(ctx, "launch", driven.RetrievalFilter{
		OrganizationID: "org-1",
		ContentTypes:   []domain.ContentItemType{domain.ContentTypeIssue},
		Limit:          10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "i-1", hits[0].Item.Item.ID)
	assert.Equal(t, "Repo", hits[0].Item.Source.Name)
	require.NotNil(t, hits[0].Topic)
	assert.Equal(t, "Launch", hits[0].Topic.Name)
}

func TestSearchContentSemantic_ThresholdAndOrder(t *testing.T) {
	store := newTestContentStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSource(ctx, domain.Source{
		ID: "src-slack", OrganizationID: "org-1", Type: domain.SourceTypeSlack, Name: "Chat",
	}))
	seedItem(t, store, domain.ContentItem{
		ID: "i-close", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "a", Embedding: []float32{1, 0},
	})
	seedItem(t, store, domain.ContentItem{
		ID: "i-far", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "b", Embedding: []float32{0, 1},
	})

	hits, err := store.SearchContentSemantic(ctx, []float32{1, 0}, 0.5, driven.RetrievalFilter{
		OrganizationID: "org-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "i-close", hits[0].Item.Item.ID)
}

func TestFacetsAndSuggestions(t *testing.T) {
	store := newTestContentStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSource(ctx, domain.Source{
		ID: "src-slack", OrganizationID: "org-1", Type: domain.SourceTypeSlack, Name: "Chat",
	}))
	seedItem(t, store, domain.ContentItem{
		ID: "i-1", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "a", AuthorName: "Ana",
		CreatedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
	})
	seedVideo(t, store, "v-1", "Launch planning", "", testNow.Add(-time.Hour))

	facets, err := store.Facets(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceFacet{{Source: domain.SourceTypeSlack, Count: 1}}, facets.Sources)
	assert.Equal(t, []domain.ParticipantFacet{{Name: "Ana", Count: 1}}, facets.Participants)
	require.Len(t, facets.DateHistogram, facetHistogramWeeks)
	assert.Equal(t, domain.DateBucket{Date: "2026-08-24", Count: 1}, facets.DateHistogram[0])

	titles, err := store.SuggestTitles(ctx, "org-1", "launch", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Launch planning"}, titles)
}

func TestWriterValidation(t *testing.T) {
	store := newTestContentStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveVideo(ctx, &domain.Video{ID: "v"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveContentItem(ctx, &domain.ContentItem{
		ID: "i", OrganizationID: "org-1", SourceType: "bogus",
		ContentType: domain.ContentTypeMessage,
	}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.AssignTopic(ctx, "i", ""), domain.ErrInvalidInput)
}
