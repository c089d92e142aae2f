package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
)

// fixedNow anchors time-sensitive assertions. A Sunday, so week
// bucketing boundaries get exercised.
var fixedNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// setupTestStore creates a temporary SQLite store with a fixed clock.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	store.now = func() time.Time { return fixedNow }

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func saveTestVideo(t *testing.T, store *Store, id, title, transcript string, createdAt time.Time) {
	t.Helper()
	err := store.SaveVideo(context.Background(), &domain.Video{
		ID:             id,
		OrganizationID: "org-1",
		Title:          title,
		Description:    "desc " + id,
		Transcript:     transcript,
		AuthorID:       "user-1",
		AuthorName:     "Dana",
		CreatedAt:      createdAt,
	})
	require.NoError(t, err)
}

func saveTestSource(t *testing.T, store *Store, id string, typ domain.SourceType) {
	t.Helper()
	err := store.SaveSource(context.Background(), domain.Source{
		ID:             id,
		OrganizationID: "org-1",
		Type:           typ,
		Name:           "Source " + id,
	})
	require.NoError(t, err)
}

func saveTestItem(t *testing.T, store *Store, item domain.ContentItem) {
	t.Helper()
	if item.OrganizationID == "" {
		item.OrganizationID = "org-1"
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = fixedNow.Add(-time.Hour)
	}
	require.NoError(t, store.SaveContentItem(context.Background(), &item))
}

func orgFilter(limit int) driven.RetrievalFilter {
	return driven.RetrievalFilter{OrganizationID: "org-1", Limit: limit}
}

// ==================== Store Creation ====================

func TestNewStore(t *testing.T) {
	store := setupTestStore(t)
	assert.NotEmpty(t, store.Path())

	// Migrations are idempotent across reopens.
	again, err := NewStore(store.Path()[:len(store.Path())-len("/search.db")])
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}

// ==================== Video Retrieval ====================

func TestSearchVideosKeyword(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-old", "Planning the Q3 launch", "we discussed scope",
		fixedNow.Add(-48*time.Hour))
	saveTestVideo(t, store, "v-new", "Standup", "the launch date moved",
		fixedNow.Add(-time.Hour))
	saveTestVideo(t, store, "v-miss", "Retro", "nothing relevant",
		fixedNow.Add(-2*time.Hour))

	hits, err := store.SearchVideosKeyword(ctx, "LAUNCH", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// Newest first, matching title or transcript.
	assert.Equal(t, "v-new", hits[0].Video.Video.ID)
	assert.Equal(t, "v-old", hits[1].Video.Video.ID)
	assert.Equal(t, "Dana", hits[0].Video.AuthorName)
	assert.Zero(t, hits[0].Similarity)
}

func TestSearchVideosKeyword_TenantScoped(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-1", "launch plan", "", fixedNow.Add(-time.Hour))
	require.NoError(t, store.SaveVideo(ctx, &domain.Video{
		ID:             "v-other",
		OrganizationID: "org-2",
		Title:          "launch plan",
		CreatedAt:      fixedNow.Add(-time.Hour),
	}))

	hits, err := store.SearchVideosKeyword(ctx, "launch", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v-1", hits[0].Video.Video.ID)
}

func TestSearchVideosKeyword_EscapesLikeMetacharacters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-pct", "Uptime hit 99%", "", fixedNow.Add(-time.Hour))
	saveTestVideo(t, store, "v-plain", "Uptime hit 99 points", "", fixedNow.Add(-time.Hour))

	hits, err := store.SearchVideosKeyword(ctx, "99%", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v-pct", hits[0].Video.Video.ID)
}

func TestSearchVideosKeyword_UnicodeCaseFolding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// SQLite's lower() only folds ASCII, so matching happens against a
	// search_text column lowercased in Go at write time.
	saveTestVideo(t, store, "v-sv", "ÄRENDE 42", "veckomöte om lansering",
		fixedNow.Add(-time.Hour))

	hits, err := store.SearchVideosKeyword(ctx, "ärende", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v-sv", hits[0].Video.Video.ID)

	hits, err = store.SearchVideosKeyword(ctx, "VECKOMÖTE", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestSearchVideosKeyword_DateRange(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-recent", "launch", "", fixedNow.Add(-time.Hour))
	saveTestVideo(t, store, "v-ancient", "launch", "", fixedNow.AddDate(-1, 0, 0))

	from := fixedNow.Add(-24 * time.Hour)
	f := orgFilter(10)
	f.From = &from

	hits, err := store.SearchVideosKeyword(ctx, "launch", f)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v-recent", hits[0].Video.Video.ID)
}

func TestSearchVideosSemantic_BestChunkPerVideo(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-1", "first", "", fixedNow.Add(-time.Hour))
	saveTestVideo(t, store, "v-2", "second", "", fixedNow.Add(-time.Hour))

	require.NoError(t, store.SaveTranscriptChunks(ctx, []domain.TranscriptChunk{
		{ID: "c-1", VideoID: "v-1", Position: 0, Content: "a", Embedding: []float32{0.6, 0.8}},
		{ID: "c-2", VideoID: "v-1", Position: 1, Content: "b", Embedding: []float32{1, 0}},
		{ID: "c-3", VideoID: "v-2", Position: 0, Content: "c", Embedding: []float32{0, 1}},
	}))

	hits, err := store.SearchVideosSemantic(ctx, []float32{1, 0}, 0.5, orgFilter(10))
	require.NoError(t, err)

	// v-2's only chunk is orthogonal to the query and falls below the
	// threshold; v-1 ranks by its best chunk, not its first.
	require.Len(t, hits, 1)
	assert.Equal(t, "v-1", hits[0].Video.Video.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
}

func TestSearchVideosSemantic_Threshold(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-1", "first", "", fixedNow.Add(-time.Hour))
	require.NoError(t, store.SaveTranscriptChunks(ctx, []domain.TranscriptChunk{
		{ID: "c-1", VideoID: "v-1", Position: 0, Content: "a", Embedding: []float32{0.6, 0.8}},
	}))

	hits, err := store.SearchVideosSemantic(ctx, []float32{1, 0}, 0.7, orgFilter(10))
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// ==================== Content Item Retrieval ====================

func TestSearchContentKeyword(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestSource(t, store, "src-slack", domain.SourceTypeSlack)
	saveTestSource(t, store, "src-gh", domain.SourceTypeGitHub)

	saveTestItem(t, store, domain.ContentItem{
		ID: "i-1", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage,
		Body:        "the launch is on track", AuthorName: "Ana",
		CreatedAt: fixedNow.Add(-time.Hour),
	})
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-2", SourceID: "src-gh", SourceType: domain.SourceTypeGitHub,
		ContentType: domain.ContentTypeIssue,
		Title:       "Launch checklist", Body: "remaining items", AuthorName: "Bo",
		CreatedAt: fixedNow.Add(-2 * time.Hour),
	})
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-3", SourceID: "src-gh", SourceType: domain.SourceTypeGitHub,
		ContentType: domain.ContentTypeIssue,
		Title:       "Unrelated", Body: "nothing here", AuthorName: "Bo",
		CreatedAt: fixedNow.Add(-3 * time.Hour),
	})

	hits, err := store.SearchContentKeyword(ctx, "launch", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "i-1", hits[0].Item.Item.ID)
	assert.Equal(t, "i-2", hits[1].Item.Item.ID)
	assert.Equal(t, "Source src-slack", hits[0].Item.Source.Name)
	assert.Nil(t, hits[0].Topic)
}

func TestSearchContentKeyword_Filters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestSource(t, store, "src-slack", domain.SourceTypeSlack)
	saveTestSource(t, store, "src-gh", domain.SourceTypeGitHub)

	saveTestItem(t, store, domain.ContentItem{
		ID: "i-msg", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "launch talk",
	})
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-issue", SourceID: "src-gh", SourceType: domain.SourceTypeGitHub,
		ContentType: domain.ContentTypeIssue, Title: "launch bug",
	})

	f := orgFilter(10)
	f.Sources = []domain.SourceType{domain.SourceTypeGitHub}
	hits, err := store.SearchContentKeyword(ctx, "launch", f)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "i-issue", hits[0].Item.Item.ID)

	f = orgFilter(10)
	f.ContentTypes = []domain.ContentItemType{domain.ContentTypeMessage}
	hits, err = store.SearchContentKeyword(ctx, "launch", f)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "i-msg", hits[0].Item.Item.ID)

	f = orgFilter(10)
	f.SourceIDs = []string{"src-slack"}
	hits, err = store.SearchContentKeyword(ctx, "launch", f)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "i-msg", hits[0].Item.Item.ID)
}

func TestSearchContentKeyword_TopicAttached(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestSource(t, store, "src-slack", domain.SourceTypeSlack)
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-1", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "launch talk",
	})

	require.NoError(t, store.SaveTopicCluster(ctx, domain.TopicCluster{
		ID: "t-1", OrganizationID: "org-1", Name: "Launch",
	}))
	require.NoError(t, store.AssignTopic(ctx, "i-1", "t-1"))

	hits, err := store.SearchContentKeyword(ctx, "launch", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.NotNil(t, hits[0].Topic)
	assert.Equal(t, "t-1", hits[0].Topic.ID)
	assert.Equal(t, "Launch", hits[0].Topic.Name)

	// Reassignment replaces the link instead of duplicating the row.
	require.NoError(t, store.SaveTopicCluster(ctx, domain.TopicCluster{
		ID: "t-2", OrganizationID: "org-1", Name: "Shipping",
	}))
	require.NoError(t, store.AssignTopic(ctx, "i-1", "t-2"))

	hits, err = store.SearchContentKeyword(ctx, "launch", orgFilter(10))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "t-2", hits[0].Topic.ID)
}

func TestSearchContentSemantic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestSource(t, store, "src-slack", domain.SourceTypeSlack)
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-close", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "a",
		Embedding: []float32{1, 0},
	})
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-mid", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "b",
		Embedding: []float32{0.6, 0.8},
	})
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-none", SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage, Body: "c",
	})

	hits, err := store.SearchContentSemantic(ctx, []float32{1, 0}, 0.5, orgFilter(10))
	require.NoError(t, err)

	// Unembedded items never match; results rank by similarity.
	require.Len(t, hits, 2)
	assert.Equal(t, "i-close", hits[0].Item.Item.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, "i-mid", hits[1].Item.Item.ID)
	assert.InDelta(t, 0.6, hits[1].Similarity, 1e-6)
}

func TestSearchContentSemantic_Limit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestSource(t, store, "src-slack", domain.SourceTypeSlack)
	for _, id := range []string{"i-1", "i-2", "i-3"} {
		saveTestItem(t, store, domain.ContentItem{
			ID: id, SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
			ContentType: domain.ContentTypeMessage, Body: id,
			Embedding: []float32{1, 0},
		})
	}

	hits, err := store.SearchContentSemantic(ctx, []float32{1, 0}, 0.5, orgFilter(2))
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

// ==================== Writer Validation ====================

func TestWriterRejectsInvalidInput(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveVideo(ctx, &domain.Video{ID: "v"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveSource(ctx, domain.Source{
		ID: "s", OrganizationID: "org-1", Type: "bogus",
	}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveContentItem(ctx, &domain.ContentItem{
		ID: "i", OrganizationID: "org-1", SourceType: domain.SourceTypeSlack,
		ContentType: "bogus",
	}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.AssignTopic(ctx, "", "t-1"), domain.ErrInvalidInput)
}

func TestSaveContentItem_DerivesSearchText(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestSource(t, store, "src-slack", domain.SourceTypeSlack)
	item := domain.ContentItem{
		ID: "i-1", OrganizationID: "org-1",
		SourceID: "src-slack", SourceType: domain.SourceTypeSlack,
		ContentType: domain.ContentTypeMessage,
		Title:       "Launch Plan", Body: "Ship Friday", AuthorName: "Ana",
		CreatedAt: fixedNow.Add(-time.Hour),
	}
	require.NoError(t, store.SaveContentItem(ctx, &item))
	assert.Equal(t, "launch plan ship friday ana", item.SearchText)

	// The derived text is what keyword retrieval matches against.
	hits, err := store.SearchContentKeyword(ctx, "ana", orgFilter(10))
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

// ==================== Suggestions ====================

func TestSuggestTitles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-1", "Launch planning", "", fixedNow.Add(-time.Hour))
	saveTestVideo(t, store, "v-2", "Launch planning", "", fixedNow.Add(-2*time.Hour))
	saveTestSource(t, store, "src-gh", domain.SourceTypeGitHub)
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-1", SourceID: "src-gh", SourceType: domain.SourceTypeGitHub,
		ContentType: domain.ContentTypeIssue, Title: "Launch checklist",
	})
	saveTestItem(t, store, domain.ContentItem{
		ID: "i-2", SourceID: "src-gh", SourceType: domain.SourceTypeGitHub,
		ContentType: domain.ContentTypeMessage, Body: "untitled launch chatter",
	})

	titles, err := store.SuggestTitles(ctx, "org-1", "launch", 10)
	require.NoError(t, err)

	// Duplicate and empty titles collapse out.
	assert.Equal(t, []string{"Launch checklist", "Launch planning"}, titles)

	titles, err = store.SuggestTitles(ctx, "org-1", "launch", 1)
	require.NoError(t, err)
	assert.Len(t, titles, 1)
}

func TestSuggestTitles_UnicodeCaseFolding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveTestVideo(t, store, "v-sv", "Översikt av sprinten", "", fixedNow.Add(-time.Hour))

	titles, err := store.SuggestTitles(ctx, "org-1", "ÖVERSIKT", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Översikt av sprinten"}, titles)
}
