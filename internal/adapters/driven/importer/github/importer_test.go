package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclom/search/internal/adapters/driven/embedding/texthash"
	"github.com/nuclom/search/internal/adapters/driven/storage/memory"
	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
)

const issuesJSON = `[
	{
		"number": 7,
		"title": "Search results drop recent items",
		"body": "Pagination skips the newest page.",
		"state": "open",
		"comments": 1,
		"user": {"login": "ana"},
		"created_at": "2026-08-20T10:00:00Z",
		"updated_at": "2026-08-21T10:00:00Z"
	},
	{
		"number": 8,
		"title": "Add recency boost",
		"body": "Fresh content should rank higher.",
		"state": "closed",
		"comments": 0,
		"user": {"login": "bo"},
		"created_at": "2026-08-22T10:00:00Z",
		"updated_at": "2026-08-22T10:00:00Z",
		"pull_request": {"url": "https://example.test/pr/8"}
	}
]`

const commentsJSON = `[
	{
		"id": 501,
		"body": "Reproduced on the staging corpus.",
		"user": {"login": "cy"},
		"created_at": "2026-08-21T09:00:00Z"
	}
]`

// newStubImporter builds an importer backed by a stub GitHub API and an
// in-memory content store.
func newStubImporter(t *testing.T) (*Importer, *memory.ContentStore) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/widget/issues", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(issuesJSON)) //nolint:errcheck
	})
	mux.HandleFunc("/api/v3/repos/acme/widget/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(commentsJSON)) //nolint:errcheck
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClientWithHTTPClient(server.Client(), server.URL)
	require.NoError(t, err)

	store := memory.NewContentStore()
	return NewImporter(client, store, texthash.NewEmbeddingService(64)), store
}

func TestImportRepository(t *testing.T) {
	imp, store := newStubImporter(t)
	ctx := context.Background()

	stats, err := imp.ImportRepository(ctx, "org-1", "acme", "widget")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Issues)
	assert.Equal(t, 1, stats.PullRequests)
	assert.Equal(t, 1, stats.Comments)
	assert.Equal(t, 3, stats.Embedded)

	// Issue, PR, and comment all land as keyword-searchable items.
	hits, err := store.SearchContentKeyword(ctx, "pagination", driven.RetrievalFilter{
		OrganizationID: "org-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	item := hits[0].Item.Item
	assert.Equal(t, "github:acme/widget#7", item.ID)
	assert.Equal(t, domain.ContentTypeIssue, item.ContentType)
	assert.Equal(t, domain.SourceTypeGitHub, item.SourceType)
	assert.Equal(t, "ana", item.AuthorName)
	assert.NotEmpty(t, item.Embedding)
	assert.Equal(t, "acme/widget", hits[0].Item.Source.Name)

	hits, err = store.SearchContentKeyword(ctx, "recency boost", driven.RetrievalFilter{
		OrganizationID: "org-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, domain.ContentTypePullRequest, hits[0].Item.Item.ContentType)

	hits, err = store.SearchContentKeyword(ctx, "staging corpus", driven.RetrievalFilter{
		OrganizationID: "org-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	comment := hits[0].Item.Item
	assert.Equal(t, domain.ContentTypeComment, comment.ContentType)
	assert.Equal(t, "Re: Search results drop recent items", comment.Title)
}

func TestImportRepositoryWithoutEmbedder(t *testing.T) {
	imp, store := newStubImporter(t)
	imp.embedder = nil
	ctx := context.Background()

	stats, err := imp.ImportRepository(ctx, "org-1", "acme", "widget")
	require.NoError(t, err)
	assert.Zero(t, stats.Embedded)

	hits, err := store.SearchContentKeyword(ctx, "pagination", driven.RetrievalFilter{
		OrganizationID: "org-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Empty(t, hits[0].Item.Item.Embedding)
}

func TestIssueToItem(t *testing.T) {
	source := domain.Source{
		ID:             "github:acme/widget",
		OrganizationID: "org-1",
		Type:           domain.SourceTypeGitHub,
		Name:           "acme/widget",
	}
	created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	issue := &gh.Issue{
		Number:    gh.Ptr(7),
		Title:     gh.Ptr("Broken facets"),
		Body:      gh.Ptr("Counts are stale."),
		User:      &gh.User{Login: gh.Ptr("ana")},
		CreatedAt: &gh.Timestamp{Time: created},
	}

	item := issueToItem(source, issue)
	assert.Equal(t, "github:acme/widget#7", item.ID)
	assert.Equal(t, domain.ContentTypeIssue, item.ContentType)
	assert.Equal(t, created, item.CreatedAt)

	issue.PullRequestLinks = &gh.PullRequestLinks{URL: gh.Ptr("https://example.test/pr/7")}
	assert.Equal(t, domain.ContentTypePullRequest, issueToItem(source, issue).ContentType)
}
