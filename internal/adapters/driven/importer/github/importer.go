package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
	"github.com/nuclom/search/internal/logger"
)

// embedBatchSize bounds how many bodies go to the embedder per call.
const embedBatchSize = 32

// Importer pulls repository discussion content into the content store.
type Importer struct {
	client   *Client
	writer   driven.ContentWriter
	embedder driven.EmbeddingService
}

// Stats summarizes one import run.
type Stats struct {
	Issues       int
	PullRequests int
	Comments     int
	Embedded     int
}

// NewImporter creates an importer. The embedder may be nil, in which
// case items are stored without embeddings and remain reachable through
// keyword search only.
func NewImporter(client *Client, writer driven.ContentWriter, embedder driven.EmbeddingService) *Importer {
	return &Importer{
		client:   client,
		writer:   writer,
		embedder: embedder,
	}
}

// ImportRepository imports all issues, pull requests, and comments from
// owner/repo into the organization's corpus.
func (imp *Importer) ImportRepository(ctx context.Context, organizationID, owner, repo string) (*Stats, error) {
	source := domain.Source{
		ID:             fmt.Sprintf("github:%s/%s", owner, repo),
		OrganizationID: organizationID,
		Type:           domain.SourceTypeGitHub,
		Name:           owner + "/" + repo,
	}
	if err := imp.writer.SaveSource(ctx, source); err != nil {
		return nil, fmt.Errorf("saving source: %w", err)
	}

	logger.Section("Importing " + source.Name)

	issues, err := imp.client.ListIssues(ctx, owner, repo, time.Time{})
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched %d issues and pull requests", len(issues))

	stats := &Stats{}
	var items []*domain.ContentItem

	for _, issue := range issues {
		item := issueToItem(source, issue)
		items = append(items, item)
		if issue.IsPullRequest() {
			stats.PullRequests++
		} else {
			stats.Issues++
		}

		if issue.GetComments() == 0 {
			continue
		}
		comments, err := imp.client.ListIssueComments(ctx, owner, repo, issue.GetNumber())
		if err != nil {
			return nil, err
		}
		for _, comment := range comments {
			items = append(items, commentToItem(source, issue, comment))
			stats.Comments++
		}
	}

	stats.Embedded = imp.embedItems(ctx, items)

	for _, item := range items {
		if err := imp.writer.SaveContentItem(ctx, item); err != nil {
			return nil, fmt.Errorf("saving item %s: %w", item.ID, err)
		}
	}

	logger.Info("imported %d issues, %d pull requests, %d comments from %s",
		stats.Issues, stats.PullRequests, stats.Comments, source.Name)
	return stats, nil
}

// embedItems attaches embeddings in batches. Embedding failure is not
// fatal; unembedded items still serve keyword retrieval.
func (imp *Importer) embedItems(ctx context.Context, items []*domain.ContentItem) int {
	if imp.embedder == nil || len(items) == 0 {
		return 0
	}

	embedded := 0
	for start := 0; start < len(items); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		texts := make([]string, len(batch))
		for i, item := range batch {
			texts[i] = strings.TrimSpace(item.Title + "\n" + item.Body)
		}

		vectors, err := imp.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("embedding batch failed, continuing without vectors: %v", err)
			continue
		}
		for i, vec := range vectors {
			batch[i].Embedding = vec
			embedded++
		}
	}

	return embedded
}

// issueToItem maps one issue or pull request to a content item.
func issueToItem(source domain.Source, issue *gh.Issue) *domain.ContentItem {
	contentType := domain.ContentTypeIssue
	if issue.IsPullRequest() {
		contentType = domain.ContentTypePullRequest
	}

	return &domain.ContentItem{
		ID:             fmt.Sprintf("%s#%d", source.ID, issue.GetNumber()),
		OrganizationID: source.OrganizationID,
		SourceID:       source.ID,
		SourceType:     domain.SourceTypeGitHub,
		ContentType:    contentType,
		Title:          issue.GetTitle(),
		Body:           issue.GetBody(),
		AuthorID:       issue.GetUser().GetLogin(),
		AuthorName:     issue.GetUser().GetLogin(),
		CreatedAt:      issue.GetCreatedAt().Time,
	}
}

// commentToItem maps one comment to a content item. The parent's title
// carries over so comments surface with context in results.
func commentToItem(source domain.Source, issue *gh.Issue, comment *gh.IssueComment) *domain.ContentItem {
	return &domain.ContentItem{
		ID:             fmt.Sprintf("%s#%d-comment-%d", source.ID, issue.GetNumber(), comment.GetID()),
		OrganizationID: source.OrganizationID,
		SourceID:       source.ID,
		SourceType:     domain.SourceTypeGitHub,
		ContentType:    domain.ContentTypeComment,
		Title:          fmt.Sprintf("Re: %s", issue.GetTitle()),
		Body:           comment.GetBody(),
		AuthorID:       comment.GetUser().GetLogin(),
		AuthorName:     comment.GetUser().GetLogin(),
		CreatedAt:      comment.GetCreatedAt().Time,
	}
}
