package domain

import "time"

// SourceType identifies the system a piece of content originated from.
type SourceType string

// Supported source types.
const (
	SourceTypeVideo       SourceType = "video"
	SourceTypeSlack       SourceType = "slack"
	SourceTypeNotion      SourceType = "notion"
	SourceTypeGitHub      SourceType = "github"
	SourceTypeGoogleDrive SourceType = "google_drive"
	SourceTypeConfluence  SourceType = "confluence"
	SourceTypeLinear      SourceType = "linear"
)

// Valid reports whether the source type is one of the supported values.
func (s SourceType) Valid() bool {
	switch s {
	case SourceTypeVideo, SourceTypeSlack, SourceTypeNotion, SourceTypeGitHub,
		SourceTypeGoogleDrive, SourceTypeConfluence, SourceTypeLinear:
		return true
	}
	return false
}

// ContentItemType classifies a unit of imported content.
type ContentItemType string

// Supported content item types.
const (
	ContentTypeVideo       ContentItemType = "video"
	ContentTypeMessage     ContentItemType = "message"
	ContentTypeThread      ContentItemType = "thread"
	ContentTypeDocument    ContentItemType = "document"
	ContentTypeIssue       ContentItemType = "issue"
	ContentTypePullRequest ContentItemType = "pull_request"
	ContentTypeComment     ContentItemType = "comment"
	ContentTypeFile        ContentItemType = "file"
)

// Valid reports whether the content item type is one of the supported values.
func (c ContentItemType) Valid() bool {
	switch c {
	case ContentTypeVideo, ContentTypeMessage, ContentTypeThread, ContentTypeDocument,
		ContentTypeIssue, ContentTypePullRequest, ContentTypeComment, ContentTypeFile:
		return true
	}
	return false
}

// Source represents a connected third-party source instance
// (one Slack workspace, one GitHub repository, and so on).
type Source struct {
	// ID is the unique identifier for the source instance.
	ID string

	// OrganizationID scopes the source to a tenant.
	OrganizationID string

	// Type identifies the connected system.
	Type SourceType

	// Name is the human-readable display name.
	Name string
}

// ContentItem is a unit of imported third-party content, unified under the
// same ranking model as first-party videos.
type ContentItem struct {
	// ID is the unique identifier for the item.
	ID string

	// OrganizationID scopes the item to a tenant. Every retrieval
	// filters by this.
	OrganizationID string

	// SourceID links to the Source instance that produced this item.
	SourceID string

	// SourceType mirrors the source's type for filtering without a join.
	SourceType SourceType

	// ContentType classifies the item (message, document, issue, ...).
	ContentType ContentItemType

	// Title is the human-readable title. May be empty for messages.
	Title string

	// Body is the full text content.
	Body string

	// SearchText is the precomputed keyword-matching field
	// (title + body + author, lowercased at write time).
	SearchText string

	// AuthorID identifies the author in the origin system, if known.
	AuthorID string

	// AuthorName is the display name of the author, if known.
	AuthorName string

	// Embedding is the vector representation for semantic search.
	// Nil when the item has not been embedded.
	Embedding []float32

	// CreatedAt is the item's natural creation time in the origin system.
	CreatedAt time.Time
}

// ContentItemWithSource pairs an item with its source for display.
type ContentItemWithSource struct {
	Item   ContentItem
	Source Source
}

// TopicCluster groups related content items under a named topic.
type TopicCluster struct {
	// ID is the unique identifier for the cluster.
	ID string

	// OrganizationID scopes the cluster to a tenant.
	OrganizationID string

	// Name is the human-readable topic label.
	Name string
}
