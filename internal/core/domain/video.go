package domain

import "time"

// Video represents a first-party video record with its transcript.
type Video struct {
	// ID is the unique identifier for the video.
	ID string

	// OrganizationID scopes the video to a tenant.
	OrganizationID string

	// Title is the human-readable title.
	Title string

	// Description is the free-text description.
	Description string

	// Transcript is the full transcript text.
	Transcript string

	// AuthorID identifies the uploading user.
	AuthorID string

	// AuthorName is the display name of the uploading user.
	AuthorName string

	// CreatedAt is when the video was created.
	CreatedAt time.Time
}

// TranscriptChunk is a searchable slice of a video transcript.
// Chunks carry the per-segment embeddings used for semantic search;
// the best-matching chunk ranks its parent video.
type TranscriptChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// VideoID links to the parent Video.
	VideoID string

	// Position is the ordinal position within the transcript.
	Position int

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// CreatedAt is when the chunk was indexed.
	CreatedAt time.Time
}

// VideoWithAuthor is the video projection returned in search results.
type VideoWithAuthor struct {
	Video Video

	// AuthorID and AuthorName duplicate the video's author fields so the
	// projection stays stable if author data moves to its own entity.
	AuthorID   string
	AuthorName string
}
