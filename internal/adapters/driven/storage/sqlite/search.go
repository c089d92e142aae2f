package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
)

// ==================== Video Retrieval ====================

// SearchVideosKeyword returns videos whose title, description, or
// transcript contains the query, newest first.
func (s *Store) SearchVideosKeyword(ctx context.Context, query string, f driven.RetrievalFilter) ([]driven.VideoHit, error) {
	pattern := containsPattern(query)

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, organization_id, title, description, transcript, author_id, author_name, created_at
		FROM videos
		WHERE organization_id = ?
		AND search_text LIKE ? ESCAPE '\'
	`)
	args := []any{f.OrganizationID, pattern}

	clause, clauseArgs := videoFilterClauses(f)
	sb.WriteString(clause)
	args = append(args, clauseArgs...)

	sb.WriteString(" ORDER BY created_at DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying videos by keyword: %w", err)
	}
	defer rows.Close()

	var hits []driven.VideoHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, driven.VideoHit{Video: toVideoWithAuthor(video)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating videos: %w", err)
	}

	return hits, nil
}

// SearchVideosSemantic ranks videos by the highest cosine similarity of
// any transcript chunk, one hit per video, descending. Similarity is
// computed in Go over the stored embedding blobs.
func (s *Store) SearchVideosSemantic(ctx context.Context, embedding []float32, threshold float64, f driven.RetrievalFilter) ([]driven.VideoHit, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT v.id, v.organization_id, v.title, v.description, v.transcript,
			v.author_id, v.author_name, v.created_at, c.embedding
		FROM transcript_chunks c
		JOIN videos v ON v.id = c.video_id
		WHERE v.organization_id = ?
		AND c.embedding IS NOT NULL
	`)
	args := []any{f.OrganizationID}

	clause, clauseArgs := videoFilterClausesPrefixed(f, "v.")
	sb.WriteString(clause)
	args = append(args, clauseArgs...)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying transcript chunks: %w", err)
	}
	defer rows.Close()

	best := make(map[string]driven.VideoHit)
	for rows.Next() {
		var video domain.Video
		var blob []byte
		if err := rows.Scan(&video.ID, &video.OrganizationID, &video.Title,
			&video.Description, &video.Transcript, &video.AuthorID,
			&video.AuthorName, &video.CreatedAt, &blob); err != nil {
			return nil, fmt.Errorf("scanning transcript chunk: %w", err)
		}

		sim := cosineSimilarity(embedding, bytesToFloat32Slice(blob))
		if sim < threshold {
			continue
		}
		if prev, ok := best[video.ID]; ok && prev.Similarity >= sim {
			continue
		}
		best[video.ID] = driven.VideoHit{Video: toVideoWithAuthor(video), Similarity: sim}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transcript chunks: %w", err)
	}

	hits := make([]driven.VideoHit, 0, len(best))
	for _, hit := range best {
		hits = append(hits, hit)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Video.Video.ID < hits[j].Video.Video.ID
	})
	if f.Limit > 0 && len(hits) > f.Limit {
		hits = hits[:f.Limit]
	}

	return hits, nil
}

// ==================== Content Item Retrieval ====================

// SearchContentKeyword returns content items whose search text contains
// the query, newest first.
func (s *Store) SearchContentKeyword(ctx context.Context, query string, f driven.RetrievalFilter) ([]driven.ContentHit, error) {
	var sb strings.Builder
	sb.WriteString(contentSelect)
	sb.WriteString(`
		WHERE i.organization_id = ?
		AND i.search_text LIKE ? ESCAPE '\'
	`)
	args := []any{f.OrganizationID, containsPattern(query)}

	clause, clauseArgs := contentFilterClauses(f)
	sb.WriteString(clause)
	args = append(args, clauseArgs...)

	sb.WriteString(" ORDER BY i.created_at DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying content items by keyword: %w", err)
	}
	defer rows.Close()

	var hits []driven.ContentHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		hit, _, err := scanContentHit(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, *hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content items: %w", err)
	}

	return hits, nil
}

// SearchContentSemantic ranks content items by cosine similarity of
// their stored embedding, descending.
func (s *Store) SearchContentSemantic(ctx context.Context, embedding []float32, threshold float64, f driven.RetrievalFilter) ([]driven.ContentHit, error) {
	var sb strings.Builder
	sb.WriteString(contentSelect)
	sb.WriteString(`
		WHERE i.organization_id = ?
		AND i.embedding IS NOT NULL
	`)
	args := []any{f.OrganizationID}

	clause, clauseArgs := contentFilterClauses(f)
	sb.WriteString(clause)
	args = append(args, clauseArgs...)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying content items by embedding: %w", err)
	}
	defer rows.Close()

	var hits []driven.ContentHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		hit, blob, err := scanContentHit(rows)
		if err != nil {
			return nil, err
		}

		sim := cosineSimilarity(embedding, bytesToFloat32Slice(blob))
		if sim < threshold {
			continue
		}
		hit.Similarity = sim
		hits = append(hits, *hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content items: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Item.Item.ID < hits[j].Item.Item.ID
	})
	if f.Limit > 0 && len(hits) > f.Limit {
		hits = hits[:f.Limit]
	}

	return hits, nil
}

// ==================== Suggestions ====================

// SuggestTitles returns up to limit distinct titles containing the
// prefix, across videos and content items.
func (s *Store) SuggestTitles(ctx context.Context, organizationID, prefix string, limit int) ([]string, error) {
	needle := strings.ToLower(prefix)

	// Matching folds case in Go, not with SQLite's ASCII-only lower(),
	// so the prefix filter runs here instead of in SQL.
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT title FROM (
			SELECT title FROM videos
			WHERE organization_id = ?
			UNION
			SELECT title FROM content_items
			WHERE organization_id = ? AND title != ''
		)
		ORDER BY title
	`, organizationID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("querying title suggestions: %w", err)
	}
	defer rows.Close()

	var titles []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		if !strings.Contains(strings.ToLower(title), needle) {
			continue
		}
		titles = append(titles, title)
		if limit > 0 && len(titles) >= limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating titles: %w", err)
	}

	return titles, nil
}

// ==================== Query Building ====================

// contentSelect is the shared projection for content item retrieval.
// The topic join is safe to LEFT JOIN directly because an item has at
// most one cluster assignment.
const contentSelect = `
	SELECT i.id, i.organization_id, i.source_id, i.source_type, i.content_type,
		i.title, i.body, i.search_text, i.author_id, i.author_name, i.embedding, i.created_at,
		s.id, s.organization_id, s.type, s.name,
		t.id, t.name
	FROM content_items i
	JOIN sources s ON s.id = i.source_id
	LEFT JOIN content_item_topics it ON it.item_id = i.id
	LEFT JOIN topic_clusters t ON t.id = it.cluster_id
`

// videoFilterClauses builds the optional WHERE fragments that apply to
// the video family. Source and content type filters never reach videos;
// the orchestrator decides family inclusion.
func videoFilterClauses(f driven.RetrievalFilter) (string, []any) {
	return videoFilterClausesPrefixed(f, "")
}

func videoFilterClausesPrefixed(f driven.RetrievalFilter, prefix string) (string, []any) {
	var sb strings.Builder
	var args []any

	if f.From != nil {
		sb.WriteString(" AND " + prefix + "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		sb.WriteString(" AND " + prefix + "created_at <= ?")
		args = append(args, f.To.UTC())
	}

	return sb.String(), args
}

// contentFilterClauses builds the optional WHERE fragments for content
// item queries. IN lists are placeholder-built, never interpolated.
func contentFilterClauses(f driven.RetrievalFilter) (string, []any) {
	var sb strings.Builder
	var args []any

	if len(f.Sources) > 0 {
		sb.WriteString(" AND i.source_type IN (" + placeholders(len(f.Sources)) + ")")
		for _, src := range f.Sources {
			args = append(args, string(src))
		}
	}
	if len(f.SourceIDs) > 0 {
		sb.WriteString(" AND i.source_id IN (" + placeholders(len(f.SourceIDs)) + ")")
		for _, id := range f.SourceIDs {
			args = append(args, id)
		}
	}
	if len(f.ContentTypes) > 0 {
		sb.WriteString(" AND i.content_type IN (" + placeholders(len(f.ContentTypes)) + ")")
		for _, ct := range f.ContentTypes {
			args = append(args, string(ct))
		}
	}
	if f.From != nil {
		sb.WriteString(" AND i.created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		sb.WriteString(" AND i.created_at <= ?")
		args = append(args, f.To.UTC())
	}

	return sb.String(), args
}

// ==================== Row Scanning ====================

// scanVideo scans a video row without an embedding column.
func scanVideo(rows *sql.Rows) (domain.Video, error) {
	var video domain.Video
	if err := rows.Scan(&video.ID, &video.OrganizationID, &video.Title,
		&video.Description, &video.Transcript, &video.AuthorID,
		&video.AuthorName, &video.CreatedAt); err != nil {
		return domain.Video{}, fmt.Errorf("scanning video: %w", err)
	}
	return video, nil
}

// scanContentHit scans one contentSelect row, returning the hit and the
// raw embedding blob for semantic scoring.
func scanContentHit(rows *sql.Rows) (*driven.ContentHit, []byte, error) {
	var item domain.ContentItem
	var src domain.Source
	var sourceType, contentType string
	var srcType string
	var blob []byte
	var topicID, topicName sql.NullString

	if err := rows.Scan(&item.ID, &item.OrganizationID, &item.SourceID,
		&sourceType, &contentType, &item.Title, &item.Body, &item.SearchText,
		&item.AuthorID, &item.AuthorName, &blob, &item.CreatedAt,
		&src.ID, &src.OrganizationID, &srcType, &src.Name,
		&topicID, &topicName); err != nil {
		return nil, nil, fmt.Errorf("scanning content item: %w", err)
	}

	item.SourceType = domain.SourceType(sourceType)
	item.ContentType = domain.ContentItemType(contentType)
	item.Embedding = bytesToFloat32Slice(blob)
	src.Type = domain.SourceType(srcType)

	hit := &driven.ContentHit{
		Item: domain.ContentItemWithSource{Item: item, Source: src},
	}
	if topicID.Valid {
		hit.Topic = &domain.TopicRef{ID: topicID.String, Name: topicName.String}
	}

	return hit, blob, nil
}

// toVideoWithAuthor builds the search result projection for a video.
func toVideoWithAuthor(v domain.Video) domain.VideoWithAuthor {
	return domain.VideoWithAuthor{
		Video:      v,
		AuthorID:   v.AuthorID,
		AuthorName: v.AuthorName,
	}
}
