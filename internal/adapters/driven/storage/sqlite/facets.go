package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/nuclom/search/internal/core/domain"
)

const (
	// facetParticipantLimit caps the participant and topic facet lists.
	facetParticipantLimit = 20

	// facetHistogramWeeks is the span of the weekly date histogram.
	facetHistogramWeeks = 12
)

// Facets computes the aggregate facet snapshot for one tenant. Counts
// cover the tenant's content items, independent of any query text.
func (s *Store) Facets(ctx context.Context, organizationID string) (*domain.SearchFacets, error) {
	facets := &domain.SearchFacets{}

	sources, err := s.sourceFacets(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	facets.Sources = sources

	contentTypes, err := s.contentTypeFacets(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	facets.ContentTypes = contentTypes

	participants, err := s.participantFacets(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	facets.Participants = participants

	topics, err := s.topicFacets(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	facets.Topics = topics

	histogram, err := s.dateHistogram(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	facets.DateHistogram = histogram

	return facets, nil
}

func (s *Store) sourceFacets(ctx context.Context, organizationID string) ([]domain.SourceFacet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_type, COUNT(*)
		FROM content_items
		WHERE organization_id = ?
		GROUP BY source_type
		ORDER BY COUNT(*) DESC, source_type
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("querying source facets: %w", err)
	}
	defer rows.Close()

	var facets []domain.SourceFacet //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sourceType string
		var count int
		if err := rows.Scan(&sourceType, &count); err != nil {
			return nil, fmt.Errorf("scanning source facet: %w", err)
		}
		facets = append(facets, domain.SourceFacet{
			Source: domain.SourceType(sourceType),
			Count:  count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source facets: %w", err)
	}

	return facets, nil
}

func (s *Store) contentTypeFacets(ctx context.Context, organizationID string) ([]domain.ContentTypeFacet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_type, COUNT(*)
		FROM content_items
		WHERE organization_id = ?
		GROUP BY content_type
		ORDER BY COUNT(*) DESC, content_type
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("querying content type facets: %w", err)
	}
	defer rows.Close()

	var facets []domain.ContentTypeFacet //nolint:prealloc // size unknown from query
	for rows.Next() {
		var contentType string
		var count int
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, fmt.Errorf("scanning content type facet: %w", err)
		}
		facets = append(facets, domain.ContentTypeFacet{
			Type:  domain.ContentItemType(contentType),
			Count: count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content type facets: %w", err)
	}

	return facets, nil
}

func (s *Store) participantFacets(ctx context.Context, organizationID string) ([]domain.ParticipantFacet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT author_name, author_id, COUNT(*)
		FROM content_items
		WHERE organization_id = ? AND author_name != ''
		GROUP BY author_name, author_id
		ORDER BY COUNT(*) DESC, author_name
		LIMIT ?
	`, organizationID, facetParticipantLimit)
	if err != nil {
		return nil, fmt.Errorf("querying participant facets: %w", err)
	}
	defer rows.Close()

	var facets []domain.ParticipantFacet //nolint:prealloc // size unknown from query
	for rows.Next() {
		var facet domain.ParticipantFacet
		if err := rows.Scan(&facet.Name, &facet.UserID, &facet.Count); err != nil {
			return nil, fmt.Errorf("scanning participant facet: %w", err)
		}
		facets = append(facets, facet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating participant facets: %w", err)
	}

	return facets, nil
}

func (s *Store) topicFacets(ctx context.Context, organizationID string) ([]domain.TopicFacet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, COUNT(*)
		FROM content_item_topics it
		JOIN topic_clusters t ON t.id = it.cluster_id
		JOIN content_items i ON i.id = it.item_id
		WHERE i.organization_id = ?
		GROUP BY t.id, t.name
		ORDER BY COUNT(*) DESC, t.name
		LIMIT ?
	`, organizationID, facetParticipantLimit)
	if err != nil {
		return nil, fmt.Errorf("querying topic facets: %w", err)
	}
	defer rows.Close()

	var facets []domain.TopicFacet //nolint:prealloc // size unknown from query
	for rows.Next() {
		var facet domain.TopicFacet
		if err := rows.Scan(&facet.ClusterID, &facet.Name, &facet.Count); err != nil {
			return nil, fmt.Errorf("scanning topic facet: %w", err)
		}
		facets = append(facets, facet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topic facets: %w", err)
	}

	return facets, nil
}

// dateHistogram buckets content items into the last 12 Monday-start
// weeks, newest first. Weeks without items still appear with a zero
// count. Bucketing happens in Go so one truncation rule covers every
// store.
func (s *Store) dateHistogram(ctx context.Context, organizationID string) ([]domain.DateBucket, error) {
	newest := domain.WeekStart(s.now())
	oldest := newest.AddDate(0, 0, -7*(facetHistogramWeeks-1))
	cutoff := newest.AddDate(0, 0, 7)

	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at
		FROM content_items
		WHERE organization_id = ? AND created_at >= ? AND created_at < ?
	`, organizationID, oldest, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying date histogram: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, fmt.Errorf("scanning creation time: %w", err)
		}
		counts[domain.WeekStart(createdAt).Format(time.DateOnly)]++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating date histogram: %w", err)
	}

	buckets := make([]domain.DateBucket, 0, facetHistogramWeeks)
	for i := 0; i < facetHistogramWeeks; i++ {
		date := newest.AddDate(0, 0, -7*i).Format(time.DateOnly)
		buckets = append(buckets, domain.DateBucket{Date: date, Count: counts[date]})
	}

	return buckets, nil
}
