// Package memory provides in-memory implementations of driven port
// interfaces, used for tests and the demo seeder.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
)

// Ensure ContentStore implements both port surfaces.
var (
	_ driven.ContentStore  = (*ContentStore)(nil)
	_ driven.ContentWriter = (*ContentStore)(nil)
)

// ContentStore is an in-memory implementation of the content store. It
// mirrors the SQLite adapter's retrieval semantics so the two are
// interchangeable behind the port.
type ContentStore struct {
	mu       sync.RWMutex
	videos   map[string]domain.Video
	chunks   map[string][]domain.TranscriptChunk // keyed by video ID
	sources  map[string]domain.Source
	items    map[string]domain.ContentItem
	clusters map[string]domain.TopicCluster
	topics   map[string]string // item ID -> cluster ID

	now func() time.Time
}

// NewContentStore creates an empty in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		videos:   make(map[string]domain.Video),
		chunks:   make(map[string][]domain.TranscriptChunk),
		sources:  make(map[string]domain.Source),
		items:    make(map[string]domain.ContentItem),
		clusters: make(map[string]domain.TopicCluster),
		topics:   make(map[string]string),
		now:      time.Now,
	}
}

// SetClock replaces the clock used for facet date bucketing.
func (s *ContentStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Close releases nothing; it exists to satisfy the port.
func (s *ContentStore) Close() error { return nil }

// ==================== Content Writer ====================

// SaveVideo stores or updates a video.
func (s *ContentStore) SaveVideo(_ context.Context, v *domain.Video) error {
	if v.ID == "" || v.OrganizationID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now().UTC()
	}
	s.videos[v.ID] = *v
	return nil
}

// SaveTranscriptChunks stores transcript chunks, replacing any previous
// chunks for the same video.
func (s *ContentStore) SaveTranscriptChunks(_ context.Context, chunks []domain.TranscriptChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		existing := s.chunks[chunk.VideoID]
		replaced := false
		for i, prev := range existing {
			if prev.ID == chunk.ID {
				existing[i] = chunk
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, chunk)
		}
		s.chunks[chunk.VideoID] = existing
	}
	return nil
}

// SaveSource stores or updates a source instance.
func (s *ContentStore) SaveSource(_ context.Context, src domain.Source) error {
	if src.ID == "" || src.OrganizationID == "" || !src.Type.Valid() {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID] = src
	return nil
}

// SaveContentItem stores or updates a content item, deriving the
// keyword search text when absent.
func (s *ContentStore) SaveContentItem(_ context.Context, item *domain.ContentItem) error {
	if item.ID == "" || item.OrganizationID == "" {
		return domain.ErrInvalidInput
	}
	if !item.SourceType.Valid() || !item.ContentType.Valid() {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if item.SearchText == "" {
		item.SearchText = strings.ToLower(strings.TrimSpace(
			item.Title + " " + item.Body + " " + item.AuthorName))
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now().UTC()
	}
	s.items[item.ID] = *item
	return nil
}

// SaveTopicCluster stores or updates a topic cluster.
func (s *ContentStore) SaveTopicCluster(_ context.Context, c domain.TopicCluster) error {
	if c.ID == "" || c.OrganizationID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters[c.ID] = c
	return nil
}

// AssignTopic links an item to a cluster, replacing any previous link.
func (s *ContentStore) AssignTopic(_ context.Context, itemID, clusterID string) error {
	if itemID == "" || clusterID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[itemID] = clusterID
	return nil
}

// ==================== Video Retrieval ====================

// SearchVideosKeyword returns videos whose title, description, or
// transcript contains the query, newest first.
func (s *ContentStore) SearchVideosKeyword(_ context.Context, query string, f driven.RetrievalFilter) ([]driven.VideoHit, error) {
	needle := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.VideoHit
	for _, v := range s.videos {
		if v.OrganizationID != f.OrganizationID || !inDateRange(v.CreatedAt, f) {
			continue
		}
		haystack := strings.ToLower(v.Title + " " + v.Description + " " + v.Transcript)
		if !strings.Contains(haystack, needle) {
			continue
		}
		hits = append(hits, driven.VideoHit{Video: videoProjection(v)})
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i].Video.Video, hits[j].Video.Video
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return truncateVideos(hits, f.Limit), nil
}

// SearchVideosSemantic ranks videos by best transcript chunk similarity.
func (s *ContentStore) SearchVideosSemantic(_ context.Context, embedding []float32, threshold float64, f driven.RetrievalFilter) ([]driven.VideoHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.VideoHit
	for videoID, chunks := range s.chunks {
		v, ok := s.videos[videoID]
		if !ok || v.OrganizationID != f.OrganizationID || !inDateRange(v.CreatedAt, f) {
			continue
		}

		best := -1.0
		for _, chunk := range chunks {
			if sim := cosineSimilarity(embedding, chunk.Embedding); sim > best {
				best = sim
			}
		}
		if best < threshold {
			continue
		}
		hits = append(hits, driven.VideoHit{Video: videoProjection(v), Similarity: best})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Video.Video.ID < hits[j].Video.Video.ID
	})
	return truncateVideos(hits, f.Limit), nil
}

// ==================== Content Item Retrieval ====================

// SearchContentKeyword returns items whose search text contains the
// query, newest first.
func (s *ContentStore) SearchContentKeyword(_ context.Context, query string, f driven.RetrievalFilter) ([]driven.ContentHit, error) {
	needle := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.ContentHit
	for _, item := range s.items {
		if !s.itemMatchesFilter(item, f) {
			continue
		}
		if !strings.Contains(item.SearchText, needle) {
			continue
		}
		hits = append(hits, s.contentHit(item))
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i].Item.Item, hits[j].Item.Item
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return truncateContent(hits, f.Limit), nil
}

// SearchContentSemantic ranks items by embedding similarity.
func (s *ContentStore) SearchContentSemantic(_ context.Context, embedding []float32, threshold float64, f driven.RetrievalFilter) ([]driven.ContentHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.ContentHit
	for _, item := range s.items {
		if len(item.Embedding) == 0 || !s.itemMatchesFilter(item, f) {
			continue
		}
		sim := cosineSimilarity(embedding, item.Embedding)
		if sim < threshold {
			continue
		}
		hit := s.contentHit(item)
		hit.Similarity = sim
		hits = append(hits, hit)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Item.Item.ID < hits[j].Item.Item.ID
	})
	return truncateContent(hits, f.Limit), nil
}

// ==================== Facets and Suggestions ====================

// Facets computes the aggregate facet snapshot for one tenant.
func (s *ContentStore) Facets(_ context.Context, organizationID string) (*domain.SearchFacets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sourceCounts := make(map[domain.SourceType]int)
	typeCounts := make(map[domain.ContentItemType]int)
	participantCounts := make(map[string]*domain.ParticipantFacet)
	topicCounts := make(map[string]int)

	newest := domain.WeekStart(s.now())
	oldest := newest.AddDate(0, 0, -7*(facetHistogramWeeks-1))
	cutoff := newest.AddDate(0, 0, 7)
	weekCounts := make(map[string]int)

	for _, item := range s.items {
		if item.OrganizationID != organizationID {
			continue
		}
		sourceCounts[item.SourceType]++
		typeCounts[item.ContentType]++
		if item.AuthorName != "" {
			key := item.AuthorName + "\x00" + item.AuthorID
			if _, ok := participantCounts[key]; !ok {
				participantCounts[key] = &domain.ParticipantFacet{
					Name:   item.AuthorName,
					UserID: item.AuthorID,
				}
			}
			participantCounts[key].Count++
		}
		if clusterID, ok := s.topics[item.ID]; ok {
			topicCounts[clusterID]++
		}
		created := item.CreatedAt.UTC()
		if !created.Before(oldest) && created.Before(cutoff) {
			weekCounts[domain.WeekStart(created).Format(time.DateOnly)]++
		}
	}

	facets := &domain.SearchFacets{}

	for src, count := range sourceCounts {
		facets.Sources = append(facets.Sources, domain.SourceFacet{Source: src, Count: count})
	}
	sort.Slice(facets.Sources, func(i, j int) bool {
		if facets.Sources[i].Count != facets.Sources[j].Count {
			return facets.Sources[i].Count > facets.Sources[j].Count
		}
		return facets.Sources[i].Source < facets.Sources[j].Source
	})

	for ct, count := range typeCounts {
		facets.ContentTypes = append(facets.ContentTypes, domain.ContentTypeFacet{Type: ct, Count: count})
	}
	sort.Slice(facets.ContentTypes, func(i, j int) bool {
		if facets.ContentTypes[i].Count != facets.ContentTypes[j].Count {
			return facets.ContentTypes[i].Count > facets.ContentTypes[j].Count
		}
		return facets.ContentTypes[i].Type < facets.ContentTypes[j].Type
	})

	for _, p := range participantCounts {
		facets.Participants = append(facets.Participants, *p)
	}
	sort.Slice(facets.Participants, func(i, j int) bool {
		if facets.Participants[i].Count != facets.Participants[j].Count {
			return facets.Participants[i].Count > facets.Participants[j].Count
		}
		return facets.Participants[i].Name < facets.Participants[j].Name
	})
	if len(facets.Participants) > facetParticipantLimit {
		facets.Participants = facets.Participants[:facetParticipantLimit]
	}

	for clusterID, count := range topicCounts {
		cluster, ok := s.clusters[clusterID]
		if !ok {
			continue
		}
		facets.Topics = append(facets.Topics, domain.TopicFacet{
			Name:      cluster.Name,
			ClusterID: clusterID,
			Count:     count,
		})
	}
	sort.Slice(facets.Topics, func(i, j int) bool {
		if facets.Topics[i].Count != facets.Topics[j].Count {
			return facets.Topics[i].Count > facets.Topics[j].Count
		}
		return facets.Topics[i].Name < facets.Topics[j].Name
	})
	if len(facets.Topics) > facetParticipantLimit {
		facets.Topics = facets.Topics[:facetParticipantLimit]
	}

	facets.DateHistogram = make([]domain.DateBucket, 0, facetHistogramWeeks)
	for i := 0; i < facetHistogramWeeks; i++ {
		date := newest.AddDate(0, 0, -7*i).Format(time.DateOnly)
		facets.DateHistogram = append(facets.DateHistogram, domain.DateBucket{
			Date:  date,
			Count: weekCounts[date],
		})
	}

	return facets, nil
}

// SuggestTitles returns up to limit distinct titles containing the
// prefix, across videos and content items, sorted alphabetically.
func (s *ContentStore) SuggestTitles(_ context.Context, organizationID, prefix string, limit int) ([]string, error) {
	needle := strings.ToLower(prefix)

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var titles []string
	add := func(title string) {
		if title == "" || !strings.Contains(strings.ToLower(title), needle) {
			return
		}
		if _, ok := seen[title]; ok {
			return
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}

	for _, v := range s.videos {
		if v.OrganizationID == organizationID {
			add(v.Title)
		}
	}
	for _, item := range s.items {
		if item.OrganizationID == organizationID {
			add(item.Title)
		}
	}

	sort.Strings(titles)
	if limit > 0 && len(titles) > limit {
		titles = titles[:limit]
	}
	return titles, nil
}

// ==================== Helpers ====================

const (
	facetParticipantLimit = 20
	facetHistogramWeeks   = 12
)

func (s *ContentStore) itemMatchesFilter(item domain.ContentItem, f driven.RetrievalFilter) bool {
	if item.OrganizationID != f.OrganizationID {
		return false
	}
	if len(f.Sources) > 0 && !containsSourceType(f.Sources, item.SourceType) {
		return false
	}
	if len(f.SourceIDs) > 0 && !containsString(f.SourceIDs, item.SourceID) {
		return false
	}
	if len(f.ContentTypes) > 0 && !containsContentType(f.ContentTypes, item.ContentType) {
		return false
	}
	return inDateRange(item.CreatedAt, f)
}

func (s *ContentStore) contentHit(item domain.ContentItem) driven.ContentHit {
	hit := driven.ContentHit{
		Item: domain.ContentItemWithSource{
			Item:   item,
			Source: s.sources[item.SourceID],
		},
	}
	if clusterID, ok := s.topics[item.ID]; ok {
		if cluster, found := s.clusters[clusterID]; found {
			hit.Topic = &domain.TopicRef{ID: cluster.ID, Name: cluster.Name}
		}
	}
	return hit
}

func inDateRange(t time.Time, f driven.RetrievalFilter) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}

func videoProjection(v domain.Video) domain.VideoWithAuthor {
	return domain.VideoWithAuthor{
		Video:      v,
		AuthorID:   v.AuthorID,
		AuthorName: v.AuthorName,
	}
}

func truncateVideos(hits []driven.VideoHit, limit int) []driven.VideoHit {
	if limit > 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}

func truncateContent(hits []driven.ContentHit, limit int) []driven.ContentHit {
	if limit > 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}

func containsSourceType(list []domain.SourceType, v domain.SourceType) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsContentType(list []domain.ContentItemType, v domain.ContentItemType) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
