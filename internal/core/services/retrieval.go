package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
	"github.com/nuclom/search/internal/logger"
)

// Recency boost parameters: a linear decay over one year, capped so a
// fresh weak match can edge out a stale strong one only by a bounded
// margin.
const (
	recencyWindowDays = 365
	recencyBoostMax   = 0.1
)

// candidate accumulates per-item retrieval signals before scoring.
type candidate struct {
	item          domain.SearchResultItem
	keywordScore  float64
	semanticScore float64
}

// searchVideoFamily runs the video retrieval strategy: keyword matching
// over title/description/transcript plus chunk-level semantic ranking,
// merged by video identity.
func (s *SearchService) searchVideoFamily(
	ctx context.Context, query string, queryVec []float32, p searchParams, f driven.RetrievalFilter,
) ([]domain.SearchResultItem, error) {
	var keyword, semantic []driven.VideoHit
	var err error

	if p.mode != domain.SearchModeSemantic {
		keyword, err = s.store.SearchVideosKeyword(ctx, query, f)
		if err != nil {
			return nil, fmt.Errorf("video keyword retrieval: %w", err)
		}
		logger.Debug("Video keyword retrieval: %d hits", len(keyword))
	}

	if p.mode != domain.SearchModeKeyword && queryVec != nil {
		semantic, err = s.store.SearchVideosSemantic(ctx, queryVec, p.semanticThreshold, f)
		if err != nil {
			// Semantic retrieval is an enhancement layer: store failures
			// here fail open, unlike the keyword path.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Video semantic retrieval failed, continuing without it: %v", err)
			semantic = nil
		} else {
			logger.Debug("Video semantic retrieval: %d hits", len(semantic))
		}
	}

	candidates := make([]*candidate, 0, len(keyword)+len(semantic))
	index := make(map[string]*candidate, len(keyword)+len(semantic))

	for _, hit := range keyword {
		c := &candidate{item: domain.NewVideoResult(hit.Video), keywordScore: 1}
		index[hit.Video.Video.ID] = c
		candidates = append(candidates, c)
	}
	for _, hit := range semantic {
		if c, ok := index[hit.Video.Video.ID]; ok {
			c.semanticScore = hit.Similarity
			continue
		}
		c := &candidate{item: domain.NewVideoResult(hit.Video), semanticScore: hit.Similarity}
		index[hit.Video.Video.ID] = c
		candidates = append(candidates, c)
	}

	return s.score(candidates, p), nil
}

// searchContentFamily runs the content-item retrieval strategy over the
// precomputed search-text field and item embeddings.
func (s *SearchService) searchContentFamily(
	ctx context.Context, query string, queryVec []float32, p searchParams, f driven.RetrievalFilter,
) ([]domain.SearchResultItem, error) {
	var keyword, semantic []driven.ContentHit
	var err error

	if p.mode != domain.SearchModeSemantic {
		keyword, err = s.store.SearchContentKeyword(ctx, query, f)
		if err != nil {
			return nil, fmt.Errorf("content keyword retrieval: %w", err)
		}
		logger.Debug("Content keyword retrieval: %d hits", len(keyword))
	}

	if p.mode != domain.SearchModeKeyword && queryVec != nil {
		semantic, err = s.store.SearchContentSemantic(ctx, queryVec, p.semanticThreshold, f)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Content semantic retrieval failed, continuing without it: %v", err)
			semantic = nil
		} else {
			logger.Debug("Content semantic retrieval: %d hits", len(semantic))
		}
	}

	candidates := make([]*candidate, 0, len(keyword)+len(semantic))
	index := make(map[string]*candidate, len(keyword)+len(semantic))

	for _, hit := range keyword {
		c := &candidate{item: newContentResult(hit), keywordScore: 1}
		index[hit.Item.Item.ID] = c
		candidates = append(candidates, c)
	}
	for _, hit := range semantic {
		if c, ok := index[hit.Item.Item.ID]; ok {
			c.semanticScore = hit.Similarity
			continue
		}
		c := &candidate{item: newContentResult(hit), semanticScore: hit.Similarity}
		index[hit.Item.Item.ID] = c
		candidates = append(candidates, c)
	}

	return s.score(candidates, p), nil
}

// newContentResult builds a result item carrying the hit's topic context.
func newContentResult(hit driven.ContentHit) domain.SearchResultItem {
	item := domain.NewContentItemResult(hit.Item)
	item.Context.TopicCluster = hit.Topic
	return item
}

// score turns accumulated signals into final fused scores. The primary
// score is keywordWeight*keywordScore + semanticWeight*semanticScore; a
// keyword-only or semantic-only hit keeps its weighted component without
// re-normalisation. The recency boost is added on top for ranking but
// reported separately in the breakdown.
func (s *SearchService) score(candidates []*candidate, p searchParams) []domain.SearchResultItem {
	results := make([]domain.SearchResultItem, 0, len(candidates))
	for _, c := range candidates {
		boost := s.recencyBoost(c.item.CreatedAt())
		c.item.Breakdown = domain.ScoreBreakdown{
			KeywordScore:  c.keywordScore,
			SemanticScore: c.semanticScore,
			RecencyBoost:  boost,
		}
		c.item.Score = p.keywordWeight*c.keywordScore + p.semanticWeight*c.semanticScore + boost
		results = append(results, c.item)
	}
	return results
}

// recencyBoost returns max(0, 1 - ageInDays/365) * 0.1.
func (s *SearchService) recencyBoost(created time.Time) float64 {
	if created.IsZero() {
		return 0
	}
	ageDays := s.now().Sub(created).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	decay := 1 - ageDays/recencyWindowDays
	if decay < 0 {
		return 0
	}
	return decay * recencyBoostMax
}
