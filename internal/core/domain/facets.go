package domain

import "time"

// SourceFacet counts content items per source type.
type SourceFacet struct {
	Source SourceType `json:"source"`
	Count  int        `json:"count"`
}

// ContentTypeFacet counts content items per content type.
type ContentTypeFacet struct {
	Type  ContentItemType `json:"type"`
	Count int             `json:"count"`
}

// ParticipantFacet counts content items per author.
type ParticipantFacet struct {
	Name   string `json:"name"`
	UserID string `json:"userId,omitempty"`
	Count  int    `json:"count"`
}

// TopicFacet counts content items per topic cluster.
type TopicFacet struct {
	Name      string `json:"name"`
	ClusterID string `json:"clusterId"`
	Count     int    `json:"count"`
}

// DateBucket counts items created in the week starting at Date (Monday).
type DateBucket struct {
	// Date is the ISO week-start date, e.g. "2026-08-24".
	Date string `json:"date"`

	Count int `json:"count"`
}

// SearchFacets is an aggregate snapshot for filter UIs. It reflects the
// tenant's corpus, not the current ranked page, and is computed
// independently of the query text.
type SearchFacets struct {
	Sources      []SourceFacet      `json:"sources"`
	ContentTypes []ContentTypeFacet `json:"contentTypes"`

	// Participants holds the top 20 authors by item count.
	Participants []ParticipantFacet `json:"participants"`

	// Topics holds the top 20 topic clusters by item count.
	Topics []TopicFacet `json:"topics"`

	// DateHistogram covers the last 12 weeks, newest first.
	DateHistogram []DateBucket `json:"dateHistogram"`
}

// WeekStart truncates t to the Monday of its week, in UTC.
// It is the canonical bucketing rule for the date histogram.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the preceding Monday's week
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
