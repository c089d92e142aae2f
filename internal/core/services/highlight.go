package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nuclom/search/internal/core/domain"
)

// Highlight extraction parameters.
const (
	// highlightWindow is the number of bytes of context kept on each
	// side of the first body match.
	highlightWindow = 100

	// previewLength is the unmarked fallback excerpt size when the body
	// exists but did not match.
	previewLength = 200
)

// attachHighlights fills in the result's highlight fields from its
// payload. Only called when the request asked for highlights.
func attachHighlights(item *domain.SearchResultItem, query string) {
	var title, body string
	switch item.Type {
	case domain.ItemTypeVideo:
		if item.Video == nil {
			return
		}
		title = item.Video.Video.Title
		body = item.Video.Video.Description
		// The keyword strategy also matches transcripts; fall through to
		// the transcript when the description has no match to show.
		if !containsFold(body, query) && containsFold(item.Video.Video.Transcript, query) {
			body = item.Video.Video.Transcript
		}
	case domain.ItemTypeContentItem:
		if item.ContentItem == nil {
			return
		}
		title = item.ContentItem.Item.Title
		body = item.ContentItem.Item.Body
	default:
		return
	}

	h := buildHighlights(query, title, body)
	if h != nil {
		item.Highlights = h
	}
}

// buildHighlights produces marked-up excerpts for a title/body pair.
// Returns nil when there is nothing to show.
func buildHighlights(query, title, body string) *domain.Highlights {
	re := matchPattern(query)
	if re == nil {
		return nil
	}

	var h domain.Highlights

	if loc := re.FindStringIndex(title); loc != nil {
		h.Title = title[:loc[0]] + "<mark>" + title[loc[0]:loc[1]] + "</mark>" + title[loc[1]:]
	}

	switch {
	case body == "":
		// nothing to excerpt
	default:
		if loc := re.FindStringIndex(body); loc != nil {
			h.Content = excerpt(body, loc)
		} else {
			h.Content = preview(body)
		}
	}

	if h.Title == "" && h.Content == "" {
		return nil
	}
	return &h
}

// matchPattern compiles a case-insensitive literal pattern for the
// query. Metacharacters are neutralised so arbitrary user input can
// never produce a malformed pattern.
func matchPattern(query string) *regexp.Regexp {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(query))
	if err != nil {
		// QuoteMeta output always compiles; this is belt and braces.
		return nil
	}
	return re
}

// excerpt wraps the match in <mark> tags inside a window of
// highlightWindow bytes on each side, clipped to the body bounds.
func excerpt(body string, loc []int) string {
	start := loc[0] - highlightWindow
	if start < 0 {
		start = 0
	}
	end := loc[1] + highlightWindow
	if end > len(body) {
		end = len(body)
	}
	// Never split a multi-byte rune at the window edges.
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(body[start:loc[0]])
	b.WriteString("<mark>")
	b.WriteString(body[loc[0]:loc[1]])
	b.WriteString("</mark>")
	b.WriteString(body[loc[1]:end])
	if end < len(body) {
		b.WriteString("...")
	}
	return b.String()
}

// preview returns the unmarked head of the body as a generic excerpt.
func preview(body string) string {
	if len(body) <= previewLength {
		return body
	}
	end := previewLength
	for end > 0 && !utf8.RuneStart(body[end]) {
		end--
	}
	return body[:end] + "..."
}

// containsFold reports whether s contains substr case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
