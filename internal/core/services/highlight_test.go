package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHighlights_TitleMatch(t *testing.T) {
	h := buildHighlights("sprint", "Sprint Planning", "")
	require.NotNil(t, h)
	assert.Equal(t, "<mark>Sprint</mark> Planning", h.Title)
	assert.Empty(t, h.Content)
}

func TestBuildHighlights_CaseInsensitive(t *testing.T) {
	h := buildHighlights("LAUNCH", "Product launch plan", "")
	require.NotNil(t, h)
	assert.Equal(t, "Product <mark>launch</mark> plan", h.Title)
}

func TestBuildHighlights_BodyWindow(t *testing.T) {
	prefix := strings.Repeat("x", 300)
	suffix := strings.Repeat("y", 300)
	body := prefix + " launch " + suffix

	h := buildHighlights("launch", "unrelated title", body)
	require.NotNil(t, h)
	assert.Contains(t, h.Content, "<mark>launch</mark>")
	assert.True(t, strings.HasPrefix(h.Content, "..."))
	assert.True(t, strings.HasSuffix(h.Content, "..."))
	// 100 bytes each side plus markup, ellipses, and the match itself.
	assert.Less(t, len(h.Content), 250)
}

func TestBuildHighlights_BodyAtStart(t *testing.T) {
	h := buildHighlights("launch", "", "launch day checklist")
	require.NotNil(t, h)
	assert.Equal(t, "<mark>launch</mark> day checklist", h.Content)
}

func TestBuildHighlights_FallbackPreview(t *testing.T) {
	body := strings.Repeat("a", 500)
	h := buildHighlights("missing-term", "no match here either", body)
	require.NotNil(t, h)
	assert.NotContains(t, h.Content, "<mark>")
	assert.Equal(t, strings.Repeat("a", 200)+"...", h.Content)
}

func TestBuildHighlights_ShortBodyPreview(t *testing.T) {
	h := buildHighlights("zzz", "title", "short body")
	require.NotNil(t, h)
	assert.Equal(t, "short body", h.Content)
}

func TestBuildHighlights_RegexMetacharacters(t *testing.T) {
	// A hostile query must be treated as a literal, never a pattern.
	h := buildHighlights("a+b(c[", "calc a+b(c[ demo", "")
	require.NotNil(t, h)
	assert.Equal(t, "calc <mark>a+b(c[</mark> demo", h.Title)

	h = buildHighlights(".*", "dot star .* literal", "")
	require.NotNil(t, h)
	assert.Equal(t, "dot star <mark>.*</mark> literal", h.Title)
}

func TestBuildHighlights_MultibyteBoundaries(t *testing.T) {
	body := strings.Repeat("é", 120) + " launch " + strings.Repeat("ü", 120)
	h := buildHighlights("launch", "", body)
	require.NotNil(t, h)
	assert.Contains(t, h.Content, "<mark>launch</mark>")
	// Window clipping must not cut a rune in half.
	assert.True(t, strings.HasSuffix(h.Content, "..."))
	for _, r := range h.Content {
		assert.NotEqual(t, '�', r)
	}
}

func TestBuildHighlights_NothingToShow(t *testing.T) {
	assert.Nil(t, buildHighlights("term", "", ""))
	assert.Nil(t, buildHighlights("   ", "title", "body"))
}
