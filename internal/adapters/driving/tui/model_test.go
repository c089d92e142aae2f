package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclom/search/internal/core/domain"
)

type stubSearchService struct {
	resp    *domain.SearchResponse
	err     error
	lastReq domain.SearchRequest
}

func (s *stubSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubSearchService) SearchContentItems(context.Context, domain.SearchRequest) ([]domain.ContentItemWithSource, error) {
	return nil, nil
}

func (s *stubSearchService) Facets(context.Context, string, string) (*domain.SearchFacets, error) {
	return &domain.SearchFacets{}, nil
}

func (s *stubSearchService) Suggestions(context.Context, string, string, int) ([]domain.Suggestion, error) {
	return nil, nil
}

func testResponse() *domain.SearchResponse {
	video := domain.NewVideoResult(domain.VideoWithAuthor{
		Video:      domain.Video{ID: "v-1", Title: "Launch planning"},
		AuthorName: "Ana",
	})
	video.Score = 0.9
	item := domain.NewContentItemResult(domain.ContentItemWithSource{
		Item: domain.ContentItem{ID: "i-1", Title: "Launch checklist", SourceType: domain.SourceTypeGitHub},
	})
	item.Score = 0.7
	return &domain.SearchResponse{
		Results:      []domain.SearchResultItem{video, item},
		TotalCount:   2,
		SearchTimeMs: 3,
	}
}

func TestNewModel_StartsInInputMode(t *testing.T) {
	m := NewModel(&stubSearchService{}, "org-1")

	assert.True(t, m.focusInput)
	assert.Empty(t, m.results)
	assert.NotNil(t, m.Init())
}

func TestModel_EnterTriggersSearch(t *testing.T) {
	svc := &stubSearchService{resp: testResponse()}
	m := NewModel(svc, "org-1")
	m.input.SetValue("launch")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(*Model)
	require.NotNil(t, cmd)
	assert.True(t, model.searching)

	msg := cmd()
	completed, ok := msg.(searchCompleted)
	require.True(t, ok)
	assert.Equal(t, "launch", svc.lastReq.Query)
	assert.Equal(t, "org-1", svc.lastReq.OrganizationID)

	updated, _ = model.Update(completed)
	model = updated.(*Model)
	assert.False(t, model.searching)
	assert.Len(t, model.results, 2)
	assert.False(t, model.focusInput)
	assert.Equal(t, 0, model.selected)
}

func TestModel_EmptyQueryDoesNotSearch(t *testing.T) {
	m := NewModel(&stubSearchService{}, "org-1")
	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, m.searching)
}

func TestModel_SearchFailureShowsError(t *testing.T) {
	svc := &stubSearchService{err: errors.New("store unavailable")}
	m := NewModel(svc, "org-1")
	m.input.SetValue("launch")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	updated, _ := m.Update(cmd())
	model := updated.(*Model)
	assert.Error(t, model.err)
	assert.Contains(t, model.View(), "store unavailable")
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(&stubSearchService{}, "org-1")
	updated, _ := m.Update(searchCompleted{resp: testResponse()})
	model := updated.(*Model)
	require.False(t, model.focusInput)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	model = updated.(*Model)
	assert.Equal(t, 1, model.selected)

	// Stays in bounds at the end of the list
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	model = updated.(*Model)
	assert.Equal(t, 1, model.selected)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	model = updated.(*Model)
	assert.Equal(t, 0, model.selected)
}

func TestModel_NewSearchRefocusesInput(t *testing.T) {
	m := NewModel(&stubSearchService{}, "org-1")
	updated, _ := m.Update(searchCompleted{resp: testResponse()})
	model := updated.(*Model)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	model = updated.(*Model)
	assert.True(t, model.focusInput)
}

func TestModel_QuitKeys(t *testing.T) {
	m := NewModel(&stubSearchService{}, "org-1")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewRendersResults(t *testing.T) {
	m := NewModel(&stubSearchService{}, "org-1")
	updated, _ := m.Update(searchCompleted{resp: testResponse()})
	model := updated.(*Model)

	view := model.View()
	assert.Contains(t, view, "Launch planning")
	assert.Contains(t, view, "Launch checklist")
	assert.Contains(t, view, "2 matches")
}
