// Package tui provides the interactive terminal search UI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driving"
)

// searchCompleted carries a finished search back into the update loop.
type searchCompleted struct {
	resp *domain.SearchResponse
}

// searchFailed carries a search error back into the update loop.
type searchFailed struct {
	err error
}

// Model is the bubbletea model for the search UI. It has two focus
// states: typing in the query input, and navigating the result list.
type Model struct {
	styles *Styles
	input  textinput.Model

	search         driving.SearchService
	organizationID string
	ctx            context.Context

	results    []domain.SearchResultItem
	totalCount int
	hasMore    bool
	timeMs     int64

	selected   int
	focusInput bool
	searching  bool
	searched   bool
	err        error

	width  int
	height int
}

// NewModel creates the search UI model.
func NewModel(search driving.SearchService, organizationID string) *Model {
	input := textinput.New()
	input.Placeholder = "Search videos and imported content..."
	input.Focus()
	input.CharLimit = 200

	return &Model{
		styles:         DefaultStyles(),
		input:          input,
		search:         search,
		organizationID: organizationID,
		ctx:            context.Background(),
		focusInput:     true,
		width:          80,
		height:         24,
	}
}

// WithContext sets the context used for search calls.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 6
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchCompleted:
		m.searching = false
		m.searched = true
		m.err = nil
		m.results = msg.resp.Results
		m.totalCount = msg.resp.TotalCount
		m.hasMore = msg.resp.HasMore
		m.timeMs = msg.resp.SearchTimeMs
		m.selected = 0
		if len(m.results) > 0 {
			m.focusInput = false
			m.input.Blur()
		}
		return m, nil

	case searchFailed:
		m.searching = false
		m.searched = true
		m.err = msg.err
		m.results = nil
		return m, nil
	}

	if m.focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.focusInput {
		switch key {
		case "esc":
			return m, tea.Quit
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" || m.searching {
				return m, nil
			}
			m.searching = true
			m.err = nil
			return m, m.runSearch(query)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "n", "/":
		m.focusInput = true
		m.input.Focus()
		return m, textinput.Blink
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.results)-1 {
			m.selected++
		}
	}
	return m, nil
}

// runSearch issues the search off the update loop.
func (m *Model) runSearch(query string) tea.Cmd {
	ctx := m.ctx
	search := m.search
	org := m.organizationID
	return func() tea.Msg {
		resp, err := search.Search(ctx, domain.SearchRequest{
			Query:             query,
			OrganizationID:    org,
			IncludeHighlights: true,
		})
		if err != nil {
			return searchFailed{err: err}
		}
		return searchCompleted{resp: resp}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("nuclom search"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.InputField.Render(m.input.View()))
	b.WriteString("\n\n")

	switch {
	case m.searching:
		b.WriteString(m.styles.Muted.Render("Searching..."))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
	case m.searched && len(m.results) == 0:
		b.WriteString(m.styles.Muted.Render("No results found."))
	case len(m.results) > 0:
		b.WriteString(m.renderResults())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.StatusBar.Render(m.statusLine()))
	return b.String()
}

func (m *Model) renderResults() string {
	var b strings.Builder

	total := fmt.Sprintf("%d", m.totalCount)
	if m.hasMore {
		total += "+"
	}
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%s matches in %dms", total, m.timeMs)))
	b.WriteString("\n\n")

	for i := range m.results {
		item := &m.results[i]
		line := fmt.Sprintf("  %s  %s", resultTitle(item), m.styles.Score.Render(fmt.Sprintf("%.3f", item.Score)))
		if i == m.selected {
			line = m.styles.Selected.Render("▸" + line[1:])
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("    " + resultOrigin(item)))
		b.WriteString("\n")
		if i == m.selected && item.Highlights != nil && item.Highlights.Content != "" {
			b.WriteString(m.styles.Muted.Render("    " + item.Highlights.Content))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) statusLine() string {
	if m.focusInput {
		return "enter search · esc quit"
	}
	return "↑/k ↓/j navigate · n new search · q quit"
}

func resultTitle(item *domain.SearchResultItem) string {
	switch item.Type {
	case domain.ItemTypeVideo:
		return item.Video.Video.Title
	case domain.ItemTypeContentItem:
		if title := item.ContentItem.Item.Title; title != "" {
			return title
		}
		return item.ContentItem.Item.ID
	}
	return ""
}

func resultOrigin(item *domain.SearchResultItem) string {
	var parts []string
	switch item.Type {
	case domain.ItemTypeVideo:
		parts = append(parts, "video")
		if author := item.Video.AuthorName; author != "" {
			parts = append(parts, "by "+author)
		}
	case domain.ItemTypeContentItem:
		parts = append(parts, string(item.ContentItem.Item.SourceType))
		if author := item.ContentItem.Item.AuthorName; author != "" {
			parts = append(parts, "by "+author)
		}
	}
	if topic := item.Context.TopicCluster; topic != nil {
		parts = append(parts, topic.Name)
	}
	parts = append(parts, item.CreatedAt().Format("2006-01-02"))
	return strings.Join(parts, " · ")
}
