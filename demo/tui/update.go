package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"libercare/types"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Mode == ModeSearch {
			return m.handleSearchKey(msg)
		}
		return m.handleKeyPress(msg)
	case ArticlesLoadedMsg:
		return m.handleArticlesLoaded(msg)
	case SearchDoneMsg:
		return m.handleSearchDone(msg)
	case RefreshStartedMsg:
		return m.handleRefreshStarted(msg)
	case TickMsg:
		if m.Refreshing {
			return m, pollStatus(m.Client)
		}
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input in browse mode
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "l":
		m.Language = m.nextLanguage()
		m.Loading = true
		m.Articles = nil
		m.Results = nil
		m.Query = ""
		m.Err = nil
		return m, fetchArticles(m.Client, m.Language)
	case "/":
		m.Mode = ModeSearch
		m.Input = ""
		return m, nil
	case "r":
		if m.Refreshing {
			return m, nil
		}
		m.Notice = ""
		return m, triggerRefresh(m.Client, m.Language)
	}
	return m, nil
}

// handleSearchKey edits the search input
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.Mode = ModeBrowse
		return m, nil
	case tea.KeyEnter:
		query := strings.TrimSpace(m.Input)
		m.Mode = ModeBrowse
		if query == "" {
			return m, nil
		}
		m.Query = query
		m.Searching = true
		m.Results = nil
		return m, runSearch(m.Client, query, m.Language)
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.Input += " "
	case tea.KeyRunes:
		m.Input += string(msg.Runes)
	}
	return m, nil
}

// handleArticlesLoaded stores articles unless the language changed meanwhile
func (m Model) handleArticlesLoaded(msg ArticlesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Language != m.Language {
		return m, nil
	}
	m.Loading = false
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}
	m.Err = nil
	m.Articles = msg.Response.Articles
	m.FetchedAt = msg.Response.FetchedAt
	m.Stale = msg.Response.Stale
	return m, nil
}

// handleSearchDone stores the results of the latest query
func (m Model) handleSearchDone(msg SearchDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Query != m.Query {
		return m, nil
	}
	m.Searching = false
	if msg.Err != nil {
		m.Notice = fmt.Sprintf("Search failed: %v", msg.Err)
		return m, nil
	}
	m.Results = msg.Response.Results
	return m, nil
}

// handleRefreshStarted starts polling once the server accepted the refresh
func (m Model) handleRefreshStarted(msg RefreshStartedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, ErrRefreshRunning) {
		m.Notice = "A refresh is already running"
		return m, nil
	}
	if msg.Err != nil {
		m.Notice = fmt.Sprintf("Refresh failed: %v", msg.Err)
		return m, nil
	}
	m.Refreshing = true
	m.RunID = msg.RunID
	return m, tickCmd()
}

// handleStatusUpdate reloads the articles once the refresh finished
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Refreshing = false
		m.Notice = fmt.Sprintf("Status unavailable: %v", msg.Err)
		return m, nil
	}
	switch msg.Status.State {
	case types.RunStateRefreshing:
		return m, tickCmd()
	case types.RunStateError:
		m.Notice = fmt.Sprintf("Refresh %s failed: %s", m.RunID, msg.Status.Error)
	default:
		m.Notice = fmt.Sprintf("Refresh %s complete", m.RunID)
	}
	m.Refreshing = false
	m.Loading = true
	return m, fetchArticles(m.Client, m.Language)
}
