package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"libercare/types"
)

// fetchArticles loads articles off the render loop
func fetchArticles(client *APIClient, lang types.Language) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.GetArticles(context.Background(), lang)
		return ArticlesLoadedMsg{Language: lang, Response: resp, Err: err}
	}
}

// runSearch runs a keyword search
func runSearch(client *APIClient, query string, lang types.Language) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Search(context.Background(), query, lang)
		return SearchDoneMsg{Query: query, Response: resp, Err: err}
	}
}

// triggerRefresh asks the server to refresh lang
func triggerRefresh(client *APIClient, lang types.Language) tea.Cmd {
	return func() tea.Msg {
		runID, err := client.Refresh(context.Background(), lang)
		return RefreshStartedMsg{RunID: runID, Err: err}
	}
}

// pollStatus creates a command to poll the refresh status
func pollStatus(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus(context.Background())
		return StatusUpdateMsg{Status: status, Err: err}
	}
}

// tickCmd creates a command that ticks every 500ms for polling
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
