package tui

import (
	"time"

	"libercare/types"
)

// Messages for the tea program

// ArticlesLoadedMsg is sent when the articles of a language arrive
type ArticlesLoadedMsg struct {
	Language types.Language
	Response *ArticlesResponse
	Err      error
}

// SearchDoneMsg is sent when a keyword search completes
type SearchDoneMsg struct {
	Query    string
	Response *SearchResponse
	Err      error
}

// RefreshStartedMsg is sent when the server accepted (or refused) a refresh
type RefreshStartedMsg struct {
	RunID string
	Err   error
}

// StatusUpdateMsg is sent when we receive the refresh status
type StatusUpdateMsg struct {
	Status *types.StatusResponse
	Err    error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}
