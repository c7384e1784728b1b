package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"libercare/config"
	"libercare/types"
)

// Mode is the input mode of the client
type Mode string

const (
	ModeBrowse Mode = "browse"
	ModeSearch Mode = "search"
)

// Model represents the TUI client state (thin client)
type Model struct {
	Client *APIClient

	Mode      Mode
	Language  types.Language
	Languages []types.Language

	// Articles of the current language
	Loading   bool
	Articles  []types.Article
	FetchedAt time.Time
	Stale     bool

	// Keyword search
	Input     string
	Query     string
	Searching bool
	Results   []types.SearchResult

	// Server-side refresh
	Refreshing bool
	RunID      string

	Notice string
	Err    error
}

// NewModel creates a new TUI model
func NewModel(baseURL string, lang types.Language) Model {
	languages := config.SupportedLanguages()
	supported := false
	for _, l := range languages {
		supported = supported || l == lang
	}
	if !supported {
		lang = languages[0]
	}
	return Model{
		Client:    NewAPIClient(baseURL),
		Mode:      ModeBrowse,
		Language:  lang,
		Languages: languages,
		Loading:   true,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return fetchArticles(m.Client, m.Language)
}

// nextLanguage returns the language after the current one
func (m Model) nextLanguage() types.Language {
	for i, lang := range m.Languages {
		if lang == m.Language {
			return m.Languages[(i+1)%len(m.Languages)]
		}
	}
	return m.Languages[0]
}
