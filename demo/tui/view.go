package tui

import (
	"fmt"
	"strings"

	"libercare/config"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render(TextTitle))
	b.WriteString("\n")
	b.WriteString(m.languageBar())
	b.WriteString("\n\n")

	// Articles
	switch {
	case m.Loading:
		b.WriteString(StatusStyle.Render(TextLoading))
		b.WriteString("\n")
	case m.Err != nil:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("❌ Error: %v", m.Err)))
		b.WriteString("\n")
	case len(m.Articles) == 0:
		b.WriteString(InfoStyle.Render(TextNoArticles))
		b.WriteString("\n")
	default:
		if m.Stale {
			b.WriteString(ErrorStyle.Render(TextStale))
			b.WriteString("\n")
		}
		for _, a := range m.Articles {
			card := CardTitleStyle.Render(a.DisplayTitle(config.TitleDisplayLimit)) + "\n" +
				InfoStyle.Render(a.URL)
			b.WriteString(BoxStyle.Render(card))
			b.WriteString("\n")
		}
		if !m.FetchedAt.IsZero() {
			b.WriteString(InfoStyle.Render("Fetched " + m.FetchedAt.Local().Format("2006-01-02 15:04")))
			b.WriteString("\n")
		}
	}

	// Search
	if m.Mode == ModeSearch {
		b.WriteString("\n")
		b.WriteString(HighlightStyle.Render(TextSearchPrompt + m.Input + "█"))
		b.WriteString("\n")
	}
	if m.Query != "" {
		b.WriteString("\n")
		b.WriteString(StatusStyle.Render(fmt.Sprintf("Results for %q", m.Query)))
		b.WriteString("\n")
		switch {
		case m.Searching:
			b.WriteString(InfoStyle.Render(TextSearching))
			b.WriteString("\n")
		case len(m.Results) == 0:
			b.WriteString(InfoStyle.Render(TextNoResults))
			b.WriteString("\n")
		default:
			for _, r := range m.Results {
				b.WriteString("  • " + r.Title + "\n")
				b.WriteString(InfoStyle.Render("    "+r.URL) + "\n")
			}
		}
	}

	// Refresh
	if m.Refreshing {
		b.WriteString("\n")
		b.WriteString(StatusStyle.Render(TextRefreshing))
		b.WriteString("\n")
	} else if m.Notice != "" {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(m.Notice))
		b.WriteString("\n")
	}

	// Help text
	b.WriteString("\n")
	if m.Mode == ModeSearch {
		b.WriteString(InfoStyle.Render(TextFooterSearch))
	} else {
		b.WriteString(InfoStyle.Render(TextFooterBrowse))
	}

	return b.String()
}

func (m Model) languageBar() string {
	parts := make([]string, 0, len(m.Languages))
	for _, lang := range m.Languages {
		if lang == m.Language {
			parts = append(parts, HighlightStyle.Render(string(lang)))
			continue
		}
		parts = append(parts, InfoStyle.Render(string(lang)))
	}
	return strings.Join(parts, " ")
}
