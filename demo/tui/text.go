package tui

// UI Text Constants
const (
	TextTitle        = "🌿 LiberCare Articles"
	TextLoading      = "⏳ Loading articles..."
	TextSearching    = "🔍 Searching..."
	TextNoArticles   = "No articles available"
	TextNoResults    = "No results found"
	TextStale        = "Showing an older selection, the latest refresh failed"
	TextRefreshing   = "🔄 Refreshing on the server..."
	TextSearchPrompt = "Search: "

	// Footer
	TextFooterBrowse = "l: language | /: search | r: refresh | q: quit"
	TextFooterSearch = "enter: search | esc: back | ctrl+c: quit"
)
