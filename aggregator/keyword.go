package aggregator

import (
	"context"
	"errors"
	"log"
	"strings"

	"libercare/config"
	"libercare/search"
	"libercare/types"
)

// SearchKeyword runs a news search for a free-text query and drops promotional results.
// Results keep provider order and are neither deduplicated nor cached. The language
// is accepted for symmetry with Aggregate; the provider decides result locale.
func (a *Aggregator) SearchKeyword(ctx context.Context, query string, lang types.Language) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []types.SearchResult{}, nil
	}

	results, err := a.searcher.Search(ctx, search.Request{
		Query:    query,
		Num:      config.KeywordResultCount,
		NewsOnly: true,
	})
	if err != nil {
		if errors.Is(err, search.ErrMissingAPIKey) {
			return nil, err
		}
		log.Printf("[keyword] search %q (%s) failed: %v", query, lang, err)
		return []types.SearchResult{}, nil
	}

	kept := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		if a.keywordDeny.Rejects(r.Title, r.URL, r.Snippet) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, nil
}
