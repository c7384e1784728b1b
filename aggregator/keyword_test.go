package aggregator

import (
	"context"
	"errors"
	"testing"

	"libercare/cache"
	"libercare/config"
	"libercare/search"
	"libercare/types"
)

func TestSearchKeywordRequest(t *testing.T) {
	s := newFakeSearcher()
	s.results["green tea"] = []types.SearchResult{
		{Title: "Green tea benefits", URL: "https://news.example/tea"},
		{Title: "Green tea benefits", URL: "https://news.example/tea"},
	}
	a := newTestAggregator(s, cache.NewMemoryStore(), testCatalog())

	got, err := a.SearchKeyword(context.Background(), "  green tea ", types.LanguageEN)
	if err != nil {
		t.Fatalf("SearchKeyword: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("duplicates are kept for keyword search, got %d results", len(got))
	}
	if len(s.requests) != 1 {
		t.Fatalf("got %d requests; want 1", len(s.requests))
	}
	req := s.requests[0]
	if !req.NewsOnly || req.Num != config.KeywordResultCount || req.Query != "green tea" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestSearchKeywordDropsCommercial(t *testing.T) {
	s := newFakeSearcher()
	s.results["mint"] = []types.SearchResult{
		{Title: "Mint tea on SALE", URL: "https://news.example/mint"},
		{Title: "Mint", URL: "https://www.ebay.com/mint"},
		{Title: "Mint", URL: "https://news.example/mint-2", Snippet: "20% discount today"},
	}
	a := newTestAggregator(s, cache.NewMemoryStore(), testCatalog())

	got, err := a.SearchKeyword(context.Background(), "mint", types.LanguageEN)
	if err != nil {
		t.Fatalf("SearchKeyword: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSearchKeywordBlankQuery(t *testing.T) {
	s := newFakeSearcher()
	a := newTestAggregator(s, cache.NewMemoryStore(), testCatalog())

	got, err := a.SearchKeyword(context.Background(), "   ", types.LanguageFR)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
	if s.totalCalls() != 0 {
		t.Fatal("blank query should not call the provider")
	}
}

func TestSearchKeywordErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"transient", &search.StatusError{StatusCode: 503, Body: "unavailable"}, false},
		{"missing key", search.ErrMissingAPIKey, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeSearcher()
			s.errs["ginger"] = tt.err
			a := newTestAggregator(s, cache.NewMemoryStore(), testCatalog())

			got, err := a.SearchKeyword(context.Background(), "ginger", types.LanguageEN)
			if tt.wantErr {
				if !errors.Is(err, search.ErrMissingAPIKey) {
					t.Fatalf("err = %v; want ErrMissingAPIKey", err)
				}
				return
			}
			if err != nil || got == nil || len(got) != 0 {
				t.Fatalf("got %v, %v; want empty results and nil error", got, err)
			}
		})
	}
}
