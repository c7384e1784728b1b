// Package deduplication tracks which article URLs an aggregation has already accepted.
package deduplication

import "strings"

// SeenSet records normalized URLs for the lifetime of one aggregation call.
// It is not safe for concurrent use.
type SeenSet struct {
	urls map[string]struct{}
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{urls: make(map[string]struct{})}
}

// Add records url and reports whether it was new. The first caller wins.
func (s *SeenSet) Add(url string) bool {
	key := NormalizeURL(url)
	if _, ok := s.urls[key]; ok {
		return false
	}
	s.urls[key] = struct{}{}
	return true
}

// Contains reports whether url was already recorded
func (s *SeenSet) Contains(url string) bool {
	_, ok := s.urls[NormalizeURL(url)]
	return ok
}

// Len returns the number of distinct URLs recorded
func (s *SeenSet) Len() int {
	return len(s.urls)
}

// NormalizeURL trims surrounding whitespace and lower-cases the URL.
// Query strings, fragments and trailing slashes are kept, so two links that
// differ only there count as distinct articles.
func NormalizeURL(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
