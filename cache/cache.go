// Package cache memoizes search results per query, language and time bucket.
package cache

import (
	"context"
	"fmt"
	"time"

	"libercare/types"
)

// Store persists search results under a bucketed key
type Store interface {
	// Get returns the cached results and true on a hit
	Get(ctx context.Context, key string) ([]types.SearchResult, bool, error)
	Set(ctx context.Context, key string, results []types.SearchResult, ttl time.Duration) error
}

// Bucket floors t to the start of its window, in unix seconds
func Bucket(t time.Time, window time.Duration) int64 {
	secs := int64(window / time.Second)
	if secs <= 0 {
		return t.Unix()
	}
	unix := t.Unix()
	return unix - mod(unix, secs)
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Key builds the cache key for one topic query within a bucket
func Key(query string, lang types.Language, bucket int64) string {
	return fmt.Sprintf("search:%s:%d:%s", lang, bucket, types.GenerateID(query))
}

// TTL returns how long an entry written at now stays useful: until its bucket closes
func TTL(now time.Time, window time.Duration) time.Duration {
	end := time.Unix(Bucket(now, window), 0).Add(window)
	if ttl := end.Sub(now); ttl > 0 {
		return ttl
	}
	return window
}
