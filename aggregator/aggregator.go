// Package aggregator builds a small, topic-balanced set of trusted health articles.
package aggregator

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"libercare/cache"
	"libercare/config"
	"libercare/deduplication"
	"libercare/filter"
	"libercare/search"
	"libercare/types"
)

// Aggregator runs topic searches and merges them into one article set
type Aggregator struct {
	searcher    search.Searcher
	store       cache.Store
	catalog     *config.Catalog
	topicDeny   *filter.Denylist
	keywordDeny *filter.Denylist
	allow       map[types.Language]*filter.Allowlist
	allImages   []string
	window      time.Duration
	maxArticles int
	now         func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	// shuffle is disabled by tests that assert round-robin order
	shuffle bool
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock injects the time source used for cache buckets
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithRand injects the random source used for photos and shuffling
func WithRand(r *rand.Rand) Option {
	return func(a *Aggregator) { a.rng = r }
}

// WithCacheWindow overrides the cache bucket width
func WithCacheWindow(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.window = d
		}
	}
}

// New creates an Aggregator over a searcher, a result cache and the catalog
func New(searcher search.Searcher, store cache.Store, catalog *config.Catalog, opts ...Option) *Aggregator {
	a := &Aggregator{
		searcher:    searcher,
		store:       store,
		catalog:     catalog,
		topicDeny:   filter.NewDenylist(catalog.TopicDenylist),
		keywordDeny: filter.NewDenylist(catalog.KeywordDenylist),
		allow:       make(map[types.Language]*filter.Allowlist, len(catalog.Languages)),
		allImages:   catalog.AllImages(),
		window:      config.CacheWindow,
		maxArticles: config.MaxArticles,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		shuffle:     true,
	}
	for lang, table := range catalog.Languages {
		a.allow[lang] = filter.NewAllowlist(table.TrustedDomains)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stats counts the topic searches of one aggregation
type Stats struct {
	Searches int
	Failed   int
}

// AllFailed reports whether every topic search failed, as during a provider outage
func (s Stats) AllFailed() bool {
	return s.Searches > 0 && s.Failed == s.Searches
}

// Aggregate returns up to five distinct trusted articles spread across topics.
// A failing topic search contributes nothing; only a missing API key or a
// cancelled context is returned as an error.
func (a *Aggregator) Aggregate(ctx context.Context, lang types.Language) ([]types.Article, error) {
	articles, _, err := a.AggregateWithStats(ctx, lang)
	return articles, err
}

// AggregateWithStats is Aggregate that also reports how many topic searches failed
func (a *Aggregator) AggregateWithStats(ctx context.Context, lang types.Language) ([]types.Article, Stats, error) {
	resolved := a.catalog.Resolve(lang)
	if resolved != lang {
		log.Printf("[aggregator] language %q not supported, using %q", lang, resolved)
	}
	table := a.catalog.Languages[resolved]
	allow := a.allow[resolved]

	now := a.now()
	bucket := cache.Bucket(now, a.window)
	seen := deduplication.NewSeenSet()
	queues := make([][]types.Article, len(table.Queries))
	stats := Stats{Searches: len(table.Queries)}

	for i, tq := range table.Queries {
		results, err := a.cachedSearch(ctx, tq.Query, resolved, bucket, now)
		if err != nil {
			if errors.Is(err, search.ErrMissingAPIKey) {
				return nil, stats, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, stats, ctxErr
			}
			log.Printf("[aggregator] %s/%s search failed: %v", resolved, tq.Topic, err)
			stats.Failed++
			continue
		}

		for _, r := range results {
			if a.topicDeny.Rejects(r.Title, r.URL, r.Snippet) {
				continue
			}
			if !allow.Trusts(r.URL) || !seen.Add(r.URL) {
				continue
			}
			queues[i] = append(queues[i], types.Article{
				Title:   r.Title,
				URL:     r.URL,
				Snippet: r.Snippet,
				Photo:   a.pickPhoto(tq.Topic),
				Topic:   tq.Topic,
			})
		}
	}

	selected := roundRobin(queues, a.maxArticles)
	if a.shuffle {
		a.shuffleArticles(selected)
	}
	if len(selected) > a.maxArticles {
		selected = selected[:a.maxArticles]
	}
	log.Printf("[aggregator] %s: selected %d article(s) from %d candidate(s), %d/%d search(es) failed",
		resolved, len(selected), seen.Len(), stats.Failed, stats.Searches)
	return selected, stats, nil
}

// cachedSearch returns the topic results for the bucket, querying the searcher on a miss.
// Failed searches are not cached so the next call retries.
func (a *Aggregator) cachedSearch(ctx context.Context, query string, lang types.Language, bucket int64, now time.Time) ([]types.SearchResult, error) {
	key := cache.Key(query, lang, bucket)
	cached, ok, err := a.store.Get(ctx, key)
	if err != nil {
		log.Printf("[aggregator] cache read %s failed, searching: %v", key, err)
	} else if ok {
		return cached, nil
	}

	results, err := a.searcher.Search(ctx, search.Request{Query: query, Num: config.TopicResultCount})
	if err != nil {
		return nil, err
	}
	if err := a.store.Set(ctx, key, results, cache.TTL(now, a.window)); err != nil {
		log.Printf("[aggregator] cache write %s failed: %v", key, err)
	}
	return results, nil
}

// roundRobin pops one article per non-empty queue, in queue order, until limit
// articles are taken or every queue is drained. Queues are consumed in place.
func roundRobin(queues [][]types.Article, limit int) []types.Article {
	out := make([]types.Article, 0, limit)
	for len(out) < limit {
		progressed := false
		for i := range queues {
			if len(queues[i]) == 0 {
				continue
			}
			out = append(out, queues[i][0])
			queues[i] = queues[i][1:]
			progressed = true
			if len(out) >= limit {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

func (a *Aggregator) shuffleArticles(articles []types.Article) {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	a.rng.Shuffle(len(articles), func(i, j int) {
		articles[i], articles[j] = articles[j], articles[i]
	})
}
