package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"libercare/aggregator"
	"libercare/cache"
	"libercare/common"
	"libercare/config"
	"libercare/state"
	"libercare/types"
)

// ErrRunInProgress is returned when a refresh is requested while another is running
var ErrRunInProgress = errors.New("refresh already running")

// ErrSearchUnavailable is returned when every topic search of a language failed
var ErrSearchUnavailable = errors.New("every topic search failed")

// Aggregator produces the article set of one language
type Aggregator interface {
	AggregateWithStats(ctx context.Context, lang types.Language) ([]types.Article, aggregator.Stats, error)
}

// ObjectStore is the subset of the S3 wrapper used to publish snapshots
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType, cacheControl string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Refresher aggregates articles per language, keeps the latest snapshot in the
// state manager and optionally publishes snapshots to S3
type Refresher struct {
	aggregator Aggregator
	state      *state.Manager
	catalog    *config.Catalog
	languages  []types.Language
	window     time.Duration

	objects ObjectStore
	bucket  string
	prefix  string
}

// Option configures a Refresher
type Option func(*Refresher)

// WithPublisher enables snapshot uploads to bucket under prefix
func WithPublisher(objects ObjectStore, bucket, prefix string) Option {
	return func(r *Refresher) {
		r.objects = objects
		r.bucket = bucket
		r.prefix = prefix
	}
}

// WithWindow overrides the snapshot freshness window
func WithWindow(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.window = d
		}
	}
}

// NewRefresher creates a refresher for every supported language
func NewRefresher(agg Aggregator, st *state.Manager, catalog *config.Catalog, opts ...Option) *Refresher {
	r := &Refresher{
		aggregator: agg,
		state:      st,
		catalog:    catalog,
		languages:  config.SupportedLanguages(),
		window:     config.CacheWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the state manager the refresher writes to
func (r *Refresher) State() *state.Manager {
	return r.state
}

// RunOnce refreshes every supported language. A failing language keeps its
// previous snapshot; the run ends in the error state when any language failed.
func (r *Refresher) RunOnce(ctx context.Context) error {
	return r.run(ctx, r.languages)
}

// RunLanguage refreshes a single language, or all of them when lang is empty
func (r *Refresher) RunLanguage(ctx context.Context, lang types.Language) error {
	if lang == "" {
		return r.RunOnce(ctx)
	}
	return r.run(ctx, []types.Language{r.catalog.Resolve(lang)})
}

// Start begins a refresh of lang (all languages when empty) and continues it
// in the background. It returns the run id, or ErrRunInProgress.
func (r *Refresher) Start(lang types.Language) (string, error) {
	languages := r.languages
	if lang != "" {
		languages = []types.Language{r.catalog.Resolve(lang)}
	}
	runID, ok := r.state.Begin()
	if !ok {
		return runID, fmt.Errorf("%w (run %s)", ErrRunInProgress, runID)
	}
	go func() {
		if err := r.execute(context.Background(), runID, languages); err != nil {
			log.Printf("Refresh error: %v", err)
		}
	}()
	return runID, nil
}

func (r *Refresher) run(ctx context.Context, languages []types.Language) error {
	runID, ok := r.state.Begin()
	if !ok {
		return fmt.Errorf("%w (run %s)", ErrRunInProgress, runID)
	}
	return r.execute(ctx, runID, languages)
}

// execute performs a run already begun in the state manager
func (r *Refresher) execute(ctx context.Context, runID string, languages []types.Language) error {
	log.Printf("=== Refresh %s: %d language(s) ===", runID, len(languages))

	ctx, cancel := context.WithTimeout(ctx, config.RefreshTimeout)
	defer cancel()

	var errs []error
	for _, lang := range languages {
		if _, err := r.refreshLanguage(ctx, lang); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", lang, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		r.state.SetError(err)
		log.Printf("=== Refresh %s failed: %v ===", runID, err)
		return err
	}
	r.state.Complete()
	log.Printf("=== Refresh %s complete ===", runID)
	return nil
}

// refreshLanguage aggregates one language and stores the result
func (r *Refresher) refreshLanguage(ctx context.Context, lang types.Language) (types.Snapshot, error) {
	articles, stats, err := r.aggregator.AggregateWithStats(ctx, lang)
	if err == nil && stats.AllFailed() {
		// An empty result from an outage must not replace the previous snapshot
		err = fmt.Errorf("%w (%d searches)", ErrSearchUnavailable, stats.Searches)
	}
	if err != nil {
		r.state.AddLog("%s: aggregation failed: %v", lang, err)
		return types.Snapshot{}, err
	}

	snap := r.state.StoreSnapshot(lang, articles)
	r.state.AddLog("%s: stored %d article(s)", lang, snap.ArticleCount)

	if r.objects != nil && r.bucket != "" {
		// Short timeout per upload
		uctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := r.publish(uctx, snap)
		cancel()
		if err != nil {
			// Uploads are best effort; the in-memory snapshot is already stored
			log.Printf("S3 upload failed for %s: %v", lang, err)
			r.state.AddLog("%s: upload failed: %v", lang, err)
		}
	}
	return snap, nil
}

// Articles serves the article snapshot of a language: a fresh stored snapshot
// when available, otherwise a new aggregation, otherwise the stale snapshot.
// stale is true when the returned snapshot is past its window because
// aggregation failed.
func (r *Refresher) Articles(ctx context.Context, lang types.Language) (snap types.Snapshot, stale bool, err error) {
	lang = r.catalog.Resolve(lang)
	if snap, ok := r.state.Fresh(lang, r.window); ok {
		return snap, false, nil
	}

	snap, err = r.refreshLanguage(ctx, lang)
	if err == nil {
		return snap, false, nil
	}
	if previous, ok := r.state.Snapshot(lang); ok {
		log.Printf("Serving stale %s snapshot from %s: %v", lang, previous.FetchedAt.Format(time.RFC3339), err)
		return previous, true, nil
	}
	return types.Snapshot{}, false, err
}

// Restore loads the latest published snapshot of each language into the state
// manager, so a restarted instance serves articles before its first refresh.
func (r *Refresher) Restore(ctx context.Context) int {
	if r.objects == nil || r.bucket == "" {
		return 0
	}
	restored := 0
	for _, lang := range r.languages {
		snap, err := r.fetch(ctx, r.latestKey(lang))
		if err != nil {
			if !common.IsNotFound(err) {
				log.Printf("Warning: failed to restore %s snapshot: %v", lang, err)
			}
			continue
		}
		r.state.PutSnapshot(snap)
		restored++
	}
	log.Printf("Restored %d snapshot(s) from S3", restored)
	return restored
}

func (r *Refresher) latestKey(lang types.Language) string {
	return fmt.Sprintf("%sarticles/%s/latest.json", r.prefix, lang)
}

func (r *Refresher) bucketKey(lang types.Language, at time.Time) string {
	return fmt.Sprintf("%sarticles/%s/%d.json", r.prefix, lang, cache.Bucket(at, r.window))
}

// publish writes the snapshot as latest.json and under its time bucket
func (r *Refresher) publish(ctx context.Context, snap types.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	keys := []struct {
		key          string
		cacheControl string
	}{
		{r.latestKey(snap.Language), "public, max-age=300"},
		{r.bucketKey(snap.Language, snap.FetchedAt), "public, max-age=86400"},
	}
	for _, k := range keys {
		if err := r.objects.Put(ctx, r.bucket, k.key, bytes.NewReader(b), "application/json", k.cacheControl); err != nil {
			return fmt.Errorf("put %s: %w", k.key, err)
		}
	}
	return nil
}

func (r *Refresher) fetch(ctx context.Context, key string) (types.Snapshot, error) {
	body, err := r.objects.Get(ctx, r.bucket, key)
	if err != nil {
		return types.Snapshot{}, err
	}
	defer body.Close()

	var snap types.Snapshot
	if err := json.NewDecoder(body).Decode(&snap); err != nil {
		return types.Snapshot{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return snap, nil
}
