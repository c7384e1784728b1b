package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"libercare/aggregator"
	"libercare/cache"
	"libercare/common"
	"libercare/config"
	"libercare/search"
	"libercare/state"
	"libercare/types"
)

type fakeAggregator struct {
	mu       sync.Mutex
	articles map[types.Language][]types.Article
	errs     map[types.Language]error
	calls    []types.Language
	block    chan struct{}
}

func newFakeAggregator() *fakeAggregator {
	return &fakeAggregator{
		articles: map[types.Language][]types.Article{},
		errs:     map[types.Language]error{},
	}
}

func (f *fakeAggregator) AggregateWithStats(ctx context.Context, lang types.Language) ([]types.Article, aggregator.Stats, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lang)
	stats := aggregator.Stats{Searches: len(types.AllTopics())}
	if err := f.errs[lang]; err != nil {
		return nil, stats, err
	}
	return f.articles[lang], stats, nil
}

// outageSearcher returns trusted en results until it is told to fail
type outageSearcher struct {
	mu      sync.Mutex
	failing bool
	calls   int
	ids     map[string]int
}

func (s *outageSearcher) Search(ctx context.Context, req search.Request) ([]types.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failing {
		return nil, &search.StatusError{StatusCode: 503, Body: "service unavailable"}
	}
	if s.ids == nil {
		s.ids = map[string]int{}
	}
	id, ok := s.ids[req.Query]
	if !ok {
		id = len(s.ids) + 1
		s.ids[req.Query] = id
	}
	return []types.SearchResult{
		{Title: "Health guide", URL: fmt.Sprintf("https://www.healthline.com/topic-%d/1", id)},
		{Title: "Health guide", URL: fmt.Sprintf("https://www.healthline.com/topic-%d/2", id)},
	}, nil
}

func (s *outageSearcher) set(failing bool) (calls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
	return s.calls
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]string
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, meta: map[string]string{}}
}

func (f *fakeObjects) Put(ctx context.Context, bucket, key string, body io.Reader, contentType, cacheControl string) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = b
	f.meta[bucket+"/"+key] = contentType + ";" + cacheControl
	return nil
}

func (f *fakeObjects) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func mustCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	c, err := config.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return c
}

func article(url string) types.Article {
	return types.Article{Title: "t", URL: url, Photo: "p", Topic: types.TopicYoga}
}

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newStateAt(now *time.Time) *state.Manager {
	st := state.NewManager()
	st.SetClock(func() time.Time { return *now })
	return st
}

func TestRunOnceStoresEveryLanguage(t *testing.T) {
	now := fixedNow
	agg := newFakeAggregator()
	agg.articles[types.LanguageFR] = []types.Article{article("https://www.doctissimo.fr/a")}
	agg.articles[types.LanguageEN] = []types.Article{article("https://www.healthline.com/a"), article("https://www.webmd.com/b")}
	objects := newFakeObjects()

	st := newStateAt(&now)
	r := NewRefresher(agg, st, mustCatalog(t), WithPublisher(objects, "bucket", "prod/"))
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if st.GetState() != types.RunStateComplete {
		t.Fatalf("state = %s", st.GetState())
	}
	if len(agg.calls) != 3 {
		t.Fatalf("aggregated %v", agg.calls)
	}
	snap, ok := st.Snapshot(types.LanguageEN)
	if !ok || snap.ArticleCount != 2 {
		t.Fatalf("en snapshot = %+v ok=%v", snap, ok)
	}

	latest, ok := objects.objects["bucket/prod/articles/en/latest.json"]
	if !ok {
		t.Fatalf("latest.json not uploaded; keys: %v", objects.objects)
	}
	var decoded types.Snapshot
	if err := json.Unmarshal(latest, &decoded); err != nil {
		t.Fatalf("decode uploaded snapshot: %v", err)
	}
	if decoded.Language != types.LanguageEN || len(decoded.Articles) != 2 {
		t.Fatalf("uploaded snapshot = %+v", decoded)
	}
	if _, ok := objects.objects["bucket/prod/articles/en/1714521600.json"]; !ok {
		t.Fatalf("bucketed snapshot missing; keys: %v", objects.objects)
	}
	if !strings.HasPrefix(objects.meta["bucket/prod/articles/en/latest.json"], "application/json;") {
		t.Fatalf("content type = %q", objects.meta["bucket/prod/articles/en/latest.json"])
	}
}

func TestRunOnceKeepsPreviousSnapshotOnFailure(t *testing.T) {
	now := fixedNow
	agg := newFakeAggregator()
	agg.articles[types.LanguageRU] = []types.Article{article("https://medportal.ru/a")}
	st := newStateAt(&now)
	r := NewRefresher(agg, st, mustCatalog(t))

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}

	agg.errs[types.LanguageRU] = search.ErrMissingAPIKey
	now = now.Add(13 * time.Hour)
	err := r.RunOnce(context.Background())
	if !errors.Is(err, search.ErrMissingAPIKey) {
		t.Fatalf("expected joined ErrMissingAPIKey, got %v", err)
	}
	if st.GetState() != types.RunStateError {
		t.Fatalf("state = %s", st.GetState())
	}
	snap, ok := st.Snapshot(types.LanguageRU)
	if !ok || snap.ArticleCount != 1 || !snap.FetchedAt.Equal(fixedNow) {
		t.Fatalf("previous snapshot should be kept, got %+v", snap)
	}
}

func TestRunLanguageResolvesUnknown(t *testing.T) {
	agg := newFakeAggregator()
	r := NewRefresher(agg, state.NewManager(), mustCatalog(t))
	if err := r.RunLanguage(context.Background(), "xx"); err != nil {
		t.Fatalf("RunLanguage: %v", err)
	}
	if len(agg.calls) != 1 || agg.calls[0] != types.LanguageFR {
		t.Fatalf("calls = %v", agg.calls)
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	agg := newFakeAggregator()
	agg.block = make(chan struct{})
	st := state.NewManager()
	r := NewRefresher(agg, st, mustCatalog(t))

	done := make(chan error, 1)
	go func() { done <- r.RunLanguage(context.Background(), types.LanguageEN) }()

	deadline := time.Now().Add(2 * time.Second)
	for !st.Running() {
		if time.Now().After(deadline) {
			t.Fatal("first run never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := r.RunOnce(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	close(agg.block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestUploadFailureDoesNotFailRun(t *testing.T) {
	agg := newFakeAggregator()
	objects := newFakeObjects()
	objects.putErr = errors.New("access denied")
	st := state.NewManager()
	r := NewRefresher(agg, st, mustCatalog(t), WithPublisher(objects, "bucket", ""))

	if err := r.RunLanguage(context.Background(), types.LanguageEN); err != nil {
		t.Fatalf("RunLanguage: %v", err)
	}
	if _, ok := st.Snapshot(types.LanguageEN); !ok {
		t.Fatal("snapshot should be stored even when upload fails")
	}
}

func TestArticlesServesFreshThenStale(t *testing.T) {
	now := fixedNow
	agg := newFakeAggregator()
	agg.articles[types.LanguageEN] = []types.Article{article("https://www.healthline.com/a")}
	st := newStateAt(&now)
	r := NewRefresher(agg, st, mustCatalog(t))
	ctx := context.Background()

	snap, stale, err := r.Articles(ctx, types.LanguageEN)
	if err != nil || stale || snap.ArticleCount != 1 {
		t.Fatalf("first Articles: snap=%+v stale=%v err=%v", snap, stale, err)
	}

	now = now.Add(time.Hour)
	if _, _, err := r.Articles(ctx, types.LanguageEN); err != nil {
		t.Fatalf("second Articles: %v", err)
	}
	if len(agg.calls) != 1 {
		t.Fatalf("fresh snapshot should be reused, %d aggregations", len(agg.calls))
	}

	now = now.Add(12 * time.Hour)
	agg.errs[types.LanguageEN] = errors.New("search down")
	snap, stale, err = r.Articles(ctx, types.LanguageEN)
	if err != nil || !stale || snap.ArticleCount != 1 {
		t.Fatalf("stale fallback: snap=%+v stale=%v err=%v", snap, stale, err)
	}
}

func TestArticlesErrorWithoutSnapshot(t *testing.T) {
	agg := newFakeAggregator()
	agg.errs[types.LanguageFR] = search.ErrMissingAPIKey
	r := NewRefresher(agg, state.NewManager(), mustCatalog(t))
	if _, _, err := r.Articles(context.Background(), "de"); !errors.Is(err, search.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestRestoreLoadsPublishedSnapshots(t *testing.T) {
	now := fixedNow
	objects := newFakeObjects()
	agg := newFakeAggregator()
	agg.articles[types.LanguageFR] = []types.Article{article("https://www.doctissimo.fr/a")}
	first := NewRefresher(agg, newStateAt(&now), mustCatalog(t), WithPublisher(objects, "b", ""))
	if err := first.RunLanguage(context.Background(), types.LanguageFR); err != nil {
		t.Fatalf("RunLanguage: %v", err)
	}

	st := state.NewManager()
	second := NewRefresher(newFakeAggregator(), st, mustCatalog(t), WithPublisher(objects, "b", ""))
	if n := second.Restore(context.Background()); n != 1 {
		t.Fatalf("restored %d snapshots; want 1", n)
	}
	snap, ok := st.Snapshot(types.LanguageFR)
	if !ok || snap.ArticleCount != 1 || !snap.FetchedAt.Equal(fixedNow) {
		t.Fatalf("restored snapshot = %+v", snap)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(NewRefresher(newFakeAggregator(), state.NewManager(), mustCatalog(t)))
	if err := s.Start("not a schedule"); err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestSchedulerTickSkipsWhileRunning(t *testing.T) {
	agg := newFakeAggregator()
	st := state.NewManager()
	st.Begin()
	s := NewScheduler(NewRefresher(agg, st, mustCatalog(t)))
	s.tick()
	if len(agg.calls) != 0 {
		t.Fatalf("tick should skip while a run is active, got %v", agg.calls)
	}

	st.Complete()
	s.tick()
	if len(agg.calls) != 3 {
		t.Fatalf("tick should refresh every language, got %v", agg.calls)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(NewRefresher(newFakeAggregator(), state.NewManager(), mustCatalog(t)))
	if err := s.Start(config.DefaultRefreshCron); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(config.DefaultRefreshCron); err == nil {
		t.Fatal("second Start should fail")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStartRunsInBackground(t *testing.T) {
	agg := newFakeAggregator()
	agg.block = make(chan struct{})
	st := state.NewManager()
	r := NewRefresher(agg, st, mustCatalog(t))

	runID, err := r.Start(types.LanguageEN)
	if err != nil || runID == "" {
		t.Fatalf("Start: id=%q err=%v", runID, err)
	}
	if _, err := r.Start(""); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}

	close(agg.block)
	deadline := time.Now().Add(2 * time.Second)
	for st.Running() {
		if time.Now().After(deadline) {
			t.Fatal("background run never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if st.GetState() != types.RunStateComplete {
		t.Fatalf("state = %s", st.GetState())
	}
}

func TestSearchOutageKeepsPreviousSnapshot(t *testing.T) {
	now := fixedNow
	clock := func() time.Time { return now }
	searcher := &outageSearcher{}
	catalog := mustCatalog(t)
	agg := aggregator.New(searcher, cache.NewMemoryStore(), catalog, aggregator.WithClock(clock))
	st := newStateAt(&now)
	r := NewRefresher(agg, st, catalog)
	ctx := context.Background()

	if err := r.RunLanguage(ctx, types.LanguageEN); err != nil {
		t.Fatalf("RunLanguage: %v", err)
	}
	before, ok := st.Snapshot(types.LanguageEN)
	if !ok || before.ArticleCount != config.MaxArticles {
		t.Fatalf("initial snapshot = %+v", before)
	}

	// next cache bucket, provider down
	now = now.Add(13 * time.Hour)
	searcher.set(true)
	err := r.RunLanguage(ctx, types.LanguageEN)
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
	if st.GetState() != types.RunStateError {
		t.Fatalf("state = %s", st.GetState())
	}
	after, ok := st.Snapshot(types.LanguageEN)
	if !ok || after.ArticleCount != before.ArticleCount || !after.FetchedAt.Equal(fixedNow) {
		t.Fatalf("previous snapshot should be kept, got %+v", after)
	}

	snap, stale, err := r.Articles(ctx, types.LanguageEN)
	if err != nil || !stale || snap.ArticleCount != before.ArticleCount {
		t.Fatalf("outage: snap=%+v stale=%v err=%v", snap, stale, err)
	}

	// provider back: the next request searches again instead of serving an empty set
	now = now.Add(time.Hour)
	callsBefore := searcher.set(false)
	snap, stale, err = r.Articles(ctx, types.LanguageEN)
	if err != nil || stale || snap.ArticleCount != config.MaxArticles {
		t.Fatalf("recovery: snap=%+v stale=%v err=%v", snap, stale, err)
	}
	if calls := searcher.set(false); calls <= callsBefore {
		t.Fatalf("recovery should search again, calls %d -> %d", callsBefore, calls)
	}
}

func TestSearchOutageWithoutSnapshotFails(t *testing.T) {
	searcher := &outageSearcher{failing: true}
	catalog := mustCatalog(t)
	agg := aggregator.New(searcher, cache.NewMemoryStore(), catalog)
	st := state.NewManager()
	r := NewRefresher(agg, st, catalog)

	if _, _, err := r.Articles(context.Background(), types.LanguageRU); !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
	if _, ok := st.Snapshot(types.LanguageRU); ok {
		t.Fatal("an outage must not store an empty snapshot")
	}
}
