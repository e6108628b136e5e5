package biz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/search/cache"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/provider"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

// fakeProvider returns canned results and counts calls.
type fakeProvider struct {
	id      types.ProviderID
	results []*types.SearchResult
	err     error

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	results := make([]*types.SearchResult, len(f.results))
	for i, r := range f.results {
		cp := *r
		results[i] = &cp
	}
	return &types.SearchResponse{Query: req.Query, Results: results, Provider: f.id}, nil
}

func (f *fakeProvider) GetID() types.ProviderID { return f.id }
func (f *fakeProvider) GetName() string         { return string(f.id) }
func (f *fakeProvider) Validate() error         { return nil }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeResponseCache is an exact-match stand-in for the semantic cache.
type fakeResponseCache struct {
	mu        sync.Mutex
	responses map[string]*types.SearchResponse
	setErr    error
}

func newFakeResponseCache() *fakeResponseCache {
	return &fakeResponseCache{responses: make(map[string]*types.SearchResponse)}
}

func (f *fakeResponseCache) Get(ctx context.Context, query string) (*types.SearchResponse, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.responses[query]
	return r, ok
}

func (f *fakeResponseCache) Set(ctx context.Context, query string, response *types.SearchResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.responses[query] = response
	return nil
}

type fakePageStore struct {
	mu    sync.Mutex
	pages []*cache.PageDetail
}

func (f *fakePageStore) Store(ctx context.Context, pages []*cache.PageDetail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, pages...)
}

func (f *fakePageStore) stored() []*cache.PageDetail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*cache.PageDetail(nil), f.pages...)
}

type useCaseFixture struct {
	uc        *SearchUseCase
	provider  *fakeProvider
	responses *fakeResponseCache
	pages     *fakePageStore
	fetcher   *fakeFetcher
}

func newFixture(t *testing.T, results []*types.SearchResult, hang map[string]bool) *useCaseFixture {
	t.Helper()

	pages := make(map[string]string)
	for _, r := range results {
		pages[r.URL] = "page body for " + r.URL
	}
	fetcher := &fakeFetcher{pages: pages, hang: hang}
	enricher := NewEnricher(
		&fakeDetailCache{},
		fetcher,
		&fakeExtractor{},
		&fakeSummarizer{},
		testConfig(),
		zap.NewNop(),
	)

	p := &fakeProvider{id: types.ProviderSearXNG, results: results}
	responses := newFakeResponseCache()
	store := &fakePageStore{}

	uc, err := NewSearchUseCase([]provider.Provider{p}, responses, store, enricher, zap.NewNop())
	require.NoError(t, err)

	return &useCaseFixture{uc: uc, provider: p, responses: responses, pages: store, fetcher: fetcher}
}

func TestSearchAllResultsEnriched(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1", "https://a.test/2", "https://a.test/3"), nil)

	resp, err := fx.uc.SearchWithCache(context.Background(), &types.SearchRequest{Query: "go worker pools"}, types.ProviderAuto)
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	for _, r := range resp.Results {
		assert.NotEmpty(t, r.Details)
		assert.NotEmpty(t, r.Answer)
	}
	assert.Equal(t, types.ProviderSearXNG, resp.Provider)
}

func TestSearchDropsTimedOutResult(t *testing.T) {
	fx := newFixture(t,
		rawResults("https://a.test/1", "https://a.test/2", "https://a.test/3"),
		map[string]bool{"https://a.test/2": true})

	resp, err := fx.uc.SearchWithCache(context.Background(), &types.SearchRequest{Query: "q"}, types.ProviderAuto)
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://a.test/1", resp.Results[0].URL)
	assert.Equal(t, "https://a.test/3", resp.Results[1].URL)
}

func TestSearchSecondCallServedFromCache(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1"), nil)
	ctx := context.Background()
	req := &types.SearchRequest{Query: "golang context"}

	first, err := fx.uc.SearchWithCache(ctx, req, types.ProviderAuto)
	require.NoError(t, err)

	// The cache write is asynchronous; wait for it before the second call.
	drainCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, fx.uc.Drain(drainCtx))

	second, err := fx.uc.SearchWithCache(ctx, req, types.ProviderAuto)
	require.NoError(t, err)

	assert.Equal(t, 1, fx.provider.callCount())
	assert.Equal(t, first.Results, second.Results)
}

func TestSearchWithoutCacheNeverTouchesCaches(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1"), nil)
	ctx := context.Background()
	req := &types.SearchRequest{Query: "q"}

	_, err := fx.uc.SearchWithoutCache(ctx, req, types.ProviderAuto)
	require.NoError(t, err)
	_, err = fx.uc.SearchWithoutCache(ctx, req, types.ProviderAuto)
	require.NoError(t, err)

	assert.Equal(t, 2, fx.provider.callCount())
	assert.Empty(t, fx.responses.responses)
	assert.Empty(t, fx.pages.stored())
}

func TestSearchStoresPagesInBackground(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1", "https://a.test/2"), nil)
	ctx := context.Background()

	_, err := fx.uc.SearchWithCache(ctx, &types.SearchRequest{Query: "q"}, types.ProviderAuto)
	require.NoError(t, err)

	drainCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, fx.uc.Drain(drainCtx))

	stored := fx.pages.stored()
	require.Len(t, stored, 2)
	for _, p := range stored {
		assert.NotEmpty(t, p.Details)
	}
}

func TestSearchCacheWriteFailureIsSwallowed(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1"), nil)
	fx.responses.setErr = errors.New("cache down")
	ctx := context.Background()

	resp, err := fx.uc.SearchWithCache(ctx, &types.SearchRequest{Query: "q"}, types.ProviderAuto)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)

	drainCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, fx.uc.Drain(drainCtx))
}

func TestSearchProviderFailureIsFatal(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1"), nil)
	fx.provider.err = &types.ProviderError{Provider: "searxng", Code: "HTTP_500", Message: "upstream error"}

	_, err := fx.uc.SearchWithCache(context.Background(), &types.SearchRequest{Query: "q"}, types.ProviderAuto)
	require.Error(t, err)

	var perr *types.ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestSearchUnknownProvider(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1"), nil)

	_, err := fx.uc.SearchWithCache(context.Background(), &types.SearchRequest{Query: "q"}, types.ProviderID("bing"))
	assert.ErrorIs(t, err, types.ErrProviderNotFound)
}

func TestSearchAutoSelectsFirstProvider(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1"), nil)

	resp, err := fx.uc.SearchWithoutCache(context.Background(), &types.SearchRequest{Query: "q"}, "")
	require.NoError(t, err)
	assert.Equal(t, types.ProviderSearXNG, resp.Provider)
}

func TestNewSearchUseCaseRequiresProviders(t *testing.T) {
	_, err := NewSearchUseCase(nil, newFakeResponseCache(), &fakePageStore{}, nil, zap.NewNop())
	assert.ErrorIs(t, err, types.ErrNoProvidersConfigured)
}

func TestSearchScenarioCachedDetailsSkipFetch(t *testing.T) {
	results := rawResults("https://a.test/known")
	fetcher := &fakeFetcher{pages: map[string]string{}}
	enricher := NewEnricher(
		&fakeDetailCache{details: map[string]string{"https://a.test/known": "stored page text"}},
		fetcher,
		&fakeExtractor{},
		&fakeSummarizer{},
		testConfig(),
		zap.NewNop(),
	)
	p := &fakeProvider{id: types.ProviderGoogle, results: results}
	uc, err := NewSearchUseCase([]provider.Provider{p}, newFakeResponseCache(), &fakePageStore{}, enricher, zap.NewNop())
	require.NoError(t, err)

	resp, err := uc.SearchWithoutCache(context.Background(), &types.SearchRequest{Query: "q"}, types.ProviderAuto)
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "stored page text", resp.Results[0].Details)
	assert.NotEmpty(t, resp.Results[0].Answer)
	assert.Empty(t, fetcher.fetched)
}

func TestSearchManyConcurrentRequests(t *testing.T) {
	fx := newFixture(t, rawResults("https://a.test/1"), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := &types.SearchRequest{Query: fmt.Sprintf("query %d", i)}
			_, err := fx.uc.SearchWithCache(ctx, req, types.ProviderAuto)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, fx.uc.Drain(drainCtx))
}
