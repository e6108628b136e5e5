package biz

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/search/cache"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/provider"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

// defaultStoreTimeout bounds a background cache write after the response
// has already been returned to the caller.
const defaultStoreTimeout = 30 * time.Second

// ResponseCache is the semantic cache of whole responses.
type ResponseCache interface {
	Get(ctx context.Context, query string) (*types.SearchResponse, bool)
	Set(ctx context.Context, query string, response *types.SearchResponse) error
}

// PageStore persists extracted page details from a finished response.
type PageStore interface {
	Store(ctx context.Context, pages []*cache.PageDetail)
}

// SearchUseCase is the top-level orchestrator: semantic cache lookup,
// provider search, enrichment, and asynchronous cache population.
type SearchUseCase struct {
	providers map[types.ProviderID]provider.Provider
	order     []types.ProviderID
	responses ResponseCache
	pages     PageStore
	enricher  *Enricher
	logger    *zap.Logger

	bg sync.WaitGroup // in-flight background cache writes
}

// NewSearchUseCase wires the orchestrator. Providers keep the given order;
// the first one serves requests that do not name a provider.
func NewSearchUseCase(providers []provider.Provider, responses ResponseCache, pages PageStore, enricher *Enricher, logger *zap.Logger) (*SearchUseCase, error) {
	if len(providers) == 0 {
		return nil, types.ErrNoProvidersConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byID := make(map[types.ProviderID]provider.Provider, len(providers))
	order := make([]types.ProviderID, 0, len(providers))
	for _, p := range providers {
		if _, dup := byID[p.GetID()]; dup {
			continue
		}
		byID[p.GetID()] = p
		order = append(order, p.GetID())
	}

	return &SearchUseCase{
		providers: byID,
		order:     order,
		responses: responses,
		pages:     pages,
		enricher:  enricher,
		logger:    logger,
	}, nil
}

// SearchWithCache serves query from the semantic cache when a close enough
// entry exists, otherwise runs a live search and writes the result back to
// both caches without blocking the caller.
func (uc *SearchUseCase) SearchWithCache(ctx context.Context, req *types.SearchRequest, providerID types.ProviderID) (*types.SearchResponse, error) {
	if cached, ok := uc.responses.Get(ctx, req.Query); ok {
		uc.logger.Info("serving cached response",
			zap.String("query", req.Query))
		return cached, nil
	}

	response, err := uc.SearchWithoutCache(ctx, req, providerID)
	if err != nil {
		return nil, err
	}

	uc.storeAsync(response)
	return response, nil
}

// SearchWithoutCache runs a live search and enrichment. Neither cache is
// read or written.
func (uc *SearchUseCase) SearchWithoutCache(ctx context.Context, req *types.SearchRequest, providerID types.ProviderID) (*types.SearchResponse, error) {
	p, err := uc.selectProvider(providerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := p.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	enriched := uc.enricher.Enrich(ctx, req.Query, raw.Results)

	uc.logger.Info("search completed",
		zap.String("query", req.Query),
		zap.String("provider", string(p.GetID())),
		zap.Int("raw_results", len(raw.Results)),
		zap.Int("enriched_results", len(enriched)))

	return &types.SearchResponse{
		Query:    req.Query,
		Results:  enriched,
		Took:     time.Since(start).Milliseconds(),
		Provider: p.GetID(),
	}, nil
}

// Drain waits for in-flight background cache writes, up to ctx's deadline.
// Called during shutdown so pending writes are not lost.
func (uc *SearchUseCase) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.bg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Providers returns the configured provider IDs in selection order.
func (uc *SearchUseCase) Providers() []types.ProviderID {
	return uc.order
}

func (uc *SearchUseCase) selectProvider(id types.ProviderID) (provider.Provider, error) {
	if id == "" || id == types.ProviderAuto {
		return uc.providers[uc.order[0]], nil
	}
	p, ok := uc.providers[id]
	if !ok {
		return nil, types.ErrProviderNotFound
	}
	return p, nil
}

// storeAsync writes the finished response into both caches in the
// background. Failures are logged, never surfaced to the caller. Drain
// waits for these writes at shutdown.
func (uc *SearchUseCase) storeAsync(response *types.SearchResponse) {
	uc.bg.Add(1)
	go func() {
		defer uc.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), defaultStoreTimeout)
		defer cancel()

		if err := uc.responses.Set(ctx, response.Query, response); err != nil {
			uc.logger.Warn("failed to cache response",
				zap.String("query", response.Query),
				zap.Error(err))
		}

		now := time.Now()
		pages := make([]*cache.PageDetail, 0, len(response.Results))
		for _, r := range response.Results {
			if r.Details == "" {
				continue
			}
			pages = append(pages, &cache.PageDetail{
				URL:       r.URL,
				Details:   r.Details,
				CreatedAt: now,
			})
		}
		uc.pages.Store(ctx, pages)
	}()
}
