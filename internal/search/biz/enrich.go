package biz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

// PageFetcher downloads a result page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor turns fetched HTML into readable text.
type TextExtractor interface {
	Extract(ctx context.Context, url string, html []byte) (string, error)
}

// Summarizer generates a concise answer to query from an enriched result.
type Summarizer interface {
	Summarize(ctx context.Context, query string, result *types.SearchResult) (string, error)
}

// DetailCache is the URL-keyed store of previously extracted page text.
type DetailCache interface {
	Lookup(ctx context.Context, urls []string) map[string]string
}

// EnrichConfig holds the per-stage timeout budgets of the pipeline.
type EnrichConfig struct {
	CacheTimeout     time.Duration `mapstructure:"cache_timeout"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	ExtractTimeout   time.Duration `mapstructure:"extract_timeout"`
	SummarizeTimeout time.Duration `mapstructure:"summarize_timeout"`
	MaxJitter        time.Duration `mapstructure:"max_jitter"`
}

// SetDefaults fills in zero-valued fields.
func (c *EnrichConfig) SetDefaults() {
	if c.CacheTimeout <= 0 {
		c.CacheTimeout = 2 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = 5 * time.Second
	}
	if c.SummarizeTimeout <= 0 {
		c.SummarizeTimeout = 30 * time.Second
	}
	if c.MaxJitter < 0 {
		c.MaxJitter = 0
	}
}

// Enricher runs the per-result enrichment pipeline: cached-details lookup,
// fetch and extract on a miss, then summarization. Each result is processed
// in its own goroutine with per-stage timeouts, and a result failing any
// stage is dropped without affecting its siblings.
type Enricher struct {
	details    DetailCache
	fetcher    PageFetcher
	extractor  TextExtractor
	summarizer Summarizer
	config     EnrichConfig
	logger     *zap.Logger
}

// NewEnricher creates an enrichment pipeline.
func NewEnricher(details DetailCache, fetcher PageFetcher, extractor TextExtractor, summarizer Summarizer, config EnrichConfig, logger *zap.Logger) *Enricher {
	config.SetDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		details:    details,
		fetcher:    fetcher,
		extractor:  extractor,
		summarizer: summarizer,
		config:     config,
		logger:     logger,
	}
}

// Enrich processes all results concurrently and returns the successful
// subset in the original order. Failed results are logged and dropped.
// Each result is mutated only by the goroutine enriching it.
func (e *Enricher) Enrich(ctx context.Context, query string, results []*types.SearchResult) []*types.SearchResult {
	if len(results) == 0 {
		return nil
	}

	succeeded := make([]bool, len(results))

	var wg sync.WaitGroup
	for i, result := range results {
		wg.Add(1)
		go func(i int, result *types.SearchResult) {
			defer wg.Done()
			if err := e.enrichOne(ctx, query, result); err != nil {
				e.logger.Debug("result dropped from response",
					zap.String("url", result.URL),
					zap.Error(err))
				return
			}
			succeeded[i] = true
		}(i, result)
	}
	wg.Wait()

	out := make([]*types.SearchResult, 0, len(results))
	for i, result := range results {
		if succeeded[i] {
			out = append(out, result)
		}
	}
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, query string, result *types.SearchResult) error {
	if err := e.sleepJitter(ctx); err != nil {
		return err
	}

	details, hit := e.cachedDetails(ctx, result.URL)
	if !hit {
		var err error
		details, err = e.fetchAndExtract(ctx, result.URL)
		if err != nil {
			return err
		}
	}
	result.Details = details

	sctx, cancel := context.WithTimeout(ctx, e.config.SummarizeTimeout)
	defer cancel()
	answer, err := e.summarizer.Summarize(sctx, query, result)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	result.Answer = answer
	return nil
}

func (e *Enricher) cachedDetails(ctx context.Context, url string) (string, bool) {
	cctx, cancel := context.WithTimeout(ctx, e.config.CacheTimeout)
	defer cancel()

	found := e.details.Lookup(cctx, []string{url})
	details, ok := found[url]
	return details, ok && details != ""
}

func (e *Enricher) fetchAndExtract(ctx context.Context, url string) (string, error) {
	fctx, cancel := context.WithTimeout(ctx, e.config.FetchTimeout)
	defer cancel()
	html, err := e.fetcher.Fetch(fctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}

	xctx, cancel := context.WithTimeout(ctx, e.config.ExtractTimeout)
	defer cancel()
	text, err := e.extractor.Extract(xctx, url, html)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	return text, nil
}

// sleepJitter delays a result's pipeline by a random amount so a burst of
// provider results does not hit downstream services at the same instant.
func (e *Enricher) sleepJitter(ctx context.Context) error {
	if e.config.MaxJitter <= 0 {
		return nil
	}
	delay := time.Duration(rand.Int63n(int64(e.config.MaxJitter)))
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
