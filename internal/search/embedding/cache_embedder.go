package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/lk2023060901/ai-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

// CacheEmbedder decorates an Embedder with a Redis vector cache, so the
// identical text is never embedded twice within the TTL window.
type CacheEmbedder struct {
	embedder Embedder
	cache    *redis.Client
	ttl      time.Duration
	prefix   string
	logger   *logger.Logger
}

// CacheEmbedderConfig configures the cache decorator
type CacheEmbedderConfig struct {
	TTL    time.Duration
	Prefix string
}

// NewCacheEmbedder creates a caching Embedder decorator
func NewCacheEmbedder(embedder Embedder, cache *redis.Client, cfg *CacheEmbedderConfig, lgr *logger.Logger) *CacheEmbedder {
	if cfg == nil {
		cfg = &CacheEmbedderConfig{}
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "search:embedding:"
	}
	if lgr == nil {
		lgr = logger.L()
	}

	return &CacheEmbedder{
		embedder: embedder,
		cache:    cache,
		ttl:      cfg.TTL,
		prefix:   cfg.Prefix,
		logger:   lgr,
	}
}

// Embed generates the vector for a single text, consulting the cache first.
// Cache failures fall through to the underlying embedder.
func (e *CacheEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	cacheKey := e.cacheKey(text)

	if e.cache != nil {
		if cached, err := e.getFromCache(ctx, cacheKey); err == nil {
			e.logger.Debug("embedding cache hit", zap.String("cache_key", cacheKey))
			return cached, nil
		}
	}

	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.putInCache(ctx, cacheKey, vector); err != nil {
			e.logger.Warn("failed to cache embedding",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
	}

	return vector, nil
}

// BatchEmbed delegates to the underlying embedder without caching.
func (e *CacheEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embedder.BatchEmbed(ctx, texts)
}

// Dimension returns the vector dimension
func (e *CacheEmbedder) Dimension() int {
	return e.embedder.Dimension()
}

// Model returns the model name
func (e *CacheEmbedder) Model() string {
	return e.embedder.Model()
}

func (e *CacheEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(e.embedder.Model() + ":" + text))
	return e.prefix + hex.EncodeToString(sum[:])
}

func (e *CacheEmbedder) getFromCache(ctx context.Context, key string) ([]float32, error) {
	val, err := e.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var vector []float32
	if err := json.Unmarshal([]byte(val), &vector); err != nil {
		return nil, err
	}
	return vector, nil
}

func (e *CacheEmbedder) putInCache(ctx context.Context, key string, vector []float32) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return err
	}
	return e.cache.Set(ctx, key, data, e.ttl)
}
