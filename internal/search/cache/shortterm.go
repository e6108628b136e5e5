package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/search/embedding"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

const (
	// DefaultSimilarityThreshold is the minimum cosine similarity between
	// the incoming query and a cached query for the entry to count as a hit.
	DefaultSimilarityThreshold = 0.9

	// DefaultTTL is how long a cached response stays servable.
	DefaultTTL = time.Hour

	// DefaultMaxEntryBytes caps the serialized response payload. It must
	// not exceed the store's response column capacity (the Milvus VarChar
	// field holds 65535 characters).
	DefaultMaxEntryBytes = 65535
)

// Entry is one cached response in the vector store.
type Entry struct {
	ID        string
	Query     string
	Embedding []float32
	Response  string // serialized SearchResponse
	CreatedAt int64  // unix seconds
	ExpiresAt int64  // unix seconds
}

// VectorStore persists entries and finds the one nearest to a query vector.
type VectorStore interface {
	// Insert stores a new entry.
	Insert(ctx context.Context, entry *Entry) error

	// SearchNearest returns the non-expired entry closest to vector, or
	// found=false when the store holds none. Score follows the cosine
	// metric: higher means more similar.
	SearchNearest(ctx context.Context, vector []float32, now int64) (entry *Entry, score float32, found bool, err error)
}

// ShortTermConfig holds semantic cache settings.
type ShortTermConfig struct {
	SimilarityThreshold float32       `mapstructure:"similarity_threshold"`
	TTL                 time.Duration `mapstructure:"ttl"`
	MaxEntryBytes       int           `mapstructure:"max_entry_bytes"`
}

// SetDefaults fills in zero-valued fields.
func (c *ShortTermConfig) SetDefaults() {
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxEntryBytes <= 0 {
		c.MaxEntryBytes = DefaultMaxEntryBytes
	}
}

// ShortTerm is the semantic response cache. Queries are matched by
// embedding similarity, so a rephrased query can reuse a recent response.
type ShortTerm struct {
	store    VectorStore
	embedder embedding.Embedder
	config   ShortTermConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewShortTerm creates a semantic cache over the given store and embedder.
func NewShortTerm(store VectorStore, embedder embedding.Embedder, config ShortTermConfig, logger *zap.Logger) *ShortTerm {
	config.SetDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShortTerm{
		store:    store,
		embedder: embedder,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the cached response for a query semantically close enough to
// query, or ok=false on a miss. Embedding or store failures degrade to a
// miss so the caller falls through to a live search.
func (s *ShortTerm) Get(ctx context.Context, query string) (*types.SearchResponse, bool) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("cache lookup: embedding failed", zap.Error(err))
		return nil, false
	}

	entry, score, found, err := s.store.SearchNearest(ctx, vector, s.now().Unix())
	if err != nil {
		s.logger.Warn("cache lookup: vector search failed", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	if score < s.config.SimilarityThreshold {
		s.logger.Debug("cache lookup: nearest entry below threshold",
			zap.Float32("score", score),
			zap.Float32("threshold", s.config.SimilarityThreshold))
		return nil, false
	}

	var response types.SearchResponse
	if err := json.Unmarshal([]byte(entry.Response), &response); err != nil {
		s.logger.Warn("cache lookup: corrupt cached response",
			zap.String("entry_id", entry.ID),
			zap.Error(err))
		return nil, false
	}

	s.logger.Debug("cache hit",
		zap.String("query", query),
		zap.String("cached_query", entry.Query),
		zap.Float32("score", score))
	return &response, true
}

// Set stores a response for later semantically-similar queries.
func (s *ShortTerm) Set(ctx context.Context, query string, response *types.SearchResponse) error {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	payload, err := s.encodeBounded(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	now := s.now()
	entry := &Entry{
		ID:        uuid.NewString(),
		Query:     query,
		Embedding: vector,
		Response:  payload,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.config.TTL).Unix(),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}
	return nil
}

// encodeBounded serializes response within MaxEntryBytes so the payload
// never overflows the store's response column. Oversized responses get
// their per-result Details truncated; the caller's response is not touched.
func (s *ShortTerm) encodeBounded(response *types.SearchResponse) (string, error) {
	payload, err := json.Marshal(response)
	if err != nil {
		return "", err
	}
	if len(payload) <= s.config.MaxEntryBytes {
		return string(payload), nil
	}

	clone := *response
	clone.Results = make([]*types.SearchResult, len(response.Results))
	for i, r := range response.Results {
		cp := *r
		clone.Results[i] = &cp
	}

	detailCap := s.config.MaxEntryBytes
	if n := len(clone.Results); n > 0 {
		detailCap /= n
	}
	for detailCap > 0 {
		for i, r := range response.Results {
			clone.Results[i].Details = truncateBytes(r.Details, detailCap)
		}
		payload, err = json.Marshal(&clone)
		if err != nil {
			return "", err
		}
		if len(payload) <= s.config.MaxEntryBytes {
			s.logger.Debug("cached response details truncated",
				zap.String("query", clone.Query),
				zap.Int("detail_cap", detailCap))
			return string(payload), nil
		}
		// JSON escaping inflates the estimate; tighten and retry.
		detailCap /= 2
	}

	for i := range clone.Results {
		clone.Results[i].Details = ""
	}
	payload, err = json.Marshal(&clone)
	if err != nil {
		return "", err
	}
	if len(payload) > s.config.MaxEntryBytes {
		return "", fmt.Errorf("response exceeds cache entry limit of %d bytes", s.config.MaxEntryBytes)
	}
	return string(payload), nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
