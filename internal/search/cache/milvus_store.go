package cache

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/pkg/milvus"
)

const (
	defaultCollection = "search_cache"

	fieldID        = "id"
	fieldQuery     = "query"
	fieldEmbedding = "embedding"
	fieldResponse  = "response"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// MilvusStoreConfig holds vector store settings.
type MilvusStoreConfig struct {
	Collection string `mapstructure:"collection"`
	Dimension  int    `mapstructure:"dimension"`
	NList      int    `mapstructure:"nlist"`
}

// SetDefaults fills in zero-valued fields.
func (c *MilvusStoreConfig) SetDefaults() {
	if c.Collection == "" {
		c.Collection = defaultCollection
	}
	if c.NList <= 0 {
		c.NList = 128
	}
}

// MilvusStore implements VectorStore on a Milvus collection. Expiry is a
// filter expression at query time, so the index never serves stale rows.
type MilvusStore struct {
	client *milvus.Client
	config MilvusStoreConfig
	logger *zap.Logger
}

// NewMilvusStore creates the store and bootstraps its collection.
func NewMilvusStore(ctx context.Context, client *milvus.Client, config MilvusStoreConfig, logger *zap.Logger) (*MilvusStore, error) {
	if client == nil {
		return nil, fmt.Errorf("milvus client is required")
	}
	if config.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension is required")
	}
	config.SetDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MilvusStore{client: client, config: config, logger: logger}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap collection %s: %w", config.Collection, err)
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.config.Collection)
	if err != nil {
		return err
	}

	if !exists {
		schema := entity.NewSchema().
			WithName(s.config.Collection).
			WithField(entity.NewField().
				WithName(fieldID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(64).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(fieldQuery).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(4096)).
			WithField(entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(s.config.Dimension))).
			WithField(entity.NewField().
				WithName(fieldResponse).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(65535)).
			WithField(entity.NewField().
				WithName(fieldCreatedAt).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().
				WithName(fieldExpiresAt).
				WithDataType(entity.FieldTypeInt64))

		if err := s.client.CreateCollection(ctx, schema); err != nil {
			return err
		}
		if err := s.client.CreateIndex(ctx, s.config.Collection, fieldEmbedding, &milvus.IndexOptions{
			MetricType: milvus.MetricTypeCosine,
			NList:      s.config.NList,
		}); err != nil {
			return err
		}
	}

	return s.client.LoadCollection(ctx, s.config.Collection)
}

// Insert stores one cache entry.
func (s *MilvusStore) Insert(ctx context.Context, entry *Entry) error {
	return s.client.Insert(ctx, s.config.Collection,
		column.NewColumnVarChar(fieldID, []string{entry.ID}),
		column.NewColumnVarChar(fieldQuery, []string{entry.Query}),
		column.NewColumnFloatVector(fieldEmbedding, s.config.Dimension, [][]float32{entry.Embedding}),
		column.NewColumnVarChar(fieldResponse, []string{entry.Response}),
		column.NewColumnInt64(fieldCreatedAt, []int64{entry.CreatedAt}),
		column.NewColumnInt64(fieldExpiresAt, []int64{entry.ExpiresAt}),
	)
}

// SearchNearest returns the closest non-expired entry to vector.
func (s *MilvusStore) SearchNearest(ctx context.Context, vector []float32, now int64) (*Entry, float32, bool, error) {
	hits, err := s.client.SearchVector(ctx, s.config.Collection, fieldEmbedding, vector, 1, &milvus.SearchOptions{
		OutputFields: []string{fieldID, fieldQuery, fieldResponse},
		Expr:         fmt.Sprintf("%s > %d", fieldExpiresAt, now),
	})
	if err != nil {
		return nil, 0, false, err
	}
	if len(hits) == 0 {
		return nil, 0, false, nil
	}

	hit := hits[0]
	entry := &Entry{
		ID:       stringField(hit.Fields, fieldID),
		Query:    stringField(hit.Fields, fieldQuery),
		Response: stringField(hit.Fields, fieldResponse),
	}
	return entry, hit.Score, true, nil
}

func stringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
