package milvus

import (
	"context"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// SearchOptions configures a vector search
type SearchOptions struct {
	OutputFields []string
	Expr         string // boolean filter applied before the ANN search
}

// SearchHit is one row of a vector search result
type SearchHit struct {
	Score  float32
	Fields map[string]interface{}
}

// SearchVector runs an ANN search for a single query vector and returns
// the topK closest rows. Scores follow the collection's metric: for
// COSINE, higher means more similar.
func (c *Client) SearchVector(ctx context.Context, collectionName, vectorField string, vector []float32, topK int, opts *SearchOptions) ([]SearchHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if collectionName == "" {
		return nil, ErrInvalidCollectionName
	}
	if vectorField == "" {
		return nil, ErrInvalidFieldName
	}
	if len(vector) == 0 {
		return nil, ErrInvalidVectorData
	}

	searchOpt := milvusclient.NewSearchOption(collectionName, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(vectorField)

	if opts != nil {
		if len(opts.OutputFields) > 0 {
			searchOpt.WithOutputFields(opts.OutputFields...)
		}
		if opts.Expr != "" {
			searchOpt.WithFilter(opts.Expr)
		}
	}

	var resultSets []milvusclient.ResultSet
	err := c.execWithRetry(ctx, "SearchVector", func(ctx context.Context) error {
		var err error
		resultSets, err = c.client.Search(ctx, searchOpt)
		return err
	})
	if err != nil {
		c.logger.Error("failed to search",
			zap.String("collection", collectionName),
			zap.String("vector_field", vectorField),
			zap.Error(err))
		return nil, WrapError("SearchVector", err, collectionName, vectorField)
	}

	if len(resultSets) == 0 {
		return nil, nil
	}

	rs := resultSets[0]
	hits := make([]SearchHit, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		hit := SearchHit{
			Score:  rs.Scores[i],
			Fields: make(map[string]interface{}),
		}
		if opts != nil {
			for _, fieldName := range opts.OutputFields {
				if col := rs.GetColumn(fieldName); col != nil {
					val, err := col.Get(i)
					if err == nil {
						hit.Fields[fieldName] = val
					}
				}
			}
		}
		hits = append(hits, hit)
	}

	return hits, nil
}
