package milvus

import (
	"context"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// Insert inserts column-based data into a collection.
func (c *Client) Insert(ctx context.Context, collectionName string, data ...column.Column) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	if collectionName == "" {
		return ErrInvalidCollectionName
	}
	if len(data) == 0 {
		return ErrInvalidData
	}

	insertOpt := milvusclient.NewColumnBasedInsertOption(collectionName, data...)

	var result milvusclient.InsertResult
	err := c.execWithRetry(ctx, "Insert", func(ctx context.Context) error {
		var err error
		result, err = c.client.Insert(ctx, insertOpt)
		return err
	})
	if err != nil {
		c.logger.Error("failed to insert data",
			zap.String("collection", collectionName),
			zap.Error(err))
		return WrapError("Insert", err, collectionName, "")
	}

	c.logger.Debug("data inserted successfully",
		zap.String("collection", collectionName),
		zap.Int64("count", result.InsertCount))
	return nil
}
