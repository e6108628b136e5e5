package milvus

import (
	"context"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// MetricType is the vector distance metric
type MetricType string

const (
	MetricTypeCosine MetricType = "COSINE"
	MetricTypeL2     MetricType = "L2"
	MetricTypeIP     MetricType = "IP"
)

// IndexOptions configures the vector index created for a collection
type IndexOptions struct {
	MetricType MetricType
	NList      int // IVF_FLAT cluster count
}

// HasCollection reports whether the named collection exists.
func (c *Client) HasCollection(ctx context.Context, collectionName string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false, ErrClientClosed
	}
	if collectionName == "" {
		return false, ErrInvalidCollectionName
	}

	var exists bool
	err := c.execWithRetry(ctx, "HasCollection", func(ctx context.Context) error {
		var err error
		exists, err = c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(collectionName))
		return err
	})
	if err != nil {
		return false, WrapError("HasCollection", err, collectionName, "")
	}
	return exists, nil
}

// CreateCollection creates a collection from the given schema.
func (c *Client) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	if schema == nil || schema.CollectionName == "" {
		return ErrInvalidSchema
	}

	createOpt := milvusclient.NewCreateCollectionOption(schema.CollectionName, schema)

	err := c.execWithRetry(ctx, "CreateCollection", func(ctx context.Context) error {
		return c.client.CreateCollection(ctx, createOpt)
	})
	if err != nil {
		c.logger.Error("failed to create collection",
			zap.String("collection", schema.CollectionName),
			zap.Error(err))
		return WrapError("CreateCollection", err, schema.CollectionName, "")
	}

	c.logger.Info("collection created successfully",
		zap.String("collection", schema.CollectionName))
	return nil
}

// CreateIndex creates an IVF_FLAT vector index on fieldName.
func (c *Client) CreateIndex(ctx context.Context, collectionName, fieldName string, opts *IndexOptions) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	if collectionName == "" {
		return ErrInvalidCollectionName
	}
	if fieldName == "" {
		return ErrInvalidFieldName
	}

	metric := entity.COSINE
	nlist := 128
	if opts != nil {
		if opts.MetricType != "" {
			metric = entity.MetricType(opts.MetricType)
		}
		if opts.NList > 0 {
			nlist = opts.NList
		}
	}

	idx := index.NewIvfFlatIndex(metric, nlist)
	createOpt := milvusclient.NewCreateIndexOption(collectionName, fieldName, idx)

	err := c.execWithRetry(ctx, "CreateIndex", func(ctx context.Context) error {
		task, err := c.client.CreateIndex(ctx, createOpt)
		if err != nil {
			return err
		}
		return task.Await(ctx)
	})
	if err != nil {
		return WrapError("CreateIndex", err, collectionName, fieldName)
	}

	c.logger.Info("index created successfully",
		zap.String("collection", collectionName),
		zap.String("field", fieldName))
	return nil
}

// LoadCollection loads a collection into memory and waits for completion.
func (c *Client) LoadCollection(ctx context.Context, collectionName string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	if collectionName == "" {
		return ErrInvalidCollectionName
	}

	err := c.execWithRetry(ctx, "LoadCollection", func(ctx context.Context) error {
		task, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(collectionName))
		if err != nil {
			return err
		}
		return task.Await(ctx)
	})
	if err != nil {
		return WrapError("LoadCollection", err, collectionName, "")
	}
	return nil
}
