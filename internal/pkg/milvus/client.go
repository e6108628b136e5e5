package milvus

import (
	"context"
	"sync"
	"time"

	"github.com/lk2023060901/ai-search-backend/internal/pkg/logger"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// Client wraps the Milvus SDK client with retry and logging.
// A single Client is shared by all pipeline invocations.
type Client struct {
	cfg    *Config
	client *milvusclient.Client
	logger *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// New connects to a Milvus server.
func New(ctx context.Context, cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapError("New", err, "", "")
	}
	if log == nil {
		log = logger.L()
	}

	cfg.SetDefaults()

	clientCfg := &milvusclient.ClientConfig{
		Address: cfg.Address,
	}
	if cfg.Username != "" && cfg.Password != "" {
		clientCfg.Username = cfg.Username
		clientCfg.Password = cfg.Password
	}
	if cfg.APIKey != "" {
		clientCfg.APIKey = cfg.APIKey
	}
	if cfg.Database != "" {
		clientCfg.DBName = cfg.Database
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	client, err := milvusclient.New(dialCtx, clientCfg)
	if err != nil {
		return nil, WrapError("New", err, "", "")
	}

	log.Info("milvus client created successfully",
		zap.String("address", cfg.Address),
		zap.String("database", cfg.Database))

	return &Client{cfg: cfg, client: client, logger: log}, nil
}

// Close closes the client connection.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	if c.client != nil {
		if err := c.client.Close(ctx); err != nil {
			c.logger.Error("failed to close milvus client", zap.Error(err))
			return WrapError("Close", err, "", "")
		}
	}

	c.closed = true
	return nil
}

// execWithRetry runs fn, retrying transient failures with a fixed delay.
func (c *Client) execWithRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		if i > 0 {
			c.logger.Warn("retrying operation",
				zap.String("operation", op),
				zap.Int("attempt", i),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return WrapError(op, ctx.Err(), "", "")
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return WrapError(op, err, "", "")
		}
	}
	return WrapError(op, err, "", "")
}
