package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
	"golang.org/x/time/rate"
)

// Provider defines the interface for search providers
type Provider interface {
	// Search executes a search query. A failed remote call fails the
	// whole Search: providers never return partial results.
	Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)

	// GetID returns the provider ID
	GetID() types.ProviderID

	// GetName returns the provider name
	GetName() string

	// Validate validates the provider configuration
	Validate() error
}

// BaseProvider provides common functionality for all providers. A single
// instance is shared by all concurrent requests.
type BaseProvider struct {
	config     *types.ProviderConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKeys    []string // support multiple API keys for rotation
	keyIndex   atomic.Uint64
}

// NewBaseProvider creates a new base provider
func NewBaseProvider(config *types.ProviderConfig) *BaseProvider {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// Parse multiple API keys (comma-separated)
	var apiKeys []string
	if config.APIKey != "" {
		apiKeys = strings.Split(config.APIKey, ",")
		for i := range apiKeys {
			apiKeys[i] = strings.TrimSpace(apiKeys[i])
		}
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit)
	}

	return &BaseProvider{
		config:     config,
		httpClient: httpClient,
		limiter:    limiter,
		apiKeys:    apiKeys,
	}
}

// GetID returns the provider ID
func (b *BaseProvider) GetID() types.ProviderID {
	return b.config.ID
}

// GetName returns the provider name
func (b *BaseProvider) GetName() string {
	return b.config.Name
}

// GetConfig returns the provider configuration
func (b *BaseProvider) GetConfig() *types.ProviderConfig {
	return b.config
}

// GetAPIKey returns the next API key in rotation. Safe for concurrent use.
func (b *BaseProvider) GetAPIKey() string {
	if len(b.apiKeys) == 0 {
		return ""
	}

	idx := b.keyIndex.Add(1) - 1
	return b.apiKeys[idx%uint64(len(b.apiKeys))]
}

// BuildDefaultHeaders builds default HTTP headers
func (b *BaseProvider) BuildDefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   "AI-Search-Backend/1.0",
	}
}

// DoRequest executes an HTTP request with rate limiting and retries.
func (b *BaseProvider) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	maxRetries := b.config.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		// A failed attempt leaves the body consumed; rewind it before
		// retrying or the retry sends an empty body.
		if i > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewind request body: %w", err)
			}
			req.Body = body
		}

		resp, err := b.httpClient.Do(req.WithContext(ctx))
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Exponential backoff
		if i < maxRetries-1 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// Validate validates the provider configuration
func (b *BaseProvider) Validate() error {
	return b.config.Validate()
}
