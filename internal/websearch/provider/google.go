package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
	"github.com/tidwall/gjson"
)

// GoogleProvider implements the Google Custom Search JSON API
type GoogleProvider struct {
	*BaseProvider
}

// NewGoogleProvider creates a new Google Custom Search provider
func NewGoogleProvider(config *types.ProviderConfig) (Provider, error) {
	base := NewBaseProvider(config)
	return &GoogleProvider{BaseProvider: base}, nil
}

// Search executes a search query using the Google Custom Search API
func (p *GoogleProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	params := url.Values{}
	params.Set("key", p.GetAPIKey())
	params.Set("cx", p.config.EngineID)
	params.Set("q", req.Query)

	if req.MaxResults > 0 && req.MaxResults <= 10 {
		params.Set("num", fmt.Sprintf("%d", req.MaxResults))
	}

	if req.NewestFirst {
		params.Set("sort", "date")
		params.Set("dateRestrict", "y1")
	}

	apiURL := fmt.Sprintf("%s/customsearch/v1?%s", p.config.APIHost, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "REQUEST_FAILED",
			Message:  "Failed to execute request",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, types.ErrInvalidResponse
	}

	items := gjson.GetBytes(body, "items").Array()
	if req.MaxResults > 0 && len(items) > req.MaxResults {
		items = items[:req.MaxResults]
	}

	results := make([]*types.SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, &types.SearchResult{
			Title:   item.Get("title").String(),
			URL:     item.Get("link").String(),
			Content: item.Get("snippet").String(),
		})
	}

	return &types.SearchResponse{
		Query:    req.Query,
		Results:  results,
		Took:     time.Since(startTime).Milliseconds(),
		Provider: p.GetID(),
	}, nil
}
