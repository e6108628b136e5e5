package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

// SearXNGProvider implements the SearXNG search API
type SearXNGProvider struct {
	*BaseProvider
}

// NewSearXNGProvider creates a new SearXNG provider
func NewSearXNGProvider(config *types.ProviderConfig) (Provider, error) {
	base := NewBaseProvider(config)
	return &SearXNGProvider{BaseProvider: base}, nil
}

// searxngResponse represents a SearXNG API response
type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
	Query string `json:"query"`
}

// Search executes a search query using the SearXNG API
func (p *SearXNGProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("format", "json")

	apiURL := fmt.Sprintf("%s/search?%s", p.config.APIHost, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	if p.config.BasicAuthUsername != "" && p.config.BasicAuthPassword != "" {
		httpReq.SetBasicAuth(p.config.BasicAuthUsername, p.config.BasicAuthPassword)
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

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var searxngResp searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&searxngResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// SearXNG ignores result-count parameters, so truncate locally.
	raw := searxngResp.Results
	if req.MaxResults > 0 && len(raw) > req.MaxResults {
		raw = raw[:req.MaxResults]
	}

	results := make([]*types.SearchResult, len(raw))
	for i, r := range raw {
		results[i] = &types.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		}
	}

	return &types.SearchResponse{
		Query:    req.Query,
		Results:  results,
		Took:     time.Since(startTime).Milliseconds(),
		Provider: p.GetID(),
	}, nil
}
