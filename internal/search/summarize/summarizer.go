package summarize

import (
	"context"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

// Summarizer produces a concise answer to a query from a single search
// result's page content. Implementations must be safe for concurrent
// use by many enrichment tasks.
type Summarizer interface {
	Summarize(ctx context.Context, query string, result *types.SearchResult) (string, error)
}
