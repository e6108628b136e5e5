package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/pkg/workerpool"
)

// Extractor turns fetched HTML into readable plain text. Parsing runs on a
// shared worker pool so a burst of large pages cannot starve the runtime.
type Extractor struct {
	pool   *workerpool.Pool
	logger *zap.Logger
}

// NewExtractor creates an extractor over the given pool.
func NewExtractor(pool *workerpool.Pool, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{pool: pool, logger: logger}
}

// Extract parses html fetched from pageURL and returns its main text
// content. Pages with no extractable text are errors.
func (e *Extractor) Extract(ctx context.Context, pageURL string, html []byte) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url %s: %w", pageURL, err)
	}

	ch := e.pool.SubmitWithResult(func() (interface{}, error) {
		article, err := readability.FromReader(bytes.NewReader(html), parsed)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", pageURL, err)
		}
		return article.TextContent, nil
	})

	select {
	case res := <-ch:
		if res.Error != nil {
			return "", res.Error
		}
		text := strings.TrimSpace(res.Data.(string))
		if text == "" {
			return "", fmt.Errorf("extract %s: no readable content", pageURL)
		}
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
