package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PageDetail is the extracted text of one result page, keyed by URL.
type PageDetail struct {
	URL       string
	Details   string
	CreatedAt time.Time
}

// PageRepo stores extracted page details permanently.
type PageRepo interface {
	// Save stores the given pages. Pages whose URL is already stored are
	// skipped; the first stored version wins.
	Save(ctx context.Context, pages []*PageDetail) error

	// GetByURLs returns stored details for the given URLs, keyed by URL.
	// Missing URLs are simply absent from the map.
	GetByURLs(ctx context.Context, urls []string) (map[string]string, error)
}

// LongTerm is the URL-keyed permanent cache of extracted page content. A
// hit lets enrichment skip fetching and extracting that page again.
type LongTerm struct {
	repo   PageRepo
	logger *zap.Logger
}

// NewLongTerm creates a long-term cache over the given repository.
func NewLongTerm(repo PageRepo, logger *zap.Logger) *LongTerm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LongTerm{repo: repo, logger: logger}
}

// Lookup returns stored page details for the given URLs. Storage failures
// degrade to a miss for every URL.
func (l *LongTerm) Lookup(ctx context.Context, urls []string) map[string]string {
	if len(urls) == 0 {
		return nil
	}
	found, err := l.repo.GetByURLs(ctx, urls)
	if err != nil {
		l.logger.Warn("long-term cache lookup failed", zap.Error(err))
		return nil
	}
	return found
}

// Store saves extracted details for later requests. Pages with empty
// details are skipped. Failures are logged and swallowed.
func (l *LongTerm) Store(ctx context.Context, pages []*PageDetail) {
	kept := make([]*PageDetail, 0, len(pages))
	for _, p := range pages {
		if p.URL == "" || p.Details == "" {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return
	}
	if err := l.repo.Save(ctx, kept); err != nil {
		l.logger.Warn("long-term cache store failed",
			zap.Int("pages", len(kept)),
			zap.Error(err))
	}
}
