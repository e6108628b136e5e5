package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/pkg/workerpool"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Go Worker Pools</title></head>
<body>
<nav>Home | About | Contact</nav>
<article>
<h1>Go Worker Pools</h1>
<p>A worker pool bounds the number of goroutines doing CPU-heavy work.
It keeps request-handling goroutines responsive under load.</p>
<p>This article walks through building one with a fixed set of workers
consuming tasks from a shared channel.</p>
</article>
<footer>Copyright 2025</footer>
</body>
</html>`

func newTestPool(t *testing.T) *workerpool.Pool {
	t.Helper()
	pool, err := workerpool.New(4, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Release)
	return pool
}

func TestFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherConfig{}, zap.NewNop())
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Go Worker Pools")
}

func TestFetcherFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherConfig{}, zap.NewNop())
	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetcherFetchBodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherConfig{MaxBodySize: 100}, zap.NewNop())
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}

func TestFetcherFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherConfig{}, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.Fetch(ctx, server.URL)
	assert.Error(t, err)
}

func TestExtractorExtract(t *testing.T) {
	extractor := NewExtractor(newTestPool(t), zap.NewNop())

	text, err := extractor.Extract(context.Background(), "http://example.com/worker-pools", []byte(articleHTML))
	require.NoError(t, err)
	assert.Contains(t, text, "worker pool bounds the number of goroutines")
	assert.NotContains(t, text, "Home | About | Contact")
}

func TestExtractorExtractEmptyPage(t *testing.T) {
	extractor := NewExtractor(newTestPool(t), zap.NewNop())

	_, err := extractor.Extract(context.Background(), "http://example.com/empty", []byte("<html><body></body></html>"))
	assert.Error(t, err)
}

func TestExtractorExtractBadURL(t *testing.T) {
	extractor := NewExtractor(newTestPool(t), zap.NewNop())

	_, err := extractor.Extract(context.Background(), "http://exa mple.com", []byte(articleHTML))
	assert.Error(t, err)
}
