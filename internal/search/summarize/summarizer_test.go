package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

// wordCounter charges one token per whitespace-separated word.
func wordCounter(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

func TestTruncateTokens(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		want   string
	}{
		{
			name:   "empty text",
			text:   "",
			budget: 10,
			want:   "",
		},
		{
			name:   "zero budget",
			text:   "alpha beta",
			budget: 0,
			want:   "",
		},
		{
			name:   "fits entirely",
			text:   "alpha beta\ngamma",
			budget: 10,
			want:   "alpha beta\ngamma",
		},
		{
			name:   "drops trailing lines",
			text:   "one two three\nfour five\nsix seven eight nine",
			budget: 6,
			want:   "one two three\nfour five",
		},
		{
			name:   "first line too large",
			text:   "one two three four five\nsix",
			budget: 3,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTokens(tt.text, tt.budget, wordCounter)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateTokensNeverSplitsLines(t *testing.T) {
	text := "line one here\nline two here\nline three here"
	got := TruncateTokens(text, 7, wordCounter)

	for _, line := range strings.Split(got, "\n") {
		assert.Contains(t, text, line)
	}
	assert.LessOrEqual(t, wordCounter(got), 7)
}

// newChatServer serves a fixed answer and captures the prompt it received.
func newChatServer(t *testing.T, answer string, prompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if len(req.Messages) > 0 && prompt != nil {
			*prompt = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]string{
						"role":    "assistant",
						"content": answer,
					},
				},
			},
		})
	}))
}

func newTestSummarizer(t *testing.T, baseURL string, cfg Config) *OpenAISummarizer {
	t.Helper()
	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = baseURL

	s, err := NewOpenAISummarizer(openai.NewClientWithConfig(clientCfg), cfg, zap.NewNop())
	require.NoError(t, err)
	return s.WithTokenCounter(wordCounter)
}

func TestSummarize(t *testing.T) {
	var prompt string
	server := newChatServer(t, "Worker pools bound goroutine counts.", &prompt)
	defer server.Close()

	s := newTestSummarizer(t, server.URL, Config{})
	result := &types.SearchResult{
		Title:   "Go Worker Pools",
		URL:     "https://example.com/pools",
		Content: "snippet text",
		Details: "full extracted page text",
	}

	answer, err := s.Summarize(context.Background(), "what is a worker pool", result)
	require.NoError(t, err)
	assert.Equal(t, "Worker pools bound goroutine counts.", answer)

	assert.Contains(t, prompt, "Go Worker Pools")
	assert.Contains(t, prompt, "https://example.com/pools")
	assert.Contains(t, prompt, "full extracted page text")
	assert.Contains(t, prompt, "what is a worker pool")
}

func TestSummarizeTruncatesLongDetails(t *testing.T) {
	var prompt string
	server := newChatServer(t, "answer", &prompt)
	defer server.Close()

	s := newTestSummarizer(t, server.URL, Config{MaxDetailTokens: 5})
	result := &types.SearchResult{
		Title:   "t",
		URL:     "https://example.com",
		Details: "kept line here\ndropped line that is far far far too long to fit",
	}

	_, err := s.Summarize(context.Background(), "q", result)
	require.NoError(t, err)

	assert.Contains(t, prompt, "kept line here")
	assert.NotContains(t, prompt, "dropped line")
}

func TestSummarizeEmptyAnswer(t *testing.T) {
	server := newChatServer(t, "   ", nil)
	defer server.Close()

	s := newTestSummarizer(t, server.URL, Config{})
	_, err := s.Summarize(context.Background(), "q", &types.SearchResult{URL: "https://example.com"})
	assert.Error(t, err)
}

func TestSummarizeNilResult(t *testing.T) {
	server := newChatServer(t, "answer", nil)
	defer server.Close()

	s := newTestSummarizer(t, server.URL, Config{})
	_, err := s.Summarize(context.Background(), "q", nil)
	assert.Error(t, err)
}

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultMaxDetailTokens, cfg.MaxDetailTokens)
	assert.Equal(t, DefaultMaxAnswerTokens, cfg.MaxAnswerTokens)
}

func TestConfigSetDefaultsKeepsValues(t *testing.T) {
	cfg := Config{Model: "gpt-4o", MaxDetailTokens: 100, MaxAnswerTokens: 50}
	cfg.SetDefaults()

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 100, cfg.MaxDetailTokens)
	assert.Equal(t, 50, cfg.MaxAnswerTokens)
}
