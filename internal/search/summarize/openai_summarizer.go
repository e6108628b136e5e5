package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = openai.GPT4oMini

	// DefaultMaxDetailTokens bounds how much of the page text is sent to
	// the model. Longer pages are truncated line by line.
	DefaultMaxDetailTokens = 4000

	// DefaultMaxAnswerTokens bounds the generated answer.
	DefaultMaxAnswerTokens = 300
)

// TokenCounter reports how many tokens a string costs for the target model.
type TokenCounter func(text string) int

// Config holds summarizer settings.
type Config struct {
	Model           string  `mapstructure:"model"`
	MaxDetailTokens int     `mapstructure:"max_detail_tokens"`
	MaxAnswerTokens int     `mapstructure:"max_answer_tokens"`
	Temperature     float32 `mapstructure:"temperature"`
}

// SetDefaults fills in zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxDetailTokens <= 0 {
		c.MaxDetailTokens = DefaultMaxDetailTokens
	}
	if c.MaxAnswerTokens <= 0 {
		c.MaxAnswerTokens = DefaultMaxAnswerTokens
	}
}

// OpenAISummarizer generates per-result answers with a chat completion.
type OpenAISummarizer struct {
	client      *openai.Client
	config      Config
	counter     TokenCounter
	counterOnce sync.Once
	logger      *zap.Logger
}

// NewOpenAISummarizer creates a summarizer backed by the given client. The
// token counter defaults to the tiktoken encoding for the configured model.
func NewOpenAISummarizer(client *openai.Client, config Config, logger *zap.Logger) (*OpenAISummarizer, error) {
	if client == nil {
		return nil, fmt.Errorf("openai client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.SetDefaults()

	return &OpenAISummarizer{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// WithTokenCounter overrides the token counter. Used by tests to avoid
// loading tiktoken encodings.
func (s *OpenAISummarizer) WithTokenCounter(counter TokenCounter) *OpenAISummarizer {
	if counter != nil {
		s.counter = counter
	}
	return s
}

// Summarize produces a concise answer to query grounded in result. The
// result's Details are truncated to the configured token budget first.
func (s *OpenAISummarizer) Summarize(ctx context.Context, query string, result *types.SearchResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("search result is required")
	}

	details := TruncateTokens(result.Details, s.config.MaxDetailTokens, s.tokenCounter())
	prompt := fmt.Sprintf(conciseAnswerPrompt, result.Title, result.URL, result.Content, details, query)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.config.MaxAnswerTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		s.logger.Warn("summarization request failed",
			zap.String("url", result.URL),
			zap.Error(err))
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("chat completion returned empty answer")
	}
	return answer, nil
}

// tokenCounter resolves the counter on first use, so an injected counter
// avoids loading tiktoken encodings at all.
func (s *OpenAISummarizer) tokenCounter() TokenCounter {
	s.counterOnce.Do(func() {
		if s.counter == nil {
			s.counter = s.tiktokenCounter()
		}
	})
	return s.counter
}

// tiktokenCounter builds a counter for the configured model, falling back
// to a rough byte estimate when the encoding cannot be loaded.
func (s *OpenAISummarizer) tiktokenCounter() TokenCounter {
	enc, err := tiktoken.EncodingForModel(s.config.Model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		s.logger.Warn("failed to load tiktoken encoding, using byte estimate",
			zap.String("model", s.config.Model),
			zap.Error(err))
		return func(text string) int { return len(text) / 4 }
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}

// TruncateTokens cuts text line by line so the kept prefix stays within
// budget. Lines are never split; a first line that alone exceeds the budget
// is dropped entirely.
func TruncateTokens(text string, budget int, counter TokenCounter) string {
	if text == "" || budget <= 0 {
		return ""
	}
	if counter(text) <= budget {
		return text
	}

	var (
		b    strings.Builder
		used int
	)
	for _, line := range strings.Split(text, "\n") {
		cost := counter(line)
		if used > 0 {
			cost++ // newline separator
		}
		if used+cost > budget {
			break
		}
		if used > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
		used += cost
	}
	return b.String()
}
