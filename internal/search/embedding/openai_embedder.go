package embedding

import (
	"context"
	"fmt"

	"github.com/lk2023060901/ai-search-backend/internal/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEmbedder implements Embedder on an OpenAI-compatible endpoint
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	logger    *logger.Logger
}

// OpenAIEmbedderConfig configures the OpenAI embedder
type OpenAIEmbedderConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

// NewOpenAIEmbedder creates an OpenAI embedder
func NewOpenAIEmbedder(cfg *OpenAIEmbedderConfig, lgr *logger.Logger) (*OpenAIEmbedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3) // text-embedding-3-small
	}

	if cfg.Dimension == 0 {
		cfg.Dimension = 1536
	}

	if lgr == nil {
		lgr = logger.L()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    lgr,
	}, nil
}

// Embed generates the vector for a single text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding generated")
	}

	return embeddings[0], nil
}

// BatchEmbed generates vectors for multiple texts
func (e *OpenAIEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimension,
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		e.logger.Error("failed to create embeddings",
			zap.Error(err),
			zap.Int("text_count", len(texts)))
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	e.logger.Debug("embeddings created successfully",
		zap.Int("count", len(embeddings)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return embeddings, nil
}

// Dimension returns the vector dimension
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Model returns the model name
func (e *OpenAIEmbedder) Model() string {
	return e.model
}
