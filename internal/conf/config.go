package conf

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/lk2023060901/ai-search-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/milvus"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/ai-search-backend/internal/search/biz"
	"github.com/lk2023060901/ai-search-backend/internal/search/cache"
	"github.com/lk2023060901/ai-search-backend/internal/search/extract"
	"github.com/lk2023060901/ai-search-backend/internal/search/summarize"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Log      logger.Config   `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
	Redis    redis.Config    `mapstructure:"redis"`
	Milvus   milvus.Config   `mapstructure:"milvus"`
	OpenAI   OpenAIConfig    `mapstructure:"openai"`
	Search   SearchConfig    `mapstructure:"search"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// OpenAIConfig is shared by the embedder and the summarizer. BaseURL
// allows pointing at any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type SearchConfig struct {
	Providers []types.ProviderConfig `mapstructure:"providers"`

	Embedding EmbeddingConfig         `mapstructure:"embedding"`
	ShortTerm cache.ShortTermConfig   `mapstructure:"short_term"`
	Store     cache.MilvusStoreConfig `mapstructure:"store"`
	Enrich    biz.EnrichConfig        `mapstructure:"enrich"`
	Summarize summarize.Config        `mapstructure:"summarize"`
	Fetcher   extract.FetcherConfig   `mapstructure:"fetcher"`

	// WorkerPoolSize bounds concurrent HTML extraction.
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
}

type EmbeddingConfig struct {
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Search.WorkerPoolSize <= 0 {
		config.Search.WorkerPoolSize = 8
	}

	return &config, nil
}

// Validate checks the parts of the configuration that must be present
// before startup can proceed.
func (c *Config) Validate() error {
	if len(c.Search.Providers) == 0 {
		return types.ErrNoProvidersConfigured
	}
	for i := range c.Search.Providers {
		if err := c.Search.Providers[i].Validate(); err != nil {
			return fmt.Errorf("provider %q: %w", c.Search.Providers[i].ID, err)
		}
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai api key is required")
	}
	return nil
}
