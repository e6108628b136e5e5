package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/conf"
	"github.com/lk2023060901/ai-search-backend/internal/data"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-search-backend/internal/search/biz"
	"github.com/lk2023060901/ai-search-backend/internal/search/cache"
	searchdata "github.com/lk2023060901/ai-search-backend/internal/search/data"
	"github.com/lk2023060901/ai-search-backend/internal/search/embedding"
	"github.com/lk2023060901/ai-search-backend/internal/search/extract"
	"github.com/lk2023060901/ai-search-backend/internal/search/service"
	"github.com/lk2023060901/ai-search-backend/internal/search/summarize"
	"github.com/lk2023060901/ai-search-backend/internal/server"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/provider"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := config.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	// Initialize logger with config
	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(&config.Log); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	ctx := context.Background()

	// Infrastructure clients
	d, cleanup, err := data.NewData(ctx, config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Search providers
	factory := provider.NewFactory()
	providers := make([]provider.Provider, 0, len(config.Search.Providers))
	for i := range config.Search.Providers {
		p, err := factory.Create(&config.Search.Providers[i])
		if err != nil {
			log.Fatal("failed to create search provider",
				zap.String("provider", string(config.Search.Providers[i].ID)),
				zap.Error(err))
		}
		providers = append(providers, p)
	}

	// Embedding with a Redis-backed vector cache
	openaiEmbedder, err := embedding.NewOpenAIEmbedder(&embedding.OpenAIEmbedderConfig{
		APIKey:    config.OpenAI.APIKey,
		BaseURL:   config.OpenAI.BaseURL,
		Model:     config.Search.Embedding.Model,
		Dimension: config.Search.Embedding.Dimension,
	}, log)
	if err != nil {
		log.Fatal("failed to create embedder", zap.Error(err))
	}
	embedder := embedding.NewCacheEmbedder(openaiEmbedder, d.RedisClient, nil, log)

	// Two-tier cache
	storeConfig := config.Search.Store
	storeConfig.Dimension = openaiEmbedder.Dimension()
	vectorStore, err := cache.NewMilvusStore(ctx, d.MilvusClient, storeConfig, log.Logger)
	if err != nil {
		log.Fatal("failed to bootstrap semantic cache", zap.Error(err))
	}
	shortTerm := cache.NewShortTerm(vectorStore, embedder, config.Search.ShortTerm, log.Logger)
	longTerm := cache.NewLongTerm(searchdata.NewPageRepo(d.DB.DB), log.Logger)

	// Enrichment pipeline
	openaiConfig := openai.DefaultConfig(config.OpenAI.APIKey)
	if config.OpenAI.BaseURL != "" {
		openaiConfig.BaseURL = config.OpenAI.BaseURL
	}
	openaiClient := openai.NewClientWithConfig(openaiConfig)

	summarizer, err := summarize.NewOpenAISummarizer(openaiClient, config.Search.Summarize, log.Logger)
	if err != nil {
		log.Fatal("failed to create summarizer", zap.Error(err))
	}
	fetcher := extract.NewFetcher(config.Search.Fetcher, log.Logger)
	extractor := extract.NewExtractor(d.Pool, log.Logger)
	enricher := biz.NewEnricher(longTerm, fetcher, extractor, summarizer, config.Search.Enrich, log.Logger)

	// Orchestrator and HTTP surface
	searchUseCase, err := biz.NewSearchUseCase(providers, shortTerm, longTerm, enricher, log.Logger)
	if err != nil {
		log.Fatal("failed to create search use case", zap.Error(err))
	}
	searchService := service.NewSearchService(searchUseCase, log.Logger)

	httpServer := server.NewHTTPServer(config, log.Logger, searchService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	// Flush in-flight background cache writes before closing clients.
	if err := searchUseCase.Drain(shutdownCtx); err != nil {
		log.Warn("background cache writes not fully drained", zap.Error(err))
	}

	log.Info("server exited")
}
