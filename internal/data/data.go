package data

import (
	"context"
	"fmt"

	"github.com/lk2023060901/ai-search-backend/internal/conf"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/milvus"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/ai-search-backend/internal/pkg/workerpool"
	searchdata "github.com/lk2023060901/ai-search-backend/internal/search/data"
)

// Data bundles the long-lived infrastructure clients. All of them are safe
// for concurrent use by many simultaneous requests.
type Data struct {
	DB           *database.DB
	RedisClient  *redis.Client
	MilvusClient *milvus.Client
	Pool         *workerpool.Pool
}

// NewData connects every infrastructure client and returns a cleanup
// function that releases them in reverse order.
func NewData(ctx context.Context, config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if config.Database.AutoMigrate {
		if err := db.AutoMigrate(&searchdata.PageDetailPO{}); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	redisClient, err := redis.New(&config.Redis, log)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}

	milvusClient, err := milvus.New(ctx, &config.Milvus, log)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to init milvus: %w", err)
	}

	pool, err := workerpool.New(config.Search.WorkerPoolSize, log.Logger)
	if err != nil {
		milvusClient.Close(context.Background())
		redisClient.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to init worker pool: %w", err)
	}

	d := &Data{
		DB:           db,
		RedisClient:  redisClient,
		MilvusClient: milvusClient,
		Pool:         pool,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		pool.Release()

		if err := milvusClient.Close(context.Background()); err != nil {
			log.Warn("failed to close milvus client")
		}
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis client")
		}
		if err := db.Close(); err != nil {
			log.Warn("failed to close database")
		}
	}

	return d, cleanup, nil
}
