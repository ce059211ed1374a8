// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"scholar-rec-api/internal/application/recommend"
	"scholar-rec-api/internal/application/usage"
	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/repository"
	infraembedding "scholar-rec-api/internal/infrastructure/embedding"
	"scholar-rec-api/internal/infrastructure/messaging"
	"scholar-rec-api/internal/infrastructure/openalex"
	"scholar-rec-api/internal/infrastructure/persistence/milvus"
	"scholar-rec-api/internal/infrastructure/persistence/postgres"
	"scholar-rec-api/internal/infrastructure/persistence/redis"
	"scholar-rec-api/internal/interfaces/http/router"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient           *postgres.Client
	TxManager          *postgres.TxManager
	ProjectRepo        *postgres.ProjectRepository
	PaperRepo          *postgres.PaperRepository
	RecommendationRepo *postgres.RecommendationRepository
	LLMUsageRepo       *postgres.LLMUsageEventRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	// Messaging
	Producer *messaging.Producer

	// Milvus
	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient           *postgres.Client
	TxManager          *postgres.TxManager
	ProjectRepo        *postgres.ProjectRepository
	PaperRepo          *postgres.PaperRepository
	RecommendationRepo *postgres.RecommendationRepository
	LLMUsageRepo       *postgres.LLMUsageEventRepository
}

// App HTTP 服务依赖容器
type App struct {
	Router        *router.Router
	Graph         *recommend.Graph
	UsageRecorder *usage.Recorder
}

// FeedbackWorker 评分反馈消费侧依赖容器
type FeedbackWorker struct {
	DataLayer *DataLayer
	Feedback  *recommend.FeedbackService
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideMilvusClient 提供 Milvus 客户端
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideEmbedder 提供 Embedder
// provider 为 tei 时直连自托管 embedding 服务，否则走 Eino 的 OpenAI 兼容适配
func ProvideEmbedder(ctx context.Context, cfg *config.Config) (recommend.Embedder, error) {
	if cfg.Embedding.Provider == "tei" {
		return infraembedding.NewClient(&cfg.Embedding), nil
	}
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		return nil, err
	}
	return infraembedding.NewEinoAdapter(embedder), nil
}

// ProvideOpenAlexClient 提供文献元数据检索客户端
func ProvideOpenAlexClient(cfg *config.Config, cache *redis.Cache) *openalex.Client {
	return openalex.NewClient(&cfg.OpenAlex, cache)
}

// ProvideRecommendGraph 提供查询编排图
func ProvideRecommendGraph(
	decisions recommend.DecisionService,
	searcher recommend.PaperSearcher,
	embedder recommend.Embedder,
	index recommend.VectorIndex,
	papers repository.PaperRepository,
	projects repository.ProjectRepository,
	recs repository.RecommendationRepository,
	cfg *config.Config,
) *recommend.Graph {
	return recommend.NewGraph(decisions, searcher, embedder, index, papers, projects, recs, &cfg.Recommend)
}

// ProvideFeedbackService 提供评分反馈服务
func ProvideFeedbackService(
	projects repository.ProjectRepository,
	recs repository.RecommendationRepository,
	index recommend.VectorIndex,
	cfg *config.Config,
) *recommend.FeedbackService {
	return recommend.NewFeedbackService(projects, recs, index, &cfg.Recommend)
}
