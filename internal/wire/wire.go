//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"scholar-rec-api/internal/application/recommend"
	"scholar-rec-api/internal/application/usage"
	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/repository"
	"scholar-rec-api/internal/infrastructure/llm"
	"scholar-rec-api/internal/infrastructure/persistence/milvus"
	"scholar-rec-api/internal/infrastructure/persistence/postgres"
	"scholar-rec-api/internal/infrastructure/persistence/redis"
	"scholar-rec-api/internal/interfaces/http/handler"
	"scholar-rec-api/internal/interfaces/http/middleware"
	"scholar-rec-api/internal/interfaces/http/router"
	"scholar-rec-api/internal/workflow/pipeline"
	"scholar-rec-api/internal/workflow/port"
)

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		MilvusSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		MilvusSet,
		EmbeddingSet,
		LLMSet,
		OpenAlexSet,
		RecommendSet,
		UsageSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeFeedbackWorker 初始化评分反馈 worker 依赖
func InitializeFeedbackWorker(ctx context.Context, cfg *config.Config) (*FeedbackWorker, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		MilvusSet,
		ProvideFeedbackService,
		wire.Struct(new(DataLayer), "*"),
		wire.Struct(new(FeedbackWorker), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewProjectRepository,
	postgres.NewPaperRepository,
	postgres.NewRecommendationRepository,
	postgres.NewLLMUsageEventRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	// 接口绑定
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.ProjectRepository), new(*postgres.ProjectRepository)),
	wire.Bind(new(repository.PaperRepository), new(*postgres.PaperRepository)),
	wire.Bind(new(repository.RecommendationRepository), new(*postgres.RecommendationRepository)),
	wire.Bind(new(repository.LLMUsageEventRepository), new(*postgres.LLMUsageEventRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// MilvusSet Milvus 提供者集合
var MilvusSet = wire.NewSet(
	ProvideMilvusClient,
	milvus.NewRepository,
	milvus.NewRecommendVectorIndex,
	wire.Bind(new(recommend.VectorIndex), new(*milvus.RecommendVectorIndex)),
)

// EmbeddingSet Embedding 提供者集合
var EmbeddingSet = wire.NewSet(
	ProvideEmbedder,
)

// LLMSet LLM 决策管线提供者集合
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(port.ChatModelFactory), new(*llm.EinoFactory)),
	pipeline.NewDecisionPipeline,
	wire.Bind(new(recommend.DecisionService), new(*pipeline.DecisionPipeline)),
)

// OpenAlexSet 文献元数据检索提供者集合
var OpenAlexSet = wire.NewSet(
	ProvideOpenAlexClient,
	wire.Bind(new(recommend.PaperSearcher), new(*openalex.Client)),
)

// RecommendSet 推荐编排提供者集合
var RecommendSet = wire.NewSet(
	ProvideRecommendGraph,
	ProvideFeedbackService,
)

// UsageSet LLM 用量流水提供者集合
var UsageSet = wire.NewSet(
	usage.NewRecorder,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewProjectHandler,
	handler.NewPaperHandler,
	handler.NewQueryHandler,
	handler.NewRecommendationHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
