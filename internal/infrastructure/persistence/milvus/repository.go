// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"scholar-rec-api/pkg/metrics"
)

// Repository 论文向量仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// PaperVector 论文向量记录
type PaperVector struct {
	ContentHash   string
	Title         string
	PublicationTS int64
	Vector        []float32
}

// PaperSearchResult 向量检索结果
type PaperSearchResult struct {
	ContentHash string
	Title       string
	Score       float32
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// UpsertPapers 批量写入论文向量
// 主键为内容哈希，重复写入覆盖旧向量，天然幂等。
func (r *Repository) UpsertPapers(ctx context.Context, papers []*PaperVector) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertPapers",
		trace.WithAttributes(attribute.Int("count", len(papers))))
	defer span.End()

	if len(papers) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionPapers)

	hashes := make([]string, len(papers))
	vectors := make([][]float32, len(papers))
	titles := make([]string, len(papers))
	pubTimes := make([]int64, len(papers))

	for i, p := range papers {
		hashes[i] = p.ContentHash
		vectors[i] = p.Vector
		titles[i] = truncateVarChar(p.Title, 1024)
		pubTimes[i] = p.PublicationTS
	}

	hashCol := entity.NewColumnVarChar("content_hash", hashes)
	vectorCol := entity.NewColumnFloatVector("vector", VectorDimension, vectors)
	titleCol := entity.NewColumnVarChar("title", titles)
	timeCol := entity.NewColumnInt64("publication_ts", pubTimes)

	_, err := r.client.milvus.Upsert(ctx, collName, "", hashCol, vectorCol, titleCol, timeCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert papers: %w", err)
	}

	metrics.VectorUpsertsTotal.Add(float64(len(papers)))
	return nil
}

// SearchPapers 按查询向量检索论文，按相似度降序返回内容哈希
func (r *Repository) SearchPapers(ctx context.Context, queryVector []float32, topK int) ([]*PaperSearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchPapers",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.VectorSearchDuration.Observe(time.Since(start).Seconds())
	}()

	collName := r.client.CollectionName(CollectionPapers)

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{"content_hash", "title"},
		[]entity.Vector{entity.FloatVector(queryVector)},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var searchResults []*PaperSearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &PaperSearchResult{
				Score: result.Scores[i],
			}
			if hashCol, ok := result.Fields.GetColumn("content_hash").(*entity.ColumnVarChar); ok {
				sr.ContentHash = hashCol.Data()[i]
			}
			if titleCol, ok := result.Fields.GetColumn("title").(*entity.ColumnVarChar); ok {
				sr.Title = titleCol.Data()[i]
			}
			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// GetVector 按内容哈希取回论文向量（用于评分反馈时的兴趣向量更新）
func (r *Repository) GetVector(ctx context.Context, contentHash string) ([]float32, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.GetVector")
	defer span.End()

	collName := r.client.CollectionName(CollectionPapers)

	expr := fmt.Sprintf(`content_hash == "%s"`, contentHash)
	rs, err := r.client.milvus.Query(ctx, collName, nil, expr, []string{"vector"})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query vector: %w", err)
	}

	for _, col := range rs {
		if vecCol, ok := col.(*entity.ColumnFloatVector); ok && vecCol.Len() > 0 {
			return vecCol.Data()[0], nil
		}
	}
	return nil, nil
}

// DeletePaper 删除论文向量
func (r *Repository) DeletePaper(ctx context.Context, contentHash string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DeletePaper")
	defer span.End()

	collName := r.client.CollectionName(CollectionPapers)

	filter := fmt.Sprintf(`content_hash == "%s"`, contentHash)
	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete paper vector: %w", err)
	}
	return nil
}

// EnsurePapersCollection 确保 papers 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsurePapersCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionPapers)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, PapersSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionPapers)
	}

	return r.client.LoadCollection(ctx, CollectionPapers)
}

// truncateVarChar 截断超长文本，避免超出字段上限
func truncateVarChar(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
