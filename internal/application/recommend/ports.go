// Package recommend 实现论文推荐的查询编排与反馈回路
package recommend

import (
	"context"

	"scholar-rec-api/internal/domain/entity"
	wfmodel "scholar-rec-api/internal/workflow/model"
)

// DecisionService 查询编排依赖的全部 LLM 决策入口（port）
// 在测试中用确定性桩替换，使状态转移逻辑可独立验证。
type DecisionService interface {
	CheckScope(ctx context.Context, in *wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error)
	AssessQuality(ctx context.Context, in *wfmodel.DecisionInput) (*wfmodel.QCDecision, error)
	DetectFilterInstructions(ctx context.Context, in *wfmodel.DecisionInput) (*wfmodel.FilterDetect, error)
	RefineKeywords(ctx context.Context, in *wfmodel.RefineInput) ([]string, error)
	ExpandSubqueries(ctx context.Context, in *wfmodel.DecisionInput) ([]wfmodel.Subquery, error)
	ExtractFilters(ctx context.Context, in *wfmodel.DecisionInput) (wfmodel.FilterSpec, error)
	SummarizeRelevance(ctx context.Context, in *wfmodel.SummaryInput) (string, error)
}

// PaperSearcher 文献元数据检索（port）
type PaperSearcher interface {
	Search(ctx context.Context, query string) ([]*entity.Paper, error)
}

// Embedder 文本向量化（port）
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorItem 待写入相似度索引的一条记录
type VectorItem struct {
	ContentHash   string
	Title         string
	PublicationTS int64
	Vector        []float32
}

// VectorIndex 相似度索引（port）
// Query 返回按相似度降序的内容哈希。
type VectorIndex interface {
	Upsert(ctx context.Context, items []VectorItem) error
	Query(ctx context.Context, embedding []float32, k int) ([]string, error)
	GetVector(ctx context.Context, contentHash string) ([]float32, error)
}
