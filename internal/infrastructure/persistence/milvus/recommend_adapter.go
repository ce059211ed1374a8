package milvus

import (
	"context"

	"scholar-rec-api/internal/application/recommend"
)

// RecommendVectorIndex 把向量仓储适配为推荐编排的相似度索引接口
type RecommendVectorIndex struct {
	repo *Repository
}

// NewRecommendVectorIndex 创建适配器
func NewRecommendVectorIndex(repo *Repository) *RecommendVectorIndex {
	return &RecommendVectorIndex{repo: repo}
}

var _ recommend.VectorIndex = (*RecommendVectorIndex)(nil)

func (a *RecommendVectorIndex) Upsert(ctx context.Context, items []recommend.VectorItem) error {
	if len(items) == 0 {
		return nil
	}
	papers := make([]*PaperVector, 0, len(items))
	for i := range items {
		papers = append(papers, &PaperVector{
			ContentHash:   items[i].ContentHash,
			Title:         items[i].Title,
			PublicationTS: items[i].PublicationTS,
			Vector:        items[i].Vector,
		})
	}
	return a.repo.UpsertPapers(ctx, papers)
}

func (a *RecommendVectorIndex) Query(ctx context.Context, embedding []float32, k int) ([]string, error) {
	results, err := a.repo.SearchPapers(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	hashes := make([]string, 0, len(results))
	for _, r := range results {
		hashes = append(hashes, r.ContentHash)
	}
	return hashes, nil
}

func (a *RecommendVectorIndex) GetVector(ctx context.Context, contentHash string) ([]float32, error) {
	return a.repo.GetVector(ctx, contentHash)
}
