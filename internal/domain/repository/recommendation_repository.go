// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-rec-api/internal/domain/entity"
)

// RecommendationRepository 推荐记录仓储接口
// 推荐为运行快照，只追加；评分是唯一允许的后置修改。
type RecommendationRepository interface {
	// CreateBatch 批量写入一次运行产出的推荐
	CreateBatch(ctx context.Context, recs []*entity.Recommendation) error

	// GetByID 获取单条推荐
	GetByID(ctx context.Context, id string) (*entity.Recommendation, error)

	// ListByProject 按项目分页获取推荐
	ListByProject(ctx context.Context, projectID string, pagination Pagination) (*PagedResult[*entity.Recommendation], error)

	// ListByRun 获取一次运行的全部推荐（按层级与排名排序）
	ListByRun(ctx context.Context, runID string) ([]*entity.Recommendation, error)

	// UpdateRating 记录用户对推荐的评分
	UpdateRating(ctx context.Context, id string, rating int) error
}
