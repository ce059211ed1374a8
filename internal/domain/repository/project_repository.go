// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-rec-api/internal/domain/entity"
)

// ProjectRepository 研究项目仓储接口
type ProjectRepository interface {
	// Create 创建项目
	Create(ctx context.Context, project *entity.Project) error

	// GetByID 根据 ID 获取项目
	GetByID(ctx context.Context, id string) (*entity.Project, error)

	// Update 更新项目基本信息
	Update(ctx context.Context, project *entity.Project) error

	// Delete 删除项目
	Delete(ctx context.Context, id string) error

	// List 获取项目列表
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Project], error)

	// UpdateInterestEmbedding 更新项目兴趣向量
	UpdateInterestEmbedding(ctx context.Context, id string, embedding []float32) error

	// AppendQuery 记录项目的历史查询
	AppendQuery(ctx context.Context, id string, query string) error
}
