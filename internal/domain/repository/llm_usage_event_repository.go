// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-rec-api/internal/domain/entity"
)

// LLMUsageEventRepository LLM 用量流水仓储接口
type LLMUsageEventRepository interface {
	// Create 写入一条用量流水
	Create(ctx context.Context, event *entity.LLMUsageEvent) error

	// ListByRun 获取一次运行的全部用量流水
	ListByRun(ctx context.Context, runID string) ([]*entity.LLMUsageEvent, error)
}
