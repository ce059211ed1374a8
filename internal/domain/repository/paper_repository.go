// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-rec-api/internal/domain/entity"
)

// InsertReport 批量插入结果
type InsertReport struct {
	Inserted []string `json:"inserted"` // 本次新写入的内容哈希
	Skipped  []string `json:"skipped"`  // 因已存在或校验失败被跳过的外部 ID / 哈希
}

// PaperRepository 论文仓储接口
// 以内容哈希为主键，写入幂等：单条失败不中断整批。
type PaperRepository interface {
	// InsertMany 批量插入论文（重复哈希静默跳过）
	InsertMany(ctx context.Context, papers []*entity.Paper) (*InsertReport, error)

	// GetByHashes 按哈希批量获取，返回顺序与入参一致，缺失项不占位
	GetByHashes(ctx context.Context, hashes []string) ([]*entity.Paper, error)

	// GetByHash 获取单篇论文
	GetByHash(ctx context.Context, hash string) (*entity.Paper, error)

	// UpdateByHash 追加新版本后废弃旧版本，返回新内容哈希
	// 新版本未确认落库时不得删除旧记录
	UpdateByHash(ctx context.Context, hash string, updated *entity.Paper) (string, error)

	// DeleteByHash 删除论文，返回记录是否存在
	DeleteByHash(ctx context.Context, hash string) (bool, error)

	// List 分页获取论文列表
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Paper], error)
}
