// Package entity 定义领域实体
package entity

import "time"

// RecommendationTier 推荐层级
type RecommendationTier string

const (
	// TierTopPriority 高优层：排名进入首位区间且未超容量上限
	TierTopPriority RecommendationTier = "top_priority"
	// TierRecommended 普通推荐层
	TierRecommended RecommendationTier = "recommended"
)

// TerminalState 查询编排的终态
type TerminalState string

const (
	// TerminalSuccess 成功产出推荐
	TerminalSuccess TerminalState = "success"
	// TerminalNoResults 检索无结果
	TerminalNoResults TerminalState = "no_results"
	// TerminalOutOfScope 查询超出系统服务范围
	TerminalOutOfScope TerminalState = "out_of_scope"
)

// Recommendation 单条推荐记录
// 一次查询运行产出的推荐快照，排名与得分落库后不再变动；
// 评分由用户事后写入，是唯一可变字段。
type Recommendation struct {
	ID          string             `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID   string             `json:"project_id" gorm:"type:uuid;index;not null"`
	RunID       string             `json:"run_id" gorm:"type:uuid;index;not null"`
	ContentHash string             `json:"content_hash" gorm:"type:varchar(64);not null"`
	Tier        RecommendationTier `json:"tier" gorm:"type:varchar(32);not null"`
	Rank        int                `json:"rank"`
	Score       float64            `json:"score"`
	Summary     string             `json:"summary,omitempty" gorm:"type:text"`
	Rating      int                `json:"rating,omitempty"`
	CreatedAt   time.Time          `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Recommendation) TableName() string {
	return "recommendations"
}
