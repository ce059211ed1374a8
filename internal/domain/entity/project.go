// Package entity 定义领域实体
package entity

import "time"

// Project 研究项目实体
// 兴趣向量随用户评分反馈持续演化，始终保持单位范数。
type Project struct {
	ID                string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name              string    `json:"name" gorm:"type:varchar(255);not null"`
	Description       string    `json:"description,omitempty" gorm:"type:text"`
	InterestEmbedding []float32 `json:"interest_embedding,omitempty" gorm:"type:jsonb;serializer:json"`
	Queries           []string  `json:"queries,omitempty" gorm:"type:text[]"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}
