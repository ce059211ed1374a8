// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// NoAbstractSentinel 元数据源缺失摘要时的占位文本
const NoAbstractSentinel = "No abstract available"

// YearCitation 单年引用计数
type YearCitation struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Paper 学术论文实体
// 以内容哈希为主键；内容变化产生新哈希（版本化，而非原地修改）。
type Paper struct {
	ContentHash        string         `json:"content_hash" gorm:"type:varchar(64);primaryKey"`
	ExternalID         string         `json:"external_id" gorm:"type:varchar(255);index"`
	Title              string         `json:"title" gorm:"type:text;not null"`
	Abstract           string         `json:"abstract,omitempty" gorm:"type:text"`
	Authors            []string       `json:"authors,omitempty" gorm:"type:text[]"`
	PublicationDate    time.Time      `json:"publication_date,omitempty"`
	LandingURL         string         `json:"landing_url,omitempty" gorm:"type:text"`
	PDFURL             string         `json:"pdf_url,omitempty" gorm:"type:text"`
	SimilarityScore    float64        `json:"similarity_score,omitempty" gorm:"-"`
	FWCI               float64        `json:"fwci,omitempty"`
	CitationPercentile float64        `json:"citation_percentile,omitempty"`
	CitationCount      int            `json:"citation_count,omitempty"`
	CountsByYear       []YearCitation `json:"counts_by_year,omitempty" gorm:"type:jsonb;serializer:json"`
	Topics             []string       `json:"topics,omitempty" gorm:"type:text[]"`
	CreatedAt          time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Paper) TableName() string {
	return "papers"
}

// IdentityFields 返回参与内容哈希的七元组字段
// 缺失字段一律退化为空字符串，保证哈希可重算。
func (p *Paper) IdentityFields() []string {
	var date string
	if !p.PublicationDate.IsZero() {
		date = p.PublicationDate.Format("2006-01-02")
	}
	return []string{
		p.ExternalID,
		p.Title,
		p.Abstract,
		strings.Join(p.Authors, ","),
		date,
		p.LandingURL,
		p.PDFURL,
	}
}

// Valid 校验论文是否可入库：外部 ID 与标题为必填
func (p *Paper) Valid() bool {
	return p != nil && strings.TrimSpace(p.ExternalID) != "" && strings.TrimSpace(p.Title) != ""
}

// EmbeddingText 返回用于向量化的文本（标题 + 摘要）
func (p *Paper) EmbeddingText() string {
	abstract := p.Abstract
	if abstract == NoAbstractSentinel {
		abstract = ""
	}
	return strings.TrimSpace(p.Title + "\n" + abstract)
}
