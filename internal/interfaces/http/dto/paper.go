// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"fmt"
	"strings"
	"time"

	"scholar-rec-api/internal/domain/entity"
)

// PaperResponse 论文响应
type PaperResponse struct {
	ContentHash        string    `json:"content_hash"`
	ExternalID         string    `json:"external_id"`
	Title              string    `json:"title"`
	Abstract           string    `json:"abstract,omitempty"`
	Authors            []string  `json:"authors,omitempty"`
	PublicationDate    string    `json:"publication_date,omitempty"`
	LandingURL         string    `json:"landing_url,omitempty"`
	PDFURL             string    `json:"pdf_url,omitempty"`
	SimilarityScore    float64   `json:"similarity_score,omitempty"`
	FWCI               float64   `json:"fwci,omitempty"`
	CitationPercentile float64   `json:"citation_percentile,omitempty"`
	CitationCount      int       `json:"citation_count,omitempty"`
	Topics             []string  `json:"topics,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// PaperListResponse 论文列表响应
type PaperListResponse struct {
	Papers []*PaperResponse `json:"papers"`
}

// UpdatePaperRequest 更新论文请求
// 更新产生新内容哈希，旧记录被废弃。
type UpdatePaperRequest struct {
	Title           *string  `json:"title,omitempty" binding:"omitempty,max=1024"`
	Abstract        *string  `json:"abstract,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	PublicationDate *string  `json:"publication_date,omitempty"`
	LandingURL      *string  `json:"landing_url,omitempty"`
	PDFURL          *string  `json:"pdf_url,omitempty"`
}

// Apply 将非空字段应用到实体副本
// 标题是身份字段之一，不允许清空。
func (r *UpdatePaperRequest) Apply(paper *entity.Paper) error {
	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			return fmt.Errorf("title cannot be empty")
		}
		paper.Title = *r.Title
	}
	if r.Abstract != nil {
		paper.Abstract = *r.Abstract
	}
	if r.Authors != nil {
		paper.Authors = r.Authors
	}
	if r.PublicationDate != nil {
		if *r.PublicationDate == "" {
			paper.PublicationDate = time.Time{}
		} else {
			d, err := time.Parse("2006-01-02", *r.PublicationDate)
			if err != nil {
				return err
			}
			paper.PublicationDate = d
		}
	}
	if r.LandingURL != nil {
		paper.LandingURL = *r.LandingURL
	}
	if r.PDFURL != nil {
		paper.PDFURL = *r.PDFURL
	}
	return nil
}

// UpdatePaperResponse 更新论文响应
type UpdatePaperResponse struct {
	ContentHash string `json:"content_hash"`
	Replaced    string `json:"replaced"`
}

// ToPaperResponse 实体转响应
func ToPaperResponse(paper *entity.Paper) *PaperResponse {
	if paper == nil {
		return nil
	}
	var date string
	if !paper.PublicationDate.IsZero() {
		date = paper.PublicationDate.Format("2006-01-02")
	}
	return &PaperResponse{
		ContentHash:        paper.ContentHash,
		ExternalID:         paper.ExternalID,
		Title:              paper.Title,
		Abstract:           paper.Abstract,
		Authors:            paper.Authors,
		PublicationDate:    date,
		LandingURL:         paper.LandingURL,
		PDFURL:             paper.PDFURL,
		SimilarityScore:    paper.SimilarityScore,
		FWCI:               paper.FWCI,
		CitationPercentile: paper.CitationPercentile,
		CitationCount:      paper.CitationCount,
		Topics:             paper.Topics,
		CreatedAt:          paper.CreatedAt,
	}
}

// ToPaperListResponse 实体列表转响应
func ToPaperListResponse(papers []*entity.Paper) *PaperListResponse {
	items := make([]*PaperResponse, 0, len(papers))
	for _, p := range papers {
		items = append(items, ToPaperResponse(p))
	}
	return &PaperListResponse{Papers: items}
}
