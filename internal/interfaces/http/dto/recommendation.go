// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"scholar-rec-api/internal/application/recommend"
	"scholar-rec-api/internal/domain/entity"
)

// RunQueryRequest 执行查询编排请求
type RunQueryRequest struct {
	Query     string `json:"query" binding:"required,max=2000"`
	ProjectID string `json:"project_id,omitempty" binding:"omitempty,uuid"`

	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// RecommendedPaperResponse 终态负载中的单条推荐
type RecommendedPaperResponse struct {
	Paper   *PaperResponse `json:"paper"`
	Summary string         `json:"summary,omitempty"`
	Tier    string         `json:"tier"`
	Rank    int            `json:"rank"`
}

// StepResponse 编排步骤记录
type StepResponse struct {
	State       string `json:"state"`
	Description string `json:"description"`
}

// RunQueryResponse 查询编排响应
type RunQueryResponse struct {
	RunID       string                      `json:"run_id"`
	State       string                      `json:"state"`
	Papers      []*RecommendedPaperResponse `json:"papers,omitempty"`
	Explanation string                      `json:"explanation,omitempty"`
	ClosestMiss map[string]string           `json:"closest_miss,omitempty"`
	Steps       []StepResponse              `json:"steps,omitempty"`
	Errors      []string                    `json:"errors,omitempty"`
}

// ToRunQueryResponse 运行状态转响应
func ToRunQueryResponse(state *recommend.AgentState) *RunQueryResponse {
	if state == nil || state.Payload == nil {
		return nil
	}
	resp := &RunQueryResponse{
		RunID:       state.Payload.RunID,
		State:       string(state.Payload.State),
		Explanation: state.Payload.Explanation,
		ClosestMiss: state.Payload.ClosestMiss,
		Errors:      state.Errors,
	}
	for _, p := range state.Payload.Papers {
		resp.Papers = append(resp.Papers, &RecommendedPaperResponse{
			Paper:   ToPaperResponse(p.Paper),
			Summary: p.Summary,
			Tier:    string(p.Tier),
			Rank:    p.Rank,
		})
	}
	for _, s := range state.Steps {
		resp.Steps = append(resp.Steps, StepResponse{
			State:       string(s.State),
			Description: s.Description,
		})
	}
	return resp
}

// RecommendationResponse 推荐记录响应
type RecommendationResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	RunID       string    `json:"run_id"`
	ContentHash string    `json:"content_hash"`
	Tier        string    `json:"tier"`
	Rank        int       `json:"rank"`
	Score       float64   `json:"score"`
	Summary     string    `json:"summary,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecommendationListResponse 推荐记录列表响应
type RecommendationListResponse struct {
	Recommendations []*RecommendationResponse `json:"recommendations"`
}

// RateRecommendationRequest 评分请求
type RateRecommendationRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// RateRecommendationResponse 评分响应
type RateRecommendationResponse struct {
	RecommendationID string `json:"recommendation_id"`
	Rating           int    `json:"rating"`
	MessageID        string `json:"message_id,omitempty"`
}

// ToRecommendationResponse 实体转响应
func ToRecommendationResponse(rec *entity.Recommendation) *RecommendationResponse {
	if rec == nil {
		return nil
	}
	return &RecommendationResponse{
		ID:          rec.ID,
		ProjectID:   rec.ProjectID,
		RunID:       rec.RunID,
		ContentHash: rec.ContentHash,
		Tier:        string(rec.Tier),
		Rank:        rec.Rank,
		Score:       rec.Score,
		Summary:     rec.Summary,
		Rating:      rec.Rating,
		CreatedAt:   rec.CreatedAt,
	}
}

// ToRecommendationListResponse 实体列表转响应
func ToRecommendationListResponse(recs []*entity.Recommendation) *RecommendationListResponse {
	items := make([]*RecommendationResponse, 0, len(recs))
	for _, r := range recs {
		items = append(items, ToRecommendationResponse(r))
	}
	return &RecommendationListResponse{Recommendations: items}
}
