// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"scholar-rec-api/internal/domain/repository"
	"scholar-rec-api/internal/infrastructure/messaging"
	"scholar-rec-api/internal/interfaces/http/dto"
	"scholar-rec-api/pkg/logger"
)

// RecommendationHandler 推荐记录处理器
type RecommendationHandler struct {
	recRepo  repository.RecommendationRepository
	producer *messaging.Producer
}

// NewRecommendationHandler 创建推荐记录处理器
func NewRecommendationHandler(recRepo repository.RecommendationRepository, producer *messaging.Producer) *RecommendationHandler {
	return &RecommendationHandler{
		recRepo:  recRepo,
		producer: producer,
	}
}

// ListProjectRecommendations 获取项目的推荐记录
// @Summary 获取项目的推荐记录
// @Tags Recommendations
// @Produce json
// @Param pid path string true "项目 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.RecommendationListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/recommendations [get]
func (h *RecommendationHandler) ListProjectRecommendations(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	result, err := h.recRepo.ListByProject(ctx, projectID, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list recommendations", err)
		dto.InternalError(c, "failed to list recommendations")
		return
	}

	resp := dto.ToRecommendationListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// ListRunRecommendations 获取一次运行的全部推荐
// @Summary 获取单次运行的推荐记录
// @Tags Recommendations
// @Produce json
// @Param run_id path string true "运行 ID"
// @Success 200 {object} dto.Response[dto.RecommendationListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/runs/{run_id}/recommendations [get]
func (h *RecommendationHandler) ListRunRecommendations(c *gin.Context) {
	ctx := c.Request.Context()
	runID := dto.BindRunID(c)

	recs, err := h.recRepo.ListByRun(ctx, runID)
	if err != nil {
		logger.Error(ctx, "failed to list run recommendations", err)
		dto.InternalError(c, "failed to list run recommendations")
		return
	}

	dto.Success(c, dto.ToRecommendationListResponse(recs))
}

// RateRecommendation 对推荐评分
// 评分通过消息流异步落地：接口只做存在性校验并投递事件。
// @Summary 对推荐评分
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param rid path string true "推荐 ID"
// @Param body body dto.RateRecommendationRequest true "评分"
// @Success 202 {object} dto.Response[dto.RateRecommendationResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/recommendations/{rid}/rating [post]
func (h *RecommendationHandler) RateRecommendation(c *gin.Context) {
	ctx := c.Request.Context()
	recID := dto.BindRecommendationID(c)

	var req dto.RateRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.recRepo.GetByID(ctx, recID)
	if err != nil {
		respondRepoError(c, err, "failed to get recommendation")
		return
	}
	if rec == nil {
		dto.NotFound(c, "recommendation not found")
		return
	}

	msgID, err := h.producer.PublishRatingEvent(ctx, &messaging.RatingEvent{
		RecommendationID: rec.ID,
		ProjectID:        rec.ProjectID,
		Rating:           req.Rating,
	})
	if err != nil {
		logger.Error(ctx, "failed to publish rating event", err)
		dto.InternalError(c, "failed to submit rating")
		return
	}

	dto.Accepted(c, &dto.RateRecommendationResponse{
		RecommendationID: rec.ID,
		Rating:           req.Rating,
		MessageID:        msgID,
	})
}
