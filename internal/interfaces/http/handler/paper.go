// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"scholar-rec-api/internal/domain/repository"
	"scholar-rec-api/internal/infrastructure/persistence/redis"
	"scholar-rec-api/internal/interfaces/http/dto"
	"scholar-rec-api/pkg/logger"
)

// PaperHandler 论文处理器
type PaperHandler struct {
	paperRepo repository.PaperRepository
	cache     *redis.Cache
}

// NewPaperHandler 创建论文处理器
func NewPaperHandler(paperRepo repository.PaperRepository, cache *redis.Cache) *PaperHandler {
	return &PaperHandler{
		paperRepo: paperRepo,
		cache:     cache,
	}
}

// ListPapers 获取论文列表
// @Summary 获取论文列表
// @Tags Papers
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.PaperListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/papers [get]
func (h *PaperHandler) ListPapers(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.paperRepo.List(ctx, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list papers", err)
		dto.InternalError(c, "failed to list papers")
		return
	}

	resp := dto.ToPaperListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetPaper 按内容哈希获取论文
// @Summary 获取论文详情
// @Tags Papers
// @Produce json
// @Param hash path string true "内容哈希"
// @Success 200 {object} dto.Response[dto.PaperResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/papers/{hash} [get]
func (h *PaperHandler) GetPaper(c *gin.Context) {
	ctx := c.Request.Context()
	hash := dto.BindContentHash(c)

	paper, err := h.paperRepo.GetByHash(ctx, hash)
	if err != nil {
		respondRepoError(c, err, "failed to get paper")
		return
	}
	if paper == nil {
		dto.NotFound(c, "paper not found")
		return
	}

	dto.Success(c, dto.ToPaperResponse(paper))
}

// UpdatePaper 更新论文元数据
// 内容变化产生新哈希：追加新版本后废弃旧记录。
// @Summary 更新论文
// @Tags Papers
// @Accept json
// @Produce json
// @Param hash path string true "内容哈希"
// @Param body body dto.UpdatePaperRequest true "更新字段"
// @Success 200 {object} dto.Response[dto.UpdatePaperResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/papers/{hash} [put]
func (h *PaperHandler) UpdatePaper(c *gin.Context) {
	ctx := c.Request.Context()
	hash := dto.BindContentHash(c)

	var req dto.UpdatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	paper, err := h.paperRepo.GetByHash(ctx, hash)
	if err != nil {
		respondRepoError(c, err, "failed to get paper")
		return
	}
	if paper == nil {
		dto.NotFound(c, "paper not found")
		return
	}

	if err := req.Apply(paper); err != nil {
		dto.BadRequest(c, "invalid update: "+err.Error())
		return
	}

	newHash, err := h.paperRepo.UpdateByHash(ctx, hash, paper)
	if err != nil {
		respondRepoError(c, err, "failed to update paper")
		return
	}

	// 元数据变了，外部检索缓存可能携带过期版本
	if h.cache != nil {
		if err := h.cache.InvalidateSearchResults(ctx); err != nil {
			logger.Warn(ctx, "failed to invalidate search cache", "error", err)
		}
	}

	dto.Success(c, &dto.UpdatePaperResponse{
		ContentHash: newHash,
		Replaced:    hash,
	})
}

// DeletePaper 删除论文
// @Summary 删除论文
// @Tags Papers
// @Param hash path string true "内容哈希"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/papers/{hash} [delete]
func (h *PaperHandler) DeletePaper(c *gin.Context) {
	ctx := c.Request.Context()
	hash := dto.BindContentHash(c)

	found, err := h.paperRepo.DeleteByHash(ctx, hash)
	if err != nil {
		respondRepoError(c, err, "failed to delete paper")
		return
	}
	if !found {
		dto.NotFound(c, "paper not found")
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateSearchResults(ctx); err != nil {
			logger.Warn(ctx, "failed to invalidate search cache", "error", err)
		}
	}

	dto.NoContent(c)
}
