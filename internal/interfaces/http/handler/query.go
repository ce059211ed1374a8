// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"scholar-rec-api/internal/application/recommend"
	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/interfaces/http/dto"
	"scholar-rec-api/pkg/logger"
)

// QueryHandler 查询编排处理器
type QueryHandler struct {
	graph *recommend.Graph
	cfg   *config.Config
}

// NewQueryHandler 创建查询编排处理器
func NewQueryHandler(graph *recommend.Graph, cfg *config.Config) *QueryHandler {
	return &QueryHandler{
		graph: graph,
		cfg:   cfg,
	}
}

// RunQuery 执行一次查询编排
// 同步执行整个状态机并返回终态负载。
// @Summary 执行论文推荐查询
// @Tags Queries
// @Accept json
// @Produce json
// @Param body body dto.RunQueryRequest true "查询请求"
// @Success 200 {object} dto.Response[dto.RunQueryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/queries [post]
func (h *QueryHandler) RunQuery(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RunQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	state, err := h.graph.Run(ctx, recommend.RunInput{
		ProjectID: req.ProjectID,
		Query:     req.Query,
		Provider:  provider,
		Model:     model,
	})
	if err != nil {
		logger.Error(ctx, "query run failed", err)
		dto.InternalError(c, "query run failed")
		return
	}

	dto.Success(c, dto.ToRunQueryResponse(state))
}
