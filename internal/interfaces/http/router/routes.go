// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)
		projects.DELETE("/:pid", h.Project.DeleteProject)

		// 项目下的推荐记录
		projects.GET("/:pid/recommendations", h.Recommendation.ListProjectRecommendations)
	}

	// 查询编排
	queries := v1.Group("/queries")
	{
		queries.POST("", h.Query.RunQuery)
	}

	// 运行维度的推荐记录
	runs := v1.Group("/runs")
	{
		runs.GET("/:run_id/recommendations", h.Recommendation.ListRunRecommendations)
	}

	// 推荐评分
	recommendations := v1.Group("/recommendations")
	{
		recommendations.POST("/:rid/rating", h.Recommendation.RateRecommendation)
	}

	// 论文库
	papers := v1.Group("/papers")
	{
		papers.GET("", h.Paper.ListPapers)
		papers.GET("/:hash", h.Paper.GetPaper)
		papers.PUT("/:hash", h.Paper.UpdatePaper)
		papers.DELETE("/:hash", h.Paper.DeletePaper)
	}
}
