// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"scholar-rec-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=5000"`
}

// ToProjectEntity 转换为项目实体
func (r *CreateProjectRequest) ToProjectEntity() *entity.Project {
	return &entity.Project{
		Name:        r.Name,
		Description: r.Description,
	}
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=5000"`
}

// Apply 将非空字段应用到实体
func (r *UpdateProjectRequest) Apply(project *entity.Project) {
	if r.Name != nil {
		project.Name = *r.Name
	}
	if r.Description != nil {
		project.Description = *r.Description
	}
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Queries     []string  `json:"queries,omitempty"`
	HasProfile  bool      `json:"has_profile"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
}

// ToProjectResponse 实体转响应
// 兴趣向量只暴露有无，不回传向量本身。
func ToProjectResponse(project *entity.Project) *ProjectResponse {
	if project == nil {
		return nil
	}
	return &ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Queries:     project.Queries,
		HasProfile:  len(project.InterestEmbedding) > 0,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectListResponse 实体列表转响应
func ToProjectListResponse(projects []*entity.Project) *ProjectListResponse {
	items := make([]*ProjectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, ToProjectResponse(p))
	}
	return &ProjectListResponse{Projects: items}
}
