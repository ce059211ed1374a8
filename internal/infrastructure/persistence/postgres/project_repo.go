// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/repository"
)

// ProjectRepository 研究项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	embeddingJSON, _ := json.Marshal(project.InterestEmbedding)

	query := `
		INSERT INTO projects (id, name, description, interest_embedding, queries, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		project.Name, project.Description, embeddingJSON, pq.Array(project.Queries),
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, name, description, interest_embedding, queries, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project entity.Project
	var embeddingJSON []byte

	err := q.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Name, &project.Description,
		&embeddingJSON, pq.Array(&project.Queries),
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if len(embeddingJSON) > 0 {
		json.Unmarshal(embeddingJSON, &project.InterestEmbedding)
	}
	return &project, nil
}

// Update 更新项目基本信息
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Update")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		UPDATE projects
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query, project.Name, project.Description, project.ID).
		Scan(&project.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("project not found: %s", project.ID)
		}
		span.RecordError(err)
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Delete 删除项目
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Delete")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	if _, err := q.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// List 获取项目列表
func (r *ProjectRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.List")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `
		SELECT id, name, description, interest_embedding, queries, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := q.QueryContext(ctx, query, pagination.Limit(), pagination.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		var project entity.Project
		var embeddingJSON []byte
		err := rows.Scan(
			&project.ID, &project.Name, &project.Description,
			&embeddingJSON, pq.Array(&project.Queries),
			&project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if len(embeddingJSON) > 0 {
			json.Unmarshal(embeddingJSON, &project.InterestEmbedding)
		}
		projects = append(projects, &project)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}

// UpdateInterestEmbedding 更新项目兴趣向量
func (r *ProjectRepository) UpdateInterestEmbedding(ctx context.Context, id string, embedding []float32) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.UpdateInterestEmbedding")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	query := `UPDATE projects SET interest_embedding = $1, updated_at = NOW() WHERE id = $2`

	if _, err := q.ExecContext(ctx, query, embeddingJSON, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update interest embedding: %w", err)
	}
	return nil
}

// AppendQuery 记录项目的历史查询
func (r *ProjectRepository) AppendQuery(ctx context.Context, id string, queryText string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.AppendQuery")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `UPDATE projects SET queries = array_append(queries, $1), updated_at = NOW() WHERE id = $2`

	if _, err := q.ExecContext(ctx, query, queryText, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append query: %w", err)
	}
	return nil
}
