// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/repository"
)

// RecommendationRepository 推荐记录仓储实现
type RecommendationRepository struct {
	client *Client
}

// NewRecommendationRepository 创建推荐仓储
func NewRecommendationRepository(client *Client) *RecommendationRepository {
	return &RecommendationRepository{client: client}
}

const recommendationColumns = `id, project_id, run_id, content_hash, tier, rank, score, summary, rating, created_at`

// CreateBatch 批量写入一次运行产出的推荐
func (r *RecommendationRepository) CreateBatch(ctx context.Context, recs []*entity.Recommendation) error {
	ctx, span := tracer.Start(ctx, "postgres.RecommendationRepository.CreateBatch")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO recommendations (id, project_id, run_id, content_hash, tier, rank, score, summary, rating, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, 0, NOW())
		RETURNING id, created_at
	`

	for _, rec := range recs {
		err := q.QueryRowContext(ctx, query,
			rec.ProjectID, rec.RunID, rec.ContentHash, rec.Tier, rec.Rank, rec.Score, rec.Summary,
		).Scan(&rec.ID, &rec.CreatedAt)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create recommendation: %w", err)
		}
	}
	return nil
}

// GetByID 获取单条推荐
func (r *RecommendationRepository) GetByID(ctx context.Context, id string) (*entity.Recommendation, error) {
	ctx, span := tracer.Start(ctx, "postgres.RecommendationRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id = $1`

	var rec entity.Recommendation
	err := q.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.ProjectID, &rec.RunID, &rec.ContentHash,
		&rec.Tier, &rec.Rank, &rec.Score, &rec.Summary, &rec.Rating, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return &rec, nil
}

// ListByProject 按项目分页获取推荐
func (r *RecommendationRepository) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Recommendation], error) {
	ctx, span := tracer.Start(ctx, "postgres.RecommendationRepository.ListByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var total int64
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE project_id = $1`, projectID,
	).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count recommendations: %w", err)
	}

	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations
		WHERE project_id = $1
		ORDER BY created_at DESC, rank ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.QueryContext(ctx, query, projectID, pagination.Limit(), pagination.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	recs, err := scanRecommendations(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return repository.NewPagedResult(recs, total, pagination), nil
}

// ListByRun 获取一次运行的全部推荐，高优层在前，层内按排名升序
func (r *RecommendationRepository) ListByRun(ctx context.Context, runID string) ([]*entity.Recommendation, error) {
	ctx, span := tracer.Start(ctx, "postgres.RecommendationRepository.ListByRun")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations
		WHERE run_id = $1
		ORDER BY CASE WHEN tier = 'top_priority' THEN 0 ELSE 1 END, rank ASC
	`

	rows, err := q.QueryContext(ctx, query, runID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list recommendations by run: %w", err)
	}
	defer rows.Close()

	recs, err := scanRecommendations(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return recs, nil
}

// UpdateRating 记录用户对推荐的评分
func (r *RecommendationRepository) UpdateRating(ctx context.Context, id string, rating int) error {
	ctx, span := tracer.Start(ctx, "postgres.RecommendationRepository.UpdateRating")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	res, err := q.ExecContext(ctx,
		`UPDATE recommendations SET rating = $1 WHERE id = $2`, rating, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recommendation not found: %s", id)
	}
	return nil
}

// scanRecommendations 扫描推荐结果集
func scanRecommendations(rows *sql.Rows) ([]*entity.Recommendation, error) {
	var recs []*entity.Recommendation
	for rows.Next() {
		var rec entity.Recommendation
		err := rows.Scan(
			&rec.ID, &rec.ProjectID, &rec.RunID, &rec.ContentHash,
			&rec.Tier, &rec.Rank, &rec.Score, &rec.Summary, &rec.Rating, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return recs, nil
}
