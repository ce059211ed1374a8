// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"scholar-rec-api/internal/domain/entity"
)

// LLMUsageEventRepository LLM 用量流水仓储实现
type LLMUsageEventRepository struct {
	client *Client
}

// NewLLMUsageEventRepository 创建用量流水仓储
func NewLLMUsageEventRepository(client *Client) *LLMUsageEventRepository {
	return &LLMUsageEventRepository{client: client}
}

const llmUsageColumns = `id, run_id, workflow, provider, model, tokens_prompt, tokens_completion, duration_ms, created_at`

// Create 写入一条用量流水
func (r *LLMUsageEventRepository) Create(ctx context.Context, event *entity.LLMUsageEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.LLMUsageEventRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO llm_usage_events (id, run_id, workflow, provider, model, tokens_prompt, tokens_completion, duration_ms, created_at)
		VALUES (gen_random_uuid(), NULLIF($1, ''), $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		event.RunID, event.Workflow, event.Provider, event.Model,
		event.TokensPrompt, event.TokensCompletion, event.DurationMs,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create llm usage event: %w", err)
	}
	return nil
}

// ListByRun 获取一次运行的全部用量流水
func (r *LLMUsageEventRepository) ListByRun(ctx context.Context, runID string) ([]*entity.LLMUsageEvent, error) {
	ctx, span := tracer.Start(ctx, "postgres.LLMUsageEventRepository.ListByRun")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT ` + llmUsageColumns + ` FROM llm_usage_events WHERE run_id = $1 ORDER BY created_at ASC`

	rows, err := q.QueryContext(ctx, query, runID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list llm usage events: %w", err)
	}
	defer rows.Close()

	var events []*entity.LLMUsageEvent
	for rows.Next() {
		var evt entity.LLMUsageEvent
		var runID sql.NullString
		if err := rows.Scan(
			&evt.ID, &runID, &evt.Workflow, &evt.Provider, &evt.Model,
			&evt.TokensPrompt, &evt.TokensCompletion, &evt.DurationMs, &evt.CreatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan llm usage event: %w", err)
		}
		evt.RunID = runID.String
		events = append(events, &evt)
	}
	return events, rows.Err()
}
