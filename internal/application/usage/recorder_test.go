package usage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/service"
)

type memUsageRepo struct {
	events []*entity.LLMUsageEvent
}

func (r *memUsageRepo) Create(_ context.Context, evt *entity.LLMUsageEvent) error {
	r.events = append(r.events, evt)
	return nil
}

func (r *memUsageRepo) ListByRun(_ context.Context, runID string) ([]*entity.LLMUsageEvent, error) {
	var out []*entity.LLMUsageEvent
	for _, evt := range r.events {
		if evt.RunID == runID {
			out = append(out, evt)
		}
	}
	return out, nil
}

func TestRecorder_Record(t *testing.T) {
	repo := &memUsageRepo{}
	rec := NewRecorder(repo)

	err := rec.Record(context.Background(), service.LLMUsageInput{
		RunID:            " run-1 ",
		Workflow:         "scope_check",
		Provider:         "deepseek",
		Model:            "deepseek-chat",
		PromptTokens:     120,
		CompletionTokens: 45,
		DurationMs:       830,
	})

	require.NoError(t, err)
	require.Len(t, repo.events, 1)
	evt := repo.events[0]
	assert.Equal(t, "run-1", evt.RunID)
	assert.Equal(t, "scope_check", evt.Workflow)
	assert.Equal(t, 120, evt.TokensPrompt)
	assert.Equal(t, 45, evt.TokensCompletion)
	assert.Equal(t, 830, evt.DurationMs)
}

func TestRecorder_RejectsNegativeTokens(t *testing.T) {
	repo := &memUsageRepo{}
	rec := NewRecorder(repo)

	err := rec.Record(context.Background(), service.LLMUsageInput{PromptTokens: -1})

	require.Error(t, err)
	assert.Empty(t, repo.events)
}

func TestRecorder_NilSafe(t *testing.T) {
	var rec *Recorder
	assert.NoError(t, rec.Record(context.Background(), service.LLMUsageInput{}))
	assert.NoError(t, NewRecorder(nil).Record(context.Background(), service.LLMUsageInput{}))
}
