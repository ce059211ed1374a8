// Package usage 记录 LLM 用量流水
package usage

import (
	"context"
	"fmt"
	"strings"

	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/repository"
	"scholar-rec-api/internal/domain/service"
)

// Recorder 将 LLM 调用用量落库
type Recorder struct {
	usageRepo repository.LLMUsageEventRepository
}

// NewRecorder 创建用量记录器
func NewRecorder(usageRepo repository.LLMUsageEventRepository) *Recorder {
	return &Recorder{
		usageRepo: usageRepo,
	}
}

var _ service.LLMUsageRecorder = (*Recorder)(nil)

// Record 写入一条用量流水，缺依赖时静默跳过
func (r *Recorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil || r.usageRepo == nil {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	evt := &entity.LLMUsageEvent{
		RunID:            strings.TrimSpace(in.RunID),
		Workflow:         strings.TrimSpace(in.Workflow),
		Provider:         strings.TrimSpace(in.Provider),
		Model:            strings.TrimSpace(in.Model),
		TokensPrompt:     in.PromptTokens,
		TokensCompletion: in.CompletionTokens,
		DurationMs:       in.DurationMs,
	}
	return r.usageRepo.Create(ctx, evt)
}
