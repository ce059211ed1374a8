package pipeline

import (
	"context"
	"fmt"
	"strings"

	wfmodel "scholar-rec-api/internal/workflow/model"
	wfnode "scholar-rec-api/internal/workflow/node"
	workflowprompt "scholar-rec-api/internal/workflow/prompt"
)

// SummarizeRelevance 为单篇推荐生成一句话的相关性说明
// 生成失败时由调用方使用确定性兜底文案。
func (g *DecisionPipeline) SummarizeRelevance(ctx context.Context, in *wfmodel.SummaryInput) (string, error) {
	if in == nil {
		return "", fmt.Errorf("input is nil")
	}

	vars := map[string]any{
		"project_name":        strings.TrimSpace(in.ProjectName),
		"project_description": wfnode.TruncateByRunes(strings.TrimSpace(in.ProjectDescription), 2000),
		"query":               strings.TrimSpace(in.Query),
		"paper_title":         strings.TrimSpace(in.PaperTitle),
		"paper_abstract":      wfnode.TruncateByRunes(strings.TrimSpace(in.PaperAbstract), 4000),
	}

	din := &wfmodel.DecisionInput{
		Provider:    in.Provider,
		Model:       in.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}

	// 摘要是自由文本，不走 json_schema
	raw, _, err := g.generate(ctx, "summary", workflowprompt.PromptSummaryV1, vars, din, "", nil)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", fmt.Errorf("empty summary output")
	}
	return summary, nil
}
