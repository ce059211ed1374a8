package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	wfmodel "scholar-rec-api/internal/workflow/model"
	workflowprompt "scholar-rec-api/internal/workflow/prompt"
	"scholar-rec-api/pkg/logger"
)

// RefineKeywords 按质检决策改写关键词（reformulate / narrow / broaden）
// 改写失败时保留原关键词，不阻断编排图。
func (g *DecisionPipeline) RefineKeywords(ctx context.Context, in *wfmodel.RefineInput) ([]string, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if !in.Action.NeedsRefinement() {
		return in.Keywords, nil
	}

	vars := map[string]any{
		"query":    strings.TrimSpace(in.Query),
		"keywords": joinKeywords(in.Keywords),
		"action":   string(in.Action),
		"reason":   strings.TrimSpace(in.Reason),
	}

	raw, _, err := g.generate(ctx, "keyword_refine", workflowprompt.PromptKeywordRefineV1,
		vars, &in.DecisionInput, "keyword_refine", keywordRefineJSONSchema())
	if err != nil {
		return nil, err
	}

	var refined wfmodel.KeywordRefinement
	if err := json.Unmarshal([]byte(raw), &refined); err != nil || len(refined.Keywords) == 0 {
		logger.Warn(ctx, "keyword refinement output was not usable, keeping original keywords", "raw", raw)
		return in.Keywords, nil
	}
	return refined.Keywords, nil
}

func keywordRefineJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"status", "keywords"},
		"properties": map[string]any{
			"status": map[string]any{"type": "string"},
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}
