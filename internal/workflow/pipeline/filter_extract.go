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

// ExtractFilters 把查询中的自然语言过滤意图翻译为结构化过滤条件
// 翻译失败时返回空条件，调用方视作全数放行。
func (g *DecisionPipeline) ExtractFilters(ctx context.Context, in *wfmodel.DecisionInput) (wfmodel.FilterSpec, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	vars := map[string]any{
		"query": strings.TrimSpace(in.Query),
	}

	raw, _, err := g.generate(ctx, "filter_extract", workflowprompt.PromptFilterExtractV1,
		vars, in, "filter_extract", filterExtractJSONSchema())
	if err != nil {
		return nil, err
	}

	var extraction wfmodel.FilterExtraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		logger.Warn(ctx, "filter extraction output was not parseable, applying no filters", "raw", raw)
		return wfmodel.FilterSpec{}, nil
	}

	spec := make(wfmodel.FilterSpec, len(extraction.Filters))
	for metric, cond := range extraction.Filters {
		metric = strings.TrimSpace(strings.ToLower(metric))
		cond.Operator = strings.TrimSpace(cond.Operator)
		if metric == "" || cond.Operator == "" {
			continue
		}
		spec[metric] = cond
	}
	return spec, nil
}

func filterExtractJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"status", "filters"},
		"properties": map[string]any{
			"status": map[string]any{"type": "string"},
			"filters": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"operator", "threshold"},
					"properties": map[string]any{
						"operator":  map[string]any{"type": "string", "enum": []any{">=", "<=", ">", "<", "=="}},
						"threshold": map[string]any{"type": []any{"number", "string"}},
					},
				},
			},
		},
	}
}
