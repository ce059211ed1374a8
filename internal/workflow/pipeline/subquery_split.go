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

// ExpandSubqueries 把多主题查询拆分为可独立检索的子查询
// 拆分失败时退化为单一子查询（原查询本身）。
func (g *DecisionPipeline) ExpandSubqueries(ctx context.Context, in *wfmodel.DecisionInput) ([]wfmodel.Subquery, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	vars := map[string]any{
		"query":    strings.TrimSpace(in.Query),
		"keywords": joinKeywords(in.Keywords),
	}

	raw, _, err := g.generate(ctx, "subquery_split", workflowprompt.PromptSubquerySplitV1,
		vars, in, "subquery_split", subquerySplitJSONSchema())
	if err != nil {
		return nil, err
	}

	var expansion wfmodel.SubqueryExpansion
	if err := json.Unmarshal([]byte(raw), &expansion); err != nil {
		logger.Warn(ctx, "subquery expansion output was not parseable, falling back to single query", "raw", raw)
		return fallbackSubqueries(in), nil
	}

	subqueries := make([]wfmodel.Subquery, 0, len(expansion.Subqueries))
	for _, sq := range expansion.Subqueries {
		sq.Description = strings.TrimSpace(sq.Description)
		if sq.Description == "" && len(sq.Keywords) == 0 {
			continue
		}
		subqueries = append(subqueries, sq)
	}
	if len(subqueries) == 0 {
		return fallbackSubqueries(in), nil
	}
	return subqueries, nil
}

func fallbackSubqueries(in *wfmodel.DecisionInput) []wfmodel.Subquery {
	return []wfmodel.Subquery{{
		Description: strings.TrimSpace(in.Query),
		Keywords:    in.Keywords,
	}}
}

func subquerySplitJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"status", "subqueries"},
		"properties": map[string]any{
			"status": map[string]any{"type": "string"},
			"subqueries": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"description"},
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"keywords": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	}
}
