package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	wfmodel "scholar-rec-api/internal/workflow/model"
	workflowprompt "scholar-rec-api/internal/workflow/prompt"
)

// CheckScope 判定查询是否属于学术文献推荐的服务范围
// 判定有效时同时给出初始关键词。服务不可达返回错误，由调用方按策略处理。
func (g *DecisionPipeline) CheckScope(ctx context.Context, in *wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	vars := map[string]any{
		"query": strings.TrimSpace(in.Query),
	}

	raw, _, err := g.generate(ctx, "scope_check", workflowprompt.PromptScopeCheckV1,
		vars, in, "scope_check", scopeCheckJSONSchema())
	if err != nil {
		return nil, err
	}

	decision := &wfmodel.ScopeDecision{}
	if err := json.Unmarshal([]byte(raw), decision); err != nil {
		// 输出损坏按超纲处理：宁可让用户改写，也不能放进垃圾查询
		return &wfmodel.ScopeDecision{
			InScope: false,
			Reason:  "scope decision output was not parseable",
		}, nil
	}
	return decision, nil
}

func scopeCheckJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"in_scope"},
		"properties": map[string]any{
			"in_scope": map[string]any{"type": "boolean"},
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"reason": map[string]any{"type": "string"},
		},
	}
}
