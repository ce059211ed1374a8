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

// AssessQuality 对查询做质检分类
// 输出损坏或类别非法时退化为 accept，保证编排图总能继续推进。
func (g *DecisionPipeline) AssessQuality(ctx context.Context, in *wfmodel.DecisionInput) (*wfmodel.QCDecision, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	vars := map[string]any{
		"query":    strings.TrimSpace(in.Query),
		"keywords": joinKeywords(in.Keywords),
	}

	raw, _, err := g.generate(ctx, "quality_control", workflowprompt.PromptQualityControlV1,
		vars, in, "quality_control", qualityControlJSONSchema())
	if err != nil {
		return nil, err
	}

	decision := &wfmodel.QCDecision{}
	if err := json.Unmarshal([]byte(raw), decision); err != nil {
		logger.Warn(ctx, "quality control output was not parseable, defaulting to accept", "raw", raw)
		return &wfmodel.QCDecision{Action: wfmodel.QCActionAccept, Reason: "malformed decision output"}, nil
	}

	decision.Action = wfmodel.QCAction(strings.TrimSpace(strings.ToLower(string(decision.Action))))
	if !wfmodel.ValidQCAction(decision.Action) {
		logger.Warn(ctx, "quality control returned unknown action, defaulting to accept",
			"action", string(decision.Action))
		decision.Action = wfmodel.QCActionAccept
	}
	return decision, nil
}

func qualityControlJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"qc_decision"},
		"properties": map[string]any{
			"qc_decision": map[string]any{
				"type": "string",
				"enum": []any{
					string(wfmodel.QCActionAccept),
					string(wfmodel.QCActionReformulate),
					string(wfmodel.QCActionNarrow),
					string(wfmodel.QCActionBroaden),
					string(wfmodel.QCActionSplit),
					string(wfmodel.QCActionOutOfScope),
				},
			},
			"reason": map[string]any{"type": "string"},
		},
	}
}
