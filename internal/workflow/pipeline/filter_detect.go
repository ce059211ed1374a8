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

// DetectFilterInstructions 检测查询是否内嵌过滤指令（时间、引用量、作者、期刊等约束）
// 输出损坏时按无过滤指令处理。
func (g *DecisionPipeline) DetectFilterInstructions(ctx context.Context, in *wfmodel.DecisionInput) (*wfmodel.FilterDetect, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	vars := map[string]any{
		"query": strings.TrimSpace(in.Query),
	}

	raw, _, err := g.generate(ctx, "filter_detect", workflowprompt.PromptFilterDetectV1,
		vars, in, "filter_detect", filterDetectJSONSchema())
	if err != nil {
		return nil, err
	}

	detect := &wfmodel.FilterDetect{}
	if err := json.Unmarshal([]byte(raw), detect); err != nil {
		logger.Warn(ctx, "filter detection output was not parseable, assuming no filters", "raw", raw)
		return &wfmodel.FilterDetect{HasFilterInstructions: false, Reason: "malformed detection output"}, nil
	}
	return detect, nil
}

func filterDetectJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"has_filter_instructions"},
		"properties": map[string]any{
			"has_filter_instructions": map[string]any{"type": "boolean"},
			"reason":                  map[string]any{"type": "string"},
		},
	}
}
