// Package pipeline 实现基于 LLM 的查询决策服务
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	llmctx "scholar-rec-api/internal/domain/service"
	wfmodel "scholar-rec-api/internal/workflow/model"
	wfnode "scholar-rec-api/internal/workflow/node"
	"scholar-rec-api/internal/workflow/port"
	workflowprompt "scholar-rec-api/internal/workflow/prompt"
	"scholar-rec-api/pkg/metrics"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// DecisionPipeline 查询编排所需的全部 LLM 决策入口
type DecisionPipeline struct {
	factory port.ChatModelFactory
}

// NewDecisionPipeline 创建决策管线
func NewDecisionPipeline(factory port.ChatModelFactory) *DecisionPipeline {
	return &DecisionPipeline{factory: factory}
}

// generate 渲染模板、调用模型并截取第一个 JSON 值
// 优先携带 json_schema 响应格式，提供商不支持时降级为纯提示词。
func (g *DecisionPipeline) generate(
	ctx context.Context,
	workflow string,
	promptID workflowprompt.PromptID,
	vars map[string]any,
	in *wfmodel.DecisionInput,
	schemaName string,
	schema map[string]any,
) (string, wfmodel.LLMUsageMeta, error) {
	meta := wfmodel.LLMUsageMeta{GeneratedAt: time.Now().UTC()}

	if g == nil || g.factory == nil {
		return "", meta, fmt.Errorf("llm factory not configured")
	}

	tpl, err := defaultPromptRegistry.ChatTemplate(promptID)
	if err != nil {
		return "", meta, err
	}

	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", meta, err
	}

	provider := strings.TrimSpace(in.Provider)
	ctx = llmctx.WithWorkflowProvider(ctx, workflow, provider)
	chatModel, err := g.factory.Get(ctx, provider)
	if err != nil {
		return "", meta, err
	}

	start := time.Now()
	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(in, schemaName, schema, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		outMsg, err = chatModel.Generate(ctx, msgs, buildModelOptions(in, schemaName, schema, false)...)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallsTotal.WithLabelValues(workflow, status).Inc()
	metrics.LLMCallDuration.WithLabelValues(provider, in.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", meta, err
	}
	if outMsg == nil {
		return "", meta, fmt.Errorf("empty llm response")
	}

	meta.Provider = provider
	meta.Model = strings.TrimSpace(in.Model)
	if in.Temperature != nil {
		meta.Temperature = float64(*in.Temperature)
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
		metrics.LLMTokensUsed.WithLabelValues(provider, meta.Model, "prompt").Add(float64(meta.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(provider, meta.Model, "completion").Add(float64(meta.CompletionTokens))
	}

	raw := wfnode.ExtractJSONObject(outMsg.Content)
	return unwrapSingletonList(raw), meta, nil
}

// buildModelOptions 组装模型调用选项
func buildModelOptions(in *wfmodel.DecisionInput, schemaName string, schema map[string]any, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	if enableSchema && schema != nil {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   schemaName,
					"strict": false,
					"schema": schema,
				},
			},
		}))
	}
	return opts
}

// unwrapSingletonList 模型偶尔会把对象包在单元素数组里，取出首个元素
func unwrapSingletonList(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil || len(items) == 0 {
		return trimmed
	}
	return strings.TrimSpace(string(items[0]))
}

// joinKeywords 关键词拼接为提示词变量
func joinKeywords(keywords []string) string {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return strings.Join(cleaned, ", ")
}
