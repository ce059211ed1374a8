package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/repository"
	wfmodel "scholar-rec-api/internal/workflow/model"
	"scholar-rec-api/pkg/logger"
	"scholar-rec-api/pkg/metrics"
)

// ProjectMarker 查询尾部的项目标识前缀，形如 "... @project:<id>"
const ProjectMarker = "@project:"

// Graph 查询编排状态机
// 一次 Run 内的状态变更是单线程的；不同 Run 之间只共享存储与索引。
type Graph struct {
	decisions DecisionService
	searcher  PaperSearcher
	embedder  Embedder
	index     VectorIndex

	papers   repository.PaperRepository
	projects repository.ProjectRepository
	recs     repository.RecommendationRepository

	cfg *config.RecommendConfig
}

// NewGraph 创建查询编排图
func NewGraph(
	decisions DecisionService,
	searcher PaperSearcher,
	embedder Embedder,
	index VectorIndex,
	papers repository.PaperRepository,
	projects repository.ProjectRepository,
	recs repository.RecommendationRepository,
	cfg *config.RecommendConfig,
) *Graph {
	return &Graph{
		decisions: decisions,
		searcher:  searcher,
		embedder:  embedder,
		index:     index,
		papers:    papers,
		projects:  projects,
		recs:      recs,
		cfg:       cfg,
	}
}

// RunInput 单次查询编排的输入
type RunInput struct {
	ProjectID string
	Query     string
	Provider  string
	Model     string
}

// Run 端到端执行一次查询编排
// 不会返回缺失负载的状态：任何路径都收敛到恰好一个终态。
func (g *Graph) Run(ctx context.Context, in RunInput) (*AgentState, error) {
	state := &AgentState{
		RunID:     uuid.NewString(),
		ProjectID: in.ProjectID,
		Query:     in.Query,
		Provider:  in.Provider,
		Model:     in.Model,
	}
	ctx = logger.WithContext(ctx, logger.RunIDKey, state.RunID)

	start := time.Now()
	maxSteps := g.cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 12
	}

	current := StateIntake
	for step := 0; step < maxSteps && current != StateDone; step++ {
		stepStart := time.Now()
		next := g.execute(ctx, current, state)
		metrics.GraphStepDuration.WithLabelValues(string(current)).Observe(time.Since(stepStart).Seconds())
		current = next
	}

	// 步数耗尽仍未收敛：强制进入无结果终态，负载不能缺席
	if state.Payload == nil {
		logger.Warn(ctx, "graph exhausted step budget without reaching a terminal state",
			"max_steps", maxSteps)
		state.Payload = &Payload{
			State:       entity.TerminalNoResults,
			Explanation: "the query run did not converge within the step budget; please retry with a simpler query",
			RunID:       state.RunID,
		}
	}

	metrics.QueryRunsTotal.WithLabelValues(string(state.Payload.State)).Inc()
	metrics.QueryRunDuration.WithLabelValues(string(state.Payload.State)).Observe(time.Since(start).Seconds())
	return state, nil
}

// execute 执行单个状态，返回后继状态
func (g *Graph) execute(ctx context.Context, current GraphState, state *AgentState) GraphState {
	switch current {
	case StateIntake:
		return g.intake(state)
	case StateScopeGate:
		return g.scopeGate(ctx, state)
	case StateQualityControl:
		return g.qualityControl(ctx, state)
	case StateExpandSubqueries:
		return g.expandSubqueries(ctx, state)
	case StateUpdatePapers:
		return g.updatePapers(ctx, state)
	case StateGetBestPapers:
		return g.getBestPapers(ctx, state)
	case StateFilterPapers:
		return g.filterPapers(ctx, state)
	case StateStoreRecommendations:
		return g.storeRecommendations(ctx, state)
	case StateNoResults:
		return g.handleNoResults(state)
	case StateOutOfScope:
		return g.handleOutOfScope(state)
	default:
		return StateDone
	}
}

// intake 预处理：剥离项目标识、单词查询直接作为种子关键词
func (g *Graph) intake(state *AgentState) GraphState {
	query := strings.TrimSpace(state.Query)

	if idx := strings.LastIndex(query, ProjectMarker); idx >= 0 {
		marker := strings.TrimSpace(query[idx+len(ProjectMarker):])
		if marker != "" && !strings.ContainsAny(marker, " \t") {
			if state.ProjectID == "" {
				state.ProjectID = marker
			}
			query = strings.TrimSpace(query[:idx])
		}
	}
	state.Query = query

	if tokens := strings.Fields(query); len(tokens) == 1 {
		state.Keywords = []string{tokens[0]}
	}

	state.recordStep(StateIntake, "normalized query %q", state.Query)
	return StateScopeGate
}

// scopeGate 范围判定：超纲直接终止，有效时吸收初始关键词
func (g *Graph) scopeGate(ctx context.Context, state *AgentState) GraphState {
	decision, err := g.decisions.CheckScope(ctx, state.decisionInput())
	if err != nil {
		state.recordError("scope_gate", err)
		if g.cfg.ScopeFailOpen {
			state.recordStep(StateScopeGate, "scope service unavailable, proceeding by fail-open policy")
			return StateQualityControl
		}
		state.ScopeReason = "the scope check service was unavailable"
		state.recordStep(StateScopeGate, "scope service unavailable, rejecting by fail-closed policy")
		return StateOutOfScope
	}

	if !decision.InScope {
		state.ScopeReason = decision.Reason
		state.recordStep(StateScopeGate, "query judged out of scope: %s", decision.Reason)
		return StateOutOfScope
	}

	if len(state.Keywords) == 0 {
		state.Keywords = decision.Keywords
	}
	state.recordStep(StateScopeGate, "query in scope, keywords: %s", strings.Join(state.Keywords, ", "))
	return StateQualityControl
}

// qualityControl 两次独立判定：过滤指令检测 + 质检分类
func (g *Graph) qualityControl(ctx context.Context, state *AgentState) GraphState {
	din := state.decisionInput()

	detect, err := g.decisions.DetectFilterInstructions(ctx, din)
	if err != nil {
		state.recordError("filter_detect", err)
	} else {
		state.HasFilterInstructions = detect.HasFilterInstructions
	}

	decision, err := g.decisions.AssessQuality(ctx, din)
	if err != nil {
		// 质检不可达按 accept 推进，检索永远值得一试
		state.recordError("quality_control", err)
		decision = &wfmodel.QCDecision{Action: wfmodel.QCActionAccept, Reason: "quality control unavailable"}
	}
	state.QCDecision = decision
	state.recordStep(StateQualityControl, "qc decision %q (filters: %t)",
		decision.Action, state.HasFilterInstructions)

	switch {
	case decision.Action == wfmodel.QCActionOutOfScope:
		state.ScopeReason = decision.Reason
		return StateOutOfScope
	case decision.Action == wfmodel.QCActionSplit:
		return StateExpandSubqueries
	case decision.Action.NeedsRefinement():
		refined, err := g.decisions.RefineKeywords(ctx, &wfmodel.RefineInput{
			DecisionInput: *din,
			Action:        decision.Action,
			Reason:        decision.Reason,
		})
		if err != nil {
			state.recordError("keyword_refine", err)
		} else {
			state.Keywords = refined
		}
		return StateUpdatePapers
	default:
		return StateUpdatePapers
	}
}

// expandSubqueries 多主题拆分
func (g *Graph) expandSubqueries(ctx context.Context, state *AgentState) GraphState {
	subqueries, err := g.decisions.ExpandSubqueries(ctx, state.decisionInput())
	if err != nil {
		state.recordError("expand_subqueries", err)
		subqueries = []wfmodel.Subquery{{Description: state.Query, Keywords: state.Keywords}}
	}
	state.Subqueries = subqueries
	state.recordStep(StateExpandSubqueries, "expanded into %d subqueries", len(subqueries))
	return StateUpdatePapers
}

// handleOutOfScope 超纲终态
func (g *Graph) handleOutOfScope(state *AgentState) GraphState {
	reason := strings.TrimSpace(state.ScopeReason)
	if reason == "" {
		reason = "the query does not look like a request for academic literature"
	}
	state.Payload = &Payload{
		State:       entity.TerminalOutOfScope,
		Explanation: "this query is out of scope: " + reason + ". Please rephrase it as a research topic.",
		RunID:       state.RunID,
	}
	state.recordStep(StateOutOfScope, "terminal: out_of_scope")
	return StateDone
}
