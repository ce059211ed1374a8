package recommend

import (
	"fmt"

	"scholar-rec-api/internal/domain/entity"
	wfmodel "scholar-rec-api/internal/workflow/model"
)

// GraphState 编排图状态
type GraphState string

const (
	StateIntake               GraphState = "intake"
	StateScopeGate            GraphState = "scope_gate"
	StateQualityControl       GraphState = "quality_control"
	StateExpandSubqueries     GraphState = "expand_subqueries"
	StateUpdatePapers         GraphState = "update_papers"
	StateGetBestPapers        GraphState = "get_best_papers"
	StateFilterPapers         GraphState = "filter_papers"
	StateStoreRecommendations GraphState = "store_recommendations"
	StateNoResults            GraphState = "no_results_handler"
	StateOutOfScope           GraphState = "out_of_scope_handler"
	StateDone                 GraphState = "done"
)

// StepRecord 单步执行记录，供 CLI 与诊断输出
type StepRecord struct {
	State       GraphState `json:"state"`
	Description string     `json:"description"`
}

// RecommendedPaper 最终负载中的一条推荐
type RecommendedPaper struct {
	Paper   *entity.Paper             `json:"paper"`
	Summary string                    `json:"summary"`
	Tier    entity.RecommendationTier `json:"tier"`
	Rank    int                       `json:"rank"`
}

// Payload 终态负载：三种结果之一
type Payload struct {
	State       entity.TerminalState `json:"state"`
	Papers      []*RecommendedPaper  `json:"papers,omitempty"`
	Explanation string               `json:"explanation,omitempty"`
	ClosestMiss map[string]string    `json:"closest_miss,omitempty"`
	RunID       string               `json:"run_id"`
}

// AgentState 单次编排运行的可变上下文
// 一次运行独占一个实例，绝不跨并发运行共享。
type AgentState struct {
	RunID     string
	ProjectID string
	Query     string
	Keywords  []string

	// Provider / Model 为本次运行的 LLM 覆盖项，空值回落配置默认
	Provider string
	Model    string

	ScopeReason string
	QCDecision  *wfmodel.QCDecision

	HasFilterInstructions bool
	FilterSpec            wfmodel.FilterSpec

	Subqueries []wfmodel.Subquery

	Candidates []*entity.Paper
	Filtered   []*entity.Paper

	// Errors 累积诊断文本，从不打断状态机推进
	Errors []string

	Steps   []StepRecord
	Payload *Payload
}

// decisionInput 构造携带运行级 LLM 覆盖项的决策输入
func (s *AgentState) decisionInput() *wfmodel.DecisionInput {
	return &wfmodel.DecisionInput{
		Query:    s.Query,
		Keywords: s.Keywords,
		Provider: s.Provider,
		Model:    s.Model,
	}
}

// recordError 追加一条诊断信息
func (s *AgentState) recordError(stage string, err error) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", stage, err))
}

// recordStep 追加一条执行记录
func (s *AgentState) recordStep(state GraphState, format string, args ...any) {
	s.Steps = append(s.Steps, StepRecord{
		State:       state,
		Description: fmt.Sprintf(format, args...),
	})
}
