package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scholar-rec-api/internal/domain/entity"
	wfmodel "scholar-rec-api/internal/workflow/model"
	"scholar-rec-api/pkg/metrics"
)

// 可过滤的论文指标名
const (
	MetricPublicationDate    = "publication_date"
	MetricCitationCount      = "citation_count"
	MetricFWCI               = "fwci"
	MetricCitationPercentile = "citation_percentile"
)

// filterPapers 应用自然语言过滤意图
// 无过滤指令或无候选时原样放行；过滤后为空则进入无结果诊断。
func (g *Graph) filterPapers(ctx context.Context, state *AgentState) GraphState {
	if !state.HasFilterInstructions || len(state.Candidates) == 0 {
		state.Filtered = state.Candidates
		state.recordStep(StateFilterPapers, "no filtering applied, %d candidates pass through", len(state.Filtered))
		if len(state.Filtered) == 0 {
			return StateNoResults
		}
		return StateStoreRecommendations
	}

	spec, err := g.decisions.ExtractFilters(ctx, state.decisionInput())
	if err != nil {
		state.recordError("filter_papers", err)
		spec = wfmodel.FilterSpec{}
	}
	state.FilterSpec = spec

	keep := g.cfg.FilterCap
	if keep <= 0 {
		keep = 10
	}
	state.Filtered = ApplyFilterSpec(state.Candidates, spec, keep)
	state.recordStep(StateFilterPapers, "%d of %d candidates kept after filtering",
		len(state.Filtered), len(state.Candidates))

	if len(state.Filtered) == 0 {
		return StateNoResults
	}
	return StateStoreRecommendations
}

// ApplyFilterSpec 按过滤条件筛选候选，保持来序，截断到 keep 条
func ApplyFilterSpec(candidates []*entity.Paper, spec wfmodel.FilterSpec, keep int) []*entity.Paper {
	kept := make([]*entity.Paper, 0, len(candidates))
	for _, p := range candidates {
		if paperMatches(p, spec) {
			kept = append(kept, p)
			if len(kept) >= keep {
				break
			}
		}
	}
	return kept
}

// paperMatches 论文是否满足全部过滤条件；未知指标直接忽略
func paperMatches(p *entity.Paper, spec wfmodel.FilterSpec) bool {
	for metric, cond := range spec {
		switch metric {
		case MetricPublicationDate:
			threshold, ok := cond.Threshold.Date()
			if !ok {
				continue
			}
			if p.PublicationDate.IsZero() || !compareDate(p.PublicationDate, cond.Operator, threshold) {
				metrics.PapersFilteredTotal.WithLabelValues(metric).Inc()
				return false
			}
		case MetricCitationCount, MetricFWCI, MetricCitationPercentile:
			threshold, ok := cond.Threshold.Float()
			if !ok {
				continue
			}
			if !compareFloat(metricValue(p, metric), cond.Operator, threshold) {
				metrics.PapersFilteredTotal.WithLabelValues(metric).Inc()
				return false
			}
		}
	}
	return true
}

// metricValue 取论文的数值指标
func metricValue(p *entity.Paper, metric string) float64 {
	switch metric {
	case MetricCitationCount:
		return float64(p.CitationCount)
	case MetricFWCI:
		return p.FWCI
	case MetricCitationPercentile:
		return p.CitationPercentile
	default:
		return 0
	}
}

func compareFloat(value float64, op string, threshold float64) bool {
	switch op {
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case "==":
		return value == threshold
	default:
		return true
	}
}

func compareDate(value time.Time, op string, threshold time.Time) bool {
	switch op {
	case ">=":
		return !value.Before(threshold)
	case "<=":
		return !value.After(threshold)
	case ">":
		return value.After(threshold)
	case "<":
		return value.Before(threshold)
	case "==":
		return value.Equal(threshold)
	default:
		return true
	}
}

// handleNoResults 无结果终态：对原始候选集计算各指标的"最接近未达标值"
func (g *Graph) handleNoResults(state *AgentState) GraphState {
	state.Payload = &Payload{
		State:       entity.TerminalNoResults,
		Explanation: "no papers satisfied the requested constraints",
		ClosestMiss: ClosestMiss(state.Candidates, state.FilterSpec),
		RunID:       state.RunID,
	}
	state.recordStep(StateNoResults, "terminal: no_results")
	return StateDone
}

// ClosestMiss 对每个过滤指标给出候选集中最接近阈值的实际值
// 让用户知道"差多少"，而不是只看到一个空列表。
// 下界条件（>= / >）离阈值最近的是最大值，上界条件（<= / <）则是最小值。
func ClosestMiss(candidates []*entity.Paper, spec wfmodel.FilterSpec) map[string]string {
	if len(candidates) == 0 {
		return nil
	}
	miss := make(map[string]string, len(spec))

	for metric, cond := range spec {
		upper := isUpperBound(cond.Operator)
		switch metric {
		case MetricPublicationDate:
			var best time.Time
			for _, p := range candidates {
				if p.PublicationDate.IsZero() {
					continue
				}
				if best.IsZero() ||
					(upper && p.PublicationDate.Before(best)) ||
					(!upper && p.PublicationDate.After(best)) {
					best = p.PublicationDate
				}
			}
			if !best.IsZero() {
				word := "newest"
				if upper {
					word = "oldest"
				}
				miss[metric] = fmt.Sprintf("requested %s %s, %s available is %s",
					cond.Operator, strings.TrimSpace(string(cond.Threshold)), word, best.Format("2006-01-02"))
			}
		case MetricCitationCount, MetricFWCI, MetricCitationPercentile:
			best := metricValue(candidates[0], metric)
			for _, p := range candidates[1:] {
				v := metricValue(p, metric)
				if (upper && v < best) || (!upper && v > best) {
					best = v
				}
			}
			word := "best"
			if upper {
				word = "lowest"
			}
			miss[metric] = fmt.Sprintf("requested %s %s, %s available is %g",
				cond.Operator, strings.TrimSpace(string(cond.Threshold)), word, best)
		}
	}
	return miss
}

// isUpperBound 条件是否为上界（阈值之下才满足）
func isUpperBound(op string) bool {
	return op == "<=" || op == "<"
}
