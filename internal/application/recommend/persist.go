package recommend

import (
	"context"
	"fmt"

	"scholar-rec-api/internal/domain/entity"
	wfmodel "scholar-rec-api/internal/workflow/model"
	"scholar-rec-api/pkg/logger"
)

// storeRecommendations 成功终态：分层、生成相关性摘要并落库
func (g *Graph) storeRecommendations(ctx context.Context, state *AgentState) GraphState {
	// 过滤保持来序，原始排名即候选在最近邻结果中的位置
	rankOf := make(map[string]int, len(state.Candidates))
	for i, p := range state.Candidates {
		rankOf[p.ContentHash] = i
	}

	ranked := make([]RankedPaper, 0, len(state.Filtered))
	for _, p := range state.Filtered {
		ranked = append(ranked, RankedPaper{Paper: p, Rank: rankOf[p.ContentHash]})
	}

	maxTop := g.cfg.TopPriorityCap
	if maxTop <= 0 {
		maxTop = 5
	}
	top, overflow := SplitByRank(ranked, maxTop)

	var (
		project *entity.Project
		err     error
	)
	if state.ProjectID != "" {
		project, err = g.projects.GetByID(ctx, state.ProjectID)
		if err != nil {
			state.recordError("store_recommendations/project", err)
		}
	}

	recommended := make([]*RecommendedPaper, 0, len(top)+len(overflow))
	rows := make([]*entity.Recommendation, 0, len(top)+len(overflow))

	appendTier := func(tier entity.RecommendationTier, papers []RankedPaper) {
		for _, rp := range papers {
			summary := g.summarize(ctx, state, project, rp.Paper)
			recommended = append(recommended, &RecommendedPaper{
				Paper:   rp.Paper,
				Summary: summary,
				Tier:    tier,
				Rank:    rp.Rank,
			})
			rows = append(rows, &entity.Recommendation{
				ProjectID:   state.ProjectID,
				RunID:       state.RunID,
				ContentHash: rp.Paper.ContentHash,
				Tier:        tier,
				Rank:        rp.Rank,
				Score:       rp.Paper.SimilarityScore,
				Summary:     summary,
			})
		}
	}
	appendTier(entity.TierTopPriority, top)
	appendTier(entity.TierRecommended, overflow)

	if state.ProjectID != "" && len(rows) > 0 {
		if err := g.recs.CreateBatch(ctx, rows); err != nil {
			state.recordError("store_recommendations/persist", err)
		}
		if err := g.projects.AppendQuery(ctx, state.ProjectID, state.Query); err != nil {
			state.recordError("store_recommendations/append_query", err)
		}
	}

	state.Payload = &Payload{
		State:  entity.TerminalSuccess,
		Papers: recommended,
		RunID:  state.RunID,
	}
	state.recordStep(StateStoreRecommendations, "terminal: success with %d recommendations", len(recommended))
	return StateDone
}

// summarize 生成单篇推荐的相关性摘要，失败时使用确定性兜底文案
func (g *Graph) summarize(ctx context.Context, state *AgentState, project *entity.Project, paper *entity.Paper) string {
	in := &wfmodel.SummaryInput{
		Query:         state.Query,
		PaperTitle:    paper.Title,
		PaperAbstract: paper.Abstract,
		Provider:      state.Provider,
		Model:         state.Model,
	}
	if project != nil {
		in.ProjectName = project.Name
		in.ProjectDescription = project.Description
	}

	summary, err := g.decisions.SummarizeRelevance(ctx, in)
	if err != nil {
		logger.Warn(ctx, "relevance summary generation failed, using fallback",
			"content_hash", paper.ContentHash, "error", err)
		return fmt.Sprintf("%q ranked among the closest matches for your query %q.", paper.Title, state.Query)
	}
	return summary
}
