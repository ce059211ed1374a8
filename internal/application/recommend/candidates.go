package recommend

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"scholar-rec-api/internal/domain/entity"
	wfmodel "scholar-rec-api/internal/workflow/model"
	"scholar-rec-api/pkg/logger"
)

// updatePapers 刷新候选集：逐子查询拉取文献、落库、写入相似度索引
// 整步尽力而为：任何分支失败只记录诊断，总是推进到检索。
func (g *Graph) updatePapers(ctx context.Context, state *AgentState) GraphState {
	subqueries := state.Subqueries
	if len(subqueries) == 0 {
		subqueries = []wfmodel.Subquery{{Description: state.Query, Keywords: state.Keywords}}
	}

	var (
		mu      sync.Mutex
		fetched []*entity.Paper
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, sq := range subqueries {
		searchText := buildSearchText(sq)
		if searchText == "" {
			continue
		}
		eg.Go(func() error {
			papers, err := g.searcher.Search(egCtx, searchText)
			if err != nil {
				mu.Lock()
				state.recordError("update_papers/search", err)
				mu.Unlock()
				return nil // 单个子查询失败不打断其余分支
			}
			mu.Lock()
			fetched = append(fetched, papers...)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	if len(fetched) == 0 {
		state.recordStep(StateUpdatePapers, "no fresh candidates fetched")
		return StateGetBestPapers
	}

	report, err := g.papers.InsertMany(ctx, fetched)
	if err != nil {
		state.recordError("update_papers/insert", err)
	} else {
		state.recordStep(StateUpdatePapers, "fetched %d papers, %d newly stored",
			len(fetched), len(report.Inserted))
	}

	g.indexPapers(ctx, state, fetched)
	return StateGetBestPapers
}

// indexPapers 向量化并写入相似度索引
func (g *Graph) indexPapers(ctx context.Context, state *AgentState, papers []*entity.Paper) {
	// 主键为内容哈希，重复写入幂等，直接提交全部拉取结果
	seen := make(map[string]bool, len(papers))
	unique := make([]*entity.Paper, 0, len(papers))
	texts := make([]string, 0, len(papers))
	for _, p := range papers {
		if p.ContentHash == "" || seen[p.ContentHash] {
			continue
		}
		seen[p.ContentHash] = true
		unique = append(unique, p)
		texts = append(texts, p.EmbeddingText())
	}
	if len(unique) == 0 {
		return
	}

	vectors, err := g.embedder.Embed(ctx, texts)
	if err != nil {
		state.recordError("update_papers/embed", err)
		return
	}
	if len(vectors) != len(unique) {
		logger.Warn(ctx, "embedding count mismatch",
			"papers", len(unique), "vectors", len(vectors))
		return
	}

	items := make([]VectorItem, len(unique))
	for i, p := range unique {
		var pubTS int64
		if !p.PublicationDate.IsZero() {
			pubTS = p.PublicationDate.Unix()
		}
		items[i] = VectorItem{
			ContentHash:   p.ContentHash,
			Title:         p.Title,
			PublicationTS: pubTS,
			Vector:        vectors[i],
		}
	}
	if err := g.index.Upsert(ctx, items); err != nil {
		state.recordError("update_papers/index", err)
	}
}

// getBestPapers 以项目兴趣向量（或查询向量）检索最近邻，并还原为完整论文
func (g *Graph) getBestPapers(ctx context.Context, state *AgentState) GraphState {
	width := g.cfg.RetrievalWidth
	if width <= 0 {
		width = 10
	}
	if state.HasFilterInstructions {
		// 后置过滤不能饿死结果集，放宽召回
		width = g.cfg.RetrievalWidthFiltered
		if width <= 0 {
			width = 50
		}
	}

	queryVector, err := g.profileVector(ctx, state)
	if err != nil {
		state.recordError("get_best_papers/embed", err)
		state.recordStep(StateGetBestPapers, "no query vector available")
		return StateFilterPapers
	}

	hashes, err := g.index.Query(ctx, queryVector, width)
	if err != nil {
		state.recordError("get_best_papers/query", err)
		return StateFilterPapers
	}

	papers, err := g.papers.GetByHashes(ctx, hashes)
	if err != nil {
		state.recordError("get_best_papers/resolve", err)
		return StateFilterPapers
	}

	state.Candidates = papers
	state.recordStep(StateGetBestPapers, "retrieved %d candidates (width %d)", len(papers), width)
	return StateFilterPapers
}

// profileVector 取项目兴趣向量，项目缺失或向量为空时回退为查询向量
func (g *Graph) profileVector(ctx context.Context, state *AgentState) ([]float32, error) {
	if state.ProjectID != "" {
		project, err := g.projects.GetByID(ctx, state.ProjectID)
		if err != nil {
			state.recordError("get_best_papers/project", err)
		} else if project != nil && len(project.InterestEmbedding) > 0 {
			return project.InterestEmbedding, nil
		}
	}

	text := state.Query
	if len(state.Keywords) > 0 {
		text = text + "\n" + strings.Join(state.Keywords, ", ")
	}
	vectors, err := g.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return vectors[0], nil
}

// buildSearchText 组装子查询的检索文本
func buildSearchText(sq wfmodel.Subquery) string {
	parts := make([]string, 0, 1+len(sq.Keywords))
	if desc := strings.TrimSpace(sq.Description); desc != "" {
		parts = append(parts, desc)
	}
	for _, k := range sq.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}
