package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/repository"
	wfmodel "scholar-rec-api/internal/workflow/model"
)

// ---- 确定性桩实现 ----

type stubDecisions struct {
	scope      func(in *wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error)
	quality    func(in *wfmodel.DecisionInput) (*wfmodel.QCDecision, error)
	detect     func(in *wfmodel.DecisionInput) (*wfmodel.FilterDetect, error)
	refine     func(in *wfmodel.RefineInput) ([]string, error)
	expand     func(in *wfmodel.DecisionInput) ([]wfmodel.Subquery, error)
	extract    func(in *wfmodel.DecisionInput) (wfmodel.FilterSpec, error)
	summarize  func(in *wfmodel.SummaryInput) (string, error)
}

func (s *stubDecisions) CheckScope(_ context.Context, in *wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error) {
	if s.scope != nil {
		return s.scope(in)
	}
	return &wfmodel.ScopeDecision{InScope: true, Keywords: []string{"graph", "neural"}}, nil
}

func (s *stubDecisions) AssessQuality(_ context.Context, in *wfmodel.DecisionInput) (*wfmodel.QCDecision, error) {
	if s.quality != nil {
		return s.quality(in)
	}
	return &wfmodel.QCDecision{Action: wfmodel.QCActionAccept}, nil
}

func (s *stubDecisions) DetectFilterInstructions(_ context.Context, in *wfmodel.DecisionInput) (*wfmodel.FilterDetect, error) {
	if s.detect != nil {
		return s.detect(in)
	}
	return &wfmodel.FilterDetect{HasFilterInstructions: false}, nil
}

func (s *stubDecisions) RefineKeywords(_ context.Context, in *wfmodel.RefineInput) ([]string, error) {
	if s.refine != nil {
		return s.refine(in)
	}
	return in.Keywords, nil
}

func (s *stubDecisions) ExpandSubqueries(_ context.Context, in *wfmodel.DecisionInput) ([]wfmodel.Subquery, error) {
	if s.expand != nil {
		return s.expand(in)
	}
	return []wfmodel.Subquery{{Description: in.Query, Keywords: in.Keywords}}, nil
}

func (s *stubDecisions) ExtractFilters(_ context.Context, in *wfmodel.DecisionInput) (wfmodel.FilterSpec, error) {
	if s.extract != nil {
		return s.extract(in)
	}
	return wfmodel.FilterSpec{}, nil
}

func (s *stubDecisions) SummarizeRelevance(_ context.Context, in *wfmodel.SummaryInput) (string, error) {
	if s.summarize != nil {
		return s.summarize(in)
	}
	return "closely related to your query", nil
}

type stubSearcher struct {
	mu     sync.Mutex
	papers []*entity.Paper
	err    error
	calls  int
}

func (s *stubSearcher) Search(_ context.Context, _ string) ([]*entity.Paper, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.papers, s.err
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type stubIndex struct {
	upserted []VectorItem
	hashes   []string
	vectors  map[string][]float32
}

func (s *stubIndex) Upsert(_ context.Context, items []VectorItem) error {
	s.upserted = append(s.upserted, items...)
	return nil
}

func (s *stubIndex) Query(_ context.Context, _ []float32, k int) ([]string, error) {
	if len(s.hashes) > k {
		return s.hashes[:k], nil
	}
	return s.hashes, nil
}

func (s *stubIndex) GetVector(_ context.Context, hash string) ([]float32, error) {
	return s.vectors[hash], nil
}

type memPaperRepo struct {
	byHash map[string]*entity.Paper
}

func newMemPaperRepo() *memPaperRepo {
	return &memPaperRepo{byHash: make(map[string]*entity.Paper)}
}

func (r *memPaperRepo) InsertMany(_ context.Context, papers []*entity.Paper) (*repository.InsertReport, error) {
	report := &repository.InsertReport{}
	for _, p := range papers {
		if !p.Valid() {
			report.Skipped = append(report.Skipped, p.ExternalID)
			continue
		}
		if p.ContentHash == "" {
			p.ComputeContentHash()
		}
		if _, ok := r.byHash[p.ContentHash]; ok {
			report.Skipped = append(report.Skipped, p.ContentHash)
			continue
		}
		r.byHash[p.ContentHash] = p
		report.Inserted = append(report.Inserted, p.ContentHash)
	}
	return report, nil
}

func (r *memPaperRepo) GetByHashes(_ context.Context, hashes []string) ([]*entity.Paper, error) {
	out := make([]*entity.Paper, 0, len(hashes))
	for _, h := range hashes {
		if p, ok := r.byHash[h]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaperRepo) GetByHash(_ context.Context, hash string) (*entity.Paper, error) {
	return r.byHash[hash], nil
}

func (r *memPaperRepo) UpdateByHash(_ context.Context, hash string, updated *entity.Paper) (string, error) {
	delete(r.byHash, hash)
	newHash := updated.ComputeContentHash()
	r.byHash[newHash] = updated
	return newHash, nil
}

func (r *memPaperRepo) DeleteByHash(_ context.Context, hash string) (bool, error) {
	_, ok := r.byHash[hash]
	delete(r.byHash, hash)
	return ok, nil
}

func (r *memPaperRepo) List(_ context.Context, p repository.Pagination) (*repository.PagedResult[*entity.Paper], error) {
	items := make([]*entity.Paper, 0, len(r.byHash))
	for _, paper := range r.byHash {
		items = append(items, paper)
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

type memProjectRepo struct {
	byID    map[string]*entity.Project
	queries map[string][]string
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{byID: make(map[string]*entity.Project), queries: make(map[string][]string)}
}

func (r *memProjectRepo) Create(_ context.Context, p *entity.Project) error {
	r.byID[p.ID] = p
	return nil
}

func (r *memProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	return r.byID[id], nil
}

func (r *memProjectRepo) Update(_ context.Context, p *entity.Project) error {
	r.byID[p.ID] = p
	return nil
}

func (r *memProjectRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *memProjectRepo) List(_ context.Context, p repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	items := make([]*entity.Project, 0, len(r.byID))
	for _, project := range r.byID {
		items = append(items, project)
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func (r *memProjectRepo) UpdateInterestEmbedding(_ context.Context, id string, embedding []float32) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("project %s not found", id)
	}
	p.InterestEmbedding = embedding
	return nil
}

func (r *memProjectRepo) AppendQuery(_ context.Context, id string, query string) error {
	r.queries[id] = append(r.queries[id], query)
	return nil
}

type memRecRepo struct {
	byID    map[string]*entity.Recommendation
	created []*entity.Recommendation
	ratings map[string]int
}

func newMemRecRepo() *memRecRepo {
	return &memRecRepo{byID: make(map[string]*entity.Recommendation), ratings: make(map[string]int)}
}

func (r *memRecRepo) CreateBatch(_ context.Context, recs []*entity.Recommendation) error {
	for i, rec := range recs {
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("rec-%d", len(r.byID)+i)
		}
		r.byID[rec.ID] = rec
	}
	r.created = append(r.created, recs...)
	return nil
}

func (r *memRecRepo) GetByID(_ context.Context, id string) (*entity.Recommendation, error) {
	return r.byID[id], nil
}

func (r *memRecRepo) ListByProject(_ context.Context, projectID string, p repository.Pagination) (*repository.PagedResult[*entity.Recommendation], error) {
	var items []*entity.Recommendation
	for _, rec := range r.byID {
		if rec.ProjectID == projectID {
			items = append(items, rec)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func (r *memRecRepo) ListByRun(_ context.Context, runID string) ([]*entity.Recommendation, error) {
	var items []*entity.Recommendation
	for _, rec := range r.byID {
		if rec.RunID == runID {
			items = append(items, rec)
		}
	}
	return items, nil
}

func (r *memRecRepo) UpdateRating(_ context.Context, id string, rating int) error {
	rec, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("recommendation %s not found", id)
	}
	rec.Rating = rating
	r.ratings[id] = rating
	return nil
}

// ---- 测试脚手架 ----

type graphFixture struct {
	graph     *Graph
	decisions *stubDecisions
	searcher  *stubSearcher
	index     *stubIndex
	papers    *memPaperRepo
	projects  *memProjectRepo
	recs      *memRecRepo
	cfg       *config.RecommendConfig
}

func newGraphFixture() *graphFixture {
	f := &graphFixture{
		decisions: &stubDecisions{},
		searcher:  &stubSearcher{},
		index:     &stubIndex{vectors: make(map[string][]float32)},
		papers:    newMemPaperRepo(),
		projects:  newMemProjectRepo(),
		recs:      newMemRecRepo(),
		cfg: &config.RecommendConfig{
			MaxSteps:               12,
			RetrievalWidth:         10,
			RetrievalWidthFiltered: 50,
			FilterCap:              10,
			TopPriorityCap:         5,
			ScopeFailOpen:          true,
			FeedbackStep:           0.05,
		},
	}
	f.graph = NewGraph(f.decisions, f.searcher, stubEmbedder{}, f.index,
		f.papers, f.projects, f.recs, f.cfg)
	return f
}

func (f *graphFixture) seedPapers(n int) []*entity.Paper {
	papers := paperFixture(n, nil)
	f.searcher.papers = papers
	hashes := make([]string, n)
	for i, p := range papers {
		hashes[i] = p.ContentHash
	}
	f.index.hashes = hashes
	return papers
}

func stepStates(state *AgentState) []GraphState {
	out := make([]GraphState, len(state.Steps))
	for i, s := range state.Steps {
		out[i] = s.State
	}
	return out
}

// ---- 场景 ----

func TestGraphRun_SuccessPath(t *testing.T) {
	f := newGraphFixture()
	f.seedPapers(7)

	state, err := f.graph.Run(context.Background(), RunInput{Query: "graph neural networks for molecules"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalSuccess, state.Payload.State)
	assert.Equal(t, state.RunID, state.Payload.RunID)
	require.Len(t, state.Payload.Papers, 7)

	// 排名 < 5 的进入高优层，其余落入普通层
	for _, rp := range state.Payload.Papers {
		if rp.Rank < 5 {
			assert.Equal(t, entity.TierTopPriority, rp.Tier)
		} else {
			assert.Equal(t, entity.TierRecommended, rp.Tier)
		}
		assert.NotEmpty(t, rp.Summary)
	}

	assert.Empty(t, state.Errors)
	assert.LessOrEqual(t, len(state.Steps), 12)
}

func TestGraphRun_OutOfScope(t *testing.T) {
	f := newGraphFixture()
	f.decisions.scope = func(*wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error) {
		return &wfmodel.ScopeDecision{InScope: false, Reason: "not an academic topic"}, nil
	}

	state, err := f.graph.Run(context.Background(), RunInput{Query: "best pizza in town"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalOutOfScope, state.Payload.State)
	assert.Contains(t, state.Payload.Explanation, "not an academic topic")
	assert.Empty(t, state.Payload.Papers)
	assert.Zero(t, f.searcher.calls)
}

func TestGraphRun_ScopeGateFailOpen(t *testing.T) {
	f := newGraphFixture()
	f.cfg.ScopeFailOpen = true
	f.decisions.scope = func(*wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error) {
		return nil, errors.New("scope service down")
	}
	f.seedPapers(3)

	state, err := f.graph.Run(context.Background(), RunInput{Query: "transformer architectures"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalSuccess, state.Payload.State)
	assert.NotEmpty(t, state.Errors)
}

func TestGraphRun_ScopeGateFailClosed(t *testing.T) {
	f := newGraphFixture()
	f.cfg.ScopeFailOpen = false
	f.decisions.scope = func(*wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error) {
		return nil, errors.New("scope service down")
	}

	state, err := f.graph.Run(context.Background(), RunInput{Query: "transformer architectures"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalOutOfScope, state.Payload.State)
	assert.NotEmpty(t, state.Errors)
}

func TestGraphRun_QualityControlUnavailableStillSearches(t *testing.T) {
	f := newGraphFixture()
	f.decisions.quality = func(*wfmodel.DecisionInput) (*wfmodel.QCDecision, error) {
		return nil, errors.New("qc service down")
	}
	f.seedPapers(2)

	state, err := f.graph.Run(context.Background(), RunInput{Query: "protein folding"})

	require.NoError(t, err)
	assert.Equal(t, entity.TerminalSuccess, state.Payload.State)
	assert.NotEmpty(t, state.Errors)
	assert.Positive(t, f.searcher.calls)
}

func TestGraphRun_SplitPathSearchesEachSubquery(t *testing.T) {
	f := newGraphFixture()
	f.decisions.quality = func(*wfmodel.DecisionInput) (*wfmodel.QCDecision, error) {
		return &wfmodel.QCDecision{Action: wfmodel.QCActionSplit, Reason: "two distinct topics"}, nil
	}
	f.decisions.expand = func(*wfmodel.DecisionInput) ([]wfmodel.Subquery, error) {
		return []wfmodel.Subquery{
			{Description: "graph neural networks", Keywords: []string{"gnn"}},
			{Description: "drug discovery", Keywords: []string{"pharmacology"}},
		}, nil
	}
	f.seedPapers(4)

	state, err := f.graph.Run(context.Background(), RunInput{Query: "gnns and drug discovery"})

	require.NoError(t, err)
	assert.Equal(t, entity.TerminalSuccess, state.Payload.State)
	assert.Equal(t, 2, f.searcher.calls)
	assert.Contains(t, stepStates(state), StateExpandSubqueries)
}

func TestGraphRun_RefinementPathRewritesKeywords(t *testing.T) {
	f := newGraphFixture()
	f.decisions.quality = func(*wfmodel.DecisionInput) (*wfmodel.QCDecision, error) {
		return &wfmodel.QCDecision{Action: wfmodel.QCActionBroaden, Reason: "too narrow"}, nil
	}
	f.decisions.refine = func(in *wfmodel.RefineInput) ([]string, error) {
		assert.Equal(t, wfmodel.QCActionBroaden, in.Action)
		return []string{"broadened", "keywords"}, nil
	}
	f.seedPapers(1)

	state, err := f.graph.Run(context.Background(), RunInput{Query: "an extremely specific query"})

	require.NoError(t, err)
	assert.Equal(t, entity.TerminalSuccess, state.Payload.State)
	assert.Equal(t, []string{"broadened", "keywords"}, state.Keywords)
}

func TestGraphRun_NoResultsWithClosestMiss(t *testing.T) {
	f := newGraphFixture()
	f.seedPapers(3) // citation counts 0,10,20
	f.decisions.detect = func(*wfmodel.DecisionInput) (*wfmodel.FilterDetect, error) {
		return &wfmodel.FilterDetect{HasFilterInstructions: true}, nil
	}
	f.decisions.extract = func(*wfmodel.DecisionInput) (wfmodel.FilterSpec, error) {
		return wfmodel.FilterSpec{
			"citation_count": {Operator: ">=", Threshold: "1000"},
		}, nil
	}

	state, err := f.graph.Run(context.Background(), RunInput{Query: "highly cited surveys only"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalNoResults, state.Payload.State)
	assert.Contains(t, state.Payload.ClosestMiss["citation_count"], "best available is 20")
}

func TestGraphRun_EmptySearchStillTerminates(t *testing.T) {
	f := newGraphFixture()
	// 检索器什么都没拉到，索引里也没有可召回的内容

	state, err := f.graph.Run(context.Background(), RunInput{Query: "some obscure topic"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalNoResults, state.Payload.State)
}

func TestGraphRun_SearchErrorIsDiagnosticNotFatal(t *testing.T) {
	f := newGraphFixture()
	f.searcher.err = errors.New("upstream 503")

	state, err := f.graph.Run(context.Background(), RunInput{Query: "quantum error correction"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalNoResults, state.Payload.State)
	assert.NotEmpty(t, state.Errors)
}

func TestGraphRun_StepBudgetForcesTerminalPayload(t *testing.T) {
	f := newGraphFixture()
	f.cfg.MaxSteps = 2
	f.seedPapers(3)

	state, err := f.graph.Run(context.Background(), RunInput{Query: "a query that cannot finish in two steps"})

	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, entity.TerminalNoResults, state.Payload.State)
	assert.Contains(t, state.Payload.Explanation, "did not converge")
}

func TestGraphRun_PersistsForProject(t *testing.T) {
	f := newGraphFixture()
	f.seedPapers(2)
	f.projects.byID["p1"] = &entity.Project{ID: "p1", Name: "My Survey", InterestEmbedding: []float32{1, 0, 0}}

	state, err := f.graph.Run(context.Background(), RunInput{ProjectID: "p1", Query: "diffusion models"})

	require.NoError(t, err)
	assert.Equal(t, entity.TerminalSuccess, state.Payload.State)
	require.Len(t, f.recs.created, 2)
	for _, rec := range f.recs.created {
		assert.Equal(t, "p1", rec.ProjectID)
		assert.Equal(t, state.RunID, rec.RunID)
	}
	assert.Equal(t, []string{"diffusion models"}, f.projects.queries["p1"])
}

func TestGraphRun_AnonymousRunSkipsPersistence(t *testing.T) {
	f := newGraphFixture()
	f.seedPapers(2)

	state, err := f.graph.Run(context.Background(), RunInput{Query: "diffusion models"})

	require.NoError(t, err)
	assert.Equal(t, entity.TerminalSuccess, state.Payload.State)
	assert.Empty(t, f.recs.created)
}

func TestGraphRun_ProjectMarkerInQuery(t *testing.T) {
	f := newGraphFixture()
	f.seedPapers(1)
	f.projects.byID["abc-123"] = &entity.Project{ID: "abc-123", Name: "Marked"}

	state, err := f.graph.Run(context.Background(), RunInput{Query: "federated learning @project:abc-123"})

	require.NoError(t, err)
	assert.Equal(t, "federated learning", state.Query)
	assert.Equal(t, "abc-123", state.ProjectID)
}

func TestGraphRun_SingleWordQuerySeedsKeyword(t *testing.T) {
	f := newGraphFixture()
	f.seedPapers(1)
	// 单词查询直接作为种子关键词，范围判定不再覆盖
	f.decisions.scope = func(in *wfmodel.DecisionInput) (*wfmodel.ScopeDecision, error) {
		assert.Equal(t, []string{"superconductivity"}, in.Keywords)
		return &wfmodel.ScopeDecision{InScope: true, Keywords: []string{"ignored"}}, nil
	}

	state, err := f.graph.Run(context.Background(), RunInput{Query: "superconductivity"})

	require.NoError(t, err)
	assert.Equal(t, []string{"superconductivity"}, state.Keywords)
}

func TestGraphRun_SummaryFallbackOnError(t *testing.T) {
	f := newGraphFixture()
	f.seedPapers(1)
	f.decisions.summarize = func(*wfmodel.SummaryInput) (string, error) {
		return "", errors.New("llm timeout")
	}

	state, err := f.graph.Run(context.Background(), RunInput{Query: "spiking neural networks"})

	require.NoError(t, err)
	require.Len(t, state.Payload.Papers, 1)
	assert.Contains(t, state.Payload.Papers[0].Summary, "ranked among the closest matches")
}
