package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/repository"
)

// memPaperRepo 内存论文仓储
type memPaperRepo struct {
	byHash map[string]*entity.Paper
}

func newMemPaperRepo(papers ...*entity.Paper) *memPaperRepo {
	r := &memPaperRepo{byHash: make(map[string]*entity.Paper)}
	for _, p := range papers {
		if p.ContentHash == "" {
			p.ComputeContentHash()
		}
		r.byHash[p.ContentHash] = p
	}
	return r
}

func (r *memPaperRepo) InsertMany(_ context.Context, papers []*entity.Paper) (*repository.InsertReport, error) {
	report := &repository.InsertReport{}
	for _, p := range papers {
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
	var papers []*entity.Paper
	for _, h := range hashes {
		if p, ok := r.byHash[h]; ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

func (r *memPaperRepo) GetByHash(_ context.Context, hash string) (*entity.Paper, error) {
	return r.byHash[hash], nil
}

func (r *memPaperRepo) UpdateByHash(_ context.Context, hash string, updated *entity.Paper) (string, error) {
	newHash := updated.ComputeContentHash()
	if newHash == hash {
		return hash, nil
	}
	r.byHash[newHash] = updated
	delete(r.byHash, hash)
	return newHash, nil
}

func (r *memPaperRepo) DeleteByHash(_ context.Context, hash string) (bool, error) {
	_, ok := r.byHash[hash]
	delete(r.byHash, hash)
	return ok, nil
}

func (r *memPaperRepo) List(_ context.Context, p repository.Pagination) (*repository.PagedResult[*entity.Paper], error) {
	var papers []*entity.Paper
	for _, paper := range r.byHash {
		papers = append(papers, paper)
	}
	return repository.NewPagedResult(papers, int64(len(papers)), p), nil
}

func newPaperRouter(repo repository.PaperRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPaperHandler(repo, nil)
	r := gin.New()
	r.GET("/v1/papers/:hash", h.GetPaper)
	r.PUT("/v1/papers/:hash", h.UpdatePaper)
	r.DELETE("/v1/papers/:hash", h.DeletePaper)
	return r
}

func testPaper() *entity.Paper {
	p := &entity.Paper{
		ExternalID: "https://openalex.org/W1",
		Title:      "attention is all you need",
		Abstract:   "we propose the transformer",
	}
	p.ComputeContentHash()
	return p
}

func TestDeletePaper_Existing(t *testing.T) {
	p := testPaper()
	repo := newMemPaperRepo(p)
	router := newPaperRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/papers/"+p.ContentHash, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.byHash)
}

// 不存在的哈希应报 404，而非静默返回成功
func TestDeletePaper_UnknownHash(t *testing.T) {
	router := newPaperRouter(newMemPaperRepo(testPaper()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/papers/deadbeef", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePaper_NewHashReturned(t *testing.T) {
	p := testPaper()
	oldHash := p.ContentHash
	router := newPaperRouter(newMemPaperRepo(p))

	body := `{"title": "attention is all you need (v2)"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/papers/"+oldHash, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			ContentHash string `json:"content_hash"`
			Replaced    string `json:"replaced"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, oldHash, resp.Data.Replaced)
	assert.NotEqual(t, oldHash, resp.Data.ContentHash)
}

// 标题是身份字段，清空应被拒绝
func TestUpdatePaper_EmptyTitleRejected(t *testing.T) {
	p := testPaper()
	router := newPaperRouter(newMemPaperRepo(p))

	body := `{"title": "   "}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/papers/"+p.ContentHash, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePaper_UnknownHash(t *testing.T) {
	router := newPaperRouter(newMemPaperRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/papers/deadbeef", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
