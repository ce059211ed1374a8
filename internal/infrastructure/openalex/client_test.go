package openalex

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/infrastructure/persistence/redis"
)

const worksBody = `{
	"meta": {"count": 2, "per_page": 25, "page": 1},
	"results": [
		{
			"id": "https://openalex.org/W1",
			"title": "attention is all you need",
			"publication_date": "2017-06-12",
			"cited_by_count": 90000,
			"abstract_inverted_index": {"the": [0], "transformer": [1]}
		},
		{
			"id": "https://openalex.org/W2",
			"title": "bert pretraining",
			"publication_year": 2018,
			"cited_by_count": 60000
		}
	]
}`

func newTestRedisCache(t *testing.T) *redis.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := redis.NewClient(&config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewCache(client)
}

func TestClient_Search_ParsesWorks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "transformer", r.URL.Query().Get("search"))
		w.Write([]byte(worksBody))
	}))
	defer srv.Close()

	c := NewClient(&config.OpenAlexConfig{Endpoint: srv.URL}, nil)
	papers, err := c.Search(context.Background(), "transformer")
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "https://openalex.org/W1", papers[0].ExternalID)
	// 过短的摘要不可用，落占位文本
	assert.Equal(t, entity.NoAbstractSentinel, papers[0].Abstract)
	assert.Equal(t, 2018, papers[1].PublicationDate.Year())
	assert.Greater(t, papers[0].SimilarityScore, papers[1].SimilarityScore)
	assert.NotEmpty(t, papers[0].ContentHash)
}

// 缓存开启时同一检索式只触网一次，且缓存读回的字节仍可按 JSON 解析
func TestClient_Search_CachedResponseStaysParseable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(worksBody))
	}))
	defer srv.Close()

	c := NewClient(&config.OpenAlexConfig{
		Endpoint: srv.URL,
		CacheTTL: time.Minute,
	}, newTestRedisCache(t))

	ctx := context.Background()
	first, err := c.Search(ctx, "transformer")
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := c.Search(ctx, "transformer")
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ContentHash, second[0].ContentHash)

	assert.Equal(t, int32(1), hits.Load())
}

// cache_ttl 为 0 关闭缓存，每次检索都直连
func TestClient_Search_ZeroTTLDisablesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(worksBody))
	}))
	defer srv.Close()

	c := NewClient(&config.OpenAlexConfig{Endpoint: srv.URL}, newTestRedisCache(t))

	ctx := context.Background()
	_, err := c.Search(ctx, "transformer")
	require.NoError(t, err)
	_, err = c.Search(ctx, "transformer")
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	c := NewClient(&config.OpenAlexConfig{}, nil)
	_, err := c.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestClient_Search_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(&config.OpenAlexConfig{Endpoint: srv.URL}, nil)
	_, err := c.Search(context.Background(), "transformer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
