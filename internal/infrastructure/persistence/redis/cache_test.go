package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(&Client{rdb: rdb}), mr
}

func TestCache_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	err := cache.Set(ctx, "k1", payload{Name: "graph", Count: 3}, time.Minute)
	require.NoError(t, err)

	got, err := cache.Get(ctx, "k1")
	require.NoError(t, err)

	var p payload
	require.NoError(t, json.Unmarshal(got, &p))
	assert.Equal(t, "graph", p.Name)
	assert.Equal(t, 3, p.Count)
}

func TestCache_Get_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), "missing")
	assert.True(t, IsNil(err))
}

// 字节类型的加载结果必须原样落缓存：若经过一次 json.Marshal，
// []byte 会变成带引号的 base64 字符串，读回后无法再按 JSON 解析。
func TestCache_GetOrLoadSafe_RawBytesRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	body := []byte(`{"results":[{"id":"W100","title":"attention is all you need"}]}`)
	loads := 0

	got, err := cache.GetOrLoadSafe(ctx, "works:q1", time.Minute, func() (interface{}, error) {
		loads++
		return body, nil
	})
	require.NoError(t, err)
	assert.Equal(t, body, got)

	var parsed struct {
		Results []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(got, &parsed))
	require.Len(t, parsed.Results, 1)
	assert.Equal(t, "W100", parsed.Results[0].ID)

	// 第二次命中缓存，loader 不再执行，内容逐字节一致
	got2, err := cache.GetOrLoadSafe(ctx, "works:q1", time.Minute, func() (interface{}, error) {
		loads++
		return nil, errors.New("loader should not run on cache hit")
	})
	require.NoError(t, err)
	assert.Equal(t, body, got2)
	assert.Equal(t, 1, loads)
}

func TestCache_GetOrLoad_RawMessagePassthrough(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	raw := json.RawMessage(`{"tier":"strong"}`)
	got, err := cache.GetOrLoad(ctx, "rec:1", time.Minute, func() (interface{}, error) {
		return raw, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got))

	stored, err := mr.Get("rec:1")
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), stored)
}

func TestCache_GetOrLoad_LoaderError(t *testing.T) {
	cache, _ := newTestCache(t)

	boom := errors.New("upstream unavailable")
	_, err := cache.GetOrLoad(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "a", "b"))

	_, err := cache.Get(ctx, "a")
	assert.True(t, IsNil(err))
}

func TestCache_InvalidatePattern(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "openalex:works:q1", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "openalex:works:q2", []byte("2"), time.Minute))
	require.NoError(t, cache.Set(ctx, "profile:p1", []byte("3"), time.Minute))

	require.NoError(t, cache.InvalidateSearchResults(ctx))

	_, err := cache.Get(ctx, "openalex:works:q1")
	assert.True(t, IsNil(err))
	got, err := cache.Get(ctx, "profile:p1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)
}
