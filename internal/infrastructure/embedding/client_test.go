package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/config"
)

func embedServer(t *testing.T, requests *[][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req.Texts)

		resp := embedResponse{}
		for i := range req.Texts {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i), 1})
		}
		require.NoError(t, json.NewEncoder(w).Encode(&resp))
	}))
}

func TestClientEmbed_BatchesRequests(t *testing.T) {
	var requests [][]string
	srv := embedServer(t, &requests)
	defer srv.Close()

	client := NewClient(&config.EmbeddingConfig{
		Endpoint:  srv.URL,
		Model:     "BAAI/bge-m3",
		BatchSize: 2,
	})

	texts := []string{"a", "b", "c", "d", "e"}
	vectors, err := client.Embed(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, vectors, 5)
	require.Len(t, requests, 3)
	assert.Equal(t, []string{"a", "b"}, requests[0])
	assert.Equal(t, []string{"c", "d"}, requests[1])
	assert.Equal(t, []string{"e"}, requests[2])
}

func TestClientEmbed_EmptyInput(t *testing.T) {
	client := NewClient(&config.EmbeddingConfig{Endpoint: "http://unused"})

	vectors, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestClientEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(&config.EmbeddingConfig{Endpoint: srv.URL})

	_, err := client.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
}

func TestClientEmbed_MissingEndpoint(t *testing.T) {
	client := NewClient(&config.EmbeddingConfig{})

	_, err := client.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
}
