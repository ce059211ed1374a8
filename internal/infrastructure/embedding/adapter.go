package embedding

import (
	"context"
	"fmt"

	einoembedding "github.com/cloudwego/eino/components/embedding"
)

// EinoAdapter 把 Eino Embedder 适配为内部 [][]float32 约定
type EinoAdapter struct {
	embedder einoembedding.Embedder
}

// NewEinoAdapter 创建适配器
func NewEinoAdapter(embedder einoembedding.Embedder) *EinoAdapter {
	return &EinoAdapter{embedder: embedder}
}

// Embed 批量向量化
func (a *EinoAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if a == nil || a.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	raw, err := a.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}

	out := make([][]float32, len(raw))
	for i, vec := range raw {
		v := make([]float32, len(vec))
		for j, x := range vec {
			v[j] = float32(x)
		}
		out[i] = v
	}
	return out, nil
}
