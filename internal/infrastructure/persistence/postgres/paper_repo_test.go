package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/domain/entity"
)

// 未连接数据库的仓储：下列用例只覆盖不触库的前置校验分支
func newDetachedPaperRepo() *PaperRepository {
	client := &Client{}
	return &PaperRepository{client: client, tx: NewTxManager(client)}
}

func TestUpdateByHash_RejectsInvalidMergedRecord(t *testing.T) {
	repo := newDetachedPaperRepo()
	ctx := context.Background()

	tests := []struct {
		name  string
		paper *entity.Paper
	}{
		{"nil record", nil},
		{"empty title", &entity.Paper{ExternalID: "W1", Title: "   "}},
		{"empty external id", &entity.Paper{Title: "attention is all you need"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.UpdateByHash(ctx, "somehash", tt.paper)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "refusing to update")
		})
	}
}

func TestUpdateByHash_UnchangedContentKeepsHash(t *testing.T) {
	repo := newDetachedPaperRepo()

	p := &entity.Paper{
		ExternalID:      "https://openalex.org/W1",
		Title:           "attention is all you need",
		Abstract:        "we propose the transformer",
		PublicationDate: time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
	}
	hash := p.ComputeContentHash()

	// 内容未变则不追加新版本，也不触库
	got, err := repo.UpdateByHash(context.Background(), hash, p)
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)
	ns := nullString("x")
	assert.True(t, ns.Valid)
	assert.Equal(t, "x", ns.String)
}

func TestNullTime(t *testing.T) {
	assert.False(t, nullTime(time.Time{}).Valid)
	assert.True(t, nullTime(time.Now()).Valid)
}
