package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"scholar-rec-api/internal/domain/entity"
)

func rankedFixture(ranks ...int) []RankedPaper {
	out := make([]RankedPaper, len(ranks))
	for i, r := range ranks {
		out[i] = RankedPaper{
			Paper: &entity.Paper{ContentHash: fmt.Sprintf("hash-%d", r), Title: fmt.Sprintf("paper %d", r)},
			Rank:  r,
		}
	}
	return out
}

func hashesOf(papers []RankedPaper) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.Paper.ContentHash
	}
	return out
}

func TestSplitByRank_TopTierCapped(t *testing.T) {
	candidates := rankedFixture(0, 1, 2, 3, 4, 5, 6)

	top, overflow := SplitByRank(candidates, 2)

	assert.Equal(t, []string{"hash-0", "hash-1"}, hashesOf(top))
	// 高优层满员后，排名 < 5 的剩余候选落入普通层
	assert.Equal(t, []string{"hash-2", "hash-3", "hash-4", "hash-5", "hash-6"}, hashesOf(overflow))
}

func TestSplitByRank_BoundaryRanks(t *testing.T) {
	candidates := rankedFixture(4, 5, 99, 100, 250)

	top, overflow := SplitByRank(candidates, 5)

	assert.Equal(t, []string{"hash-4"}, hashesOf(top))
	assert.Equal(t, []string{"hash-5", "hash-99"}, hashesOf(overflow))
}

func TestSplitByRank_Empty(t *testing.T) {
	top, overflow := SplitByRank(nil, 5)
	assert.Empty(t, top)
	assert.Empty(t, overflow)
}

func TestSplitByRank_Reproducible(t *testing.T) {
	candidates := rankedFixture(3, 0, 7, 1, 150)

	top1, overflow1 := SplitByRank(candidates, 2)
	top2, overflow2 := SplitByRank(candidates, 2)

	assert.Equal(t, hashesOf(top1), hashesOf(top2))
	assert.Equal(t, hashesOf(overflow1), hashesOf(overflow2))
	// 排名 >= 100 的候选被丢弃
	assert.NotContains(t, hashesOf(overflow1), "hash-150")
}
