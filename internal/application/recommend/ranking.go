package recommend

import "scholar-rec-api/internal/domain/entity"

// 层级边界：相似度排名严格小于 5 进入高优层，严格小于 100 进入普通层
const (
	topPriorityRankBound = 5
	overflowRankBound    = 100
)

// RankedPaper 带相似度排名的候选
// 排名是候选在最近邻结果中的零基位置，不是相似度分值。
type RankedPaper struct {
	Paper *entity.Paper
	Rank  int
}

// SplitByRank 把候选按排名切分为高优层与普通层
// 高优层取排名 < 5 的候选并受 maxTop 封顶；普通层取其余排名 < 100 的候选；
// 更靠后的全部丢弃。同一输入与同一上限下结果严格可复现。
func SplitByRank(candidates []RankedPaper, maxTop int) (top []RankedPaper, overflow []RankedPaper) {
	for _, c := range candidates {
		switch {
		case c.Rank < topPriorityRankBound && len(top) < maxTop:
			top = append(top, c)
		case c.Rank < overflowRankBound:
			overflow = append(overflow, c)
		}
	}
	return top, overflow
}
