// Package ranker 定义排序能力的最小抽象：对单条 DataPoint 打分，
// 进而派生出对 RankList / DataSet 的整体重排。
package ranker

import (
	"sort"

	"github.com/rushteam/ltrkit/core"
)

// Ranker 是所有排序模型的统一能力：输入一条样本，输出一个可比较的分数。
// WeakRanker 与训练完成的 ensemble.AdaRank 都实现它。
type Ranker interface {
	Predict(dp *core.DataPoint) float64
}

// permutation 计算按预测分降序的下标置换。
// 平分时保持先见顺序（稳定排序），保证结果确定。
func permutation(r Ranker, rl *core.RankList) []int {
	type indexedScore struct {
		index int
		score float64
	}
	scores := make([]indexedScore, rl.Len())
	for i := range scores {
		dp, _ := rl.Get(i)
		scores[i] = indexedScore{index: i, score: r.Predict(dp)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})
	perm := make([]int, len(scores))
	for i, s := range scores {
		perm[i] = s.index
	}
	return perm
}

// Rank 按 r 的预测分原地重排 rl（降序）。
func Rank(r Ranker, rl *core.RankList) error {
	return rl.Permute(permutation(r, rl))
}

// Ranked 返回按 r 的预测分重排后的副本，不触碰原列表。
// 选特征、算 amount-to-say 等需要反复打分的路径都走这里，
// 训练数据在一轮之内不会被并发原地改写。
func Ranked(r Ranker, rl *core.RankList) *core.RankList {
	out := rl.Clone()
	// 对合法置换 Permute 不会失败
	_ = out.Permute(permutation(r, rl))
	return out
}

// RankDataSet 对数据集内每个 RankList 依次执行 Rank，原地生效。
func RankDataSet(r Ranker, ds core.DataSet) error {
	for _, rl := range ds {
		if err := Rank(r, rl); err != nil {
			return err
		}
	}
	return nil
}
