package eval

import "github.com/rushteam/ltrkit/core"

// MAP 是 Mean Average Precision：对每个相关文档所在位置（从 1 计）
// 累加 precision@position，再除以相关文档总数。
// Label > 0 即视为相关。列表中没有相关文档时得 0。
type MAP struct{}

func (MAP) Name() string { return "MAP" }

func (MAP) EvaluateRankList(rl *core.RankList) float64 {
	averagePrecision := 0.0
	relevant := 0
	for i := 0; i < rl.Len(); i++ {
		dp, err := rl.Get(i)
		if err != nil {
			break
		}
		if dp.Label > 0 {
			relevant++
			averagePrecision += float64(relevant) / (float64(i) + 1.0)
		}
	}
	if relevant == 0 {
		return 0
	}
	return averagePrecision / float64(relevant)
}
