// Package eval 提供排序效果评估指标。
//
// Evaluator 假设输入的 RankList 已按预测相关性降序排好；它只读标签序列，
// 不关心特征值。数据集层面的得分是各 RankList 得分的算术平均。
package eval

import (
	"github.com/rushteam/ltrkit/core"
)

// Evaluator 是排序指标的最小抽象：输入一个已排序的 RankList，输出一个分数。
// 具体实现是一个封闭集合：MAP 与 Precision@K。
type Evaluator interface {
	Name() string
	EvaluateRankList(rl *core.RankList) float64
}

// EvaluateDataSet 返回各 RankList 指标的算术平均。
// 空数据集返回 EVALUATION_ERROR。
func EvaluateDataSet(e Evaluator, ds core.DataSet) (float64, error) {
	if ds.IsEmpty() {
		return 0, core.ErrEvaluation("evaluate dataset: the dataset is empty")
	}
	score := 0.0
	for _, rl := range ds {
		score += e.EvaluateRankList(rl)
	}
	return score / float64(ds.Len()), nil
}
