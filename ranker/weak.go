package ranker

import "github.com/rushteam/ltrkit/core"

// WeakRanker 是 ensemble 中的"树桩"：只看单一特征的原始值打分。
// 特征缺失/越界时返回 0.0 而不是报错——一条畸形样本不应中断整次排序。
type WeakRanker struct {
	FeatureID int
}

func NewWeakRanker(featureID int) *WeakRanker {
	return &WeakRanker{FeatureID: featureID}
}

func (w *WeakRanker) Predict(dp *core.DataPoint) float64 {
	value, err := dp.Feature(w.FeatureID)
	if err != nil {
		return 0
	}
	return float64(value)
}
