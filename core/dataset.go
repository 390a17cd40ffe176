package core

// DataSet 是一次训练/评估的输入：每个查询一个 RankList，保持加载顺序。
// 排序操作在训练过程中会原地重排其中的 RankList。
type DataSet []*RankList

// Len 返回查询（RankList）数量。
func (ds DataSet) Len() int {
	return len(ds)
}

// IsEmpty 返回数据集是否为空。
func (ds DataSet) IsEmpty() bool {
	return len(ds) == 0
}

// Clone 返回深拷贝，训练前需要保留原始顺序时使用。
func (ds DataSet) Clone() DataSet {
	out := make(DataSet, len(ds))
	for i, rl := range ds {
		out[i] = rl.Clone()
	}
	return out
}
