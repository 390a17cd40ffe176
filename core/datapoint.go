package core

import "fmt"

// DataPoint 是排序链路中的最小承载结构：一条带标注、带特征的文档。
// Label 是相关性等级（0 为不相关），QueryID 标识其所属查询。
//
// 特征下标从 1 开始：下标 i 对应 Features[i-1]，下标 0 永远非法。
// 这是 LETOR 语料（SVMLight 格式）的约定，全库保持一致。
type DataPoint struct {
	Label       uint8     `cbor:"label"`
	QueryID     uint64    `cbor:"query_id"`
	Features    []float32 `cbor:"features"`
	Description string    `cbor:"description,omitempty"`
}

func NewDataPoint(label uint8, queryID uint64, features []float32) DataPoint {
	return DataPoint{
		Label:    label,
		QueryID:  queryID,
		Features: features,
	}
}

// Feature 返回下标 i（从 1 开始）的特征值；越界返回 FEATURE_INDEX_OUT_OF_BOUNDS。
func (dp *DataPoint) Feature(i int) (float32, error) {
	if i < 1 || i > len(dp.Features) {
		return 0, ErrFeatureIndex(i)
	}
	return dp.Features[i-1], nil
}

// SetFeature 写入下标 i（从 1 开始）的特征值；越界返回 FEATURE_INDEX_OUT_OF_BOUNDS。
func (dp *DataPoint) SetFeature(i int, value float32) error {
	if i < 1 || i > len(dp.Features) {
		return ErrFeatureIndex(i)
	}
	dp.Features[i-1] = value
	return nil
}

// FeatureCount 返回特征数量，即合法下标范围 [1, FeatureCount]。
func (dp *DataPoint) FeatureCount() int {
	return len(dp.Features)
}

// Equal 只比较 (Label, QueryID)：两条 label/query 相同但特征不同的样本视为相等。
func (dp *DataPoint) Equal(other *DataPoint) bool {
	return dp.Label == other.Label && dp.QueryID == other.QueryID
}

// Less 只按 Label 比较，用于构造"完美排序"（按相关性降序即为理想排名）。
func (dp *DataPoint) Less(other *DataPoint) bool {
	return dp.Label < other.Label
}

func (dp *DataPoint) String() string {
	return fmt.Sprintf("DataPoint(label=%d, qid=%d, features=%d)",
		dp.Label, dp.QueryID, len(dp.Features))
}
