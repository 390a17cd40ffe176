package core

import (
	"fmt"
	"sort"
)

// RankList 是待排序的对象：同一查询下的一组 DataPoint。
// "同一查询"由调用方保证，构造时不做校验。
//
// 所有重排操作都是显式的指针方法、原地生效；需要只读视角时
// 使用 Clone 或 ranker.Ranked，不存在隐式共享的排序状态。
type RankList struct {
	points []DataPoint
}

func NewRankList(points []DataPoint) *RankList {
	return &RankList{points: points}
}

// Len 返回列表长度。
func (rl *RankList) Len() int {
	return len(rl.points)
}

// Get 返回下标 index 处 DataPoint 的指针；越界返回 RANKLIST_INDEX_OUT_OF_BOUNDS。
func (rl *RankList) Get(index int) (*DataPoint, error) {
	if index < 0 || index >= len(rl.points) {
		return nil, ErrRankListIndex(index)
	}
	return &rl.points[index], nil
}

// Set 覆盖下标 index 处的 DataPoint；越界返回 RANKLIST_INDEX_OUT_OF_BOUNDS。
func (rl *RankList) Set(index int, dp DataPoint) error {
	if index < 0 || index >= len(rl.points) {
		return ErrRankListIndex(index)
	}
	rl.points[index] = dp
	return nil
}

// QueryID 返回首个 DataPoint 的查询 ID；空列表返回 0。
func (rl *RankList) QueryID() uint64 {
	if len(rl.points) == 0 {
		return 0
	}
	return rl.points[0].QueryID
}

// Points 返回底层切片。调用方不应在排序操作进行中持有它做并发修改。
func (rl *RankList) Points() []DataPoint {
	return rl.points
}

// Clone 返回深拷贝（DataPoint 为值语义，复制切片即可）。
func (rl *RankList) Clone() *RankList {
	points := make([]DataPoint, len(rl.points))
	copy(points, rl.points)
	return &RankList{points: points}
}

// SortByLabel 按 Label 降序稳定排序，得到 ground-truth 的理想排名。
func (rl *RankList) SortByLabel() {
	sort.SliceStable(rl.points, func(i, j int) bool {
		return rl.points[i].Label > rl.points[j].Label
	})
}

// SortByFeature 按某一特征值降序稳定排序。
// feature 对首个样本非法时返回 FEATURE_INDEX_OUT_OF_BOUNDS；
// 个别样本缺失该特征时按 0.0 参与排序。
func (rl *RankList) SortByFeature(feature int) error {
	if len(rl.points) == 0 {
		return nil
	}
	if _, err := rl.points[0].Feature(feature); err != nil {
		return err
	}
	value := func(dp *DataPoint) float32 {
		v, err := dp.Feature(feature)
		if err != nil {
			return 0
		}
		return v
	}
	sort.SliceStable(rl.points, func(i, j int) bool {
		return value(&rl.points[i]) > value(&rl.points[j])
	})
	return nil
}

// Permute 按置换向量重排：新列表第 i 位是原列表第 perm[i] 位。
// perm 必须是 0..Len-1 上的双射，否则返回 RANKLIST_INDEX_OUT_OF_BOUNDS。
func (rl *RankList) Permute(perm []int) error {
	if len(perm) != len(rl.points) {
		return ErrRankListIndex(len(perm))
	}
	seen := make([]bool, len(rl.points))
	for _, p := range perm {
		if p < 0 || p >= len(rl.points) {
			return ErrRankListIndex(p)
		}
		if seen[p] {
			return ErrRankListIndex(p)
		}
		seen[p] = true
	}
	next := make([]DataPoint, len(rl.points))
	for i, p := range perm {
		next[i] = rl.points[p]
	}
	rl.points = next
	return nil
}

func (rl *RankList) String() string {
	return fmt.Sprintf("RankList(qid=%d, points=%d)", rl.QueryID(), len(rl.points))
}
