// Package ltrkit 是一个 Learning to Rank 工具包。
//
// 设计要点：
// - 数据模型极小：DataPoint → RankList → DataSet 三层，排序即置换
// - 指标直接优化：AdaRank 以 MAP / P@K 等检索指标为目标做 boosting
// - 组件可插拔：Evaluator、ProgressSink、数据加载与存储都通过接口注入
package ltrkit

import (
	"github.com/rushteam/ltrkit/core"
	"github.com/rushteam/ltrkit/ensemble"
	"github.com/rushteam/ltrkit/eval"
	"github.com/rushteam/ltrkit/ranker"
)

// 轻量 facade：便于用户直接 import "ltrkit" 使用核心抽象。
type DataPoint = core.DataPoint
type RankList = core.RankList
type DataSet = core.DataSet

type Evaluator = eval.Evaluator
type Ranker = ranker.Ranker
type WeakRanker = ranker.WeakRanker

type Learner = ensemble.Learner
type AdaRank = ensemble.AdaRank
type IterationRecord = ensemble.IterationRecord
