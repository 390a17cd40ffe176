package ensemble

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/ltrkit/core"
	"github.com/rushteam/ltrkit/eval"
)

func rl(points ...core.DataPoint) *core.RankList {
	return core.NewRankList(points)
}

func dp(label uint8, qid uint64, features ...float32) core.DataPoint {
	return core.NewDataPoint(label, qid, features)
}

// perfectDataSet 的特征 1 完美区分相关与不相关文档，特征 2 是噪声。
func perfectDataSet() core.DataSet {
	return core.DataSet{
		rl(
			dp(1, 1, 0.9, 0.1),
			dp(0, 1, 0.2, 0.8),
			dp(0, 1, 0.3, 0.5),
		),
		rl(
			dp(0, 2, 0.1, 0.9),
			dp(1, 2, 0.7, 0.2),
			dp(1, 2, 0.8, 0.4),
		),
	}
}

func TestAdaRank_PerfectFeatureConvergesWithOneRanker(t *testing.T) {
	// 容差 0：第二轮训练分不再提升（已是 1.0），delta = 0 → 回滚并停止
	a := NewAdaRank(perfectDataSet(), eval.MAP{},
		WithIterations(10),
		WithMaxConsecutiveSelections(3),
		WithTolerance(0),
	)

	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("Fit error = %v", err)
	}

	rankers, weights := a.Rankers()
	if len(rankers) != 1 {
		t.Fatalf("accepted rankers = %d, want exactly 1", len(rankers))
	}
	if rankers[0].FeatureID != 1 {
		t.Errorf("selected feature = %d, want 1", rankers[0].FeatureID)
	}
	if len(weights) != 1 || math.IsNaN(weights[0]) || math.IsInf(weights[0], 0) {
		t.Errorf("ranker weight = %v, want a finite value", weights)
	}

	score, err := a.Score()
	if err != nil {
		t.Fatalf("Score error = %v", err)
	}
	if score <= 0 {
		t.Errorf("Score = %v, want > 0", score)
	}

	history := a.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2 (OK then rolled-back BAD)", len(history))
	}
	if history[0].Status != StatusOK {
		t.Errorf("first status = %s, want OK", history[0].Status)
	}
	if history[1].Status != StatusBad {
		t.Errorf("second status = %s, want BAD (still recorded before rollback)", history[1].Status)
	}
}

func TestAdaRank_ScoreBeforeFit(t *testing.T) {
	a := NewAdaRank(perfectDataSet(), eval.MAP{})

	if _, err := a.Score(); !core.IsNoRankers(err) {
		t.Errorf("Score before fit error = %v, want NO_RANKERS", err)
	}
	if _, err := a.ValidationScore(); !core.IsNoRankers(err) {
		t.Errorf("ValidationScore before fit error = %v, want NO_RANKERS", err)
	}
}

func TestAdaRank_ZeroIterationsReturnsNoRankers(t *testing.T) {
	a := NewAdaRank(perfectDataSet(), eval.MAP{}, WithIterations(0))

	err := a.Fit(context.Background())
	if !core.IsNoRankers(err) {
		t.Fatalf("Fit error = %v, want NO_RANKERS", err)
	}
}

func TestAdaRank_NoCandidateFeaturesReturnsNoRankers(t *testing.T) {
	// 样本没有任何特征：候选集为空，第一轮选择即失败
	ds := core.DataSet{rl(dp(1, 1), dp(0, 1))}
	a := NewAdaRank(ds, eval.MAP{}, WithIterations(5))

	err := a.Fit(context.Background())
	if !core.IsNoRankers(err) {
		t.Fatalf("Fit error = %v, want NO_RANKERS", err)
	}
}

// saturationDataSet：特征 1 完美，特征 2 在一半查询上排错。
func saturationDataSet() core.DataSet {
	return core.DataSet{
		rl(
			dp(1, 1, 5.0, 1.0),
			dp(0, 1, 1.0, 2.0),
		),
		rl(
			dp(1, 2, 6.0, 3.0),
			dp(0, 2, 2.0, 1.0),
		),
	}
}

func TestAdaRank_SaturatedFeatureNeverReselected(t *testing.T) {
	// τ > 0 使训练持续；S=1 让重复入选立即饱和。
	// 预期轨迹：f1 OK → f1 SATURATED → f2 OK → f2 SATURATED → 候选耗尽停止
	a := NewAdaRank(saturationDataSet(), eval.MAP{},
		WithIterations(20),
		WithMaxConsecutiveSelections(1),
		WithTolerance(0.05),
	)

	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("Fit error = %v", err)
	}

	saturatedAt := make(map[int]int) // feature -> iteration of saturation
	for _, rec := range a.History() {
		if at, saturated := saturatedAt[rec.Feature]; saturated && rec.Iteration > at {
			t.Errorf("feature %d reselected at iteration %d after saturation at %d",
				rec.Feature, rec.Iteration, at)
		}
		if rec.Status == StatusSaturated {
			saturatedAt[rec.Feature] = rec.Iteration
		}
	}
	if len(saturatedAt) != 2 {
		t.Errorf("saturated features = %d, want both features saturated", len(saturatedAt))
	}
}

func TestAdaRank_SampleWeightsStayNormalized(t *testing.T) {
	a := NewAdaRank(saturationDataSet(), eval.MAP{},
		WithIterations(20),
		WithMaxConsecutiveSelections(1),
		WithTolerance(0.05),
	)

	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("Fit error = %v", err)
	}

	sum := 0.0
	for _, w := range a.sampleWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("sum of sample weights = %v, want 1.0 within 1e-4", sum)
	}
}

func TestAdaRank_ValidationCheckpoint(t *testing.T) {
	a := NewAdaRank(perfectDataSet(), eval.MAP{},
		WithIterations(10),
		WithTolerance(0),
		WithValidation(perfectDataSet()),
	)

	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("Fit error = %v", err)
	}

	valScore, err := a.ValidationScore()
	if err != nil {
		t.Fatalf("ValidationScore error = %v", err)
	}
	if valScore <= 0 {
		t.Errorf("ValidationScore = %v, want > 0", valScore)
	}

	for _, rec := range a.History() {
		if rec.ValScore < 0 {
			t.Errorf("iteration %d val score = %v, want >= 0", rec.Iteration, rec.ValScore)
		}
	}
}

func TestAdaRank_EndToEnd(t *testing.T) {
	ds := core.DataSet{
		rl(
			dp(1, 1, 0.9, 0.1, 0.5),
			dp(0, 1, 0.2, 0.8, 0.4),
			dp(0, 1, 0.3, 0.2, 0.2),
			dp(1, 1, 0.8, 0.5, 0.1),
		),
		rl(
			dp(0, 2, 0.1, 0.9, 0.3),
			dp(1, 2, 0.7, 0.3, 0.6),
			dp(0, 2, 0.4, 0.1, 0.9),
			dp(1, 2, 0.9, 0.2, 0.2),
		),
		rl(
			dp(1, 3, 0.6, 0.4, 0.1),
			dp(0, 3, 0.3, 0.7, 0.7),
			dp(1, 3, 0.8, 0.1, 0.4),
			dp(0, 3, 0.2, 0.6, 0.5),
		),
	}

	a := NewAdaRank(ds, eval.MAP{},
		WithIterations(5),
		WithMaxConsecutiveSelections(2),
		WithTolerance(0),
	)

	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("Fit error = %v", err)
	}
	score, err := a.Score()
	if err != nil {
		t.Fatalf("Score error = %v", err)
	}
	if score <= 0 {
		t.Errorf("Score = %v, want > 0", score)
	}
	if len(a.History()) > 5 {
		t.Errorf("history length = %d, want <= 5", len(a.History()))
	}
}

// 并行扫描只是加速：选择结果与串行完全一致。
func TestAdaRank_ParallelScanIsDeterministic(t *testing.T) {
	serial := NewAdaRank(saturationDataSet(), eval.MAP{},
		WithIterations(20),
		WithMaxConsecutiveSelections(1),
		WithTolerance(0.05),
	)
	parallel := NewAdaRank(saturationDataSet(), eval.MAP{},
		WithIterations(20),
		WithMaxConsecutiveSelections(1),
		WithTolerance(0.05),
		WithParallelism(4),
	)

	if err := serial.Fit(context.Background()); err != nil {
		t.Fatalf("serial Fit error = %v", err)
	}
	if err := parallel.Fit(context.Background()); err != nil {
		t.Fatalf("parallel Fit error = %v", err)
	}

	hs, hp := serial.History(), parallel.History()
	if len(hs) != len(hp) {
		t.Fatalf("history lengths differ: serial %d, parallel %d", len(hs), len(hp))
	}
	for i := range hs {
		if hs[i] != hp[i] {
			t.Errorf("iteration %d differs: serial %+v, parallel %+v", i, hs[i], hp[i])
		}
	}
}

func TestAdaRank_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAdaRank(perfectDataSet(), eval.MAP{}, WithIterations(10))
	if err := a.Fit(ctx); err == nil {
		t.Fatal("Fit with cancelled context should fail")
	}
}

func TestAdaRank_FitIsReusable(t *testing.T) {
	a := NewAdaRank(saturationDataSet(), eval.MAP{},
		WithIterations(20),
		WithMaxConsecutiveSelections(1),
		WithTolerance(0.05),
	)

	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("first Fit error = %v", err)
	}
	first := a.History()

	// 第二次 Fit 从干净状态开始：饱和集、权重、历史全部重置
	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("second Fit error = %v", err)
	}
	second := a.History()

	if len(first) != len(second) {
		t.Fatalf("history lengths differ across fits: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("iteration %d differs across fits: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAdaRank_PredictMissingFeatureIsZero(t *testing.T) {
	a := NewAdaRank(perfectDataSet(), eval.MAP{},
		WithIterations(10),
		WithTolerance(0),
	)
	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("Fit error = %v", err)
	}

	bare := dp(0, 9) // 没有任何特征
	if got := a.Predict(&bare); got != 0 {
		t.Errorf("Predict on featureless point = %v, want 0", got)
	}

	rich := dp(1, 9, 0.9, 0.1)
	if got := a.Predict(&rich); got == 0 {
		t.Error("Predict on valid point should use the ensemble weights")
	}
}

func TestAdaRank_ProgressSinkReceivesEveryIteration(t *testing.T) {
	var records []IterationRecord
	a := NewAdaRank(perfectDataSet(), eval.MAP{},
		WithIterations(10),
		WithTolerance(0),
		WithProgressSink(SinkFunc(func(rec IterationRecord) {
			records = append(records, rec)
		})),
	)

	if err := a.Fit(context.Background()); err != nil {
		t.Fatalf("Fit error = %v", err)
	}
	history := a.History()
	if len(records) != len(history) {
		t.Fatalf("sink received %d records, history has %d", len(records), len(history))
	}
	for i := range records {
		if records[i] != history[i] {
			t.Errorf("record %d differs: sink %+v, history %+v", i, records[i], history[i])
		}
	}
}

func TestAmountToSay(t *testing.T) {
	tests := []struct {
		name  string
		num   float64
		denom float64
		check func(float64) bool
	}{
		{name: "zero denominator stays finite", num: 2, denom: 0,
			check: func(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) && v > 0 }},
		{name: "zero numerator stays finite", num: 0, denom: 2,
			check: func(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) && v < 0 }},
		{name: "both zero is zero", num: 0, denom: 0,
			check: func(v float64) bool { return v == 0 }},
		{name: "negative values use magnitudes", num: -20, denom: -2,
			check: func(v float64) bool { return math.Abs(v-0.5) < 1e-12 }},
		{name: "equal magnitudes give zero", num: 3, denom: 3,
			check: func(v float64) bool { return v == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := amountToSay(tt.num, tt.denom); !tt.check(got) {
				t.Errorf("amountToSay(%v, %v) = %v", tt.num, tt.denom, got)
			}
		})
	}
}
