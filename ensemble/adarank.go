// Package ensemble 实现基于 boosting 的排序模型。
//
// AdaRank 反复在重加权后的训练查询上挑选单特征的 WeakRanker，
// 线性组合成最终模型，直接优化检索指标（MAP / P@K）而非代理损失。
// 算法出处：Xu & Li, "AdaRank: A Boosting Algorithm for Information Retrieval"。
package ensemble

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/ltrkit/core"
	"github.com/rushteam/ltrkit/eval"
	"github.com/rushteam/ltrkit/ranker"
)

// amount-to-say 的分子/分母可能为 0 或负（指标未必落在 [-1,1]）。
// 处理策略：对两者取绝对值并以 epsilon 兜底，再取 log10，
// 保证权重永远是有限数，不让 NaN 静默传播。
const epsilon = 1e-10

// AdaRank 是 boosting 训练循环的状态机：
// 选特征 → 算 amount-to-say → 全量重评 → delta 检查 → 饱和跟踪 →
// 验证集 checkpoint → 记录 → 样本重加权，直到迭代耗尽或提前停止。
// Fit 成功后自身即可作为 ranker.Ranker 使用。
type AdaRank struct {
	training   core.DataSet
	validation core.DataSet
	scorer     eval.Evaluator

	iterations               int
	maxConsecutiveSelections int
	tolerance                float64
	features                 []int
	parallelism              int

	logger *slog.Logger
	sink   ProgressSink

	// 以下为一次 Fit 的可变状态，Fit 入口统一重置，实例可复用
	sampleWeights []float64
	rankers       []*ranker.WeakRanker
	rankerWeights []float64
	bestRankers   []*ranker.WeakRanker
	bestWeights   []float64
	usedFeatures  map[int]struct{}

	consecutiveSelections int
	previousFeature       int // 0 表示尚未选过（特征下标从 1 开始）

	scoreTraining      float64
	scoreValidation    float64
	previousTraining   float64
	previousValidation float64

	history []IterationRecord
}

// Option 配置 AdaRank。
type Option func(*AdaRank)

// WithIterations 设置迭代轮数上限 T。
func WithIterations(t int) Option {
	return func(a *AdaRank) { a.iterations = t }
}

// WithMaxConsecutiveSelections 设置同一特征连续入选的上限 S，
// 达到后该特征在本次 Fit 内被永久排除。
func WithMaxConsecutiveSelections(s int) Option {
	return func(a *AdaRank) { a.maxConsecutiveSelections = s }
}

// WithTolerance 设置提前停止的容差 τ：训练分 + τ 不再超过上一轮即停止。
func WithTolerance(tau float64) Option {
	return func(a *AdaRank) { a.tolerance = tau }
}

// WithFeatures 显式指定候选特征子集（下标从 1 开始）。
// 缺省使用首个 RankList 首条样本的全部特征下标。
func WithFeatures(features []int) Option {
	return func(a *AdaRank) { a.features = features }
}

// WithValidation 设置验证集，启用按验证分的模型 checkpoint。
func WithValidation(ds core.DataSet) Option {
	return func(a *AdaRank) { a.validation = ds }
}

// WithProgressSink 注入每轮迭代的进度回调。
func WithProgressSink(sink ProgressSink) Option {
	return func(a *AdaRank) { a.sink = sink }
}

// WithParallelism 设置选特征阶段的并发度（按候选特征切分，结果确定性不变）。
// <=1 表示串行。
func WithParallelism(n int) Option {
	return func(a *AdaRank) { a.parallelism = n }
}

// WithLogger 注入结构化日志；缺省使用 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(a *AdaRank) { a.logger = logger }
}

// NewAdaRank 创建一个 AdaRank 学习器。
// 缺省参数沿用 OHSUMED 基准上的常用配置：50 轮、连续入选上限 3、容差 0.003。
func NewAdaRank(training core.DataSet, scorer eval.Evaluator, opts ...Option) *AdaRank {
	a := &AdaRank{
		training:                 training,
		scorer:                   scorer,
		iterations:               50,
		maxConsecutiveSelections: 3,
		tolerance:                0.003,
		parallelism:              1,
		logger:                   slog.Default(),
		sink:                     NopSink{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// reset 清空一次 Fit 的全部可变状态：样本权重回到 1/N，
// ensemble、饱和集、历史、前轮分数全部归零。
func (a *AdaRank) reset() {
	n := a.training.Len()
	a.sampleWeights = make([]float64, n)
	for i := range a.sampleWeights {
		a.sampleWeights[i] = 1.0 / float64(n)
	}
	a.rankers = nil
	a.rankerWeights = nil
	a.bestRankers = nil
	a.bestWeights = nil
	a.usedFeatures = make(map[int]struct{})
	a.consecutiveSelections = 0
	a.previousFeature = 0
	a.scoreTraining = 0
	a.scoreValidation = 0
	a.previousTraining = 0
	a.previousValidation = 0
	a.history = nil
}

// candidateFeatures 返回候选特征下标。未显式指定时取首条样本的特征数，
// 生成 1..n。
func (a *AdaRank) candidateFeatures() []int {
	if len(a.features) > 0 {
		return a.features
	}
	if a.training.IsEmpty() || a.training[0].Len() == 0 {
		return nil
	}
	dp, _ := a.training[0].Get(0)
	features := make([]int, dp.FeatureCount())
	for i := range features {
		features[i] = i + 1
	}
	return features
}

// evaluateWeakRanker 计算加权得分 Σ weight_i · evaluate(rank(list_i))。
// 通过 Ranked 在副本上打分，训练集本身不被改写，可安全并行。
func (a *AdaRank) evaluateWeakRanker(w *ranker.WeakRanker) float64 {
	score := 0.0
	for i, rl := range a.training {
		score += a.scorer.EvaluateRankList(ranker.Ranked(w, rl)) * a.sampleWeights[i]
	}
	return score
}

// selectWeakRanker 在未饱和的候选特征里挑加权得分最高者。
// 严格大于才更新，先见特征在平分时胜出，合并顺序与并发度无关。
// 所有候选得分均为负时返回 nil，训练终止。
func (a *AdaRank) selectWeakRanker(ctx context.Context) *ranker.WeakRanker {
	candidates := make([]int, 0, len(a.candidateFeatures()))
	for _, feature := range a.candidateFeatures() {
		if _, saturated := a.usedFeatures[feature]; saturated {
			continue
		}
		candidates = append(candidates, feature)
	}
	if len(candidates) == 0 {
		return nil
	}

	scores := make([]float64, len(candidates))
	if a.parallelism > 1 {
		eg, _ := errgroup.WithContext(ctx)
		eg.SetLimit(a.parallelism)
		for i, feature := range candidates {
			i, feature := i, feature
			eg.Go(func() error {
				scores[i] = a.evaluateWeakRanker(ranker.NewWeakRanker(feature))
				return nil
			})
		}
		// worker 不返回错误
		_ = eg.Wait()
	} else {
		for i, feature := range candidates {
			scores[i] = a.evaluateWeakRanker(ranker.NewWeakRanker(feature))
		}
	}

	bestScore := -1.0
	bestFeature := 0
	for i, feature := range candidates {
		if scores[i] > bestScore {
			bestScore = scores[i]
			bestFeature = feature
		}
	}
	if bestScore < 0 {
		return nil
	}
	return ranker.NewWeakRanker(bestFeature)
}

// amountToSay 计算新成员的 ensemble 权重 0.5·log10(num/denom)。
func amountToSay(num, denom float64) float64 {
	n := math.Abs(num)
	d := math.Abs(denom)
	if n < epsilon {
		n = epsilon
	}
	if d < epsilon {
		d = epsilon
	}
	return 0.5 * math.Log10(n/d)
}

// rankedCopy 用当前 ensemble 对 ds 的每个列表生成重排副本。
// 训练中途的验证评估走这里，验证集不被原地改写。
func (a *AdaRank) rankedCopy(ds core.DataSet) core.DataSet {
	out := make(core.DataSet, len(ds))
	for i, rl := range ds {
		out[i] = ranker.Ranked(a, rl)
	}
	return out
}

// learn 是训练主循环。终止条件：迭代耗尽、选不出特征、delta <= 0，
// 或上下文取消（每轮边界检查一次）。
func (a *AdaRank) learn(ctx context.Context) error {
	for it := 0; it < a.iterations; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// 第一步：选出本轮最优的 WeakRanker
		best := a.selectWeakRanker(ctx)
		if best == nil {
			a.logger.Error("no weak ranker selected", "iteration", it)
			break
		}

		// 第二步：计算 amount-to-say
		num, denom := 0.0, 0.0
		for i, rl := range a.training {
			score := a.scorer.EvaluateRankList(ranker.Ranked(best, rl))
			num += (1.0 + score) * a.sampleWeights[i]
			denom += (1.0 - score) * a.sampleWeights[i]
		}
		alpha := amountToSay(num, denom)

		// 第三步：入列
		a.rankers = append(a.rankers, best)
		a.rankerWeights = append(a.rankerWeights, alpha)

		// 第四步：用完整 ensemble 重评训练集
		trainingScore := 0.0
		totalScore := 0.0
		expScores := make([]float64, a.training.Len())
		for i, rl := range a.training {
			score := a.scorer.EvaluateRankList(ranker.Ranked(a, rl))
			expScores[i] = math.Exp(-score)
			trainingScore += score
			totalScore += expScores[i]
		}
		trainingScore /= float64(a.training.Len())

		// 第五步：进步检查
		delta := trainingScore + a.tolerance - a.previousTraining
		status := StatusOK
		if delta <= 0 {
			status = StatusBad
		}

		// 第六步：饱和跟踪。计数只在饱和时清零，不随特征切换复位
		feature := best.FeatureID
		if a.previousFeature == feature {
			a.consecutiveSelections++
			if a.consecutiveSelections == a.maxConsecutiveSelections {
				status = StatusSaturated
				a.consecutiveSelections = 0
				a.usedFeatures[feature] = struct{}{}
			}
		}
		a.previousFeature = feature

		// 第七步：验证集 checkpoint
		valScore := 0.0
		if !a.validation.IsEmpty() {
			score, err := eval.EvaluateDataSet(a.scorer, a.rankedCopy(a.validation))
			if err != nil {
				a.logger.Error("validation evaluation failed, degraded to 0",
					"iteration", it, "error", err)
			} else {
				valScore = score
			}
			if valScore > a.scoreValidation {
				a.scoreValidation = valScore
				a.bestRankers = append([]*ranker.WeakRanker(nil), a.rankers...)
				a.bestWeights = append([]float64(nil), a.rankerWeights...)
			}
		}

		// 第八步：记录。BAD 轮也先记录再回滚
		rec := IterationRecord{
			Iteration:  it,
			Feature:    feature,
			TrainScore: trainingScore,
			TrainDelta: trainingScore - a.previousTraining,
			ValScore:   valScore,
			ValDelta:   valScore - a.previousValidation,
			Status:     status,
		}
		a.history = append(a.history, rec)
		a.sink.OnIteration(rec)
		a.logger.Debug("adarank iteration",
			"iteration", it, "feature", feature,
			"train_score", trainingScore, "train_delta", rec.TrainDelta,
			"val_score", valScore, "val_delta", rec.ValDelta,
			"status", string(status))

		if delta <= 0 {
			a.rankers = a.rankers[:len(a.rankers)-1]
			a.rankerWeights = a.rankerWeights[:len(a.rankerWeights)-1]
			break
		}

		a.previousTraining = trainingScore
		a.previousValidation = valScore

		// 第九步：样本重加权，突出当前模型仍排不好的查询。
		// 乘性更新后显式归一化，保证 Σ weight == 1
		sum := 0.0
		for i := range a.sampleWeights {
			a.sampleWeights[i] *= math.Exp(-alpha*expScores[i]) / totalScore
			sum += a.sampleWeights[i]
		}
		if sum > 0 {
			for i := range a.sampleWeights {
				a.sampleWeights[i] /= sum
			}
		}
	}
	return nil
}

// Fit 执行完整训练。存在验证集 checkpoint 时以其覆盖工作 ensemble
// （模型选择偏向最优验证快照而非训练轨迹的最终状态）。
// ensemble 为空时返回 NO_RANKERS。
func (a *AdaRank) Fit(ctx context.Context) error {
	a.reset()

	if err := a.learn(ctx); err != nil {
		return err
	}

	if len(a.bestRankers) > 0 {
		a.rankers = a.bestRankers
		a.rankerWeights = a.bestWeights
		a.bestRankers = nil
		a.bestWeights = nil
	}

	if len(a.rankers) == 0 {
		return core.ErrNoRankers()
	}

	if err := ranker.RankDataSet(a, a.training); err != nil {
		return err
	}
	score, err := eval.EvaluateDataSet(a.scorer, a.training)
	if err != nil {
		return err
	}
	a.scoreTraining = score

	if !a.validation.IsEmpty() {
		if err := ranker.RankDataSet(a, a.validation); err != nil {
			return err
		}
		valScore, err := eval.EvaluateDataSet(a.scorer, a.validation)
		if err != nil {
			a.logger.Error("final validation evaluation failed, degraded to 0", "error", err)
			valScore = 0
		}
		a.scoreValidation = valScore
	} else {
		a.scoreValidation = 0
	}

	a.logger.Info("adarank fit finished",
		"metric", a.scorer.Name(),
		"rankers", len(a.rankers),
		"train_score", a.scoreTraining,
		"val_score", a.scoreValidation)
	return nil
}

// Predict 返回 ensemble 的加权打分 Σ weight_k · feature(feature_id_k)。
// 特征缺失按 0.0 计入并记日志，不中断批量排序。
func (a *AdaRank) Predict(dp *core.DataPoint) float64 {
	score := 0.0
	for k, w := range a.rankers {
		value, err := dp.Feature(w.FeatureID)
		if err != nil {
			a.logger.Warn("missing feature treated as zero",
				"feature", w.FeatureID, "qid", dp.QueryID)
			continue
		}
		score += float64(value) * a.rankerWeights[k]
	}
	return score
}

// Score 返回训练集最终得分；Fit 未成功前返回 NO_RANKERS。
func (a *AdaRank) Score() (float64, error) {
	if len(a.rankers) == 0 {
		return 0, core.ErrNoRankers()
	}
	return a.scoreTraining, nil
}

// ValidationScore 返回验证集最终得分；Fit 未成功前返回 NO_RANKERS。
func (a *AdaRank) ValidationScore() (float64, error) {
	if len(a.rankers) == 0 {
		return 0, core.ErrNoRankers()
	}
	return a.scoreValidation, nil
}

// History 返回按序追加的迭代记录副本。
func (a *AdaRank) History() []IterationRecord {
	out := make([]IterationRecord, len(a.history))
	copy(out, a.history)
	return out
}

// Rankers 返回 ensemble 的 (WeakRanker, weight) 对，按入列顺序。
func (a *AdaRank) Rankers() ([]*ranker.WeakRanker, []float64) {
	return a.rankers, a.rankerWeights
}

var _ Learner = (*AdaRank)(nil)
