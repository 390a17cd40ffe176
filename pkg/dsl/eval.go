// Package dsl 提供基于 CEL (Common Expression Language) 的数据集筛选表达式。
//
// 训练前经常需要裁剪语料：只保留某些查询、丢弃无相关文档的样本等。
// 用表达式而不是硬编码的谓词，筛选规则可以放进配置文件。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/ltrkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，声明 DataPoint 的可见变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("label", cel.IntType),
		cel.Variable("qid", cel.UintType),
		cel.Variable("features", cel.ListType(cel.DoubleType)),
		cel.Variable("description", cel.StringType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Filter 是编译好的样本筛选表达式，可对任意多条 DataPoint 复用。
//
// 表达式语法（CEL 标准语法），可见变量：
//   - label: 相关性等级，如 `label > 0`
//   - qid: 查询 ID，如 `qid < 100u`
//   - features: 特征值列表（下标从 0 起），如 `features[0] > 0.5`
//   - description: 描述文本，如 `description.contains("doc")`
//
// 示例：
//   - `label > 0` → 只保留相关文档
//   - `label > 0 && features[2] >= 0.1` → 相关且第 3 个特征达标
type Filter struct {
	expr string
	prg  cel.Program
}

// NewFilter 编译表达式。空表达式匹配一切。
func NewFilter(expr string) (*Filter, error) {
	f := &Filter{expr: expr}
	if expr == "" {
		return f, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	f.prg = prg
	return f, nil
}

// Match 对单条样本求值，返回布尔结果。
func (f *Filter) Match(dp *core.DataPoint) (bool, error) {
	if f.prg == nil {
		return true, nil
	}

	features := make([]float64, len(dp.Features))
	for i, v := range dp.Features {
		features[i] = float64(v)
	}
	out, _, err := f.prg.Eval(map[string]any{
		"label":       int64(dp.Label),
		"qid":         dp.QueryID,
		"features":    features,
		"description": dp.Description,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// FilterDataSet 返回只含匹配样本的新数据集，匹配后为空的 RankList 被整体丢弃。
// 原数据集不被修改。
func FilterDataSet(ds core.DataSet, f *Filter) (core.DataSet, error) {
	out := make(core.DataSet, 0, ds.Len())
	for _, rl := range ds {
		var kept []core.DataPoint
		for _, dp := range rl.Points() {
			ok, err := f.Match(&dp)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, dp)
			}
		}
		if len(kept) > 0 {
			out = append(out, core.NewRankList(kept))
		}
	}
	return out, nil
}
