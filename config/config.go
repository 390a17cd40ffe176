// Package config 提供配置驱动的训练入口：从 YAML/JSON 描述
// 数据来源、筛选规则与 AdaRank 超参数，一步构建出可 Fit 的学习器。
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/ltrkit/core"
	"github.com/rushteam/ltrkit/ensemble"
	"github.com/rushteam/ltrkit/eval"
	"github.com/rushteam/ltrkit/loader"
	"github.com/rushteam/ltrkit/pkg/conv"
	"github.com/rushteam/ltrkit/pkg/dsl"
)

// Config 是一次训练任务的配置结构（支持 YAML/JSON）。
type Config struct {
	Trainer struct {
		Name string `yaml:"name" json:"name"`

		// Metric 指定评估指标：type 为 map / precision，
		// precision 额外支持 config.k（缺省 10）
		Metric MetricConfig `yaml:"metric" json:"metric"`

		Iterations            int     `yaml:"iterations" json:"iterations"`
		MaxConsecutive        int     `yaml:"max_consecutive" json:"max_consecutive"`
		Tolerance             float64 `yaml:"tolerance" json:"tolerance"`
		Features              []int   `yaml:"features" json:"features"`
		Parallelism           int     `yaml:"parallelism" json:"parallelism"`

		// Filter 是可选的 CEL 样本筛选表达式，作用于训练集与验证集
		Filter string `yaml:"filter" json:"filter"`

		Train      string `yaml:"train" json:"train"`           // SVMLight 训练集路径
		Validation string `yaml:"validation" json:"validation"` // 可选的验证集路径
	} `yaml:"trainer" json:"trainer"`
}

// MetricConfig 是指标配置。指标集合是封闭的，这里不做注册表。
type MetricConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config" json:"config"`
}

// LoadFromYAML 从 YAML 文件加载配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &cfg, nil
}

// BuildEvaluator 根据指标配置构建 Evaluator。
func (c *Config) BuildEvaluator() (eval.Evaluator, error) {
	switch c.Trainer.Metric.Type {
	case "", "map":
		return eval.MAP{}, nil
	case "precision":
		k := conv.ConfigGetInt(c.Trainer.Metric.Config, "k", 10)
		return eval.NewPrecision(k), nil
	default:
		return nil, fmt.Errorf("unknown metric type: %s", c.Trainer.Metric.Type)
	}
}

// loadDataSet 加载并按需筛选一个 SVMLight 数据集。
func (c *Config) loadDataSet(path string, filter *dsl.Filter) (core.DataSet, error) {
	ds, err := loader.SVMLight{}.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return ds, nil
	}
	return dsl.FilterDataSet(ds, filter)
}

// Build 组装完整的训练器：加载数据、应用筛选、构建学习器。
func (c *Config) Build(opts ...ensemble.Option) (*ensemble.AdaRank, error) {
	if c.Trainer.Train == "" {
		return nil, fmt.Errorf("trainer.train is required")
	}

	scorer, err := c.BuildEvaluator()
	if err != nil {
		return nil, err
	}

	filter, err := dsl.NewFilter(c.Trainer.Filter)
	if err != nil {
		return nil, fmt.Errorf("trainer.filter: %w", err)
	}

	training, err := c.loadDataSet(c.Trainer.Train, filter)
	if err != nil {
		return nil, fmt.Errorf("load training set: %w", err)
	}

	built := make([]ensemble.Option, 0, len(opts)+8)
	if c.Trainer.Iterations > 0 {
		built = append(built, ensemble.WithIterations(c.Trainer.Iterations))
	}
	if c.Trainer.MaxConsecutive > 0 {
		built = append(built, ensemble.WithMaxConsecutiveSelections(c.Trainer.MaxConsecutive))
	}
	if c.Trainer.Tolerance > 0 {
		built = append(built, ensemble.WithTolerance(c.Trainer.Tolerance))
	}
	if len(c.Trainer.Features) > 0 {
		built = append(built, ensemble.WithFeatures(c.Trainer.Features))
	}
	if c.Trainer.Parallelism > 1 {
		built = append(built, ensemble.WithParallelism(c.Trainer.Parallelism))
	}
	if c.Trainer.Validation != "" {
		validation, err := c.loadDataSet(c.Trainer.Validation, filter)
		if err != nil {
			return nil, fmt.Errorf("load validation set: %w", err)
		}
		built = append(built, ensemble.WithValidation(validation))
	}
	built = append(built, opts...)

	return ensemble.NewAdaRank(training, scorer, built...), nil
}
